package extraction

import (
	"regexp"
	"strings"
)

// NormalizeFunc cleans up a raw capture. Returning an error rejects the
// capture and extraction falls through to the next pattern in the chain.
type NormalizeFunc func(raw string) (string, error)

// Pattern pairs a regex with an optional normalizer. The first capture
// group is the extracted value; patterns without a group use the whole
// match.
type Pattern struct {
	Name      string
	Regex     string
	Normalize NormalizeFunc
}

// compiledPattern holds a pre-compiled pattern.
type compiledPattern struct {
	Pattern
	regex *regexp.Regexp
}

// Chain is an ordered first-match fallback chain for one field.
// Patterns are tried most-specific-first; once a pattern matches and its
// capture survives normalization, later patterns are never consulted.
type Chain struct {
	field    string
	patterns []*compiledPattern
}

// NewChain compiles a fallback chain for the named field.
// Invalid patterns are skipped rather than failing the whole chain.
func NewChain(field string, patterns ...Pattern) *Chain {
	compiled := make([]*compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			continue
		}
		compiled = append(compiled, &compiledPattern{Pattern: p, regex: re})
	}
	return &Chain{field: field, patterns: compiled}
}

// Field returns the name of the field this chain extracts.
func (c *Chain) Field() string {
	return c.field
}

// Apply runs the chain against text and returns the first surviving
// capture. The second return is false when no pattern produced a value.
func (c *Chain) Apply(text string) (string, bool) {
	for _, p := range c.patterns {
		m := p.regex.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		value := m[0]
		if len(m) > 1 {
			value = m[1]
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if p.Normalize != nil {
			normalized, err := p.Normalize(value)
			if err != nil {
				// Fail soft: a malformed capture is skipped and the
				// chain continues with the next pattern.
				continue
			}
			value = normalized
		}

		return value, true
	}
	return "", false
}
