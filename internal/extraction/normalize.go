package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	codeTokenRe = regexp.MustCompile(`\b[A-Z]{2,4}\b`)
	dateTokenRe = regexp.MustCompile(`\d{4}[\s\-_]\d{2}[\s\-_]\d{2}`)
	yearTokenRe = regexp.MustCompile(`\b(202\d)\b`)
	dateSepRe   = regexp.MustCompile(`[\s_]`)
)

// CodeTokens returns every bare 2-4 letter uppercase token in text, in
// order of appearance. Callers filter against their own stop lists.
func CodeTokens(text string) []string {
	return codeTokenRe.FindAllString(text, -1)
}

// DateTokens returns every 8-digit date with separators found in text,
// normalized to dashed form, in order of appearance.
func DateTokens(text string) []string {
	raw := dateTokenRe.FindAllString(text, -1)
	if raw == nil {
		return nil
	}
	dates := make([]string, len(raw))
	for i, d := range raw {
		dates[i] = NormalizeDate(d)
	}
	return dates
}

// YearTokens returns every bare 202x year token in text, in order of
// appearance.
func YearTokens(text string) []string {
	return yearTokenRe.FindAllString(text, -1)
}

// NormalizeDate rewrites underscore or space separated dates to the
// dashed YYYY-MM-DD shape. Inputs already in dashed form pass through.
func NormalizeDate(raw string) string {
	return dateSepRe.ReplaceAllString(raw, "-")
}

// normalizeAmount strips thousands separators and validates that the
// capture parses as a number. A malformed capture is rejected so the
// chain can fall through to its next pattern.
func normalizeAmount(raw string) (string, error) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
		return "", fmt.Errorf("not a number: %q", raw)
	}
	return cleaned, nil
}

// boundedLine truncates a capture to its first line and rejects
// implausibly long values (a greedy pattern swallowing a paragraph).
func boundedLine(maxLen int) NormalizeFunc {
	return func(raw string) (string, error) {
		line := raw
		if idx := strings.IndexByte(line, '\n'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return "", fmt.Errorf("empty capture")
		}
		if len(line) >= maxLen {
			return "", fmt.Errorf("capture too long: %d chars", len(line))
		}
		return line, nil
	}
}
