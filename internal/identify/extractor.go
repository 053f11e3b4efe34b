package identify

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/linkd/internal/extraction"
)

// Extractor produces DocumentIdentifiers from filenames and optional
// body text. It is immutable after construction and safe for concurrent
// use.
type Extractor struct {
	aliases  []string          // lower-case aliases, deterministic scan order
	canon    map[string]string // alias -> canonical token
	stopList map[string]struct{}
	logger   *zap.Logger
}

// NewExtractor creates an identifier extractor from the vocabulary in
// cfg. Zero-value config sections fall back to the defaults.
func NewExtractor(cfg Config, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultConfig()
	if len(cfg.PartyAliases) == 0 {
		cfg.PartyAliases = defaults.PartyAliases
	}
	if len(cfg.ProgramCodeStopList) == 0 {
		cfg.ProgramCodeStopList = defaults.ProgramCodeStopList
	}

	canon := make(map[string]string, len(cfg.PartyAliases))
	aliases := make([]string, 0, len(cfg.PartyAliases))
	for alias, token := range cfg.PartyAliases {
		alias = strings.ToLower(alias)
		canon[alias] = token
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	stopList := make(map[string]struct{}, len(cfg.ProgramCodeStopList))
	for _, word := range cfg.ProgramCodeStopList {
		stopList[strings.ToUpper(word)] = struct{}{}
	}

	return &Extractor{
		aliases:  aliases,
		canon:    canon,
		stopList: stopList,
		logger:   logger,
	}
}

// Identify builds the identifier record for one document. body may be
// empty when no text could be extracted; party detection then falls
// back to the filename.
func (e *Extractor) Identify(filename, path, body string) DocumentIdentifier {
	id := DocumentIdentifier{
		Filename:    filename,
		Path:        path,
		Type:        DetectType(filename),
		Parties:     e.extractParties(filename, body),
		ProgramCode: e.extractProgramCode(filename),
		DatesFound:  extractDates(filename),
	}

	e.logger.Debug("identified document",
		zap.String("filename", filename),
		zap.String("type", string(id.Type)),
		zap.Strings("parties", id.Parties),
		zap.String("program_code", id.ProgramCode),
	)

	return id
}

// typeRule is one step of the doc-type cascade.
type typeRule struct {
	tokens []string
	result DocType
}

// typeCascade is evaluated in order; the first rule whose token appears
// in the upper-cased filename wins.
var typeCascade = []typeRule{
	{tokens: []string{"MSA", "MASTER SERVICE"}, result: DocTypeMSA},
	{tokens: []string{"SOW", "STATEMENT OF WORK"}, result: DocTypeSOW},
	{tokens: []string{"ORDER FORM"}, result: DocTypeOrderForm},
	{tokens: []string{"PURCHASE ORDER", "PO"}, result: DocTypePurchaseOrder},
	{tokens: []string{"DELIVERY", "DN"}, result: DocTypeDeliveryNote},
}

// DetectType classifies a document from its filename. The cascade is a
// fixed priority list of case-insensitive substring tests; the first
// match wins.
func DetectType(filename string) DocType {
	upper := strings.ToUpper(filename)
	for _, rule := range typeCascade {
		for _, token := range rule.tokens {
			if strings.Contains(upper, token) {
				return rule.result
			}
		}
	}
	return DocTypeOther
}

// extractParties scans the body text (or the filename when body is
// empty) for known party aliases and returns the sorted canonical set.
// Unknown parties simply produce no signal.
func (e *Extractor) extractParties(filename, body string) []string {
	text := body
	if text == "" {
		text = filename
	}
	lower := strings.ToLower(text)

	seen := make(map[string]struct{})
	for _, alias := range e.aliases {
		if strings.Contains(lower, alias) {
			seen[e.canon[alias]] = struct{}{}
		}
	}

	parties := make([]string, 0, len(seen))
	for token := range seen {
		parties = append(parties, token)
	}
	sort.Strings(parties)
	return parties
}

// extractProgramCode returns the first bare 2-4 letter uppercase token
// in the filename that is not on the stop list.
func (e *Extractor) extractProgramCode(filename string) string {
	for _, token := range extraction.CodeTokens(filename) {
		if _, stopped := e.stopList[token]; stopped {
			continue
		}
		return token
	}
	return ""
}

// extractDates accumulates date-like tokens from the filename: dashed
// 8-digit dates first, then bare years, in discovery order with
// duplicates removed.
func extractDates(filename string) []string {
	var dates []string
	seen := make(map[string]struct{})

	add := func(d string) {
		if _, dup := seen[d]; dup {
			return
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}

	for _, d := range extraction.DateTokens(filename) {
		add(d)
	}
	for _, y := range extraction.YearTokens(filename) {
		add(y)
	}

	return dates
}
