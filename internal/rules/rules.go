// Package rules threads contract identity through the rule-extraction
// boundary. Actual rule content comes from an external semantic
// extraction collaborator; this package defines the Source interface
// and a trivial file-backed implementation that loads a pre-existing
// persisted rule set when one exists.
package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/linkd/internal/contract"
)

// Rule is an opaque structured rule record produced by an external
// extractor. The pipeline only carries it; it never interprets it.
type Rule = json.RawMessage

// Source fetches the rules applying to one contract.
type Source interface {
	Fetch(ctx context.Context, c *contract.Contract) ([]Rule, error)
}

// ContractRules is the per-contract output of the extraction phase.
type ContractRules struct {
	ContractID          string                   `json:"contract_id"`
	Parties             []string                 `json:"parties"`
	ProgramCode         string                   `json:"program_code"`
	SourceDocuments     []string                 `json:"source_documents"`
	ExtractionTimestamp time.Time                `json:"extraction_timestamp"`
	Rules               []Rule                   `json:"rules"`
	Inconsistencies     []contract.Inconsistency `json:"inconsistencies"`
	Hierarchy           contract.Hierarchy       `json:"hierarchy"`
}

// Report is the output of the rule-extraction phase.
type Report struct {
	ExtractionTimestamp time.Time       `json:"extraction_timestamp"`
	Contracts           []ContractRules `json:"contracts"`
}

// FileSource loads rules from a persisted JSON array. A missing file is
// not an error: every contract simply gets an empty rule set, matching
// the "load existing rules if present, else empty" boundary.
type FileSource struct {
	path   string
	logger *zap.Logger
}

// NewFileSource creates a file-backed rule source. path may be empty,
// in which case Fetch always returns no rules.
func NewFileSource(path string, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{path: path, logger: logger}
}

// Fetch returns the persisted rules, or an empty set when no rule file
// exists.
func (s *FileSource) Fetch(ctx context.Context, c *contract.Contract) ([]Rule, error) {
	if s.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("no persisted rules found",
			zap.String("path", s.path),
			zap.String("contract", c.ContractID),
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", s.path, err)
	}
	return rules, nil
}

// Extractor builds the per-contract rule records for a discovered
// contract set.
type Extractor struct {
	source Source
	logger *zap.Logger
}

// NewExtractor creates a rule extractor over the given source.
func NewExtractor(source Source, logger *zap.Logger) (*Extractor, error) {
	if source == nil {
		return nil, fmt.Errorf("rule source is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{source: source, logger: logger}, nil
}

// ExtractAll produces one ContractRules record per contract. Discovery
// inconsistencies are consumed into the record, not recomputed. A
// source failure on one contract degrades that contract to an empty
// rule set rather than aborting the batch.
func (e *Extractor) ExtractAll(ctx context.Context, contracts []*contract.Contract) *Report {
	now := time.Now().UTC()
	out := &Report{ExtractionTimestamp: now, Contracts: make([]ContractRules, 0, len(contracts))}

	for _, c := range contracts {
		rules, err := e.source.Fetch(ctx, c)
		if err != nil {
			e.logger.Warn("rule fetch failed, continuing with empty rule set",
				zap.String("contract", c.ContractID),
				zap.Error(err),
			)
			rules = nil
		}

		sources := make([]string, 0, len(c.Documents))
		for _, doc := range c.Documents {
			sources = append(sources, doc.Filename)
		}

		out.Contracts = append(out.Contracts, ContractRules{
			ContractID:          c.ContractID,
			Parties:             c.Parties,
			ProgramCode:         c.ProgramCode,
			SourceDocuments:     sources,
			ExtractionTimestamp: now,
			Rules:               rules,
			Inconsistencies:     c.Inconsistencies,
			Hierarchy:           c.Hierarchy,
		})

		e.logger.Info("extracted contract rules",
			zap.String("contract", c.ContractID),
			zap.Int("rules", len(rules)),
			zap.Int("inconsistencies", len(c.Inconsistencies)),
		)
	}

	return out
}
