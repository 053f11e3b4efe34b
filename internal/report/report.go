// Package report defines the persisted artifacts of the pipeline:
// discovery, rule-extraction, and linkage reports. All artifacts are
// field-named JSON records so that adding optional fields does not
// break downstream consumers.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/linkd/internal/contract"
	"github.com/fyrsmithlabs/linkd/internal/linkage"
)

// Discovery is the output of the contract discovery phase.
type Discovery struct {
	RunID          string               `json:"run_id"`
	Timestamp      time.Time            `json:"discovery_timestamp"`
	ContractsDir   string               `json:"contracts_dir"`
	TotalDocuments int                  `json:"total_documents"`
	Contracts      []*contract.Contract `json:"contracts"`
}

// NewDiscovery stamps a fresh discovery report.
func NewDiscovery(contractsDir string, totalDocuments int, contracts []*contract.Contract) *Discovery {
	return &Discovery{
		RunID:          uuid.NewString(),
		Timestamp:      time.Now().UTC(),
		ContractsDir:   contractsDir,
		TotalDocuments: totalDocuments,
		Contracts:      contracts,
	}
}

// Linkage is the output of the invoice linkage phase.
type Linkage struct {
	RunID         string           `json:"run_id"`
	Timestamp     time.Time        `json:"detection_timestamp"`
	TotalInvoices int              `json:"total_invoices"`
	Matched       int              `json:"matched"`
	Ambiguous     int              `json:"ambiguous"`
	Unmatched     int              `json:"unmatched"`
	Invoices      []linkage.Result `json:"invoices"`
}

// NewLinkage stamps a linkage report and computes its totals from the
// per-invoice results.
func NewLinkage(results []linkage.Result) *Linkage {
	r := &Linkage{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Invoices:  results,
	}
	for _, res := range results {
		r.TotalInvoices++
		switch res.Status {
		case linkage.StatusMatched:
			r.Matched++
		case linkage.StatusAmbiguous:
			r.Ambiguous++
		default:
			r.Unmatched++
		}
	}
	return r
}

// WriteJSON persists an artifact as indented JSON, creating parent
// directories as needed.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadDiscovery loads a previously persisted discovery report.
func ReadDiscovery(path string) (*Discovery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read discovery report: %w", err)
	}

	var d Discovery
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse discovery report %s: %w", path, err)
	}
	return &d, nil
}
