package linkage

import (
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/linkd/internal/contract"
	"github.com/fyrsmithlabs/linkd/internal/extraction"
)

// unknownInvoiceID stands in for invoices whose id could not be
// extracted from body text.
const unknownInvoiceID = "UNKNOWN"

// Detector classifies invoices against a fixed contract set. The
// contract set must be fully built before the first Detect call; the
// detector only reads it, so Detect is safe to call from concurrent
// workers.
type Detector struct {
	contracts []*contract.Contract
	logger    *zap.Logger
}

// NewDetector creates a detector over the given contracts.
func NewDetector(contracts []*contract.Contract, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{contracts: contracts, logger: logger}
}

// Detect runs the tier cascade for one invoice and resolves the
// outcome. Each tier is consulted only when all earlier tiers produced
// zero candidates; the cascade short-circuits rather than unioning
// tiers.
func (d *Detector) Detect(inv extraction.InvoiceFields) Result {
	candidates := d.matchByPONumber(inv)
	if len(candidates) == 0 {
		candidates = d.matchByVendor(inv)
	}
	if len(candidates) == 0 {
		candidates = d.matchByProgramCode(inv)
	}

	result := d.resolve(inv, candidates)

	d.logger.Info("invoice classified",
		zap.String("invoice_id", result.InvoiceID),
		zap.String("status", string(result.Status)),
		zap.String("contract", result.DetectedContract),
		zap.Float64("confidence", result.Confidence),
	)

	return result
}

// matchByPONumber proposes every contract with a document whose
// filename contains the invoice's PO number. Candidates are
// deduplicated by contract id so that a contract with several matching
// documents still counts once toward the MATCHED/AMBIGUOUS decision.
func (d *Detector) matchByPONumber(inv extraction.InvoiceFields) []Candidate {
	if inv.PONumber == "" {
		return nil
	}

	var candidates []Candidate
	seen := make(map[string]struct{})

	for _, c := range d.contracts {
		for _, doc := range c.Documents {
			if !strings.Contains(doc.Filename, inv.PONumber) {
				continue
			}
			if _, dup := seen[c.ContractID]; dup {
				continue
			}
			seen[c.ContractID] = struct{}{}
			candidates = append(candidates, Candidate{
				ContractID: c.ContractID,
				Method:     MethodPONumber,
				Confidence: ConfidencePONumber,
			})
		}
	}

	return candidates
}

// matchByVendor proposes every contract with a party token that
// contains, or is contained by, the invoice's vendor string. A contract
// contributes at most one candidate even when several of its parties
// match.
func (d *Detector) matchByVendor(inv extraction.InvoiceFields) []Candidate {
	vendor := strings.ToLower(inv.Vendor)
	if vendor == "" {
		return nil
	}

	var candidates []Candidate
	for _, c := range d.contracts {
		for _, party := range c.Parties {
			p := strings.ToLower(party)
			if strings.Contains(vendor, p) || strings.Contains(p, vendor) {
				candidates = append(candidates, Candidate{
					ContractID: c.ContractID,
					Method:     MethodVendor,
					Confidence: ConfidenceVendor,
				})
				break
			}
		}
	}

	return candidates
}

// matchByProgramCode proposes every contract whose program code appears
// among the bare uppercase tokens of the invoice's services description
// and reason text.
func (d *Detector) matchByProgramCode(inv extraction.InvoiceFields) []Candidate {
	tokens := extraction.CodeTokens(inv.ServicesDescription + " " + inv.Reason)
	if len(tokens) == 0 {
		return nil
	}

	tokenSet := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = struct{}{}
	}

	var candidates []Candidate
	for _, c := range d.contracts {
		if _, ok := tokenSet[c.ProgramCode]; ok {
			candidates = append(candidates, Candidate{
				ContractID: c.ContractID,
				Method:     MethodProgramCode,
				Confidence: ConfidenceProgramCode,
			})
		}
	}

	return candidates
}

// resolve turns a tier's candidate list into the terminal result.
func (d *Detector) resolve(inv extraction.InvoiceFields, candidates []Candidate) Result {
	result := Result{
		InvoiceID:          inv.InvoiceID,
		Confidence:         0.0,
		Status:             StatusUnmatched,
		AlternativeMatches: []Candidate{},
		MatchingDetails: Details{
			PONumber:    inv.PONumber,
			Vendor:      inv.Vendor,
			InvoiceDate: inv.InvoiceDate,
			Amount:      inv.Amount,
		},
	}
	if result.InvoiceID == "" {
		result.InvoiceID = unknownInvoiceID
	}

	switch {
	case len(candidates) == 1:
		result.DetectedContract = candidates[0].ContractID
		result.MatchMethod = candidates[0].Method
		result.Confidence = candidates[0].Confidence
		result.Status = StatusMatched

	case len(candidates) > 1:
		// Deterministic but arbitrary tie-break: the first-produced
		// candidate (contract iteration order) is reported, the rest
		// become alternatives.
		result.DetectedContract = candidates[0].ContractID
		result.MatchMethod = candidates[0].Method
		result.Confidence = candidates[0].Confidence
		result.AlternativeMatches = candidates[1:]
		result.Status = StatusAmbiguous
	}

	return result
}
