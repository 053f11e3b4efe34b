package linkage

// Method identifies the matcher tier that produced a candidate.
type Method string

const (
	MethodPONumber    Method = "PO_NUMBER"
	MethodVendor      Method = "VENDOR"
	MethodProgramCode Method = "PROGRAM_CODE"
)

// Tier confidences are fixed per method.
const (
	ConfidencePONumber    = 0.95
	ConfidenceVendor      = 0.85
	ConfidenceProgramCode = 0.70
)

// Status is the terminal classification of one invoice.
type Status string

const (
	StatusMatched   Status = "MATCHED"
	StatusAmbiguous Status = "AMBIGUOUS"
	StatusUnmatched Status = "UNMATCHED"
)

// Candidate is one (contract, method, confidence) proposal produced by
// a matcher tier.
type Candidate struct {
	ContractID string  `json:"contract_id"`
	Method     Method  `json:"method"`
	Confidence float64 `json:"confidence"`
}

// Details is the evidence snapshot attached to every result. It is
// always the same four invoice fields regardless of which tier matched:
// evidence for a human reviewer, not a proof of the match rationale.
type Details struct {
	PONumber    string   `json:"po_number,omitempty"`
	Vendor      string   `json:"vendor,omitempty"`
	InvoiceDate string   `json:"invoice_date,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
}

// Result is the linkage outcome for one invoice.
type Result struct {
	InvoiceID          string      `json:"invoice_id"`
	DetectedContract   string      `json:"detected_contract,omitempty"`
	MatchMethod        Method      `json:"match_method,omitempty"`
	Confidence         float64     `json:"confidence"`
	MatchingDetails    Details     `json:"matching_details"`
	AlternativeMatches []Candidate `json:"alternative_matches"`
	Status             Status      `json:"status"`
}
