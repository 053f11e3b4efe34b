package contract

import (
	"github.com/fyrsmithlabs/linkd/internal/identify"
)

// UnknownProgram is the sentinel program code for groups whose member
// documents carried none.
const UnknownProgram = "UNKNOWN"

// Contract aggregates the documents sharing one grouping key.
type Contract struct {
	ContractID  string                        `json:"contract_id"`
	Parties     []string                      `json:"parties"`
	ProgramCode string                        `json:"program_code"`
	DatesFound  []string                      `json:"dates_found"`
	Documents   []identify.DocumentIdentifier `json:"documents"`
	Hierarchy   Hierarchy                     `json:"hierarchy"`

	// Inconsistencies holds the hierarchy findings, in fixed rule
	// order. Computed once during grouping, never mutated after.
	Inconsistencies []Inconsistency `json:"inconsistencies"`
}

// Hierarchy is the MSA/SOW/Order-Form/PO/Delivery-Note structural map
// of a contract's documents.
type Hierarchy struct {
	MSA            string   `json:"msa,omitempty"`
	SOW            string   `json:"sow,omitempty"`
	OrderForms     []string `json:"order_forms"`
	PurchaseOrders []string `json:"purchase_orders"`
	DeliveryNotes  []string `json:"delivery_notes"`
}

// Inconsistency is one structural finding on a contract.
type Inconsistency struct {
	Severity       string `json:"severity"`
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation"`
}

// SeverityWarning marks findings that need human verification but do
// not block processing.
const SeverityWarning = "warning"
