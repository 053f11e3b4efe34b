package contract

import (
	"github.com/fyrsmithlabs/linkd/internal/identify"
)

// BuildHierarchy classifies a group's documents into the structural
// map. Classification is by document type only, never by position, so
// the result is the same regardless of scan order within the group.
// When a group carries more than one MSA or SOW, the first one seen
// fills the slot.
func BuildHierarchy(docs []identify.DocumentIdentifier) Hierarchy {
	h := Hierarchy{
		OrderForms:     []string{},
		PurchaseOrders: []string{},
		DeliveryNotes:  []string{},
	}

	for _, doc := range docs {
		switch doc.Type {
		case identify.DocTypeMSA:
			if h.MSA == "" {
				h.MSA = doc.Filename
			}
		case identify.DocTypeSOW:
			if h.SOW == "" {
				h.SOW = doc.Filename
			}
		case identify.DocTypeOrderForm:
			h.OrderForms = append(h.OrderForms, doc.Filename)
		case identify.DocTypePurchaseOrder:
			h.PurchaseOrders = append(h.PurchaseOrders, doc.Filename)
		case identify.DocTypeDeliveryNote:
			h.DeliveryNotes = append(h.DeliveryNotes, doc.Filename)
		}
	}

	return h
}

// VerifyHierarchy runs the fixed structural rule set against a
// hierarchy. Both rules are independent and may fire together; findings
// appear in fixed rule order. The function is pure and total: the same
// hierarchy always yields the same findings.
func VerifyHierarchy(h Hierarchy) []Inconsistency {
	var findings []Inconsistency

	hasMSA := h.MSA != ""
	hasSOW := h.SOW != ""

	if len(h.PurchaseOrders) > 0 && !hasMSA && !hasSOW {
		findings = append(findings, Inconsistency{
			Severity:       SeverityWarning,
			Issue:          "Purchase Order exists without MSA or SOW",
			Recommendation: "Verify this is a PO-based contract",
		})
	}

	if hasSOW && !hasMSA {
		findings = append(findings, Inconsistency{
			Severity:       SeverityWarning,
			Issue:          "SOW exists without MSA",
			Recommendation: "Verify MSA is not needed for this contract",
		})
	}

	return findings
}
