package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/linkd/internal/identify"
)

func TestBuildHierarchy(t *testing.T) {
	docs := []identify.DocumentIdentifier{
		doc("MSA.docx", identify.DocTypeMSA, nil, ""),
		doc("SOW.docx", identify.DocTypeSOW, nil, ""),
		doc("Order Form 1.pdf", identify.DocTypeOrderForm, nil, ""),
		doc("Order Form 2.pdf", identify.DocTypeOrderForm, nil, ""),
		doc("PO-4471.pdf", identify.DocTypePurchaseOrder, nil, ""),
		doc("DN-1.pdf", identify.DocTypeDeliveryNote, nil, ""),
		doc("misc.txt", identify.DocTypeOther, nil, ""),
	}

	h := BuildHierarchy(docs)

	assert.Equal(t, "MSA.docx", h.MSA)
	assert.Equal(t, "SOW.docx", h.SOW)
	assert.Equal(t, []string{"Order Form 1.pdf", "Order Form 2.pdf"}, h.OrderForms)
	assert.Equal(t, []string{"PO-4471.pdf"}, h.PurchaseOrders)
	assert.Equal(t, []string{"DN-1.pdf"}, h.DeliveryNotes)
}

func TestBuildHierarchy_OrderIndependentForSingleSlots(t *testing.T) {
	forward := []identify.DocumentIdentifier{
		doc("MSA.docx", identify.DocTypeMSA, nil, ""),
		doc("PO-1.pdf", identify.DocTypePurchaseOrder, nil, ""),
	}
	reversed := []identify.DocumentIdentifier{forward[1], forward[0]}

	assert.Equal(t, BuildHierarchy(forward).MSA, BuildHierarchy(reversed).MSA)
}

func TestVerifyHierarchy_POWithoutMSAOrSOW(t *testing.T) {
	findings := VerifyHierarchy(Hierarchy{
		PurchaseOrders: []string{"PO-1.pdf"},
	})

	require.Len(t, findings, 1)
	assert.Equal(t, SeverityWarning, findings[0].Severity)
	assert.Equal(t, "Purchase Order exists without MSA or SOW", findings[0].Issue)
	assert.Equal(t, "Verify this is a PO-based contract", findings[0].Recommendation)
}

func TestVerifyHierarchy_SOWWithoutMSA(t *testing.T) {
	findings := VerifyHierarchy(Hierarchy{SOW: "SOW.docx"})

	require.Len(t, findings, 1)
	assert.Equal(t, "SOW exists without MSA", findings[0].Issue)
	assert.Equal(t, "Verify MSA is not needed for this contract", findings[0].Recommendation)
}

func TestVerifyHierarchy_PORuleRequiresBothAbsent(t *testing.T) {
	// A PO alongside a SOW but no MSA: only the SOW rule fires, because
	// the PO rule requires both MSA and SOW to be absent.
	findings := VerifyHierarchy(Hierarchy{
		SOW:            "SOW.docx",
		PurchaseOrders: []string{"PO-1.pdf"},
	})

	require.Len(t, findings, 1)
	assert.Equal(t, "SOW exists without MSA", findings[0].Issue)
}

func TestVerifyHierarchy_RuleOrderIsFixed(t *testing.T) {
	findings := VerifyHierarchy(Hierarchy{
		PurchaseOrders: []string{"PO-1.pdf"},
		DeliveryNotes:  []string{"DN-1.pdf"},
	})

	require.NotEmpty(t, findings)
	assert.Equal(t, "Purchase Order exists without MSA or SOW", findings[0].Issue,
		"the purchase-order rule is evaluated first")
}

func TestVerifyHierarchy_Monotonic(t *testing.T) {
	// Adding an MSA removes the "SOW without MSA" warning.
	withWarning := VerifyHierarchy(Hierarchy{SOW: "SOW.docx"})
	require.Len(t, withWarning, 1)

	cured := VerifyHierarchy(Hierarchy{MSA: "MSA.docx", SOW: "SOW.docx"})
	assert.Empty(t, cured)

	// Removing all purchase orders removes the PO warning.
	poWarn := VerifyHierarchy(Hierarchy{PurchaseOrders: []string{"PO-1.pdf"}})
	require.Len(t, poWarn, 1)

	noPO := VerifyHierarchy(Hierarchy{})
	assert.Empty(t, noPO)
}

func TestVerifyHierarchy_CompleteContractIsClean(t *testing.T) {
	findings := VerifyHierarchy(Hierarchy{
		MSA:            "MSA.docx",
		SOW:            "SOW.docx",
		PurchaseOrders: []string{"PO-1.pdf"},
	})
	assert.Empty(t, findings)
}
