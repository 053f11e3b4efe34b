package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoice = `INVOICE

Invoice #: INV-001
Invoice Date: 2025-11-01

FROM: Acme Supplies Ltd
PO Number: PO-4471

Services
Consulting services for BCH program rollout

Amount: $15,000.00
Payment Terms: Net 30
`

func TestInvoiceExtractor_Extract(t *testing.T) {
	e := NewInvoiceExtractor()
	fields := e.Extract(sampleInvoice)

	assert.Equal(t, "INV-001", fields.InvoiceID)
	assert.Equal(t, "PO-4471", fields.PONumber)
	assert.Equal(t, "Acme Supplies Ltd", fields.Vendor)
	assert.Equal(t, "2025-11-01", fields.InvoiceDate)
	assert.Equal(t, "Consulting services for BCH program rollout", fields.ServicesDescription)
	assert.Equal(t, "Net 30", fields.PaymentTerms)
	assert.Equal(t, "USD", fields.Currency)

	require.NotNil(t, fields.Amount)
	assert.Equal(t, 15000.0, *fields.Amount)
}

func TestInvoiceExtractor_Idempotent(t *testing.T) {
	e := NewInvoiceExtractor()

	first := e.Extract(sampleInvoice)
	second := e.Extract(sampleInvoice)

	assert.Equal(t, first, second)
}

func TestInvoiceExtractor_EmptyText(t *testing.T) {
	e := NewInvoiceExtractor()
	fields := e.Extract("")

	assert.Empty(t, fields.InvoiceID)
	assert.Empty(t, fields.Vendor)
	assert.Empty(t, fields.PONumber)
	assert.Nil(t, fields.Amount)
	assert.Equal(t, "USD", fields.Currency, "currency defaults to USD")
}

func TestInvoiceExtractor_AmountFailSoft(t *testing.T) {
	e := NewInvoiceExtractor()

	// The "amount:" capture is malformed; extraction must continue to
	// the dollar pattern instead of raising.
	fields := e.Extract("Amount: ,\nbalance due $2,500.50")

	require.NotNil(t, fields.Amount)
	assert.Equal(t, 2500.50, *fields.Amount)
}

func TestInvoiceExtractor_VendorSanityBound(t *testing.T) {
	e := NewInvoiceExtractor()

	long := "FROM: " + string(make([]byte, 0))
	for i := 0; i < 30; i++ {
		long += "Very Long Name "
	}
	long += "\nVendor: Short Corp\n"

	fields := e.Extract(long)
	assert.Equal(t, "Short Corp", fields.Vendor,
		"implausibly long capture is rejected and the next pattern consulted")
}

func TestInvoiceExtractor_VendorFirstLineOnly(t *testing.T) {
	e := NewInvoiceExtractor()
	fields := e.Extract("Vendor: Globex Corp\n123 Main St\n")

	assert.Equal(t, "Globex Corp", fields.Vendor)
}

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "default", text: "no currency here", want: "USD"},
		{name: "usd token", text: "payable in USD only", want: "USD"},
		{name: "eur token", text: "Total: 900 EUR", want: "EUR"},
		{name: "gbp token", text: "gbp settlement", want: "GBP"},
		{name: "dollar sign", text: "Total: $900", want: "USD"},
		{name: "priority: eur beats dollar sign", text: "EUR $900", want: "EUR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCurrency(tt.text))
		})
	}
}

func TestCodeTokens(t *testing.T) {
	tokens := CodeTokens("BCH rollout and CAP review, no lowercase bch")
	assert.Equal(t, []string{"BCH", "CAP"}, tokens)
}

func TestCodeTokens_LengthBounds(t *testing.T) {
	assert.Empty(t, CodeTokens("A TOOLONG"))
	assert.Equal(t, []string{"AB", "ABCD"}, CodeTokens("A AB ABCD ABCDE"))
}

func TestDateTokens(t *testing.T) {
	dates := DateTokens("MSA_2021_12_10 renewed 2023-01 05 x")
	assert.Equal(t, []string{"2021-12-10", "2023-01-05"}, dates)
}

func TestYearTokens(t *testing.T) {
	years := YearTokens("signed 2021, amended 2024, not 1999 or 20255")
	assert.Equal(t, []string{"2021", "2024"}, years)
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2021-12-10", NormalizeDate("2021_12_10"))
	assert.Equal(t, "2021-12-10", NormalizeDate("2021 12 10"))
	assert.Equal(t, "2021-12-10", NormalizeDate("2021-12-10"))
}
