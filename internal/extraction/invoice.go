package extraction

import (
	"strconv"
	"strings"
)

// DefaultCurrency is assumed when no currency token appears in the text.
const DefaultCurrency = "USD"

// InvoiceFields is the structured record extracted from one invoice's
// body text. Every field is optional; an empty value means no pattern
// matched. Fields come from document content, never from the filename.
type InvoiceFields struct {
	InvoiceID           string   `json:"invoice_id,omitempty"`
	Vendor              string   `json:"vendor,omitempty"`
	PONumber            string   `json:"po_number,omitempty"`
	InvoiceDate         string   `json:"invoice_date,omitempty"`
	Amount              *float64 `json:"amount,omitempty"`
	Currency            string   `json:"currency"`
	ServicesDescription string   `json:"services_description,omitempty"`
	PaymentTerms        string   `json:"payment_terms,omitempty"`
	Reason              string   `json:"reason,omitempty"`
}

// InvoiceExtractor extracts InvoiceFields from raw text using one
// fallback chain per field. It is immutable after construction and safe
// for concurrent use.
type InvoiceExtractor struct {
	invoiceID   *Chain
	poNumber    *Chain
	vendor      *Chain
	invoiceDate *Chain
	amount      *Chain
	description *Chain
	terms       *Chain
	reason      *Chain
}

// NewInvoiceExtractor builds an extractor with the default chains.
func NewInvoiceExtractor() *InvoiceExtractor {
	return &InvoiceExtractor{
		invoiceID: NewChain("invoice_id",
			Pattern{Name: "invoice_hash", Regex: `(?i)invoice\s*#:?\s*([A-Z0-9\-]+)`},
			Pattern{Name: "invoice_number", Regex: `(?i)invoice\s+number:?\s*([A-Z0-9\-]+)`},
			Pattern{Name: "invoice_id", Regex: `(?i)invoice\s+id:?\s*([A-Z0-9\-]+)`},
		),
		poNumber: NewChain("po_number",
			Pattern{Name: "po_number", Regex: `(?i)po\s+number:\s*([A-Z0-9\-]+)`},
			Pattern{Name: "po_hash", Regex: `(?i)po\s*#:?\s*([A-Z0-9\-]+)`},
			Pattern{Name: "purchase_order", Regex: `(?i)purchase\s+order\s*#?:?\s*([A-Z0-9\-]+)`},
			Pattern{Name: "p_o_dotted", Regex: `(?i)p\.o\.\s*#?:?\s*([A-Z0-9\-]+)`},
		),
		vendor: NewChain("vendor",
			Pattern{Name: "from", Regex: `(?i)from:\s*([^\n]+)`, Normalize: boundedLine(100)},
			Pattern{Name: "vendor", Regex: `(?i)vendor:\s*([^\n]+)`, Normalize: boundedLine(100)},
			Pattern{Name: "billed_by", Regex: `(?i)billed by:\s*([^\n]+)`, Normalize: boundedLine(100)},
			Pattern{Name: "supplier", Regex: `(?i)supplier:\s*([^\n]+)`, Normalize: boundedLine(100)},
		),
		invoiceDate: NewChain("invoice_date",
			Pattern{Name: "labelled_date", Regex: `(?i)(?:invoice\s+)?date:?\s*(\d{4}[-/]\d{2}[-/]\d{2})`},
			Pattern{Name: "bare_date", Regex: `(\d{4}[-/]\d{2}[-/]\d{2})`},
		),
		amount: NewChain("amount",
			Pattern{Name: "amount", Regex: `(?i)amount:?\s*\$?([\d,]+\.?\d*)`, Normalize: normalizeAmount},
			Pattern{Name: "total", Regex: `(?i)total:?\s*\$?([\d,]+\.?\d*)`, Normalize: normalizeAmount},
			Pattern{Name: "dollar_amount", Regex: `\$\s*([\d,]+\.?\d*)`, Normalize: normalizeAmount},
		),
		description: NewChain("services_description",
			Pattern{Name: "services_block", Regex: `(?im)^services\s*\n\s*([^\n]+)`, Normalize: boundedLine(200)},
			Pattern{Name: "services_inline", Regex: `(?i)services?\s*:\s*([^\n]+)`, Normalize: boundedLine(200)},
			Pattern{Name: "description", Regex: `(?i)description:?\s*([^\n]+)`, Normalize: boundedLine(200)},
			Pattern{Name: "for", Regex: `(?i)for:?\s*([^\n]+)`, Normalize: boundedLine(200)},
		),
		terms: NewChain("payment_terms",
			Pattern{Name: "payment_terms", Regex: `(?i)payment\s+terms?:?\s*([^\n]+)`},
			Pattern{Name: "net_days", Regex: `(?i)net\s+(\d+)`},
		),
		reason: NewChain("reason",
			Pattern{Name: "reason", Regex: `(?i)reason:?\s*([^\n]+)`, Normalize: boundedLine(200)},
		),
	}
}

// Extract runs every chain against the text and returns the resulting
// field bag. Running it twice on identical text yields identical output.
func (e *InvoiceExtractor) Extract(text string) InvoiceFields {
	fields := InvoiceFields{Currency: DetectCurrency(text)}

	fields.InvoiceID, _ = e.invoiceID.Apply(text)
	fields.PONumber, _ = e.poNumber.Apply(text)
	fields.Vendor, _ = e.vendor.Apply(text)
	fields.InvoiceDate, _ = e.invoiceDate.Apply(text)
	fields.ServicesDescription, _ = e.description.Apply(text)
	fields.PaymentTerms, _ = e.terms.Apply(text)
	fields.Reason, _ = e.reason.Apply(text)

	if raw, ok := e.amount.Apply(text); ok {
		// The amount chain's normalizer guarantees the capture parses.
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			fields.Amount = &v
		}
	}

	return fields
}

// currencyTokens is the fixed detection priority; first match wins.
var currencyTokens = []struct {
	token string
	code  string
}{
	{"usd", "USD"},
	{"eur", "EUR"},
	{"gbp", "GBP"},
	{"$", "USD"},
}

// DetectCurrency scans text for a recognized currency token and returns
// its code, defaulting to USD.
func DetectCurrency(text string) string {
	lower := strings.ToLower(text)
	for _, c := range currencyTokens {
		if strings.Contains(lower, c.token) {
			return c.code
		}
	}
	return DefaultCurrency
}
