package identify

// DocType classifies a contract-side document by its filename.
type DocType string

const (
	DocTypeMSA           DocType = "MSA"
	DocTypeSOW           DocType = "SOW"
	DocTypeOrderForm     DocType = "ORDER_FORM"
	DocTypePurchaseOrder DocType = "PURCHASE_ORDER"
	DocTypeDeliveryNote  DocType = "DELIVERY_NOTE"
	DocTypeOther         DocType = "OTHER"
)

// DocumentIdentifier is the per-document identifier record. Type is a
// pure function of the filename; Parties, ProgramCode, and DatesFound
// are best-effort and may legitimately be empty.
type DocumentIdentifier struct {
	Filename    string   `json:"filename"`
	Path        string   `json:"filepath"`
	Type        DocType  `json:"type"`
	Parties     []string `json:"parties"`
	ProgramCode string   `json:"program_code,omitempty"`
	DatesFound  []string `json:"dates_found"`
}

// Config holds the identifier vocabulary.
type Config struct {
	// PartyAliases maps a lower-case alias appearing in document text
	// (or the filename, when no text is available) to its canonical
	// party token.
	PartyAliases map[string]string `koanf:"party_aliases"`

	// ProgramCodeStopList lists uppercase tokens that look like program
	// codes but are common words or document-type markers.
	ProgramCodeStopList []string `koanf:"program_code_stop_list"`
}

// DefaultConfig returns the built-in vocabulary.
func DefaultConfig() Config {
	return Config{
		PartyAliases: map[string]string{
			"bayer": "BAYER",
			"r4":    "R4",
		},
		ProgramCodeStopList: []string{"FOR", "PDF", "SOW", "MSA", "THE"},
	}
}
