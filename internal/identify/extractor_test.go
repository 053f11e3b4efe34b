package identify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		filename string
		want     DocType
	}{
		{"MSA_BAYER_R4_2021.docx", DocTypeMSA},
		{"Master Service Agreement - final.docx", DocTypeMSA},
		{"SOW_BCH_2022.docx", DocTypeSOW},
		{"Statement of Work v2.docx", DocTypeSOW},
		{"Order Form Q3.pdf", DocTypeOrderForm},
		{"Purchase Order 4471.pdf", DocTypePurchaseOrder},
		{"PO-4471.pdf", DocTypePurchaseOrder},
		{"Delivery receipt.pdf", DocTypeDeliveryNote},
		{"DN-0093.pdf", DocTypeDeliveryNote},
		{"random notes.txt", DocTypeOther},
		// MSA outranks SOW when both tokens appear.
		{"MSA and SOW bundle.docx", DocTypeMSA},
		// ORDER FORM outranks the bare PO token.
		{"ORDER FORM_PO-4471_2024.pdf", DocTypeOrderForm},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectType(tt.filename))
		})
	}
}

func TestExtractor_Identify(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	id := e.Identify("SOW-BCH-Bayer 2021_12_10.docx", "/docs/SOW-BCH-Bayer 2021_12_10.docx",
		"Statement of Work between Bayer AG and R4 Solutions")

	assert.Equal(t, DocTypeSOW, id.Type)
	assert.Equal(t, []string{"BAYER", "R4"}, id.Parties, "parties are sorted canonical tokens")
	assert.Equal(t, "BCH", id.ProgramCode, "SOW is stop-listed, BCH is the first accepted token")
	assert.Equal(t, []string{"2021-12-10"}, id.DatesFound)
}

func TestExtractor_PartiesFallBackToFilename(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	id := e.Identify("MSA_Bayer_2021.pdf", "/docs/MSA_Bayer_2021.pdf", "")
	assert.Equal(t, []string{"BAYER"}, id.Parties)
}

func TestExtractor_UnknownPartiesProduceNoSignal(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	id := e.Identify("MSA_Initech_2021.pdf", "", "agreement between Initech and Hooli")
	assert.Empty(t, id.Parties)
}

func TestExtractor_ProgramCodeStopList(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	tests := []struct {
		filename string
		want     string
	}{
		{"SOW-BCH-2022.docx", "BCH"},
		{"MSA FOR THE PDF archive.docx", ""},
		{"notes.txt", ""},
		// Stop-listed token is skipped, not terminal: the scan
		// continues to the next token.
		{"SOW THE CAP plan.docx", "CAP"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			id := e.Identify(tt.filename, "", "")
			assert.Equal(t, tt.want, id.ProgramCode)
		})
	}
}

func TestExtractor_CustomVocabulary(t *testing.T) {
	e := NewExtractor(Config{
		PartyAliases:        map[string]string{"acme": "ACME", "globex": "GLOBEX"},
		ProgramCodeStopList: []string{"INV"},
	}, nil)

	id := e.Identify("INV XYZ acme.pdf", "", "invoice from Acme Supplies to Globex")
	assert.Equal(t, []string{"ACME", "GLOBEX"}, id.Parties)
	assert.Equal(t, "XYZ", id.ProgramCode)
}

func TestExtractDates_DiscoveryOrderAndDedup(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	id := e.Identify("Order Form 2022-03-01 and 2022-03-01 renewal 2024.pdf", "", "")

	// Full dates come first, then bare years; the year token of a dashed
	// date is still a distinct find, and duplicates are dropped.
	assert.Equal(t, []string{"2022-03-01", "2022", "2024"}, id.DatesFound)
}
