package docs

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DocxReader extracts paragraph and table text from DOCX archives.
// DOCX is a zip container; the main body lives in word/document.xml and
// every visible run of text sits in a <w:t> element, table cells
// included, in document order. No third-party DOCX library is involved.
type DocxReader struct{}

// Extensions implements Reader.
func (DocxReader) Extensions() []string {
	return []string{".docx"}
}

// Read implements Reader.
func (DocxReader) Read(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open docx %s: %w", path, err)
	}
	defer archive.Close()

	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document body in %s: %w", path, err)
		}
		defer rc.Close()

		text, err := extractBodyText(rc)
		if err != nil {
			return "", fmt.Errorf("failed to parse document body in %s: %w", path, err)
		}
		return text, nil
	}

	return "", fmt.Errorf("no document body in %s", path)
}

// extractBodyText walks the WordprocessingML token stream collecting
// text runs, with one line per paragraph.
func extractBodyText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	inTextRun := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inTextRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inTextRun = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inTextRun {
				sb.Write(t)
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}
