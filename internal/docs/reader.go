// Package docs provides the document-reader collaborators that hand
// body text to the extraction engine. The core pipeline only consumes
// (filename, optional text); readers isolate format concerns and their
// failures so one unreadable file never aborts a batch.
package docs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported marks files no registered reader can handle. Callers
// treat it as "no text available", not as a document failure.
var ErrUnsupported = errors.New("unsupported document format")

// Reader extracts plain text from one document file.
type Reader interface {
	// Extensions lists the lower-case extensions (with dot) this
	// reader handles.
	Extensions() []string

	// Read returns the document's text content.
	Read(path string) (string, error)
}

// Registry routes files to readers by extension.
type Registry struct {
	byExt map[string]Reader
}

// NewRegistry builds a registry from the given readers. Later readers
// win extension conflicts.
func NewRegistry(readers ...Reader) *Registry {
	byExt := make(map[string]Reader)
	for _, r := range readers {
		for _, ext := range r.Extensions() {
			byExt[strings.ToLower(ext)] = r
		}
	}
	return &Registry{byExt: byExt}
}

// DefaultRegistry returns a registry with the built-in readers.
func DefaultRegistry() *Registry {
	return NewRegistry(TextReader{}, DocxReader{})
}

// Read extracts text from path, or ErrUnsupported when no reader claims
// its extension.
func (r *Registry) Read(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	reader, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	return reader.Read(path)
}

// Supported reports whether some reader claims the file's extension.
func (r *Registry) Supported(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// TextReader reads plain-text formats as-is.
type TextReader struct{}

// Extensions implements Reader.
func (TextReader) Extensions() []string {
	return []string{".txt", ".md"}
}

// Read implements Reader.
func (TextReader) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
