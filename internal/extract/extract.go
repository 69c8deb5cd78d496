// Package extract pulls raw text out of uploaded documents.
// The document format is selected by file extension: PDF files are parsed
// with github.com/ledongthuc/pdf, plain-text formats pass through unchanged.
// Extraction is a pure function over the input bytes — nothing is stored.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrExtraction indicates a document could not be opened or parsed at all.
// Per-page failures inside an otherwise readable PDF are tolerated silently
// and never produce this error.
var ErrExtraction = errors.New("extract: cannot parse document")

// Text extracts the text content of the named document. For PDFs the text of
// all pages is concatenated with a newline between pages; pages yielding no
// text contribute nothing. Unsupported extensions fail with an
// [ErrExtraction]-wrapped error.
func Text(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return pdfText(name, data)
	case ".txt", ".md", "":
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", ErrExtraction, filepath.Ext(name))
	}
}

// pdfText extracts the plain text of every page in a PDF byte stream.
// The pdf library panics on some malformed inputs, so the whole parse is
// guarded with a recover that converts panics into ErrExtraction.
func pdfText(name string, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %s: %v", ErrExtraction, name, r)
		}
	}()

	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s: empty file", ErrExtraction, name)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrExtraction, name, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		pageText := safePageText(reader.Page(i))
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// safePageText extracts a single page's text, swallowing both errors and
// panics. A page that cannot be read contributes nothing — extraction
// continues with the remaining pages.
func safePageText(page pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
