package ocr

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// documentMarker prefixes text acquired from the embedded text layer.
const documentMarker = "\n--- Página PDF ---\n"

// EmbeddedText extracts the text layer of every page and joins the pages
// behind a document-start marker. Pages without a text layer contribute
// nothing; that is never an error. The page count is returned so callers can
// apply the scanned-document heuristic.
//
// The pdf reader can panic on malformed cross-reference tables, so the whole
// read is wrapped in a recover and surfaces as a normal error.
func EmbeddedText(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf text layer: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	pages = reader.NumPage()
	var parts []string
	for i := 1; i <= pages; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if pageText != "" {
			parts = append(parts, pageText)
		}
	}
	return documentMarker + strings.Join(parts, "\n"), pages, nil
}
