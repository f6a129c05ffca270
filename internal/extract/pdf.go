package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFPlainTextExtractor extracts page text using the library's layout-aware
// plain-text pass. This is the higher-fidelity path for prose documents.
type PDFPlainTextExtractor struct{}

// NewPDFPlainTextExtractor creates the primary PDF extractor.
func NewPDFPlainTextExtractor() *PDFPlainTextExtractor {
	return &PDFPlainTextExtractor{}
}

// Name identifies the extractor.
func (e *PDFPlainTextExtractor) Name() string { return "pdf-plaintext" }

// Extract reads every page's plain text. Pages that fail to decode are
// skipped rather than aborting the whole document.
func (e *PDFPlainTextExtractor) Extract(path string) ([]Page, error) {
	return withPDFReader(path, func(reader *pdf.Reader) ([]Page, error) {
		var pages []Page
		for i := 1; i <= reader.NumPage(); i++ {
			page := reader.Page(i)
			if page.V.IsNull() {
				continue
			}
			text, err := page.GetPlainText(nil)
			if err != nil {
				continue
			}
			pages = append(pages, Page{Number: i, Text: text})
		}
		return pages, nil
	})
}

// PDFRowExtractor extracts text row by row in reading order. Lower fidelity
// for multi-column layouts, but recovers text from documents where the
// plain-text pass produces nothing.
type PDFRowExtractor struct{}

// NewPDFRowExtractor creates the fallback PDF extractor.
func NewPDFRowExtractor() *PDFRowExtractor {
	return &PDFRowExtractor{}
}

// Name identifies the extractor.
func (e *PDFRowExtractor) Name() string { return "pdf-rows" }

// Extract reads every page's text rows, joining row fragments with spaces
// and rows with newlines.
func (e *PDFRowExtractor) Extract(path string) ([]Page, error) {
	return withPDFReader(path, func(reader *pdf.Reader) ([]Page, error) {
		var pages []Page
		for i := 1; i <= reader.NumPage(); i++ {
			page := reader.Page(i)
			if page.V.IsNull() {
				continue
			}
			rows, err := page.GetTextByRow()
			if err != nil {
				continue
			}

			var builder strings.Builder
			for _, row := range rows {
				for j, word := range row.Content {
					if j > 0 {
						builder.WriteString(" ")
					}
					builder.WriteString(word.S)
				}
				builder.WriteString("\n")
			}
			pages = append(pages, Page{Number: i, Text: builder.String()})
		}
		return pages, nil
	})
}

func withPDFReader(path string, fn func(*pdf.Reader) ([]Page, error)) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat PDF: %w", err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	return fn(reader)
}
