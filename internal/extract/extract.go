package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Page is a unit of extracted source text. Formats without native pages
// (markdown, docx, plain text) report a single page.
type Page struct {
	Number int
	Text   string
}

// Extractor converts a document file into plain page texts.
type Extractor interface {
	// Extract reads the file at path and returns its pages in order.
	Extract(path string) ([]Page, error)
	// Name identifies the extractor in logs and run metadata.
	Name() string
}

// ForFile returns the extractors able to handle the given file, ordered by
// extraction fidelity. Callers try each in turn and keep the first
// non-empty result.
func ForFile(path string) ([]Extractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		// Layout-aware plain text first, row-ordered extraction as fallback.
		return []Extractor{NewPDFPlainTextExtractor(), NewPDFRowExtractor()}, nil
	case ".md", ".markdown":
		return []Extractor{NewMarkdownExtractor()}, nil
	case ".docx":
		return []Extractor{NewDocxExtractor()}, nil
	case ".txt":
		return []Extractor{NewTextExtractor()}, nil
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
}

// Text extracts the document and joins all page texts with blank lines,
// trying extractors in fidelity order until one yields content.
func Text(path string) (string, string, error) {
	extractors, err := ForFile(path)
	if err != nil {
		return "", "", err
	}

	var lastErr error
	for _, ex := range extractors {
		pages, err := ex.Extract(path)
		if err != nil {
			lastErr = err
			continue
		}
		joined := joinPages(pages)
		if strings.TrimSpace(joined) != "" {
			return joined, ex.Name(), nil
		}
	}

	if lastErr != nil {
		return "", "", fmt.Errorf("all extractors failed for %s: %w", filepath.Base(path), lastErr)
	}
	return "", "", nil
}

func joinPages(pages []Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}
