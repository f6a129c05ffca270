package extract

import (
	"fmt"
	"os"
)

// TextExtractor reads plain text files verbatim as a single page.
type TextExtractor struct{}

// NewTextExtractor creates a plain text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Name identifies the extractor.
func (e *TextExtractor) Name() string { return "text" }

// Extract reads the whole file.
func (e *TextExtractor) Extract(path string) ([]Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	return []Page{{Number: 1, Text: string(content)}}, nil
}
