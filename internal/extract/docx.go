package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var docxTagPattern = regexp.MustCompile(`<[^>]+>`)

// DocxExtractor extracts text from Word documents. The document body is
// returned as a single page since docx files carry no page markers.
type DocxExtractor struct{}

// NewDocxExtractor creates a docx extractor.
func NewDocxExtractor() *DocxExtractor {
	return &DocxExtractor{}
}

// Name identifies the extractor.
func (e *DocxExtractor) Name() string { return "docx" }

// Extract reads the document content, converting paragraph and break tags
// to newlines and stripping the remaining markup.
func (e *DocxExtractor) Extract(path string) ([]Page, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read docx: %w", err)
	}
	defer func() {
		_ = r.Close()
	}()

	content := r.Editable().GetContent()

	// Paragraph and line break boundaries become newlines before the
	// remaining tags are stripped.
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:br/>", "\n")
	content = docxTagPattern.ReplaceAllString(content, "")

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	return []Page{{Number: 1, Text: strings.Join(lines, "\n")}}, nil
}
