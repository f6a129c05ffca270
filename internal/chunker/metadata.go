package chunker

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	previewLength    = 150
	numberedListSpan = 100
	tokensPerPage    = 1000
)

// Size category bounds in tokens.
const (
	sizeVerySmall = 200
	sizeSmall     = 400
	sizeMedium    = 600
	sizeLarge     = 800
)

var (
	definitionMarkers = []string{"define", "definition", "meaning", "refers to"}
	exampleMarkers    = []string{"example", "for instance", "such as", "case study"}
	chapterMarkers    = []string{"chapter", "section", "part"}
)

func (c *Chunker) newChunk(id int, text string) Chunk {
	tokens := c.counter.Count(text)
	lower := strings.ToLower(text)

	return Chunk{
		ID:              id,
		Text:            text,
		TokenCount:      tokens,
		CharCount:       utf8.RuneCountInString(text),
		Preview:         makePreview(text),
		SizeCategory:    sizeCategory(tokens),
		EstimatedPages:  estimatePages(tokens),
		HasTable:        strings.Contains(lower, "table") || strings.Contains(lower, "figure"),
		HasDefinition:   containsAny(lower, definitionMarkers),
		HasExample:      containsAny(lower, exampleMarkers),
		HasChapter:      containsAny(lower, chapterMarkers),
		HasNumberedList: hasNumberedList(text),
	}
}

// makePreview takes the first previewLength characters with newlines
// flattened to spaces.
func makePreview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return strings.ReplaceAll(string(runes), "\n", " ")
}

func sizeCategory(tokenCount int) string {
	switch {
	case tokenCount < sizeVerySmall:
		return "Very Small"
	case tokenCount < sizeSmall:
		return "Small"
	case tokenCount < sizeMedium:
		return "Medium"
	case tokenCount < sizeLarge:
		return "Large"
	default:
		return "Very Large"
	}
}

// estimatePages estimates page coverage at roughly a thousand tokens per
// page, rounded to one decimal.
func estimatePages(tokenCount int) float64 {
	return math.Round(float64(tokenCount)/tokensPerPage*10) / 10
}

func containsAny(lower string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// hasNumberedList reports whether the opening span of the chunk contains
// both a digit and a period, the signature of numbered list items.
func hasNumberedList(text string) bool {
	runes := []rune(text)
	if len(runes) > numberedListSpan {
		runes = runes[:numberedListSpan]
	}

	hasDigit := false
	hasPeriod := false
	for _, r := range runes {
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if r == '.' {
			hasPeriod = true
		}
		if hasDigit && hasPeriod {
			return true
		}
	}
	return false
}
