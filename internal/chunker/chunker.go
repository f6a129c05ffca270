package chunker

import (
	"context"
	"strings"

	"lci-chatbot/internal/contextutil"
)

// Params controls the sliding window geometry and the adaptive chunk-count
// targets. MinChunks/MaxChunks of zero disable the corresponding corrective
// pass.
type Params struct {
	WindowSize int
	StepSize   int
	MinContent int
	MinChunks  int
	MaxChunks  int
}

// Chunk is one retained window of document text with derived metadata. All
// fields are computed at creation and never updated.
type Chunk struct {
	ID              int     `json:"chunk_id"`
	Text            string  `json:"text"`
	TokenCount      int     `json:"token_count"`
	CharCount       int     `json:"char_count"`
	Preview         string  `json:"preview"`
	SizeCategory    string  `json:"chunk_size_category"`
	EstimatedPages  float64 `json:"estimated_pages"`
	HasTable        bool    `json:"has_table"`
	HasDefinition   bool    `json:"has_definition"`
	HasExample      bool    `json:"has_example"`
	HasChapter      bool    `json:"has_chapter"`
	HasNumberedList bool    `json:"has_numbered_list"`
}

// Chunker slices document text into overlapping fixed-size windows.
type Chunker struct {
	params  Params
	counter TokenCounter
}

// NewChunker creates a chunker. A nil counter gets the heuristic fallback.
func NewChunker(params Params, counter TokenCounter) *Chunker {
	if counter == nil {
		counter = NewHeuristicCounter()
	}
	return &Chunker{params: params, counter: counter}
}

// Counter exposes the token counter so callers can report its precision.
func (c *Chunker) Counter() TokenCounter { return c.counter }

// Build slides a window of WindowSize characters across the text, advancing
// by StepSize, and retains every window whose trimmed content exceeds
// MinContent characters. Retained windows get sequential ids starting at 1.
//
// When chunk-count targets are set, Build makes at most one corrective pass
// per direction: too few chunks halves the step, too many doubles it. A
// target still unmet after the pass is logged, not an error.
func (c *Chunker) Build(ctx context.Context, text string) []Chunk {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	step := c.params.StepSize
	chunks := c.slide(runes, step)

	if c.params.MinChunks > 0 && len(chunks) < c.params.MinChunks && step > 1 {
		step = max(step/2, 1)
		logger.Warn("chunk count below target, shrinking step",
			"chunks", len(chunks),
			"min_target", c.params.MinChunks,
			"new_step", step)
		chunks = c.slide(runes, step)
	}

	if c.params.MaxChunks > 0 && len(chunks) > c.params.MaxChunks && step < c.params.WindowSize {
		step = min(step*2, c.params.WindowSize)
		logger.Warn("chunk count above target, enlarging step",
			"chunks", len(chunks),
			"max_target", c.params.MaxChunks,
			"new_step", step)
		chunks = c.slide(runes, step)
	}

	if (c.params.MinChunks > 0 && len(chunks) < c.params.MinChunks) ||
		(c.params.MaxChunks > 0 && len(chunks) > c.params.MaxChunks) {
		logger.Warn("chunk count target not met",
			"chunks", len(chunks),
			"min_target", c.params.MinChunks,
			"max_target", c.params.MaxChunks)
	}

	return chunks
}

func (c *Chunker) slide(runes []rune, step int) []Chunk {
	var chunks []Chunk
	id := 1

	for start := 0; start < len(runes); start += step {
		end := start + c.params.WindowSize
		if end > len(runes) {
			end = len(runes)
		}
		window := string(runes[start:end])

		if len(strings.TrimSpace(window)) <= c.params.MinContent {
			continue
		}

		chunks = append(chunks, c.newChunk(id, window))
		id++
	}

	return chunks
}

// Stats summarizes a chunk run for persistence alongside the chunks.
type Stats struct {
	TotalChunks   int     `json:"total_chunks"`
	TotalTokens   int     `json:"total_tokens"`
	AvgTokens     float64 `json:"avg_tokens_per_chunk"`
	MinTokens     int     `json:"min_tokens"`
	MaxTokens     int     `json:"max_tokens"`
	WindowSize    int     `json:"chunk_size_target"`
	Overlap       int     `json:"overlap"`
	StepSize      int     `json:"step_size"`
	CounterLevel  string  `json:"token_precision"`
	SourceFile    string  `json:"source_file"`
	ExtractorName string  `json:"extractor,omitempty"`
}

// ComputeStats derives run statistics from a chunk sequence.
func (c *Chunker) ComputeStats(chunks []Chunk, sourceFile, extractorName string) Stats {
	stats := Stats{
		TotalChunks:   len(chunks),
		WindowSize:    c.params.WindowSize,
		Overlap:       c.params.WindowSize - c.params.StepSize,
		StepSize:      c.params.StepSize,
		CounterLevel:  c.counter.Precision(),
		SourceFile:    sourceFile,
		ExtractorName: extractorName,
	}

	if len(chunks) == 0 {
		return stats
	}

	stats.MinTokens = chunks[0].TokenCount
	for _, chunk := range chunks {
		stats.TotalTokens += chunk.TokenCount
		if chunk.TokenCount < stats.MinTokens {
			stats.MinTokens = chunk.TokenCount
		}
		if chunk.TokenCount > stats.MaxTokens {
			stats.MaxTokens = chunk.TokenCount
		}
	}
	stats.AvgTokens = float64(stats.TotalTokens) / float64(len(chunks))

	return stats
}
