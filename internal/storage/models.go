package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// DocumentRecord represents one chunked source document generation.
// Re-ingesting a source file replaces the record and its chunks wholesale.
type DocumentRecord struct {
	ID             string // UUID
	SourceFile     string // Base name of the ingested file
	Extractor      string // Extractor that produced the text
	TotalChunks    int
	TotalTokens    int
	WindowSize     int
	StepSize       int
	Overlap        int
	TokenPrecision string // "exact" or "approximate"
	CreatedAt      time.Time
}

// ChunkRecord represents a stored chunk with its derived metadata.
// ID doubles as the vector index point ID.
type ChunkRecord struct {
	ID              string // UUID (same as the vector point ID)
	DocumentID      string // Foreign key to documents.id
	ChunkID         int    // Sequential id within the document, starts at 1
	Text            string
	TokenCount      int
	CharCount       int
	Preview         string
	SizeCategory    string
	EstimatedPages  float64
	HasTable        bool
	HasDefinition   bool
	HasExample      bool
	HasChapter      bool
	HasNumberedList bool
}

// TemplateRecord is a stored template document, addressable by its external
// template id or its template key.
type TemplateRecord struct {
	TemplateID  string
	TemplateKey string
	Content     string
	CreatedAt   time.Time
}

// CanvasRecord is a stored canvas document, addressable by canvas id.
type CanvasRecord struct {
	CanvasID  string
	Name      string
	Content   string
	CreatedAt time.Time
}
