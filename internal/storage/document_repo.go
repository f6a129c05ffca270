package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// Upsert inserts or replaces a document record by source file name.
	// Replacing cascades deletion of the previous generation's chunks.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// GetBySourceFile gets a document by source file name. Returns
	// ErrNotFound if not found.
	GetBySourceFile(ctx context.Context, sourceFile string) (*DocumentRecord, error)
	// List returns all documents ordered by creation time.
	List(ctx context.Context) ([]*DocumentRecord, error)
	// Delete removes a document by ID, cascading to its chunks.
	Delete(ctx context.Context, id string) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Upsert inserts or replaces a document record by source file name.
// The doc.ID must be set (UUID) before calling this method.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	// Remove any previous generation first so the chunk cascade fires.
	_, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE source_file = ?", doc.SourceFile)
	if err != nil {
		return fmt.Errorf("failed to delete previous document generation: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents
			(id, source_file, extractor, total_chunks, total_tokens, window_size, step_size, overlap, token_precision)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.SourceFile, doc.Extractor, doc.TotalChunks, doc.TotalTokens,
		doc.WindowSize, doc.StepSize, doc.Overlap, doc.TokenPrecision,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetBySourceFile gets a document by source file name. Returns ErrNotFound
// if not found.
func (r *DocumentRepo) GetBySourceFile(ctx context.Context, sourceFile string) (*DocumentRecord, error) {
	var doc DocumentRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT id, source_file, extractor, total_chunks, total_tokens, window_size, step_size, overlap, token_precision, created_at
		 FROM documents WHERE source_file = ?`,
		sourceFile,
	).Scan(&doc.ID, &doc.SourceFile, &doc.Extractor, &doc.TotalChunks, &doc.TotalTokens,
		&doc.WindowSize, &doc.StepSize, &doc.Overlap, &doc.TokenPrecision, &doc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return &doc, nil
}

// List returns all documents ordered by creation time.
func (r *DocumentRepo) List(ctx context.Context) ([]*DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source_file, extractor, total_chunks, total_tokens, window_size, step_size, overlap, token_precision, created_at
		 FROM documents ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		if err := rows.Scan(&doc.ID, &doc.SourceFile, &doc.Extractor, &doc.TotalChunks, &doc.TotalTokens,
			&doc.WindowSize, &doc.StepSize, &doc.Overlap, &doc.TokenPrecision, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// Delete removes a document by ID, cascading to its chunks.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
