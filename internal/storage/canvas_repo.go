package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// CanvasStore defines the interface for canvas storage operations.
type CanvasStore interface {
	// Upsert inserts or replaces a canvas by its canvas id.
	Upsert(ctx context.Context, canvas *CanvasRecord) error
	// GetByID gets a canvas by its canvas id. Returns ErrNotFound if not
	// found.
	GetByID(ctx context.Context, canvasID string) (*CanvasRecord, error)
}

// CanvasRepo provides methods for canvas operations.
// It implements the CanvasStore interface.
type CanvasRepo struct {
	db *sql.DB
}

// NewCanvasRepo creates a new CanvasRepo.
func NewCanvasRepo(db *sql.DB) *CanvasRepo {
	return &CanvasRepo{db: db}
}

// Upsert inserts or replaces a canvas by its canvas id.
func (r *CanvasRepo) Upsert(ctx context.Context, canvas *CanvasRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO canvases (canvas_id, name, content) VALUES (?, ?, ?)
		 ON CONFLICT(canvas_id) DO UPDATE SET name = excluded.name, content = excluded.content`,
		canvas.CanvasID, canvas.Name, canvas.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert canvas: %w", err)
	}
	return nil
}

// GetByID gets a canvas by its canvas id. Returns ErrNotFound if not found.
func (r *CanvasRepo) GetByID(ctx context.Context, canvasID string) (*CanvasRecord, error) {
	var canvas CanvasRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT canvas_id, name, content, created_at FROM canvases WHERE canvas_id = ?",
		canvasID,
	).Scan(&canvas.CanvasID, &canvas.Name, &canvas.Content, &canvas.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query canvas: %w", err)
	}

	return &canvas, nil
}
