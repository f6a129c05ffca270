package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// TemplateStore defines the interface for template storage operations.
type TemplateStore interface {
	// Upsert inserts or replaces a template by its template id.
	Upsert(ctx context.Context, template *TemplateRecord) error
	// GetByID gets a template by its external template id. Returns
	// ErrNotFound if not found.
	GetByID(ctx context.Context, templateID string) (*TemplateRecord, error)
	// GetByKey gets a template by its template key. Returns ErrNotFound if
	// not found.
	GetByKey(ctx context.Context, templateKey string) (*TemplateRecord, error)
}

// TemplateRepo provides methods for template operations.
// It implements the TemplateStore interface.
type TemplateRepo struct {
	db *sql.DB
}

// NewTemplateRepo creates a new TemplateRepo.
func NewTemplateRepo(db *sql.DB) *TemplateRepo {
	return &TemplateRepo{db: db}
}

// Upsert inserts or replaces a template by its template id.
func (r *TemplateRepo) Upsert(ctx context.Context, template *TemplateRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO templates (template_id, template_key, content) VALUES (?, ?, ?)
		 ON CONFLICT(template_id) DO UPDATE SET template_key = excluded.template_key, content = excluded.content`,
		template.TemplateID, nullableString(template.TemplateKey), template.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert template: %w", err)
	}
	return nil
}

// GetByID gets a template by its external template id. Returns ErrNotFound
// if not found.
func (r *TemplateRepo) GetByID(ctx context.Context, templateID string) (*TemplateRecord, error) {
	return r.get(ctx, "template_id = ?", templateID)
}

// GetByKey gets a template by its template key. Returns ErrNotFound if not
// found.
func (r *TemplateRepo) GetByKey(ctx context.Context, templateKey string) (*TemplateRecord, error) {
	return r.get(ctx, "template_key = ?", templateKey)
}

func (r *TemplateRepo) get(ctx context.Context, where string, arg any) (*TemplateRecord, error) {
	var template TemplateRecord
	var key sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT template_id, template_key, content, created_at FROM templates WHERE "+where,
		arg,
	).Scan(&template.TemplateID, &key, &template.Content, &template.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query template: %w", err)
	}

	template.TemplateKey = key.String
	return &template, nil
}

// nullableString maps empty strings to NULL so the unique template_key
// constraint tolerates templates without keys.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
