package storage

import (
	"context"
	"errors"
	"testing"
)

func TestTemplateRepo_UpsertAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateRepo(db)
	ctx := context.Background()

	template := &TemplateRecord{
		TemplateID:  "tpl-123",
		TemplateKey: "lesson-plan",
		Content:     "Lesson plan template body",
	}
	if err := repo.Upsert(ctx, template); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	byID, err := repo.GetByID(ctx, "tpl-123")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Content != template.Content {
		t.Errorf("GetByID() content = %q, want %q", byID.Content, template.Content)
	}

	byKey, err := repo.GetByKey(ctx, "lesson-plan")
	if err != nil {
		t.Fatalf("GetByKey() error = %v", err)
	}
	if byKey.TemplateID != "tpl-123" {
		t.Errorf("GetByKey() id = %q, want tpl-123", byKey.TemplateID)
	}
}

func TestTemplateRepo_Upsert_Overwrites(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateRepo(db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &TemplateRecord{TemplateID: "tpl-1", TemplateKey: "k1", Content: "old"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := repo.Upsert(ctx, &TemplateRecord{TemplateID: "tpl-1", TemplateKey: "k1", Content: "new"}); err != nil {
		t.Fatalf("Upsert() overwrite error = %v", err)
	}

	got, err := repo.GetByID(ctx, "tpl-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Content != "new" {
		t.Errorf("content = %q, want new", got.Content)
	}
}

func TestTemplateRepo_EmptyKeysDoNotCollide(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateRepo(db)
	ctx := context.Background()

	// Multiple templates without keys must coexist despite the unique
	// constraint on template_key.
	for _, id := range []string{"tpl-a", "tpl-b"} {
		if err := repo.Upsert(ctx, &TemplateRecord{TemplateID: id, Content: "body"}); err != nil {
			t.Fatalf("Upsert(%s) error = %v", id, err)
		}
	}

	for _, id := range []string{"tpl-a", "tpl-b"} {
		if _, err := repo.GetByID(ctx, id); err != nil {
			t.Errorf("GetByID(%s) error = %v", id, err)
		}
	}
}

func TestTemplateRepo_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateRepo(db)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByKey(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByKey() error = %v, want ErrNotFound", err)
	}
}

func TestCanvasRepo_UpsertAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewCanvasRepo(db)
	ctx := context.Background()

	canvas := &CanvasRecord{
		CanvasID: "canvas-9",
		Name:     "Unit planning",
		Content:  "Canvas overview body",
	}
	if err := repo.Upsert(ctx, canvas); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "canvas-9")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != canvas.Name || got.Content != canvas.Content {
		t.Errorf("GetByID() = %+v, want %+v", got, canvas)
	}

	// Overwrite
	canvas.Content = "updated body"
	if err := repo.Upsert(ctx, canvas); err != nil {
		t.Fatalf("Upsert() overwrite error = %v", err)
	}
	got, err = repo.GetByID(ctx, "canvas-9")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Content != "updated body" {
		t.Errorf("content = %q, want updated body", got.Content)
	}
}

func TestCanvasRepo_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewCanvasRepo(db)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}
