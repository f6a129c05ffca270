package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"lci-chatbot/internal/autofill"
	"lci-chatbot/internal/contextutil"
	"lci-chatbot/internal/retriever"
	"lci-chatbot/internal/storage"
)

// Request carries one chat turn plus every identifier the context providers
// can hang fragments on.
type Request struct {
	Query           string            `json:"query"`
	UserID          string            `json:"userId"`
	CanvasID        string            `json:"canvasId"`
	TemplateID      string            `json:"templateId"`
	TemplateKey     string            `json:"templateKey"`
	StepDescription string            `json:"stepDescription"`
	IdeaDescription string            `json:"ideaDescription"`
	FieldHints      map[string]string `json:"fieldHints"`
	CurrentAnswers  map[string]string `json:"currentAnswers"`
	TopK            int               `json:"top_k"`
}

// Provider contributes zero or more context fragments for a chat turn.
// Providers never fail a request: a provider that cannot produce context
// returns nothing.
type Provider interface {
	Name() string
	Fragments(ctx context.Context, req Request) []string
}

// InlineProvider surfaces the template state the caller sent with the
// request itself.
type InlineProvider struct{}

func (InlineProvider) Name() string { return "inline" }

func (InlineProvider) Fragments(_ context.Context, req Request) []string {
	var fragments []string

	if req.StepDescription != "" {
		fragments = append(fragments, fmt.Sprintf("CURRENT STEP DESCRIPTION:\n%s", req.StepDescription))
	}
	if req.IdeaDescription != "" {
		fragments = append(fragments, fmt.Sprintf("USER'S IDEA/BUSINESS CONCEPT:\n%s", req.IdeaDescription))
	}
	if len(req.FieldHints) > 0 {
		lines := make([]string, 0, len(req.FieldHints))
		for _, field := range sortedKeys(req.FieldHints) {
			lines = append(lines, fmt.Sprintf("  - %s: %s", field, req.FieldHints[field]))
		}
		fragments = append(fragments, "TEMPLATE FIELDS:\n"+strings.Join(lines, "\n"))
	}
	if len(req.CurrentAnswers) > 0 {
		lines := make([]string, 0, len(req.CurrentAnswers))
		for _, field := range sortedKeys(req.CurrentAnswers) {
			if req.CurrentAnswers[field] == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf("  - %s: %s", field, req.CurrentAnswers[field]))
		}
		if len(lines) > 0 {
			fragments = append(fragments, "USER'S CURRENT ANSWERS:\n"+strings.Join(lines, "\n"))
		}
	}

	return fragments
}

// TemplateProvider looks up the stored template body for the request's
// template id. Lookup failures degrade to no fragment.
type TemplateProvider struct {
	Store storage.TemplateStore
}

func (TemplateProvider) Name() string { return "template" }

func (p TemplateProvider) Fragments(ctx context.Context, req Request) []string {
	if req.TemplateID == "" || p.Store == nil {
		return nil
	}

	template, err := p.Store.GetByID(ctx, req.TemplateID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "template context lookup failed",
				"template_id", req.TemplateID, "error", err)
		}
		return nil
	}
	return []string{fmt.Sprintf("Template Context (%s):\n%s", req.TemplateID, template.Content)}
}

// CanvasProvider looks up the stored canvas overview for the request's
// canvas id. Lookup failures degrade to no fragment.
type CanvasProvider struct {
	Store storage.CanvasStore
}

func (CanvasProvider) Name() string { return "canvas" }

func (p CanvasProvider) Fragments(ctx context.Context, req Request) []string {
	if req.CanvasID == "" || p.Store == nil {
		return nil
	}

	canvas, err := p.Store.GetByID(ctx, req.CanvasID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "canvas context lookup failed",
				"canvas_id", req.CanvasID, "error", err)
		}
		return nil
	}
	return []string{fmt.Sprintf("Canvas Overview (%s):\n%s", req.CanvasID, canvas.Content)}
}

// Searcher is the retrieval surface the search provider consumes.
// *retriever.Retriever satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, topK int, scoreThreshold float32, filters map[string]any) []retriever.Result
	HybridSearch(ctx context.Context, query string, topK int, scoreThreshold float32, filters map[string]any) []retriever.Result
}

// SearchProvider contributes the text of semantically similar chunks.
// Retrieval is best effort: an empty result set yields no fragments, never
// an error.
type SearchProvider struct {
	Searcher       Searcher
	DefaultTopK    int
	ScoreThreshold float32
	KeywordBoost   float32
}

func (SearchProvider) Name() string { return "search" }

func (p SearchProvider) Fragments(ctx context.Context, req Request) []string {
	if p.Searcher == nil {
		return nil
	}

	topK := req.TopK
	if topK <= 0 {
		topK = p.DefaultTopK
	}

	var results []retriever.Result
	if p.KeywordBoost > 0 {
		results = p.Searcher.HybridSearch(ctx, req.Query, topK, p.ScoreThreshold, nil)
	} else {
		results = p.Searcher.Search(ctx, req.Query, topK, p.ScoreThreshold, nil)
	}

	fragments := make([]string, 0, len(results))
	for _, result := range results {
		fragments = append(fragments, result.Text)
	}
	return fragments
}

// IdentifierProvider restates which canvas and template the user is working
// on so the model can refer to them by name.
type IdentifierProvider struct{}

func (IdentifierProvider) Name() string { return "identifiers" }

func (IdentifierProvider) Fragments(_ context.Context, req Request) []string {
	var fragments []string
	if req.CanvasID != "" {
		fragments = append(fragments, fmt.Sprintf("User is working on canvas: %s", req.CanvasID))
	}
	if req.TemplateID != "" {
		fragments = append(fragments, fmt.Sprintf("User is working on template: %s", req.TemplateID))
	}
	if req.TemplateKey != "" {
		fragments = append(fragments, fmt.Sprintf("User is working on template: %s", req.TemplateKey))
	}
	return fragments
}

// AutofillProvider replays the most recent auto-fill interaction so chat
// turns stay consistent with generated answers. Lookup precedence is
// template key, then template id, then canvas id; the first hit wins.
type AutofillProvider struct {
	Store *autofill.Store
}

func (AutofillProvider) Name() string { return "autofill" }

func (p AutofillProvider) Fragments(ctx context.Context, req Request) []string {
	if p.Store == nil {
		return nil
	}

	keys := []struct{ label, value string }{
		{"templateKey", req.TemplateKey},
		{"templateId", req.TemplateID},
		{"canvasId", req.CanvasID},
	}
	for _, key := range keys {
		if key.value == "" {
			continue
		}
		record, ok := p.Store.Get(key.value)
		if !ok {
			continue
		}
		pretty, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "autofill context not serializable",
				"key", key.value, "error", err)
			return nil
		}
		return []string{fmt.Sprintf("PREVIOUS AUTOFILL CONTEXT (%s=%s):\n%s", key.label, key.value, pretty)}
	}
	return nil
}

// sortedKeys keeps map-driven fragments deterministic across requests.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
