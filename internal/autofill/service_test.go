package autofill

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"lci-chatbot/internal/autofill/mocks"
	"lci-chatbot/internal/service"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validRequest() Request {
	return Request{
		TemplateKey:     "lean-canvas-step-1",
		StepDescription: "Define the problem",
		IdeaDescription: "A reusable water bottle with a built-in filter",
		Fields:          []string{"problem", "audience"},
		FieldHints: map[string]string{
			"problem":  "What problem does the idea solve?",
			"audience": "Who experiences this problem?",
		},
	}
}

func newTestService(t *testing.T) (*Service, *mocks.MockLLMClient, *Store) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLLMClient(ctrl)
	store := NewStore()
	return NewService(client, store), client, store
}

func TestFill_Success(t *testing.T) {
	svc, client, store := newTestService(t)

	client.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		`{"problem": "Tap water tastes bad", "audience": "Hikers"}`, nil,
	)

	answers, err := svc.Fill(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if answers["problem"] != "Tap water tastes bad" {
		t.Errorf("answers[problem] = %v", answers["problem"])
	}
	if answers["audience"] != "Hikers" {
		t.Errorf("answers[audience] = %v", answers["audience"])
	}

	// Context is cached under the template key for later chat turns.
	record, ok := store.Get("lean-canvas-step-1")
	if !ok {
		t.Fatal("context record not stored")
	}
	if record.GeneratedAnswers["problem"] != "Tap water tastes bad" {
		t.Errorf("stored answers = %v", record.GeneratedAnswers)
	}
	if record.IdeaDescription == "" || record.StepDescription == "" {
		t.Errorf("stored record missing request fields: %+v", record)
	}
}

func TestFill_StripsCodeFences(t *testing.T) {
	svc, client, _ := newTestService(t)

	client.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		"```json\n{\"problem\": \"value\"}\n```", nil,
	)

	answers, err := svc.Fill(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if answers["problem"] != "value" {
		t.Errorf("answers = %v, want fences stripped and JSON parsed", answers)
	}
}

func TestFill_EmptyFieldHints(t *testing.T) {
	svc, _, store := newTestService(t)

	req := validRequest()
	req.FieldHints = nil

	_, err := svc.Fill(context.Background(), req)
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Fill() error = %v, want ValidationError", err)
	}
	if verr.Message != "Field hints cannot be empty." {
		t.Errorf("message = %q, want %q", verr.Message, "Field hints cannot be empty.")
	}
	if store.Count() != 0 {
		t.Error("no context should be stored on validation failure")
	}
}

func TestFill_EmptyTemplateKey(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := validRequest()
	req.TemplateKey = ""

	_, err := svc.Fill(context.Background(), req)
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Fill() error = %v, want ValidationError", err)
	}
	if verr.Message != "Template key cannot be empty." {
		t.Errorf("message = %q, want %q", verr.Message, "Template key cannot be empty.")
	}
}

func TestFill_MalformedJSON(t *testing.T) {
	svc, client, store := newTestService(t)

	client.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		"Here are your answers: problem=solved", nil,
	)

	_, err := svc.Fill(context.Background(), validRequest())
	if !errors.Is(err, service.ErrMalformedResponse) {
		t.Errorf("Fill() error = %v, want ErrMalformedResponse", err)
	}
	if store.Count() != 0 {
		t.Error("no context should be stored for a malformed reply")
	}
}

func TestFill_NonObjectJSON(t *testing.T) {
	svc, client, _ := newTestService(t)

	client.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		`["a", "b"]`, nil,
	)

	_, err := svc.Fill(context.Background(), validRequest())
	if !errors.Is(err, service.ErrMalformedResponse) {
		t.Errorf("Fill() error = %v, want ErrMalformedResponse for non-object reply", err)
	}
}

func TestFill_LLMFailure(t *testing.T) {
	svc, client, _ := newTestService(t)

	client.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		"", errors.New("upstream timeout"),
	)

	_, err := svc.Fill(context.Background(), validRequest())
	if !errors.Is(err, service.ErrExternalService) {
		t.Errorf("Fill() error = %v, want ErrExternalService", err)
	}
}

func TestFill_OverwritesContextWholesale(t *testing.T) {
	svc, client, store := newTestService(t)

	client.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(`{"problem": "first"}`, nil)
	client.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(`{"audience": "second"}`, nil)

	if _, err := svc.Fill(context.Background(), validRequest()); err != nil {
		t.Fatalf("Fill() first call error = %v", err)
	}

	second := validRequest()
	second.IdeaDescription = ""
	if _, err := svc.Fill(context.Background(), second); err != nil {
		t.Fatalf("Fill() second call error = %v", err)
	}

	record, ok := store.Get("lean-canvas-step-1")
	if !ok {
		t.Fatal("context record not stored")
	}
	if _, stale := record.GeneratedAnswers["problem"]; stale {
		t.Error("previous answers survived the overwrite")
	}
	if record.IdeaDescription != "" {
		t.Errorf("IdeaDescription = %q, want overwritten empty value", record.IdeaDescription)
	}
}

func TestConstructPrompt(t *testing.T) {
	req := validRequest()
	prompt := ConstructPrompt(req)

	wantOrder := []string{
		"TEMPLATE: lean-canvas-step-1",
		"STEP DESCRIPTION: Define the problem",
		"USER'S IDEA/BUSINESS CONCEPT",
		"FIELDS (for context):",
		"FIELDS TO FILL:",
		"INSTRUCTIONS:",
		"Now generate the JSON response:",
	}

	last := -1
	for _, marker := range wantOrder {
		idx := strings.Index(prompt, marker)
		if idx < 0 {
			t.Errorf("prompt missing section %q", marker)
			continue
		}
		if idx < last {
			t.Errorf("section %q out of order", marker)
		}
		last = idx
	}

	if !strings.Contains(prompt, "- audience: Who experiences this problem? (currently empty)") {
		t.Error("prompt missing field hint line")
	}
}

func TestConstructPrompt_NoIdea(t *testing.T) {
	req := validRequest()
	req.IdeaDescription = "   "

	prompt := ConstructPrompt(req)
	if strings.Contains(prompt, "USER'S IDEA/BUSINESS CONCEPT") {
		t.Error("prompt includes idea section for blank idea")
	}
	if !strings.Contains(prompt, "1. Generate appropriate values for all fields listed above.") {
		t.Error("prompt missing generic instruction variant")
	}
}

func TestConstructPrompt_Deterministic(t *testing.T) {
	req := validRequest()
	if ConstructPrompt(req) != ConstructPrompt(req) {
		t.Error("identical requests produced different prompts")
	}
}
