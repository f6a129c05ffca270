package autofill

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm.go -package=mocks lci-chatbot/internal/autofill LLMClient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lci-chatbot/internal/contextutil"
	"lci-chatbot/internal/llm"
	"lci-chatbot/internal/service"
)

// Request carries one auto-fill invocation. FieldHints and TemplateKey are
// required; everything else is optional context.
type Request struct {
	TemplateKey     string            `json:"templateKey"`
	StepDescription string            `json:"stepDescription"`
	IdeaDescription string            `json:"ideaDescription"`
	Fields          []string          `json:"fields"`
	FieldHints      map[string]string `json:"fieldHints"`
	RepeatedFields  []map[string]any  `json:"repeatedFields"`
}

// LLMClient is the outbound chat completion dependency.
type LLMClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Service generates template field values with the LLM and caches each
// interaction for later chat continuity.
type Service struct {
	llm   LLMClient
	store *Store
}

// NewService creates an auto-fill service writing context records to store.
func NewService(client LLMClient, store *Store) *Service {
	return &Service{llm: client, store: store}
}

// Fill validates the request, asks the LLM for field values, and parses the
// reply as strict JSON. A reply wrapped in markdown code fences is unwrapped
// first; anything that still fails to parse is a malformed-response error,
// never retried or coerced.
func (s *Service) Fill(ctx context.Context, req Request) (map[string]any, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(req.FieldHints) == 0 {
		return nil, &service.ValidationError{Field: "fieldHints", Message: "Field hints cannot be empty."}
	}
	if req.TemplateKey == "" {
		return nil, &service.ValidationError{Field: "templateKey", Message: "Template key cannot be empty."}
	}

	prompt := ConstructPrompt(req)
	logger.InfoContext(ctx, "autofill prompt constructed",
		"template_key", req.TemplateKey,
		"fields", len(req.FieldHints),
		"prompt_length", len(prompt),
	)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemContent},
		{Role: llm.RoleUser, Content: prompt},
	}

	reply, err := s.llm.ChatWithMessages(ctx, messages, llm.ChatParams{Temperature: 0.7})
	if err != nil {
		return nil, service.External(fmt.Errorf("autofill LLM call failed: %w", err))
	}

	answers, err := parseAnswers(reply)
	if err != nil {
		logger.WarnContext(ctx, "autofill reply was not valid JSON",
			"template_key", req.TemplateKey,
			"error", err,
		)
		return nil, err
	}

	s.store.Put(req.TemplateKey, Record{
		IdeaDescription:  req.IdeaDescription,
		StepDescription:  req.StepDescription,
		FieldHints:       req.FieldHints,
		Fields:           req.Fields,
		RepeatedFields:   req.RepeatedFields,
		GeneratedAnswers: answers,
		Timestamp:        time.Now(),
	})

	logger.InfoContext(ctx, "autofill completed",
		"template_key", req.TemplateKey,
		"answers", len(answers),
	)
	return answers, nil
}

// parseAnswers strips optional ```json fences and decodes the reply. The
// decoded value must be a JSON object.
func parseAnswers(reply string) (map[string]any, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var answers map[string]any
	if err := json.Unmarshal([]byte(cleaned), &answers); err != nil {
		return nil, fmt.Errorf("%w: failed to parse LLM response as JSON: %v", service.ErrMalformedResponse, err)
	}
	return answers, nil
}
