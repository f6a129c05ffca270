package chat

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm.go -package=mocks lci-chatbot/internal/chat LLMClient

import (
	"context"
	"fmt"
	"strings"

	"lci-chatbot/internal/contextutil"
	"lci-chatbot/internal/llm"
	"lci-chatbot/internal/service"
)

// LLMClient is the outbound chat completion dependency.
type LLMClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Response is a completed chat turn. ContextUsed enumerates every context
// fragment that went into the prompt, in provider order.
type Response struct {
	Query       string   `json:"query"`
	Answer      string   `json:"answer"`
	ContextUsed []string `json:"context_used"`
	Provider    string   `json:"provider"`
}

// Service answers chat turns by collecting context from its providers in
// order, assembling a prompt, and completing it against the session history.
type Service struct {
	llm       LLMClient
	history   *HistoryStore
	providers []Provider
	provider  string
}

// NewService wires the chat pipeline. providerName labels responses with the
// upstream LLM provider.
func NewService(client LLMClient, history *HistoryStore, providerName string, providers ...Provider) *Service {
	return &Service{
		llm:       client,
		history:   history,
		providers: providers,
		provider:  providerName,
	}
}

// History exposes the session store for health reporting.
func (s *Service) History() *HistoryStore {
	return s.history
}

// Chat answers one turn. The query is validated before any model call;
// context collection is best effort and a turn with no usable context still
// completes against the bare query.
func (s *Service) Chat(ctx context.Context, req Request) (*Response, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return nil, &service.ValidationError{Field: "query", Message: "Query cannot be empty."}
	}

	var fragments []string
	for _, provider := range s.providers {
		got := provider.Fragments(ctx, req)
		if len(got) > 0 {
			logger.DebugContext(ctx, "context fragments collected",
				"provider", provider.Name(), "fragments", len(got))
		}
		fragments = append(fragments, got...)
	}

	prompt := BuildPrompt(req.Query, fragments)
	sessionID := SessionID(req.UserID, req.CanvasID)
	logger.InfoContext(ctx, "chat prompt assembled",
		"session", sessionID,
		"context_used", len(fragments),
		"prompt_length", len(prompt),
	)

	answer, err := s.history.Exchange(ctx, sessionID, prompt, func(ctx context.Context, messages []llm.Message) (string, error) {
		return s.llm.ChatWithMessages(ctx, messages, llm.ChatParams{Temperature: 0.7})
	})
	if err != nil {
		return nil, service.External(fmt.Errorf("chat completion failed: %w", err))
	}

	return &Response{
		Query:       req.Query,
		Answer:      answer,
		ContextUsed: fragments,
		Provider:    s.provider,
	}, nil
}
