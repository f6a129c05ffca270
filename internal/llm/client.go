package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client is a chat completions client for any OpenAI-compatible API.
// Mistral's hosted API is the default provider; the base URL selects
// the deployment.
type Client struct {
	Provider string
	Model    string
	api      *openai.Client
}

// NewClient creates a new LLM client. baseURL must point at the provider's
// OpenAI-compatible root (e.g. "https://api.mistral.ai/v1"). timeout bounds
// every request; a timed-out call fails that single request only.
func NewClient(baseURL, apiKey, model, provider string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		Provider: provider,
		Model:    model,
		api:      openai.NewClientWithConfig(cfg),
	}
}

// ChatWithMessages sends a structured chat completion request and returns
// the assistant's reply text.
func (c *Client) ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	model := params.Model
	if model == "" {
		model = c.Model
	}

	apiMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		apiMessages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    apiMessages,
		Temperature: params.Temperature,
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = params.MaxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Chat sends a single user message and returns the reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	return c.ChatWithMessages(ctx, []Message{{Role: RoleUser, Content: message}}, ChatParams{Temperature: 0.7})
}
