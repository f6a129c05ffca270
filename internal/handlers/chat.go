package handlers

import (
	"encoding/json"
	"net/http"

	"lci-chatbot/internal/chat"
	"lci-chatbot/internal/contextutil"
)

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	chatService *chat.Service
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *chat.Service) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ServeHTTP handles POST /chat. The request body maps straight onto
// chat.Request; unknown identifiers are simply skipped by the context
// providers.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.chatService.Chat(ctx, req)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process chat request")
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}
