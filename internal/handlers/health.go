package handlers

import (
	"net/http"

	"lci-chatbot/internal/autofill"
	"lci-chatbot/internal/chat"
	"lci-chatbot/internal/contextutil"
)

// HealthHandler reports liveness and basic usage counters.
type HealthHandler struct {
	provider      string
	model         string
	history       *chat.HistoryStore
	autofillStore *autofill.Store
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(provider, model string, history *chat.HistoryStore, autofillStore *autofill.Store) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		model:         model,
		history:       history,
		autofillStore: autofillStore,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status               string `json:"status"`
	Provider             string `json:"provider"`
	Model                string `json:"model"`
	ActiveUsers          int    `json:"active_users"`
	TotalMessages        int    `json:"total_messages"`
	AutofillContextCount int    `json:"autofill_context_count"`
}

// ServeHTTP handles GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(ctx, w, http.StatusOK, HealthResponse{
		Status:               "ok",
		Provider:             h.provider,
		Model:                h.model,
		ActiveUsers:          h.history.ActiveSessions(),
		TotalMessages:        h.history.TotalMessages(),
		AutofillContextCount: h.autofillStore.Count(),
	})
}
