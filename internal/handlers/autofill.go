package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"lci-chatbot/internal/autofill"
	"lci-chatbot/internal/contextutil"
	"lci-chatbot/internal/service"
)

// AutofillHandler handles HTTP requests for template auto-fill.
type AutofillHandler struct {
	autofillService *autofill.Service
}

// NewAutofillHandler creates a new AutofillHandler.
func NewAutofillHandler(autofillService *autofill.Service) *AutofillHandler {
	return &AutofillHandler{autofillService: autofillService}
}

// AutofillResponse is the auto-fill envelope. Generation failures are
// reported inside the envelope with success=false rather than as HTTP
// errors, so form clients always get a parseable body.
type AutofillResponse struct {
	Success bool           `json:"success"`
	Answers map[string]any `json:"answers,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ServeHTTP handles POST /chatbot/auto-fill.
func (h *AutofillHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req autofill.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	answers, err := h.autofillService.Fill(ctx, req)
	if err != nil {
		logger.WarnContext(ctx, "autofill failed", "template_key", req.TemplateKey, "error", err)
		writeJSON(ctx, w, http.StatusOK, AutofillResponse{
			Success: false,
			Error:   autofillErrorMessage(err),
		})
		return
	}

	writeJSON(ctx, w, http.StatusOK, AutofillResponse{
		Success: true,
		Answers: answers,
	})
}

// autofillErrorMessage translates service errors into the client-facing
// error field of the envelope.
func autofillErrorMessage(err error) string {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.Is(err, service.ErrMalformedResponse):
		return "Failed to parse LLM response as JSON."
	case errors.Is(err, service.ErrExternalService):
		return "API Error: LLM request failed."
	default:
		return "An unexpected error occurred."
	}
}
