package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lci-chatbot/internal/autofill"
	"lci-chatbot/internal/chat"
	"lci-chatbot/internal/handlers"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService     *chat.Service
	AutofillService *autofill.Service
	AutofillStore   *autofill.Store
	Provider        string
	Model           string
}

// NewRouter creates a new HTTP router with the provided dependencies.
// Routes mirror the form-builder client: chat and auto-fill under the
// root, plus a health endpoint for load balancer probes.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	autofillHandler := handlers.NewAutofillHandler(deps.AutofillService)
	healthHandler := handlers.NewHealthHandler(deps.Provider, deps.Model, deps.ChatService.History(), deps.AutofillStore)

	r.Method(http.MethodPost, "/chat", chatHandler)
	r.Method(http.MethodPost, "/chatbot/auto-fill", autofillHandler)
	r.Method(http.MethodGet, "/health", healthHandler)

	return r
}
