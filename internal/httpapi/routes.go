package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/harkirat155/tictac-realtime/internal/feedback"
)

// SetupRoutes builds the router with the websocket handler and feedback
// dependencies injected.
func SetupRoutes(wsHandler http.HandlerFunc, store *feedback.Store, sink feedback.Sink, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", Health)
	r.Get("/ws", wsHandler)
	r.Post("/feedback", SubmitFeedback(store, sink, logger))
	r.Get("/feedback", ListFeedback(store))
	return r
}
