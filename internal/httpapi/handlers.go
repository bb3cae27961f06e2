package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/harkirat155/tictac-realtime/internal/feedback"
)

const sinkTimeout = 10 * time.Second

// Health is the unauthenticated liveness endpoint; it knows nothing about
// room state.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func SubmitFeedback(store *feedback.Store, sink feedback.Sink, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub feedback.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		sub.Meta = &feedback.Meta{
			IP:        clientIP(r),
			Origin:    r.Header.Get("Origin"),
			Referer:   r.Header.Get("Referer"),
			UserAgent: r.Header.Get("User-Agent"),
		}
		entry := store.Add(sub)

		if sink != nil {
			// Best effort; a broken sink must never affect the response.
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
				defer cancel()
				if err := sink.Append(ctx, entry); err != nil {
					logger.Warn("feedback sink append failed",
						zap.String("id", entry.ID), zap.Error(err))
				}
			}()
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"id":         entry.ID,
			"receivedAt": entry.ReceivedAt,
		})
	}
}

func ListFeedback(store *feedback.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				limit = n
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"entries": store.List(limit),
			"count":   store.Count(),
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
