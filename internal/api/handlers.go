package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/chatrelay/telegram-ai-bot/internal/telegram"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type APIHandler struct {
	dispatcher *telegram.Dispatcher
	secret     string
}

func NewAPIHandler(dispatcher *telegram.Dispatcher, secret string) *APIHandler {
	return &APIHandler{dispatcher: dispatcher, secret: secret}
}

// SecretTokenMiddleware verifies the shared secret Telegram echoes back on
// every webhook delivery.
func (h *APIHandler) SecretTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(secretTokenHeader) != h.secret {
			http.Error(w, "Invalid secret token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *APIHandler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Acknowledge immediately; Telegram re-delivers on slow or non-200
	// responses, and handling blocks on gateway calls. The request context
	// dies with this response, so dispatch detaches from it.
	go h.dispatcher.Dispatch(context.Background(), update)
	w.WriteHeader(http.StatusOK)
}
