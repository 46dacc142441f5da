package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrelay/telegram-ai-bot/internal/telegram"
)

type handledMessage struct {
	userID int64
	text   string
}

type stubHandler struct {
	handled chan handledMessage
}

func (s *stubHandler) HandleMessage(ctx context.Context, userID int64, text string) string {
	s.handled <- handledMessage{userID: userID, text: text}
	return ""
}

type nopReplier struct{}

func (nopReplier) SendMessage(ctx context.Context, chatID int64, text string) error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *stubHandler) {
	t.Helper()
	handler := &stubHandler{handled: make(chan handledMessage, 1)}
	dispatcher := telegram.NewDispatcher(nopReplier{}, handler)
	srv := httptest.NewServer(NewRouter(NewAPIHandler(dispatcher, "s3cret")))
	t.Cleanup(srv.Close)
	return srv, handler
}

func postWebhook(t *testing.T, srv *httptest.Server, secret, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/telegram/webhook", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secret)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestWebhook_RejectsMissingOrWrongSecret(t *testing.T) {
	srv, handler := newTestServer(t)

	resp := postWebhook(t, srv, "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postWebhook(t, srv, "wrong", `{}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	select {
	case <-handler.handled:
		t.Fatal("handler invoked despite failed auth")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWebhook_RejectsMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postWebhook(t, srv, "s3cret", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhook_AcknowledgesAndDispatches(t *testing.T) {
	srv, handler := newTestServer(t)

	body := `{"update_id":1,"message":{"message_id":1,"from":{"id":42},"chat":{"id":42,"type":"private"},"text":"hello"}}`
	resp := postWebhook(t, srv, "s3cret", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case got := <-handler.handled:
		assert.Equal(t, int64(42), got.userID)
		assert.Equal(t, "hello", got.text)
	case <-time.After(time.Second):
		t.Fatal("update was not dispatched")
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
