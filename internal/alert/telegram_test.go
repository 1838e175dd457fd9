package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hooktrade/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSend(t *testing.T) {
	var captured map[string]interface{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken-123/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	channel := NewTelegramChannel("token-123", "chat-456")
	channel.baseURL = ts.URL

	err := channel.Send(context.Background(), Payload{
		Level:   Critical,
		Title:   "Unprotected position",
		Message: "stop-loss failed",
		Fields:  map[string]string{"symbol": "FETUSDT"},
	})
	require.NoError(t, err)

	assert.Equal(t, "chat-456", captured["chat_id"])
	text, _ := captured["text"].(string)
	assert.Contains(t, text, "CRITICAL")
	assert.Contains(t, text, "Unprotected position")
	assert.Contains(t, text, "FETUSDT")
}

func TestTelegramSendAPIFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	channel := NewTelegramChannel("token-123", "chat-456")
	channel.baseURL = ts.URL

	err := channel.Send(context.Background(), Payload{Level: Info, Title: "t", Message: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")
}

func TestTelegramSendNoCredentialsIsNoOp(t *testing.T) {
	channel := NewTelegramChannel("", "")
	assert.NoError(t, channel.Send(context.Background(), Payload{Title: "t"}))
}

type blockingChannel struct {
	sent chan Payload
}

func (c *blockingChannel) Name() string { return "blocking" }

func (c *blockingChannel) Send(_ context.Context, alert Payload) error {
	c.sent <- alert
	return nil
}

func TestManagerDispatchesAsynchronously(t *testing.T) {
	channel := &blockingChannel{sent: make(chan Payload, 1)}

	manager := NewManager(logging.NewNop())
	manager.AddChannel(channel)

	done := make(chan struct{})
	go func() {
		manager.Alert(context.Background(), "title", "message", Warning, nil)
		close(done)
	}()

	// Alert must return without waiting on channel delivery
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Alert blocked on channel delivery")
	}

	select {
	case payload := <-channel.sent:
		assert.Equal(t, "title", payload.Title)
		assert.Equal(t, Warning, payload.Level)
	case <-time.After(time.Second):
		t.Fatal("alert was never delivered")
	}
}

func TestManagerSurvivesCancelledRequestContext(t *testing.T) {
	channel := &blockingChannel{sent: make(chan Payload, 1)}

	manager := NewManager(logging.NewNop())
	manager.AddChannel(channel)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Delivery context is detached from the request context
	manager.Alert(ctx, "title", "message", Critical, nil)

	select {
	case <-channel.sent:
	case <-time.After(time.Second):
		t.Fatal("alert dropped after request context cancellation")
	}
}
