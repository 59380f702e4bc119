package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}

func (nopLogger) Sync() error { return nil }

func waitForUnregistered(t *testing.T, h *Hub, userID uuid.UUID) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		_, ok := h.clients[userID]
		h.mu.RUnlock()
		if !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("client was never unregistered")
}

func TestHubDropsSlowClientWithoutPanic(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	userID := uuid.New()
	client := &Client{Hub: h, UserID: userID, Send: make(chan []byte)}
	h.register <- client
	waitForRegistered(t, h, userID)

	// The unbuffered channel has no reader, so delivery takes the
	// full-buffer path and must unregister the client exactly once.
	h.Send(userID, FeedMessage{Kind: "case_opened", OccurredAt: time.Now()})
	waitForUnregistered(t, h, userID)

	// A second publish to the now-gone user must be a no-op.
	h.Send(userID, FeedMessage{Kind: "case_recovered", OccurredAt: time.Now()})

	select {
	case _, open := <-client.Send:
		assert.False(t, open, "send channel should be closed after unregister")
	case <-time.After(time.Second):
		t.Fatal("send channel was never closed")
	}
}

func TestHubSendDeliversToConnectedClient(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	userID := uuid.New()
	client := &Client{Hub: h, UserID: userID, Send: make(chan []byte, 4)}
	h.register <- client
	waitForRegistered(t, h, userID)

	h.Send(userID, FeedMessage{Kind: "customer_saved", OccurredAt: time.Now()})

	select {
	case raw := <-client.Send:
		var envelope struct {
			Type string      `json:"type"`
			Data FeedMessage `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(raw, &envelope))
		assert.Equal(t, "recovery_feed", envelope.Type)
		assert.Equal(t, "customer_saved", envelope.Data.Kind)
	case <-time.After(time.Second):
		t.Fatal("no message delivered locally")
	}
	assert.Empty(t, client.Send, "exactly one copy must be delivered")
}

func TestHubIgnoresOwnClusterMessages(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	userID := uuid.New()
	client := &Client{Hub: h, UserID: userID, Send: make(chan []byte, 4)}
	h.register <- client
	waitForRegistered(t, h, userID)

	payload := func(origin string) []byte {
		raw, _ := json.Marshal(map[string]interface{}{
			"origin":         origin,
			"target_user_id": userID.String(),
			"message":        json.RawMessage(`{"type":"recovery_feed"}`),
		})
		return raw
	}

	h.handleClusterPayload(payload(h.instanceID))
	assert.Empty(t, client.Send, "a message this instance published is already delivered")

	h.handleClusterPayload(payload("other-instance"))
	select {
	case raw := <-client.Send:
		assert.JSONEq(t, `{"type":"recovery_feed"}`, string(raw))
	case <-time.After(time.Second):
		t.Fatal("cluster message from another instance was not delivered")
	}
}

func waitForRegistered(t *testing.T, h *Hub, userID uuid.UUID) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		_, ok := h.clients[userID]
		h.mu.RUnlock()
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("client was never registered")
}
