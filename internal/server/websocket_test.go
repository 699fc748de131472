package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsTestClient is a helper for WebSocket protocol testing
type wsTestClient struct {
	conn    *websocket.Conn
	t       *testing.T
	timeout time.Duration
}

func newWSTestClient(t *testing.T, server *httptest.Server, docID string) *wsTestClient {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?doc=" + docID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &wsTestClient{conn: conn, t: t, timeout: 2 * time.Second}
}

func (c *wsTestClient) receive() (Message, error) {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	var msg Message
	err := c.conn.ReadJSON(&msg)
	return msg, err
}

// waitForSubscribers blocks until the hub has registered n connections.
func waitForSubscribers(t *testing.T, hub *Hub, docID string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(docID) < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers for %s, have %d", n, docID, hub.Subscribers(docID))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketReceivesDocumentUpdates(t *testing.T) {
	env := newTestEnv(t, nil)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	doc := env.createDoc(t,
		map[string]any{"type": "text", "id": "a"},
		map[string]any{"type": "text", "id": "b"},
	)
	other := env.createDoc(t, map[string]any{"type": "text", "id": "z"})

	client := newWSTestClient(t, ts, doc.ID)
	otherClient := newWSTestClient(t, ts, other.ID)
	waitForSubscribers(t, env.server.Hub(), doc.ID, 1)
	waitForSubscribers(t, env.server.Hub(), other.ID, 1)

	w := env.do(t, "POST", "/api/documents/"+doc.ID+"/drop", map[string]any{
		"kind":     "block",
		"block":    map[string]any{"type": "text", "id": "b"},
		"position": 0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	msg, err := client.receive()
	require.NoError(t, err)
	assert.Equal(t, ActionDocument, msg.Action)
	require.NotNil(t, msg.Document)
	assert.Equal(t, []string{"b", "a"}, msg.Document.IDs())

	// Subscribers of other documents hear nothing.
	otherClient.timeout = 100 * time.Millisecond
	_, err = otherClient.receive()
	assert.Error(t, err)
}

func TestWebSocketNotifiesDeletion(t *testing.T) {
	env := newTestEnv(t, nil)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	doc := env.createDoc(t)
	client := newWSTestClient(t, ts, doc.ID)
	waitForSubscribers(t, env.server.Hub(), doc.ID, 1)

	w := env.do(t, "DELETE", "/api/documents/"+doc.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	msg, err := client.receive()
	require.NoError(t, err)
	assert.Equal(t, ActionDeleted, msg.Action)
	assert.Equal(t, doc.ID, msg.ID)
}

func TestWebSocketUnregistersOnClose(t *testing.T) {
	env := newTestEnv(t, nil)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	client := newWSTestClient(t, ts, "doc-1")
	waitForSubscribers(t, env.server.Hub(), "doc-1", 1)

	client.conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for env.server.Hub().Subscribers("doc-1") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection was not unregistered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketRequiresDocParam(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(t, "GET", "/ws", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckOrigin(t *testing.T) {
	check := checkOrigin([]string{"http://localhost:5173"})

	r := httptest.NewRequest("GET", "http://mailcraft.local/ws", nil)
	assert.True(t, check(r), "no origin header")

	r.Header.Set("Origin", "http://mailcraft.local")
	assert.True(t, check(r), "same origin")

	r.Header.Set("Origin", "http://localhost:5173")
	assert.True(t, check(r), "configured origin")

	r.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(r))
}
