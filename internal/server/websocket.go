package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/livetemplate/mailcraft"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is pushed to subscribers of a document.
type Message struct {
	Action   string              `json:"action"`
	Document *mailcraft.Document `json:"document,omitempty"`
	ID       string              `json:"id,omitempty"`
}

// Message actions.
const (
	ActionDocument = "document"
	ActionDeleted  = "deleted"
)

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex // one writer at a time
}

func (s *subscriber) write(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// Hub tracks WebSocket connections per document and pushes the document
// after every mutation.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[string]map[*subscriber]bool
	debug    bool
}

// NewHub creates a hub. Origins follow the API CORS list; an empty list
// allows same-origin connections only.
func NewHub(origins []string, debug bool) *Hub {
	h := &Hub{
		subs:  make(map[string]map[*subscriber]bool),
		debug: debug,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: checkOrigin(origins)}
	return h
}

func checkOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}

// ServeHTTP upgrades the request and subscribes it to the document named
// by the doc query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	docID := r.URL.Query().Get("doc")
	if docID == "" {
		writeError(w, http.StatusBadRequest, "doc query parameter required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	sub := &subscriber{conn: conn}
	h.register(docID, sub)
	defer func() {
		h.unregister(docID, sub)
		conn.Close()
	}()

	done := make(chan struct{})
	defer close(done)
	go h.ping(sub, done)

	// Clients only listen; reading keeps control frames flowing and
	// notices the close.
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.debug && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			return
		}
	}
}

func (h *Hub) ping(sub *subscriber, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := sub.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Hub) register(docID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[docID] == nil {
		h.subs[docID] = make(map[*subscriber]bool)
	}
	h.subs[docID][sub] = true
	if h.debug {
		log.Printf("[WS] Connection registered for %s: %d active", docID, len(h.subs[docID]))
	}
}

func (h *Hub) unregister(docID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[docID], sub)
	if len(h.subs[docID]) == 0 {
		delete(h.subs, docID)
	}
	if h.debug {
		log.Printf("[WS] Connection unregistered for %s", docID)
	}
}

// Subscribers returns the number of connections watching docID.
func (h *Hub) Subscribers(docID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[docID])
}

// BroadcastDocument pushes doc to its subscribers.
func (h *Hub) BroadcastDocument(doc *mailcraft.Document) {
	h.broadcast(doc.ID, Message{Action: ActionDocument, Document: doc})
}

// BroadcastDeleted tells subscribers the document is gone.
func (h *Hub) BroadcastDeleted(docID string) {
	h.broadcast(docID, Message{Action: ActionDeleted, ID: docID})
}

func (h *Hub) broadcast(docID string, msg Message) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs[docID]))
	for sub := range h.subs[docID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS] Failed to marshal %s message: %v", msg.Action, err)
		return
	}
	if h.debug {
		log.Printf("[WS] Broadcasting %s for %s to %d connections", msg.Action, docID, len(subs))
	}
	for _, sub := range subs {
		if err := sub.write(websocket.TextMessage, data); err != nil {
			log.Printf("[WS] Failed to send to connection: %v", err)
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.subs {
		for sub := range subs {
			sub.mu.Lock()
			sub.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			sub.mu.Unlock()
			sub.conn.Close()
		}
	}
	h.subs = make(map[string]map[*subscriber]bool)
}
