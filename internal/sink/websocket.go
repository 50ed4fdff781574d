package sink

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"assaultbrain/internal/analysis"
)

const (
	writeTimeout = 5 * time.Second
	// Outbound messages buffered per client before it is considered
	// stuck and dropped.
	clientSendBuffer = 32
)

// wsMessage is the envelope pushed to overlay clients.
type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// wsClient pairs a connection with its outbound queue. All writes to
// the connection happen on the client's writer goroutine; the
// connection supports only one concurrent writer.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts analysis results to connected overlay clients over
// websocket. A client that connects mid-match immediately receives the
// most recent result.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]bool
	last    []byte
	closed  bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Overlay runs on localhost; cross-origin pages are fine
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*wsClient]bool),
	}
}

// ServeHTTP upgrades the connection and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Hub] Upgrade failed: %v", err)
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, clientSendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[client] = true
	if h.last != nil {
		client.send <- h.last
	}
	h.mu.Unlock()

	log.Printf("[Hub] Overlay client connected (%d total)", h.ClientCount())

	go h.writeLoop(client)

	// Reader goroutine exists only to notice disconnects; clients
	// never send anything meaningful.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(client)
				return
			}
		}
	}()
}

// writeLoop is the single writer for one client's connection. It exits
// when drop or Close closes the send channel.
func (h *Hub) writeLoop(c *wsClient) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[Hub] Dropping client after write error: %v", err)
			h.drop(c)
			break
		}
	}
	c.conn.Close()
}

// Publish broadcasts the result to all connected clients.
func (h *Hub) Publish(ctx context.Context, res *analysis.AnalysisResult) error {
	return h.broadcast(wsMessage{Type: "analysis", Data: res})
}

// Notify broadcasts an informational event to all connected clients.
func (h *Hub) Notify(event, detail string) {
	h.broadcast(wsMessage{Type: "event", Data: map[string]string{
		"event":  event,
		"detail": detail,
	}})
}

// broadcast queues the message for every client. Sends happen under the
// hub lock, which is what makes closing a client's channel in drop
// safe. A client whose buffer is full is dropped rather than blocking
// the workers behind it.
func (h *Hub) broadcast(msg wsMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	var stuck []*wsClient

	h.mu.Lock()
	if msg.Type == "analysis" {
		h.last = data
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			stuck = append(stuck, c)
		}
	}
	h.mu.Unlock()

	for _, c := range stuck {
		log.Printf("[Hub] Dropping client with a full outbound buffer")
		h.drop(c)
	}
	return nil
}

func (h *Hub) drop(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

// ClientCount returns the number of connected overlay clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
		close(c.send)
	}
	h.clients = make(map[*wsClient]bool)
	h.mu.Unlock()

	for _, c := range clients {
		// WriteControl is safe alongside the writer goroutine
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeTimeout))
		c.conn.Close()
	}
}
