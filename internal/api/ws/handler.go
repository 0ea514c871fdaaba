package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the launcher UI may be served from any host
	},
}

// Message is the envelope of every frame sent to clients
type Message struct {
	Type      string           `json:"type"`
	Message   string           `json:"message,omitempty"`
	Event     *types.SyncEvent `json:"event,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

// Inbound is a frame received from a client
type Inbound struct {
	Type string `json:"type"`
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// Handler manages WebSocket connections and fans store events out to them
type Handler struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(log *logging.Logger, metrics *monitoring.Metrics) *Handler {
	if log == nil {
		log = logging.NewNop()
	}
	return &Handler{
		clients: make(map[*client]struct{}),
		logger:  log.Named("ws"),
		metrics: metrics,
	}
}

// Publish forwards a committed sync event to every client. Clients whose
// buffer is full are disconnected rather than blocking the caller.
func (h *Handler) Publish(ev types.SyncEvent) {
	msg := Message{Type: "sync", Event: &ev, Timestamp: time.Now().Unix()}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow client", zap.String("remote", c.conn.RemoteAddr().String()))
		h.unregister(c)
	}
}

// Clients returns the number of connected clients
func (h *Handler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan Message, sendBuffer)}
	h.register(cl)
	h.enqueue(cl, Message{Type: "system", Message: "Connected to launcher change stream", Timestamp: time.Now().Unix()})

	go h.writeLoop(cl)
	h.readLoop(cl)
}

func (h *Handler) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.IncWSConnections()
}

// unregister closes c's send channel exactly once
func (h *Handler) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		h.metrics.DecWSConnections()
	}
}

func (h *Handler) readLoop(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		var reply Message
		switch msg.Type {
		case "ping":
			reply = Message{Type: "pong"}
		default:
			reply = Message{Type: "error", Message: "unknown message type"}
		}
		reply.Timestamp = time.Now().Unix()
		h.enqueue(c, reply)
	}
}

// enqueue queues msg for c unless c is gone or its buffer is full
func (h *Handler) enqueue(c *client, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (h *Handler) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
			h.metrics.RecordWSMessage()
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
