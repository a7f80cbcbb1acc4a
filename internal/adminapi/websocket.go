package adminapi

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/usdot-its/ppm/internal/ppmlog"
)

// upgrader allows any origin — the admin surface is deployed behind an
// operator-only network boundary, not exposed to end users. Grounded on
// the teacher's internal/api/websocket.go.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans a stream of decision-feed messages out to every connected
// operator websocket, following the teacher's broadcast-channel + mutex
// client-set pattern.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mutex     sync.Mutex
	log       *ppmlog.Logger
}

// NewHub constructs an idle Hub; call Run in a goroutine to start
// fanning out.
func NewHub(log *ppmlog.Logger) *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 256),
		log:       log,
	}
}

// Broadcast enqueues a message for delivery to every connected client.
// Non-blocking: a full buffer drops the message rather than stalling the
// decision pipeline that calls it.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warnw("decision feed broadcast buffer full, dropping message")
	}
}

// Run drains the broadcast channel, writing each message to every
// connected client and dropping any client whose write fails.
func (h *Hub) Run() {
	for msg := range h.broadcast {
		h.mutex.Lock()
		for conn := range h.clients {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				conn.Close()
				delete(h.clients, conn)
			}
		}
		h.mutex.Unlock()
	}
}

// Subscribe upgrades an HTTP request to a websocket and registers the
// connection for broadcast delivery. A background read loop exists only
// to detect client disconnects (the admin feed is one-way).
func (h *Hub) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("websocket upgrade failed", "error", err)
		return
	}
	h.mutex.Lock()
	h.clients[conn] = true
	h.mutex.Unlock()

	go func() {
		defer func() {
			h.mutex.Lock()
			delete(h.clients, conn)
			h.mutex.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
