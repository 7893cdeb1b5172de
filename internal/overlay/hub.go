package overlay

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/internal/telemetry"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans presentation events out to connected overlay pages and surfaces
// their playback-finished signals back to the queue.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*hubClient]struct{}

	broadcast  chan []byte
	register   chan *hubClient
	unregister chan *hubClient

	playbackDone func(seq uint64)
	logger       *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients:    make(map[*hubClient]struct{}),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		logger:     logger,
	}
}

// OnPlaybackDone registers the callback invoked when an overlay reports that
// a sound finished playing. The callback receives the seq of the finished
// item as echoed by the page.
func (h *Hub) OnPlaybackDone(fn func(seq uint64)) {
	h.playbackDone = fn
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			if telemetry.OverlayClients != nil {
				telemetry.OverlayClients.Set(float64(n))
			}
			h.logger.Debug("overlay client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			if telemetry.OverlayClients != nil {
				telemetry.OverlayClients.Set(float64(n))
			}
			h.logger.Debug("overlay client disconnected")

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client; drop it rather than stall playback.
					go func(c *hubClient) { h.unregister <- c }(c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast implements Broadcaster.
func (h *Hub) Broadcast(event domain.PresentationEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal presentation event", zap.Error(err))
		return
	}
	h.broadcast <- data
}

// ServeWS upgrades an overlay page connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &hubClient{
		conn: conn,
		send: make(chan []byte, 16),
	}
	h.register <- c

	go h.writePump(c)
	go h.readPump(c)
}

type overlayMessage struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
}

func (h *Hub) readPump(c *hubClient) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg overlayMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "done" && h.playbackDone != nil {
			h.playbackDone(msg.Seq)
		}
	}
}

func (h *Hub) writePump(c *hubClient) {
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
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
