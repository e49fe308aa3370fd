package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/swim-timer/internal/models"
	"github.com/terra-clan/swim-timer/internal/race"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedMessage is pushed to live display clients.
// "snapshot" messages carry new results, "clock" messages only the running clock.
type FeedMessage struct {
	Type     string            `json:"type"`
	Status   models.RaceStatus `json:"status"`
	Snapshot *models.Snapshot  `json:"snapshot,omitempty"`
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Feed broadcasts race state to websocket clients by polling the engine
type Feed struct {
	source   race.Controller
	interval time.Duration

	mu      sync.RWMutex
	clients map[*feedClient]bool
}

// NewFeed creates a live feed over the engine
func NewFeed(source race.Controller, interval time.Duration) *Feed {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Feed{
		source:   source,
		interval: interval,
		clients:  make(map[*feedClient]bool),
	}
}

// Run polls the engine until ctx is done
func (f *Feed) Run(ctx context.Context) {
	slog.Info("live feed started", "interval", f.interval)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	var lastVersion uint64
	for {
		select {
		case <-ctx.Done():
			f.closeAll()
			slog.Info("live feed stopped")
			return
		case <-ticker.C:
			if f.Clients() == 0 {
				continue
			}

			status := f.source.Status()
			switch {
			case status.Version != lastVersion:
				lastVersion = status.Version
				f.broadcast(FeedMessage{Type: "snapshot", Status: status, Snapshot: f.source.Snapshot()})
			case status.State.IsRunning():
				f.broadcast(FeedMessage{Type: "clock", Status: status})
			}
		}
	}
}

// Clients returns the number of connected clients
func (f *Feed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// ServeWS upgrades the request and streams feed messages until the client disconnects
func (f *Feed) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}

	client := &feedClient{conn: conn, send: make(chan []byte, sendBuffer)}

	initial, err := json.Marshal(FeedMessage{
		Type:     "snapshot",
		Status:   f.source.Status(),
		Snapshot: f.source.Snapshot(),
	})
	if err == nil {
		client.send <- initial
	}

	f.mu.Lock()
	f.clients[client] = true
	f.mu.Unlock()

	slog.Info("feed client connected", "remote_addr", r.RemoteAddr, "observer", ObserverFromContext(r.Context()))

	go client.writePump()
	client.readPump()

	f.remove(client)
	slog.Info("feed client disconnected", "remote_addr", r.RemoteAddr)
}

func (f *Feed) broadcast(msg FeedMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal feed message", "error", err)
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	for client := range f.clients {
		select {
		case client.send <- data:
		default:
			slog.Debug("feed client too slow, message dropped", "type", msg.Type)
		}
	}
}

func (f *Feed) remove(client *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.clients[client] {
		delete(f.clients, client)
		close(client.send)
	}
}

func (f *Feed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for client := range f.clients {
		delete(f.clients, client)
		close(client.send)
	}
}

// readPump discards client messages and returns when the connection closes
func (c *feedClient) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}

func (c *feedClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Debug("failed to send feed message", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
