package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/delve/internal/game/hooks"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Hub fans combat events out to websocket subscribers. It implements
// hooks.EventSink and never blocks the tick: a subscriber whose queue is
// full is disconnected.
type Hub struct {
	queue        int
	writeTimeout time.Duration

	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	closed bool
}

// NewHub creates a Hub. queue is the per-subscriber buffer size.
func NewHub(queue int, writeTimeout time.Duration) *Hub {
	if queue <= 0 {
		queue = 64
	}
	return &Hub{
		queue:        queue,
		writeTimeout: writeTimeout,
		subs:         make(map[*subscriber]struct{}),
	}
}

// Effect implements hooks.EventSink.
func (h *Hub) Effect(e hooks.VisualEffect) {
	h.Publish(MsgEffect, newEffectView(e))
}

// Log implements hooks.EventSink.
func (h *Hub) Log(e hooks.LogEntry) {
	h.Publish(MsgLog, newLogView(e))
}

// Publish encodes a message once and queues it for every subscriber.
func (h *Hub) Publish(msgType string, data any) {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		slog.Error("encoding hub message", "type", msgType, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		s.send(payload)
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Serve upgrades the request to a websocket and streams events to it until
// the client disconnects or the hub is closed.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	s := &subscriber{
		conn:         conn,
		sendCh:       make(chan []byte, h.queue),
		closeCh:      make(chan struct{}),
		writeTimeout: h.writeTimeout,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "arena closed"))
		_ = conn.Close()
		return
	}
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	slog.Debug("subscriber connected", "remote", r.RemoteAddr)
	go s.writePump()
	s.readPump()

	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.closeAsync()
	slog.Debug("subscriber disconnected", "remote", r.RemoteAddr)
}

// Close stops accepting subscribers and closes the connected ones after
// their queued messages are written.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		s.closeAsync()
	}
}

type subscriber struct {
	conn         *websocket.Conn
	sendCh       chan []byte
	closeCh      chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
}

func (s *subscriber) send(payload []byte) {
	select {
	case s.sendCh <- payload:
	default:
		slog.Warn("send queue full, disconnecting slow subscriber", "remote", s.conn.RemoteAddr())
		s.closeAsync()
	}
}

func (s *subscriber) closeAsync() {
	s.closeOnce.Do(func() { close(s.closeCh) })
}

func (s *subscriber) deadline() time.Time {
	if s.writeTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(s.writeTimeout)
}

// writePump owns every write to the connection.
func (s *subscriber) writePump() {
	defer s.conn.Close()
	for {
		select {
		case payload := <-s.sendCh:
			if err := s.write(payload); err != nil {
				return
			}
		case <-s.closeCh:
			for {
				select {
				case payload := <-s.sendCh:
					if err := s.write(payload); err != nil {
						return
					}
				default:
					_ = s.conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), s.deadline())
					return
				}
			}
		}
	}
}

func (s *subscriber) write(payload []byte) error {
	if err := s.conn.SetWriteDeadline(s.deadline()); err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		slog.Debug("websocket write failed", "remote", s.conn.RemoteAddr(), "error", err)
		return err
	}
	return nil
}

// readPump discards client frames and returns when the connection fails.
func (s *subscriber) readPump() {
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
