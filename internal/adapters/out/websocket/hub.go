// Package websocket fans tenant events out to browser subscribers.
//
// Every connection belongs to exactly one tenant room. Broadcast encodes
// the event once and offers it to each subscriber's bounded buffer;
// a subscriber whose buffer is full misses the event.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/ports"

	"github.com/gorilla/websocket"
)

const (
	DefaultSendBuffer = 64

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var _ ports.Broadcaster = (*Hub)(nil)

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	upgrader   websocket.Upgrader
	sendBuffer int
	logger     *slog.Logger

	mu    sync.RWMutex
	rooms map[kernel.TenantID]map[*subscriber]struct{}
}

// NewHub accepts browser connections from the hub's own origin and from
// allowedOrigins. "*" allows every origin. Clients that send no Origin
// header are not browsers and are always accepted.
func NewHub(sendBuffer int, allowedOrigins []string, logger *slog.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		sendBuffer: sendBuffer,
		logger:     logger.With("component", "websocket_hub"),
		rooms:      make(map[kernel.TenantID]map[*subscriber]struct{}),
	}
}

func (h *Hub) Broadcast(ctx context.Context, tenantID kernel.TenantID, event ports.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode event", "event", event.Name, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[tenantID] {
		select {
		case sub.send <- data:
		default:
			h.logger.DebugContext(ctx, "subscriber buffer full, event dropped",
				"tenant_id", tenantID, "event", event.Name)
		}
	}
}

// Serve upgrades the request and blocks until the subscriber disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, tenantID kernel.TenantID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, h.sendBuffer)}
	h.register(tenantID, sub)
	h.logger.Info("subscriber connected", "tenant_id", tenantID, "remote_addr", r.RemoteAddr)

	go h.writeLoop(sub)
	h.readLoop(sub)

	h.unregister(tenantID, sub)
	h.logger.Info("subscriber disconnected", "tenant_id", tenantID, "remote_addr", r.RemoteAddr)
	return nil
}

// Subscribers reports how many connections are open for tenantID.
func (h *Hub) Subscribers(tenantID kernel.TenantID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[tenantID])
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for tenantID, room := range h.rooms {
		for sub := range room {
			close(sub.send)
		}
		delete(h.rooms, tenantID)
	}
}

func (h *Hub) register(tenantID kernel.TenantID, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[tenantID]
	if !ok {
		room = make(map[*subscriber]struct{})
		h.rooms[tenantID] = room
	}
	room[sub] = struct{}{}
}

func (h *Hub) unregister(tenantID kernel.TenantID, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[tenantID]
	if !ok {
		return
	}
	if _, ok = room[sub]; !ok {
		return
	}
	delete(room, sub)
	close(sub.send)
	if len(room) == 0 {
		delete(h.rooms, tenantID)
	}
}

// readLoop discards client messages and keeps the read deadline fresh
// through pongs. It returns once the connection fails.
func (h *Hub) readLoop(sub *subscriber) {
	defer sub.conn.Close()

	sub.conn.SetReadLimit(maxMessageSize)
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("unexpected websocket close", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writeLoop(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	allowAll := slices.Contains(allowed, "*")
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		if slices.ContainsFunc(allowed, func(a string) bool { return strings.EqualFold(a, origin) }) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
