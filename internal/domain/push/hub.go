package push

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"eventrelay/internal/domain"
	"eventrelay/internal/metrics"
)

type pushMessage struct {
	Type string    `json:"type"`
	Data pushEvent `json:"data"`
}

type pushEvent struct {
	ID        string           `json:"id"`
	Type      domain.EventType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Data      map[string]any   `json:"data"`
}

type Hub struct {
	mu     sync.RWMutex
	conns  map[string]Conn
	unsubs []func()
	log    *zap.Logger
}

func NewHub(bus domain.EventBus, log *zap.Logger) *Hub {
	h := &Hub{
		conns: make(map[string]Conn),
		log:   log,
	}

	for _, t := range domain.AllEventTypes() {
		h.unsubs = append(h.unsubs, bus.Subscribe(t, h.handleEvent))
	}

	return h
}

func (h *Hub) Register(userID string, c Conn) {
	h.mu.Lock()
	prev := h.conns[userID]
	h.conns[userID] = c
	n := len(h.conns)
	h.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	metrics.SetPushConnections(n)
	h.log.Info("push connection registered", zap.String("user_id", userID))
}

func (h *Hub) Unregister(userID string, c Conn) {
	h.mu.Lock()
	cur, ok := h.conns[userID]
	removed := ok && (c == nil || cur == c)
	if removed {
		delete(h.conns, userID)
	}
	n := len(h.conns)
	h.mu.Unlock()

	if removed {
		metrics.SetPushConnections(n)
		h.log.Info("push connection removed", zap.String("user_id", userID))
	}
}

func (h *Hub) Connections() []string {
	h.mu.RLock()
	users := make([]string, 0, len(h.conns))
	for u := range h.conns {
		users = append(users, u)
	}
	h.mu.RUnlock()

	sort.Strings(users)
	return users
}

func (h *Hub) handleEvent(ctx context.Context, e domain.Event) {
	data, err := json.Marshal(pushMessage{
		Type: "event",
		Data: pushEvent{
			ID:        e.ID,
			Type:      e.Type,
			Timestamp: e.Timestamp,
			Data:      e.Data,
		},
	})
	if err != nil {
		h.log.Error("push message marshal failed", zap.String("event_id", e.ID), zap.Error(err))
		return
	}

	if e.UserID != "" {
		h.deliver(ctx, e.UserID, data, "targeted")
		return
	}

	h.mu.RLock()
	users := make([]string, 0, len(h.conns))
	for u := range h.conns {
		users = append(users, u)
	}
	h.mu.RUnlock()

	for _, u := range users {
		h.deliver(ctx, u, data, "broadcast")
	}
}

func (h *Hub) deliver(ctx context.Context, userID string, data []byte, mode string) {
	h.mu.RLock()
	c, ok := h.conns[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if err := c.Send(ctx, data); err != nil {
		h.log.Warn("push send failed, dropping connection",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		h.Unregister(userID, c)
		_ = c.Close()
		return
	}
	metrics.PushMessage(mode)
}

func (h *Hub) Close() {
	for _, unsub := range h.unsubs {
		unsub()
	}

	h.mu.Lock()
	conns := make([]Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[string]Conn)
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	metrics.SetPushConnections(0)
}
