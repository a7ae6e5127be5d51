// Package hub maintains the live connection index and fans notifications
// out to every open connection of a target identity.
package hub

import (
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/notify-service/internal/domain"
	"github.com/spec-kit/notify-service/internal/observability"
)

// Hub owns the connection index: the exact set of currently open,
// authenticated connections partitioned by identity. All mutation goes
// through Add/Remove so per-identity updates stay atomic.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{}
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger, metrics *observability.Metrics) *Hub {
	return &Hub{
		connections: make(map[string]map[*Connection]struct{}),
		logger:      logger,
		metrics:     metrics,
	}
}

// Add inserts an authenticated connection into its identity's set.
func (h *Hub) Add(c *Connection) {
	h.mu.Lock()
	set, ok := h.connections[c.Identity()]
	if !ok {
		set = make(map[*Connection]struct{})
		h.connections[c.Identity()] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	h.metrics.ConnectionOpened()
	h.logger.Info("connection added",
		zap.String("identity", c.Identity()),
		zap.String("connection_id", c.ID()))
}

// Remove deletes a connection from the index. Idempotent: a connection
// already removed (e.g. by a failed delivery) is a no-op. Callers must
// remove before releasing the transport so nothing routes to a dead
// connection.
func (h *Hub) Remove(c *Connection) {
	h.mu.Lock()
	set, ok := h.connections[c.Identity()]
	if ok {
		if _, present := set[c]; present {
			delete(set, c)
			if len(set) == 0 {
				delete(h.connections, c.Identity())
			}
		} else {
			ok = false
		}
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	h.metrics.ConnectionClosed()
	h.logger.Info("connection removed",
		zap.String("identity", c.Identity()),
		zap.String("connection_id", c.ID()))
}

// Deliver sends the notification to every live connection of the identity.
// No live connection is a silent no-op; a send failure on one connection is
// isolated, closes that connection, and delivery to the rest continues.
func (h *Hub) Deliver(identity, title, message string) {
	h.mu.RLock()
	set := h.connections[identity]
	targets := make([]*Connection, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.metrics.RecordDelivery(len(targets))
	if len(targets) == 0 {
		h.logger.Debug("no live connections for identity", zap.String("identity", identity))
		return
	}

	payload := domain.NewNotification(title, message)
	for _, c := range targets {
		if err := c.Send(payload); err != nil {
			h.metrics.RecordSendFailure()
			h.logger.Warn("send failed; closing connection",
				zap.String("identity", identity),
				zap.String("connection_id", c.ID()),
				zap.Error(err))
			h.Remove(c)
			c.Close()
		}
	}
}

// ConnectionCount reports how many live connections an identity owns.
func (h *Hub) ConnectionCount(identity string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[identity])
}

// CloseAll removes and closes every connection, used on server shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	var all []*Connection
	for identity, set := range h.connections {
		for c := range set {
			all = append(all, c)
		}
		delete(h.connections, identity)
	}
	h.mu.Unlock()

	for _, c := range all {
		h.metrics.ConnectionClosed()
		c.Close()
	}
	if len(all) > 0 {
		h.logger.Info("closed all connections", zap.Int("count", len(all)))
	}
}
