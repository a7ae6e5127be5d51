package hub

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/notify-service/internal/auth"
	apperrors "github.com/spec-kit/notify-service/pkg/util"
)

const identityLocal = "ws_identity"

// Handler upgrades authenticated requests to WebSocket connections and
// runs their lifecycle against the hub.
type Handler struct {
	hub          *Hub
	writeTimeout time.Duration
	logger       *zap.Logger
	ws           fiber.Handler
}

// NewHandler builds the real-time channel handler. Authentication happens
// in the bearer middleware before the upgrade, so a request with a bad
// token is rejected with 401 and never reaches the index.
func NewHandler(h *Hub, writeTimeout time.Duration, logger *zap.Logger) *Handler {
	handler := &Handler{hub: h, writeTimeout: writeTimeout, logger: logger}
	handler.ws = websocket.New(handler.serve)
	return handler
}

// Upgrade is the fiber route handler for the notification channel.
func (h *Handler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return apperrors.NewDomainError("UPGRADE_REQUIRED", "websocket upgrade required", fiber.StatusUpgradeRequired, nil)
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing bearer token")
	}
	c.Locals(identityLocal, principal.Identity)
	return h.ws(c)
}

// serve owns one connection from upgrade to close. The read loop only
// detects disconnect; inbound frames are not processed. Removal from the
// index happens before the transport is released.
func (h *Handler) serve(conn *websocket.Conn) {
	identity, _ := conn.Locals(identityLocal).(string)
	if identity == "" {
		_ = conn.Close()
		return
	}

	c := NewConnection(identity, conn, h.writeTimeout)
	h.hub.Add(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.hub.Remove(c)
	c.Close()
}
