package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/spec-kit/notify-service/pkg/util"
)

// NotificationHub is the delivery contract the dispatcher depends on.
type NotificationHub interface {
	Deliver(identity, title, message string)
}

// NotificationDispatcher validates notification requests and hands them to
// the connection hub. Delivery is best effort: an identity with no live
// connection absorbs the notification silently.
type NotificationDispatcher struct {
	hub    NotificationHub
	logger *zap.Logger
}

// NewNotificationDispatcher creates the dispatcher.
func NewNotificationDispatcher(h NotificationHub, logger *zap.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{hub: h, logger: logger}
}

// Send fans a notification out to every live connection of the user. The
// context bounds request-scoped work; delivery itself is bounded by each
// connection's write deadline.
func (d *NotificationDispatcher) Send(ctx context.Context, userID, title, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	missing := map[string]any{}
	if strings.TrimSpace(userID) == "" {
		missing["userId"] = "required"
	}
	if strings.TrimSpace(title) == "" {
		missing["title"] = "required"
	}
	if strings.TrimSpace(message) == "" {
		missing["message"] = "required"
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("userId, title and message are required", missing)
	}

	d.logger.Debug("dispatching notification", zap.String("identity", userID), zap.String("title", title))
	d.hub.Deliver(userID, title, message)
	return nil
}
