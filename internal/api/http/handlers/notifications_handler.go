package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/notify-service/internal/api/dto"
	"github.com/spec-kit/notify-service/internal/service"
	apperrors "github.com/spec-kit/notify-service/pkg/util"
)

// NotificationsHandler accepts notification send requests.
type NotificationsHandler struct {
	dispatcher *service.NotificationDispatcher
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(dispatcher *service.NotificationDispatcher) *NotificationsHandler {
	return &NotificationsHandler{dispatcher: dispatcher}
}

// Send handles POST /notifications/send. Delivery is best effort; the call
// succeeds once the request validates.
func (h *NotificationsHandler) Send(c *fiber.Ctx) error {
	var req dto.SendNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.dispatcher.Send(c.Context(), req.UserID, req.Title, req.Message); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}
