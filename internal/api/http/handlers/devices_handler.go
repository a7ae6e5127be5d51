package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/notify-service/internal/api/dto"
	"github.com/spec-kit/notify-service/internal/auth"
	"github.com/spec-kit/notify-service/internal/domain"
	"github.com/spec-kit/notify-service/internal/registry"
	apperrors "github.com/spec-kit/notify-service/pkg/util"
)

// DevicesHandler manages a user's push device registrations.
type DevicesHandler struct {
	devices registry.DeviceRegistry
}

// NewDevicesHandler constructs handler.
func NewDevicesHandler(devices registry.DeviceRegistry) *DevicesHandler {
	return &DevicesHandler{devices: devices}
}

// Register handles POST /devices/register.
func (h *DevicesHandler) Register(c *fiber.Ctx) error {
	var req dto.DeviceRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DeviceToken == "" || req.Platform == "" {
		return apperrors.NewValidationError("deviceToken and platform are required", map[string]any{
			"deviceToken": "required",
			"platform":    "required",
		})
	}

	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing bearer token")
	}

	h.devices.Register(principal.Identity, domain.DeviceRegistration{
		DeviceToken: req.DeviceToken,
		Platform:    req.Platform,
	})
	return c.SendStatus(fiber.StatusOK)
}

// List handles GET /devices, returning the caller's registrations.
func (h *DevicesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing bearer token")
	}
	return c.JSON(fiber.Map{"devices": h.devices.ListFor(principal.Identity)})
}

// Unregister handles DELETE /devices.
func (h *DevicesHandler) Unregister(c *fiber.Ctx) error {
	var req dto.DeviceUnregisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DeviceToken == "" || req.Platform == "" {
		return apperrors.NewValidationError("deviceToken and platform are required", nil)
	}

	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing bearer token")
	}

	removed := h.devices.Unregister(principal.Identity, req.DeviceToken, req.Platform)
	return c.JSON(fiber.Map{"removed": removed})
}
