package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/notify-service/internal/api/dto"
	"github.com/spec-kit/notify-service/internal/auth"
	"github.com/spec-kit/notify-service/internal/service"
	apperrors "github.com/spec-kit/notify-service/pkg/util"
)

// AuthHandler exposes login and session validation endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	limiter auth.LoginLimiter
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, limiter auth.LoginLimiter) *AuthHandler {
	return &AuthHandler{auth: authService, limiter: limiter}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" || req.Password == "" {
		return apperrors.NewValidationError("userId and password are required", map[string]any{
			"userId":   "required",
			"password": "required",
		})
	}

	user, token, exp, err := h.auth.Register(c.Context(), req.UserID, req.Password, req.DisplayName)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dto.LoginResponse{Token: token, UserID: user.Username, ExpiresAt: exp})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" || req.Password == "" {
		return apperrors.NewValidationError("userId and password are required", map[string]any{
			"userId":   "required",
			"password": "required",
		})
	}

	if h.limiter != nil && !h.limiter.Allow(c.Context(), req.UserID, c.IP()) {
		return apperrors.NewRateLimited("too many login attempts")
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.UserID, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{Token: token, UserID: user.Username, ExpiresAt: exp})
}

// Validate handles GET /auth/validate. Reaching it means the bearer
// middleware already verified the token.
func (h *AuthHandler) Validate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing bearer token")
	}
	return c.JSON(dto.ValidateResponse{UserID: principal.Identity})
}
