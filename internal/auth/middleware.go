package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/notify-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Tokens are stateless, so
// the principal is built entirely from verified claims.
type Principal struct {
	Identity string
	Role     string
}

// AuthMiddleware validates bearer tokens on protected routes.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes. The token comes
// from the Authorization header only.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	return m.authenticate(c, false)
}

// HandleRealtime additionally accepts the access_token query parameter.
// It guards only the real-time channel route, whose handshake cannot
// always carry custom headers.
func (m *AuthMiddleware) HandleRealtime(c *fiber.Ctx) error {
	return m.authenticate(c, true)
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx, allowQuery bool) error {
	tokenStr := bearerFromHeader(c.Get("Authorization"))
	if tokenStr == "" && allowQuery {
		tokenStr = c.Query("access_token")
	}
	if tokenStr == "" {
		return apperrors.NewUnauthorized("missing bearer token")
	}

	claims, err := m.tokens.Validate(tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, &Principal{Identity: claims.Identity(), Role: claims.Role})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func bearerFromHeader(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
