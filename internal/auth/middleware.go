package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/session"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

const userKey = "auth_user"

// Middleware validates bearer tokens and loads the acting user. The token
// is cross-checked against the session slot so logout invalidates
// outstanding tokens immediately.
type Middleware struct {
	tokens *TokenManager
	slot   session.Slot
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, slot session.Slot) *Middleware {
	return &Middleware{tokens: tokens, slot: slot}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	current, err := m.slot.Current(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	if current == nil || current.ID != claims.UserID {
		return apperrors.NewUnauthorized("session expired")
	}
	if !current.Active {
		return apperrors.NewUnauthorized("account deactivated")
	}

	c.Locals(userKey, current)
	return c.Next()
}

// UserFromContext retrieves the authenticated user.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(userKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
