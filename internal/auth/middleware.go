package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tourism-backend/internal/engine"
	"tourism-backend/internal/logger"
)

const principalKey = "principal"

// RoleAdmin grants access to /api/_admin.
const RoleAdmin = "admin"

// Principal is the caller identified by a bearer token.
type Principal struct {
	Subject string   `json:"subject"`
	Roles   []string `json:"roles"`
}

func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthMiddleware validates the bearer token and stores the Principal on the
// request. The request logger gains a subject field.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return engine.UnauthorizedError("Missing auth token")
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return engine.UnauthorizedError("Invalid auth header format")
		}

		claims, err := ParseAccessToken(strings.TrimSpace(token), secret)
		if err != nil {
			return engine.UnauthorizedError("Invalid or expired token")
		}

		c.Locals(principalKey, &Principal{Subject: claims.Subject, Roles: claims.Roles})
		ctx := c.UserContext()
		c.SetUserContext(logger.ContextWithLogger(ctx, logger.FromContext(ctx).With(zap.String("subject", claims.Subject))))
		return c.Next()
	}
}

// RequireRole rejects principals without role. It must run after AuthMiddleware.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFrom(c)
		if p == nil {
			return engine.UnauthorizedError("Missing auth token")
		}
		if !p.HasRole(role) {
			return engine.ForbiddenError(role + " access required")
		}
		return c.Next()
	}
}

// RequireAdmin is RequireRole(RoleAdmin).
func RequireAdmin() fiber.Handler {
	return RequireRole(RoleAdmin)
}

// PrincipalFrom returns the authenticated caller, or nil.
func PrincipalFrom(c *fiber.Ctx) *Principal {
	p, _ := c.Locals(principalKey).(*Principal)
	return p
}
