package auth

import (
	"strings"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const CtxPrincipalKey = "principal"

func Authenticate(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
			return apperror.Unauthorized("No token provided")
		}

		p, err := a.Authenticate(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			return apperror.Unauthorized(err.Error())
		}

		c.Locals(CtxPrincipalKey, p)
		return c.Next()
	}
}

// PrincipalFrom: Authenticate middleware'inden sonra çağrılmalı
func PrincipalFrom(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(CtxPrincipalKey).(Principal)
	return p, ok
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return apperror.Unauthorized("Authentication required")
		}

		for _, r := range allowedRoles {
			if r == p.Role {
				return c.Next()
			}
		}
		if len(allowedRoles) == 1 && allowedRoles[0] == models.RoleAdmin {
			return apperror.Forbidden("Admin access required")
		}
		return apperror.Forbidden("Insufficient permissions")
	}
}
