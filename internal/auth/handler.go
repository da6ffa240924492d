package auth

import (
	"equipment-backend/internal/apperror"
	"equipment-backend/internal/response"

	"github.com/gofiber/fiber/v2"
)

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return apperror.Unauthorized("Authentication required")
		}
		return response.OK(c, p)
	}
}
