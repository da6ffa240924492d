package response

import (
	"errors"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/logging"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler: tüm hatalar buradan status + envelope'a çevrilir.
// 500'lerde iç hata loglanır ama body'e sızmaz.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := apperror.Status(err)
	msg := apperror.PublicMessage(err)

	if status >= fiber.StatusInternalServerError {
		var appErr *apperror.Error
		if !errors.As(err, &appErr) || appErr.Err != nil {
			logging.LogError("http", c.Method()+" "+c.Path(), "handler", nil, err)
		}
	}
	return Fail(c, status, msg)
}
