package notification

import (
	"strconv"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/auth"
	"equipment-backend/internal/query"
	"equipment-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GET /api/notifications?sent=false&user_id=...
func ListHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := auth.PrincipalFrom(c)

		var f Filter
		if p.IsAdmin() {
			uid, err := query.OptionalUUID(c.Query("user_id"), "user_id")
			if err != nil {
				return err
			}
			f.UserID = uid
		} else {
			// staff sadece kendi bildirimlerini görür
			f.UserID = &p.ID
		}

		if s := c.Query("sent"); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return apperror.Validation("sent must be true or false")
			}
			f.Sent = &b
		}

		list, err := svc.List(f)
		if err != nil {
			return err
		}
		return response.OK(c, list)
	}
}

// PUT /api/notifications/:id/sent
func MarkSentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.ParamUUID(c, "id", "Notification")
		if err != nil {
			return err
		}
		p, _ := auth.PrincipalFrom(c)

		var scope *uuid.UUID
		if !p.IsAdmin() {
			scope = &p.ID
		}
		n, err := svc.MarkSent(id, scope)
		if err != nil {
			return err
		}
		return response.OK(c, n)
	}
}
