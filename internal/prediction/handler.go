package prediction

import (
	"equipment-backend/internal/query"
	"equipment-backend/internal/response"

	"github.com/gofiber/fiber/v2"
)

// GET /api/predictions?equipment_id=
func ListHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.OptionalUUID(c.Query("equipment_id"), "equipment_id")
		if err != nil {
			return err
		}
		list, err := svc.List(c.UserContext(), id)
		if err != nil {
			return err
		}
		return response.OK(c, list)
	}
}

// GET /api/predictions/:equipment_id
func ByEquipmentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.OptionalUUID(c.Params("equipment_id"), "equipment_id")
		if err != nil {
			return err
		}
		list, err := svc.List(c.UserContext(), id)
		if err != nil {
			return err
		}
		return response.OK(c, list)
	}
}
