package inventory

import (
	"strings"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/auth"
	"equipment-backend/internal/models"
	"equipment-backend/internal/query"
	"equipment-backend/internal/response"

	"github.com/gofiber/fiber/v2"
)

// GET /api/equipments?type=manual&search=kablo
func ListEquipmentsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := ListFilter{
			Type:   models.EquipmentType(c.Query("type")),
			Search: strings.TrimSpace(c.Query("search")),
		}
		if f.Type != "" && f.Type != models.EquipmentTypeElectrical && f.Type != models.EquipmentTypeManual {
			return apperror.Validation(`type must be either "electrical" or "manual"`)
		}

		list, err := svc.List(c.UserContext(), f)
		if err != nil {
			return err
		}
		return response.OK(c, list)
	}
}

// GET /api/equipments/low-stock
func LowStockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.LowStock(c.UserContext())
		if err != nil {
			return err
		}
		return response.OK(c, list)
	}
}

// GET /api/equipments/:id
func GetEquipmentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.ParamUUID(c, "id", "Equipment")
		if err != nil {
			return err
		}
		eq, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return response.OK(c, eq)
	}
}

// POST /api/equipments (admin)
func CreateEquipmentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateEquipmentRequest
		if err := c.BodyParser(&body); err != nil {
			return apperror.Validation("Invalid request body")
		}
		p, _ := auth.PrincipalFrom(c)

		eq, err := svc.Create(c.UserContext(), p, body)
		if err != nil {
			return err
		}
		return response.Created(c, eq)
	}
}

// PUT /api/equipments/:id (admin)
func UpdateEquipmentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.ParamUUID(c, "id", "Equipment")
		if err != nil {
			return err
		}
		var body UpdateEquipmentRequest
		if err := c.BodyParser(&body); err != nil {
			return apperror.Validation("Invalid request body")
		}
		p, _ := auth.PrincipalFrom(c)

		eq, err := svc.Update(c.UserContext(), p, id, body)
		if err != nil {
			return err
		}
		return response.OK(c, eq)
	}
}

// DELETE /api/equipments/:id (admin)
func DeleteEquipmentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.ParamUUID(c, "id", "Equipment")
		if err != nil {
			return err
		}
		p, _ := auth.PrincipalFrom(c)

		if err := svc.Delete(c.UserContext(), p, id); err != nil {
			return err
		}
		return response.Message(c, "Equipment deleted successfully")
	}
}
