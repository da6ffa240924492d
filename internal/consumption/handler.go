package consumption

import (
	"equipment-backend/internal/apperror"
	"equipment-backend/internal/auth"
	"equipment-backend/internal/export"
	"equipment-backend/internal/query"
	"equipment-backend/internal/response"

	"github.com/gofiber/fiber/v2"
)

// POST /api/consumption
func LogHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LogRequest
		if err := c.BodyParser(&body); err != nil {
			return apperror.Validation("Invalid request body")
		}
		p, _ := auth.PrincipalFrom(c)

		rec, err := svc.Log(c.UserContext(), p, body)
		if err != nil {
			return err
		}
		return response.Created(c, rec)
	}
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	var f Filter
	var err error
	if f.EquipmentID, err = query.OptionalUUID(c.Query("equipment_id"), "equipment_id"); err != nil {
		return f, err
	}
	if f.UserID, err = query.OptionalUUID(c.Query("user_id"), "user_id"); err != nil {
		return f, err
	}
	if f.Dates, err = query.ParseDateRange(c.Query("start_date"), c.Query("end_date")); err != nil {
		return f, err
	}
	if f.Page, err = query.ParsePage(c); err != nil {
		return f, err
	}
	return f, nil
}

// GET /api/consumption?equipment_id=&user_id=&start_date=&end_date=&limit=&offset=
func HistoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		list, err := svc.History(c.UserContext(), f)
		if err != nil {
			return err
		}
		return response.OK(c, list)
	}
}

// GET /api/consumption/export
func ExportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		buf, err := svc.Export(c.UserContext(), f)
		if err != nil {
			return err
		}
		return export.Send(c, "consumption.xlsx", buf)
	}
}

// GET /api/consumption/:id
func GetHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.ParamUUID(c, "id", "Consumption record")
		if err != nil {
			return err
		}
		rec, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return response.OK(c, rec)
	}
}

// GET /api/consumption/equipment/:equipment_id
func ByEquipmentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.ParamUUID(c, "equipment_id", "Equipment")
		if err != nil {
			return err
		}
		list, err := svc.ByEquipment(c.UserContext(), id)
		if err != nil {
			return err
		}
		return response.OK(c, list)
	}
}
