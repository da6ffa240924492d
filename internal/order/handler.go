package order

import (
	"strings"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/auth"
	"equipment-backend/internal/export"
	"equipment-backend/internal/models"
	"equipment-backend/internal/query"
	"equipment-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// POST /api/orders
// Idempotency-Key header'ı ve Redis varsa tekrar eden istek ilk siparişi 200 ile döner.
func CreateOrderHandler(svc *Service, idem *Idempotency) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return apperror.Validation("Invalid request body")
		}
		p, _ := auth.PrincipalFrom(c)
		ctx := c.UserContext()

		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if idem == nil || key == "" {
			order, err := svc.Create(ctx, p, body)
			if err != nil {
				return err
			}
			return response.Created(c, order)
		}
		if len(key) > 255 {
			return apperror.Validation("Idempotency-Key must be at most 255 characters")
		}

		id, replayed, err := idem.Do(ctx, p.ID, key, func() (uuid.UUID, error) {
			order, err := svc.Create(ctx, p, body)
			if err != nil {
				return uuid.Nil, err
			}
			return order.ID, nil
		})
		if err != nil {
			return err
		}
		order, err := svc.Get(ctx, id)
		if err != nil {
			return err
		}
		if replayed {
			return response.OK(c, order)
		}
		return response.Created(c, order)
	}
}

// GET /api/orders?receiver_name=...&limit=&offset=
func ListOrdersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := query.ParsePage(c)
		if err != nil {
			return err
		}
		list, err := svc.List(c.UserContext(), ListFilter{
			ReceiverName: strings.TrimSpace(c.Query("receiver_name")),
			Page:         page,
		})
		if err != nil {
			return err
		}
		return response.OK(c, list)
	}
}

// GET /api/orders/:id
func GetOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.ParamUUID(c, "id", "Order")
		if err != nil {
			return err
		}
		order, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return response.OK(c, order)
	}
}

// PUT /api/orders/:id
func UpdateOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.ParamUUID(c, "id", "Order")
		if err != nil {
			return err
		}
		var body UpdateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return apperror.Validation("Invalid request body")
		}
		p, _ := auth.PrincipalFrom(c)

		order, err := svc.Update(c.UserContext(), p, id, body)
		if err != nil {
			return err
		}
		return response.WithMessage(c, order, "Order updated successfully")
	}
}

// DELETE /api/orders/:id
func DeleteOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.ParamUUID(c, "id", "Order")
		if err != nil {
			return err
		}
		p, _ := auth.PrincipalFrom(c)

		if err := svc.Delete(c.UserContext(), p, id); err != nil {
			return err
		}
		return response.Message(c, "Order deleted successfully")
	}
}

func parseMovementFilter(c *fiber.Ctx) (MovementFilter, error) {
	var f MovementFilter
	var err error
	if f.EquipmentID, err = query.OptionalUUID(c.Query("equipment_id"), "equipment_id"); err != nil {
		return f, err
	}
	if t := strings.ToUpper(strings.TrimSpace(c.Query("type"))); t != "" {
		f.Type = models.MovementType(t)
		if f.Type != models.MovementIn && f.Type != models.MovementOut {
			return f, apperror.Validation("type must be IN or OUT")
		}
	}
	f.ReceiverName = strings.TrimSpace(c.Query("receiver_name"))
	if f.Dates, err = query.ParseDateRange(c.Query("start_date"), c.Query("end_date")); err != nil {
		return f, err
	}
	if f.Page, err = query.ParsePage(c); err != nil {
		return f, err
	}
	return f, nil
}

// GET /api/orders/history/movements
func MovementsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseMovementFilter(c)
		if err != nil {
			return err
		}
		list, err := svc.Movements(c.UserContext(), f)
		if err != nil {
			return err
		}
		return response.OK(c, list)
	}
}

// GET /api/orders/history/movements/export
func ExportMovementsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseMovementFilter(c)
		if err != nil {
			return err
		}
		buf, err := svc.ExportMovements(c.UserContext(), f)
		if err != nil {
			return err
		}
		return export.Send(c, "stock-movements.xlsx", buf)
	}
}

// POST /api/orders/:id/attachments (multipart, alan adı "file")
func UploadAttachmentHandler(svc *Service, maxBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.ParamUUID(c, "id", "Order")
		if err != nil {
			return err
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return apperror.Validation("No file uploaded")
		}
		f, err := fh.Open()
		if err != nil {
			return apperror.Validation("Uploaded file could not be read")
		}
		defer f.Close()

		p, _ := auth.PrincipalFrom(c)
		att, err := svc.UploadAttachment(c.UserContext(), p, id, Upload{
			FileName:    fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Body:        f,
		}, maxBytes)
		if err != nil {
			return err
		}
		return response.Created(c, att)
	}
}

// GET /api/orders/:id/attachments
func ListAttachmentsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.ParamUUID(c, "id", "Order")
		if err != nil {
			return err
		}
		list, err := svc.Attachments(c.UserContext(), id)
		if err != nil {
			return err
		}
		return response.OK(c, list)
	}
}

// DELETE /api/orders/attachments/:id
func DeleteAttachmentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := query.ParamUUID(c, "id", "Attachment")
		if err != nil {
			return err
		}
		if err := svc.DeleteAttachment(c.UserContext(), id); err != nil {
			return err
		}
		return response.Message(c, "Attachment deleted successfully")
	}
}
