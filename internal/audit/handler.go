package audit

import (
	"equipment-backend/internal/apperror"
	"equipment-backend/internal/models"
	"equipment-backend/internal/query"
	"equipment-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      uuid.UUID          `json:"user_id"`
	UserEmail   string             `json:"user_email"`
	EntityType  string             `json:"entity_type"`
	EntityID    uuid.UUID          `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	BeforeData  string             `json:"before_data"`
	AfterData   string             `json:"after_data"`
}

// GET /api/audit-logs?entity_type=equipment&entity_id=...&user_id=...
func ListAuditLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f Filter
		var err error
		f.EntityType = c.Query("entity_type")
		if f.EntityID, err = query.OptionalUUID(c.Query("entity_id"), "entity_id"); err != nil {
			return err
		}
		if f.UserID, err = query.OptionalUUID(c.Query("user_id"), "user_id"); err != nil {
			return err
		}
		page, err := query.ParsePage(c)
		if err != nil {
			return err
		}

		logs, err := svc.List(f, page)
		if err != nil {
			return apperror.FromDB(err, "Failed to fetch audit logs")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, log := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          log.ID,
				CreatedAt:   log.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:      log.UserID,
				UserEmail:   log.UserEmail,
				EntityType:  log.EntityType,
				EntityID:    log.EntityID,
				Action:      log.Action,
				Description: log.Description,
				BeforeData:  log.BeforeData,
				AfterData:   log.AfterData,
			})
		}
		return response.OK(c, resp)
	}
}
