package audit

import (
	"encoding/json"
	"fmt"

	"equipment-backend/internal/auth"
	"equipment-backend/internal/models"
	"equipment-backend/internal/query"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LogOptions struct {
	Actor       auth.Principal
	EntityType  string
	EntityID    uuid.UUID
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog: çağıranın transaction'ı içinde yazılır, iş geri alınırsa log da geri alınır
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	// jsonb için boş string yerine "null"
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.Actor.ID,
		UserEmail:   opts.Actor.Email,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := tx.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}

type Filter struct {
	EntityType string
	EntityID   *uuid.UUID
	UserID     *uuid.UUID
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(f Filter, page query.Page) ([]models.AuditLog, error) {
	dbq := s.db.Model(&models.AuditLog{})
	if f.EntityType != "" {
		dbq = dbq.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != nil {
		dbq = dbq.Where("entity_id = ?", *f.EntityID)
	}
	if f.UserID != nil {
		dbq = dbq.Where("user_id = ?", *f.UserID)
	}
	dbq = page.Apply(dbq)

	logs := []models.AuditLog{}
	if err := dbq.Order("created_at DESC").Order("id DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
