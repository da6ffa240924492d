package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Hangi kullanıcı? (kimlik sağlayıcıdaki id)
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	UserEmail string    `gorm:"size:255" json:"user_email"`

	// Hangi entity? (ör: "equipment", "order")
	EntityType string    `gorm:"size:50;index" json:"entity_type"`
	EntityID   uuid.UUID `gorm:"type:uuid;index" json:"entity_id"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	// Önceki ve sonraki hal (JSON)
	BeforeData string `gorm:"type:jsonb" json:"before_data"`
	AfterData  string `gorm:"type:jsonb" json:"after_data"`
}
