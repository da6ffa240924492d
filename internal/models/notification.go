package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationEmail     NotificationType = "email"
	NotificationDashboard NotificationType = "dashboard"
)

// Notification: UserID nil ise tüm kullanıcılara (broadcast) gösterilir
type Notification struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Type        NotificationType `gorm:"size:20;not null" json:"type"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	EquipmentID *uuid.UUID       `gorm:"type:uuid;index" json:"equipment_id"`
	UserID      *uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	Sent        bool             `gorm:"not null;default:false;index" json:"sent"`
	Timestamp   time.Time        `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
