package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EquipmentConsumption: tek ekipman için kullanım kaydı (append-only)
type EquipmentConsumption struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID  uuid.UUID `gorm:"type:uuid;index;not null" json:"equipment_id"`
	QuantityUsed int       `gorm:"not null;check:chk_equipment_consumption_quantity_positive,quantity_used > 0" json:"quantity_used"`
	Purpose      *string   `gorm:"size:500" json:"purpose"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Date         time.Time `gorm:"index;not null" json:"date"`
	CreatedAt    time.Time `json:"created_at"`
}

func (EquipmentConsumption) TableName() string { return "equipment_consumption" }

func (c *EquipmentConsumption) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	if c.Date.IsZero() {
		c.Date = time.Now()
	}
	return nil
}
