package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// StockMovement: append-only stok hareketi. Sadece ilgili sipariş silinirken silinir.
type StockMovement struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID    uuid.UUID    `gorm:"type:uuid;index;not null" json:"equipment_id"`
	Type           MovementType `gorm:"size:3;index;not null" json:"type"`
	Quantity       int          `gorm:"not null;check:chk_stock_movements_quantity_positive,quantity > 0" json:"quantity"`
	RelatedOrderID *uuid.UUID   `gorm:"type:uuid;index" json:"related_order_id"`
	ReceiverName   string       `gorm:"size:255" json:"receiver_name"`
	CreatedBy      uuid.UUID    `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt      time.Time    `gorm:"index" json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
