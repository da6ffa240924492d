package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EquipmentType string

const (
	EquipmentTypeElectrical EquipmentType = "electrical"
	EquipmentTypeManual     EquipmentType = "manual"
)

// Equipment: stokta takip edilen ekipman.
// 0 <= quantity_available <= quantity_total her commit sonrası geçerli olmalı, DB check constraint'i de bunu zorlar.
type Equipment struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string           `gorm:"size:255;not null" json:"name"`
	Type              EquipmentType    `gorm:"size:20;not null" json:"type"`
	QuantityTotal     int              `gorm:"not null;check:chk_equipments_total_non_negative,quantity_total >= 0" json:"quantity_total"`
	QuantityAvailable int              `gorm:"not null;index;check:chk_equipments_available_range,quantity_available >= 0 AND quantity_available <= quantity_total" json:"quantity_available"`
	MinimumThreshold  int              `gorm:"not null;check:chk_equipments_threshold_non_negative,minimum_threshold >= 0" json:"minimum_threshold"`
	UnitPrice         *decimal.Decimal `gorm:"type:numeric(12,2)" json:"unit_price"`
	Location          string           `gorm:"size:255" json:"location"`
	SupplierID        *uuid.UUID       `gorm:"type:uuid" json:"supplier_id"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (e *Equipment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

// IsLowStock: mevcut miktar minimum eşiğe indi mi?
func (e *Equipment) IsLowStock() bool {
	return e.QuantityAvailable <= e.MinimumThreshold
}
