package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order: bir alıcı için ekipman çıkışı. Malzemeleri ile birlikte tek transaction'da oluşturulur.
type Order struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GeneratorModel string    `gorm:"size:255;not null" json:"generator_model"`
	OrderReference string    `gorm:"size:255;not null;index" json:"order_reference"`
	ReceiverName   string    `gorm:"size:255;not null;index" json:"receiver_name"`
	Notes          *string   `gorm:"type:text" json:"notes"`
	CreatedBy      uuid.UUID `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Materials []OrderMaterial `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"materials"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderMaterial: siparişteki tek bir ekipman satırı
type OrderMaterial struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"order_id"`
	EquipmentID uuid.UUID  `gorm:"type:uuid;index;not null" json:"equipment_id"`
	Equipment   *Equipment `gorm:"foreignKey:EquipmentID;constraint:OnDelete:RESTRICT" json:"-"`
	Quantity    int        `gorm:"not null;check:chk_order_materials_quantity_positive,quantity > 0" json:"quantity"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (m *OrderMaterial) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
