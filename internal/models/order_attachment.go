package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderAttachment: siparişe yüklenen dosyanın (fiş, irsaliye) metadata'sı.
// Dosyanın kendisi storage.Store'da FilePath anahtarıyla durur.
type OrderAttachment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID `gorm:"type:uuid;index;not null" json:"order_id"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	FilePath   string    `gorm:"size:512;not null" json:"file_path"`
	FileSize   int64     `gorm:"not null" json:"file_size"`
	FileType   string    `gorm:"size:100" json:"file_type"`
	Checksum   string    `gorm:"size:64" json:"checksum"` // blake2b-256 hex
	UploadedBy uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`

	FileURL string `gorm:"-" json:"file_url,omitempty"`
}

func (a *OrderAttachment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
