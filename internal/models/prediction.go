package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prediction: tahmin servisinin yazdığı günlük tüketim tahmini. Bu servis sadece okur.
type Prediction struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_predictions_equipment_date" json:"equipment_id"`
	PredictedConsumption float64   `gorm:"not null" json:"predicted_consumption"`
	PredictionDate       time.Time `gorm:"type:date;not null;uniqueIndex:idx_predictions_equipment_date" json:"prediction_date"`
	ConfidenceScore      float64   `gorm:"not null;default:0.5" json:"confidence_score"`
	CreatedAt            time.Time `json:"created_at"`
}

func (p *Prediction) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
