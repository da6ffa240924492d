package prediction

import (
	"context"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service: tahminler harici bir servis tarafından üretilir, burada sadece okunur
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List: equipmentID nil ise tüm tahminler, tarih sırasıyla
func (s *Service) List(ctx context.Context, equipmentID *uuid.UUID) ([]models.Prediction, error) {
	q := s.db.WithContext(ctx).Model(&models.Prediction{})
	if equipmentID != nil {
		q = q.Where("equipment_id = ?", *equipmentID)
	}

	list := []models.Prediction{}
	if err := q.Order("prediction_date ASC").Order("equipment_id").Find(&list).Error; err != nil {
		return nil, apperror.FromDB(err, "Failed to fetch predictions")
	}
	return list, nil
}
