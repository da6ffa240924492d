package notification

import (
	"fmt"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/metrics"
	"equipment-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Filter struct {
	// nil: tüm kullanıcılar (sadece admin)
	UserID *uuid.UUID
	Sent   *bool
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List: UserID verilirse kullanıcının kendi bildirimleri ve broadcast (user_id NULL) olanlar döner
func (s *Service) List(f Filter) ([]models.Notification, error) {
	q := s.db.Model(&models.Notification{})
	if f.UserID != nil {
		q = q.Where("user_id = ? OR user_id IS NULL", *f.UserID)
	}
	if f.Sent != nil {
		q = q.Where("sent = ?", *f.Sent)
	}

	list := []models.Notification{}
	if err := q.Order("timestamp DESC").Find(&list).Error; err != nil {
		return nil, apperror.FromDB(err, "Failed to fetch notifications")
	}
	return list, nil
}

// MarkSent: staff sadece kendi ya da broadcast bildirimini işaretleyebilir
func (s *Service) MarkSent(id uuid.UUID, userID *uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	q := s.db.Where("id = ?", id)
	if userID != nil {
		q = q.Where("user_id = ? OR user_id IS NULL", *userID)
	}
	if err := q.First(&n).Error; err != nil {
		return nil, apperror.FromDB(err, "Notification not found")
	}

	if err := s.db.Model(&n).Update("sent", true).Error; err != nil {
		return nil, apperror.FromDB(err, "Failed to update notification")
	}
	n.Sent = true
	return &n, nil
}

func LowStockMessage(eq models.Equipment) string {
	return fmt.Sprintf("Low stock alert: %s has only %d units available (threshold: %d)",
		eq.Name, eq.QuantityAvailable, eq.MinimumThreshold)
}

// CreateLowStock: stok eşiğin üstünden eşiğe ya da altına indiğinde çağıranın tx'i içinde broadcast bildirim yazar.
// Zaten eşiğin altında olan ekipman için her düşüşte tekrar yazılmaz.
func CreateLowStock(tx *gorm.DB, eq models.Equipment, previousAvailable int) (bool, error) {
	if !eq.IsLowStock() || previousAvailable <= eq.MinimumThreshold {
		return false, nil
	}

	n := models.Notification{
		Type:        models.NotificationDashboard,
		Message:     LowStockMessage(eq),
		EquipmentID: &eq.ID,
	}
	if err := tx.Create(&n).Error; err != nil {
		return false, err
	}
	metrics.LowStockNotifications.Inc()
	return true, nil
}
