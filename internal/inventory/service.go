package inventory

import (
	"context"
	"strings"
	"time"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/audit"
	"equipment-backend/internal/auth"
	"equipment-backend/internal/models"
	"equipment-backend/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateEquipmentRequest struct {
	Name              string               `json:"name" validate:"required,max=255"`
	Type              models.EquipmentType `json:"type" validate:"required,oneof=electrical manual"`
	QuantityTotal     int                  `json:"quantity_total" validate:"gte=0"`
	QuantityAvailable *int                 `json:"quantity_available" validate:"omitempty,gte=0"`
	MinimumThreshold  int                  `json:"minimum_threshold" validate:"gte=0"`
	UnitPrice         *decimal.Decimal     `json:"unit_price"`
	Location          string               `json:"location" validate:"max=255"`
	SupplierID        *uuid.UUID           `json:"supplier_id"`
}

// UpdateEquipmentRequest: sadece gönderilen alanlar değişir
type UpdateEquipmentRequest struct {
	Name              *string               `json:"name" validate:"omitempty,min=1,max=255"`
	Type              *models.EquipmentType `json:"type" validate:"omitempty,oneof=electrical manual"`
	QuantityTotal     *int                  `json:"quantity_total" validate:"omitempty,gte=0"`
	QuantityAvailable *int                  `json:"quantity_available" validate:"omitempty,gte=0"`
	MinimumThreshold  *int                  `json:"minimum_threshold" validate:"omitempty,gte=0"`
	UnitPrice         *decimal.Decimal      `json:"unit_price"`
	Location          *string               `json:"location" validate:"omitempty,max=255"`
	SupplierID        *uuid.UUID            `json:"supplier_id"`
}

type ListFilter struct {
	Type   models.EquipmentType
	Search string
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Equipment, error) {
	q := s.db.WithContext(ctx).Model(&models.Equipment{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+f.Search+"%")
	}

	list := []models.Equipment{}
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, apperror.FromDB(err, "Failed to fetch equipments")
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	var eq models.Equipment
	if err := s.db.WithContext(ctx).First(&eq, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, "Equipment not found")
	}
	return &eq, nil
}

// LowStock: quantity_available <= minimum_threshold, en az stoklu olan önce
func (s *Service) LowStock(ctx context.Context) ([]models.Equipment, error) {
	list := []models.Equipment{}
	err := s.db.WithContext(ctx).
		Where("quantity_available <= minimum_threshold").
		Order("quantity_available ASC").Order("name ASC").
		Find(&list).Error
	if err != nil {
		return nil, apperror.FromDB(err, "Failed to fetch low stock equipments")
	}
	return list, nil
}

func (s *Service) Create(ctx context.Context, actor auth.Principal, req CreateEquipmentRequest) (*models.Equipment, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := checkPrice(req.UnitPrice); err != nil {
		return nil, err
	}

	available := req.QuantityTotal
	if req.QuantityAvailable != nil {
		available = *req.QuantityAvailable
	}
	if available > req.QuantityTotal {
		return nil, apperror.Validation("Available quantity cannot exceed total quantity")
	}

	eq := models.Equipment{
		Name:              req.Name,
		Type:              req.Type,
		QuantityTotal:     req.QuantityTotal,
		QuantityAvailable: available,
		MinimumThreshold:  req.MinimumThreshold,
		UnitPrice:         req.UnitPrice,
		Location:          req.Location,
		SupplierID:        req.SupplierID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&eq).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "equipment",
			EntityID:    eq.ID,
			Action:      models.AuditActionCreate,
			Description: "Ekipman oluşturuldu: " + eq.Name,
			After:       eq,
		})
	})
	if err != nil {
		return nil, apperror.FromDB(err, "Failed to create equipment")
	}
	return &eq, nil
}

// Update: birleştirilmiş hal 0 <= available <= total koşulunu sağlamalı.
// Miktar alanları değişiyorsa yazma, okunan quantity_available hâlâ aynıysa yapılır.
func (s *Service) Update(ctx context.Context, actor auth.Principal, id uuid.UUID, req UpdateEquipmentRequest) (*models.Equipment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := checkPrice(req.UnitPrice); err != nil {
		return nil, err
	}

	var updated models.Equipment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Equipment
		if err := tx.First(&current, "id = ?", id).Error; err != nil {
			return apperror.FromDB(err, "Equipment not found")
		}

		merged := current
		changes := map[string]any{}
		if req.Name != nil {
			merged.Name = strings.TrimSpace(*req.Name)
			if merged.Name == "" {
				return apperror.Validation("name must be at least 1 characters")
			}
			changes["name"] = merged.Name
		}
		if req.Type != nil {
			merged.Type = *req.Type
			changes["type"] = merged.Type
		}
		if req.QuantityTotal != nil {
			merged.QuantityTotal = *req.QuantityTotal
			changes["quantity_total"] = merged.QuantityTotal
		}
		if req.QuantityAvailable != nil {
			merged.QuantityAvailable = *req.QuantityAvailable
			changes["quantity_available"] = merged.QuantityAvailable
		}
		if req.MinimumThreshold != nil {
			merged.MinimumThreshold = *req.MinimumThreshold
			changes["minimum_threshold"] = merged.MinimumThreshold
		}
		if req.UnitPrice != nil {
			merged.UnitPrice = req.UnitPrice
			changes["unit_price"] = *req.UnitPrice
		}
		if req.Location != nil {
			merged.Location = strings.TrimSpace(*req.Location)
			changes["location"] = merged.Location
		}
		if req.SupplierID != nil {
			merged.SupplierID = req.SupplierID
			changes["supplier_id"] = *req.SupplierID
		}

		if merged.QuantityAvailable > merged.QuantityTotal {
			return apperror.Validation("Available quantity cannot exceed total quantity")
		}
		if len(changes) == 0 {
			updated = current
			return nil
		}
		changes["updated_at"] = time.Now().UTC()

		q := tx.Model(&models.Equipment{}).Where("id = ?", id)
		_, touchesQty := changes["quantity_available"]
		if _, ok := changes["quantity_total"]; ok {
			touchesQty = true
		}
		if touchesQty {
			q = q.Where("quantity_available = ?", current.QuantityAvailable)
		}
		res := q.Updates(changes)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("Equipment stock changed concurrently, please retry", nil)
		}

		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "equipment",
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: "Ekipman güncellendi: " + updated.Name,
			Before:      current,
			After:       updated,
		})
	})
	if err != nil {
		return nil, apperror.FromDB(err, "Failed to update equipment")
	}
	return &updated, nil
}

// Delete: sipariş, hareket ya da tüketim kaydı olan ekipman silinemez
func (s *Service) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq models.Equipment
		if err := tx.First(&eq, "id = ?", id).Error; err != nil {
			return apperror.FromDB(err, "Equipment not found")
		}

		for _, ref := range []any{&models.OrderMaterial{}, &models.StockMovement{}, &models.EquipmentConsumption{}} {
			var n int64
			if err := tx.Model(ref).Where("equipment_id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return apperror.Conflict("Equipment is referenced by orders or history and cannot be deleted", nil)
			}
		}

		// türetilmiş kayıtlar ekipmanla birlikte gider
		if err := tx.Where("equipment_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("equipment_id = ?", id).Delete(&models.Prediction{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Equipment{}, "id = ?", id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "equipment",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Ekipman silindi: " + eq.Name,
			Before:      eq,
		})
	})
	return apperror.FromDB(err, "Failed to delete equipment")
}

func checkPrice(p *decimal.Decimal) error {
	if p != nil && p.IsNegative() {
		return apperror.Validation("unit_price must be a non-negative number")
	}
	return nil
}
