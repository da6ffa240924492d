package consumption

import (
	"bytes"
	"context"
	"strings"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/auth"
	"equipment-backend/internal/export"
	"equipment-backend/internal/inventory"
	"equipment-backend/internal/logging"
	"equipment-backend/internal/metrics"
	"equipment-backend/internal/models"
	"equipment-backend/internal/notification"
	"equipment-backend/internal/query"
	"equipment-backend/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LogRequest struct {
	EquipmentID  uuid.UUID `json:"equipment_id" validate:"required"`
	QuantityUsed int       `json:"quantity_used" validate:"gt=0"`
	Purpose      *string   `json:"purpose" validate:"omitempty,max=500"`
}

type Filter struct {
	EquipmentID *uuid.UUID
	UserID      *uuid.UUID
	Dates       query.DateRange
	Page        query.Page
}

type Service struct {
	db     *gorm.DB
	ledger *inventory.Ledger
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, ledger: inventory.NewLedger(db)}
}

// Log: stok düşümü ve tüketim kaydı tek transaction. Ekipman yoksa ya da stok yetmezse hiçbir şey değişmez.
func (s *Service) Log(ctx context.Context, actor auth.Principal, req LogRequest) (*models.EquipmentConsumption, error) {
	if req.Purpose != nil {
		p := strings.TrimSpace(*req.Purpose)
		if p == "" {
			req.Purpose = nil
		} else {
			req.Purpose = &p
		}
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	rec := models.EquipmentConsumption{
		EquipmentID:  req.EquipmentID,
		QuantityUsed: req.QuantityUsed,
		Purpose:      req.Purpose,
		UserID:       actor.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := s.ledger.WithTx(tx).TryReserve(ctx, req.EquipmentID, req.QuantityUsed)
		if err != nil {
			return err
		}
		if err := tx.Create(&rec).Error; err != nil {
			return apperror.FromDB(err, "Failed to log consumption")
		}
		if _, err := notification.CreateLowStock(tx, res.Equipment, res.PreviousAvailable); err != nil {
			return apperror.FromDB(err, "Failed to create notification")
		}
		return nil
	})
	if err != nil {
		logging.Logger().WithField("equipment_id", req.EquipmentID).WithError(err).Debug("consumption rejected")
		return nil, err
	}

	metrics.ConsumptionLogged.Inc()
	return &rec, nil
}

// History: en yeni önce
func (s *Service) History(ctx context.Context, f Filter) ([]models.EquipmentConsumption, error) {
	q := s.db.WithContext(ctx).Model(&models.EquipmentConsumption{})
	if f.EquipmentID != nil {
		q = q.Where("equipment_id = ?", *f.EquipmentID)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	q = f.Dates.Apply(q, "date")
	q = f.Page.Apply(q)

	list := []models.EquipmentConsumption{}
	if err := q.Order("date DESC").Order("id").Find(&list).Error; err != nil {
		return nil, apperror.FromDB(err, "Failed to fetch consumption history")
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.EquipmentConsumption, error) {
	var rec models.EquipmentConsumption
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, "Consumption record not found")
	}
	return &rec, nil
}

func (s *Service) ByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]models.EquipmentConsumption, error) {
	return s.History(ctx, Filter{EquipmentID: &equipmentID})
}

func (s *Service) Export(ctx context.Context, f Filter) (*bytes.Buffer, error) {
	list, err := s.History(ctx, f)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(list))
	for _, r := range list {
		ids = append(ids, r.EquipmentID)
	}
	names := map[uuid.UUID]string{}
	if len(ids) > 0 {
		var eqs []models.Equipment
		if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&eqs).Error; err != nil {
			return nil, apperror.FromDB(err, "Failed to export consumption")
		}
		for _, e := range eqs {
			names[e.ID] = e.Name
		}
	}

	sheet := export.Sheet{
		Name:    "Consumption",
		Headers: []string{"Date", "Equipment", "Quantity Used", "Purpose", "User"},
		Rows:    make([][]any, 0, len(list)),
	}
	for _, r := range list {
		purpose := ""
		if r.Purpose != nil {
			purpose = *r.Purpose
		}
		sheet.Rows = append(sheet.Rows, []any{
			r.Date.Format("2006-01-02 15:04:05"),
			names[r.EquipmentID],
			r.QuantityUsed,
			purpose,
			r.UserID.String(),
		})
	}

	buf, err := sheet.Build()
	if err != nil {
		return nil, apperror.Storage("Failed to export consumption", err)
	}
	return buf, nil
}
