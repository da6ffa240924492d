package order

import (
	"bytes"
	"context"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/export"
	"equipment-backend/internal/models"
	"equipment-backend/internal/query"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementFilter struct {
	EquipmentID  *uuid.UUID
	Type         models.MovementType
	ReceiverName string
	Dates        query.DateRange
	Page         query.Page
}

func (f MovementFilter) apply(q *gorm.DB) *gorm.DB {
	if f.EquipmentID != nil {
		q = q.Where("equipment_id = ?", *f.EquipmentID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.ReceiverName != "" {
		q = q.Where("LOWER(receiver_name) LIKE LOWER(?)", "%"+f.ReceiverName+"%")
	}
	return f.Dates.Apply(q, "created_at")
}

// Movements: stok hareket geçmişi, en yeni önce. Eşleşme yoksa boş liste.
func (s *Service) Movements(ctx context.Context, f MovementFilter) ([]models.StockMovement, error) {
	q := f.apply(s.db.WithContext(ctx).Model(&models.StockMovement{}))
	q = f.Page.Apply(q)

	list := []models.StockMovement{}
	if err := q.Order("created_at DESC").Order("id").Find(&list).Error; err != nil {
		return nil, apperror.FromDB(err, "Failed to fetch stock movements")
	}
	return list, nil
}

// ExportMovements: filtreye uyan hareketleri ekipman adı ve sipariş referansıyla xlsx olarak üretir
func (s *Service) ExportMovements(ctx context.Context, f MovementFilter) (*bytes.Buffer, error) {
	list, err := s.Movements(ctx, f)
	if err != nil {
		return nil, err
	}

	eqIDs := make([]uuid.UUID, 0, len(list))
	orderIDs := make([]uuid.UUID, 0, len(list))
	for _, m := range list {
		eqIDs = append(eqIDs, m.EquipmentID)
		if m.RelatedOrderID != nil {
			orderIDs = append(orderIDs, *m.RelatedOrderID)
		}
	}

	names := map[uuid.UUID]string{}
	if len(eqIDs) > 0 {
		var eqs []models.Equipment
		if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", eqIDs).Find(&eqs).Error; err != nil {
			return nil, apperror.FromDB(err, "Failed to export stock movements")
		}
		for _, e := range eqs {
			names[e.ID] = e.Name
		}
	}
	refs := map[uuid.UUID]string{}
	if len(orderIDs) > 0 {
		var orders []models.Order
		if err := s.db.WithContext(ctx).Select("id", "order_reference").Where("id IN ?", orderIDs).Find(&orders).Error; err != nil {
			return nil, apperror.FromDB(err, "Failed to export stock movements")
		}
		for _, o := range orders {
			refs[o.ID] = o.OrderReference
		}
	}

	sheet := export.Sheet{
		Name:    "Stock Movements",
		Headers: []string{"Date", "Equipment", "Type", "Quantity", "Receiver", "Order Reference"},
		Rows:    make([][]any, 0, len(list)),
	}
	for _, m := range list {
		ref := ""
		if m.RelatedOrderID != nil {
			ref = refs[*m.RelatedOrderID]
		}
		sheet.Rows = append(sheet.Rows, []any{
			m.CreatedAt.Format("2006-01-02 15:04:05"),
			names[m.EquipmentID],
			string(m.Type),
			m.Quantity,
			m.ReceiverName,
			ref,
		})
	}

	buf, err := sheet.Build()
	if err != nil {
		return nil, apperror.Storage("Failed to export stock movements", err)
	}
	return buf, nil
}
