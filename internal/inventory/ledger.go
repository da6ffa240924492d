package inventory

import (
	"context"
	"time"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger: quantity_available üzerindeki tek yazma yolu.
// Her değişiklik tek bir koşullu UPDATE'tir, okuyup-yazma yapılmaz.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx: aynı ledger'ı verilen transaction üzerinde çalıştırır
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

func (l *Ledger) Available(ctx context.Context, id uuid.UUID) (int, error) {
	var eq models.Equipment
	err := l.db.WithContext(ctx).Select("id", "quantity_available").First(&eq, "id = ?", id).Error
	if err != nil {
		return 0, apperror.FromDB(err, "Equipment "+id.String()+" not found")
	}
	return eq.QuantityAvailable, nil
}

// Reservation: başarılı düşüm sonrası ekipmanın hali
type Reservation struct {
	Equipment         models.Equipment
	PreviousAvailable int
}

// TryReserve: quantity_available >= qty ise atomik olarak düşer.
// Etkilenen satır yoksa NotFound ya da InsufficientStock döner, stok değişmez.
func (l *Ledger) TryReserve(ctx context.Context, id uuid.UUID, qty int) (*Reservation, error) {
	if qty <= 0 {
		return nil, apperror.Validation("Quantity must be a positive integer")
	}
	db := l.db.WithContext(ctx)

	res := db.Model(&models.Equipment{}).
		Where("id = ? AND quantity_available >= ?", id, qty).
		Updates(map[string]any{
			"quantity_available": gorm.Expr("quantity_available - ?", qty),
			"updated_at":         time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, apperror.FromDB(res.Error, "Failed to reserve stock")
	}

	var eq models.Equipment
	if err := db.First(&eq, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, "Equipment "+id.String()+" not found")
	}
	if res.RowsAffected == 0 {
		return nil, apperror.InsufficientStock(eq.Name, eq.QuantityAvailable, qty)
	}
	return &Reservation{Equipment: eq, PreviousAvailable: eq.QuantityAvailable + qty}, nil
}

// Release: stoğu geri ekler, quantity_total'da doyar
func (l *Ledger) Release(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return apperror.Validation("Quantity must be a positive integer")
	}

	res := l.db.WithContext(ctx).Model(&models.Equipment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"quantity_available": gorm.Expr(
				"CASE WHEN quantity_available + ? > quantity_total THEN quantity_total ELSE quantity_available + ? END",
				qty, qty,
			),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return apperror.FromDB(res.Error, "Failed to release stock")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Equipment %s not found", id)
	}
	return nil
}
