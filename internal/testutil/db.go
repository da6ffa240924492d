// Package testutil: paket testlerinin ortak yardımcıları.
package testutil

import (
	"fmt"
	"testing"

	"equipment-backend/internal/database"
	"equipment-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB: her test için ayrı in-memory SQLite, şema database.Migrate ile kurulur.
// Tek bağlantı: transaction içindeki sorgular hep tx üzerinden gitmeli.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// SeedEquipment: verilen stokla ekipman oluşturur
func SeedEquipment(t *testing.T, db *gorm.DB, name string, total, available, threshold int) models.Equipment {
	t.Helper()
	eq := models.Equipment{
		Name:              name,
		Type:              models.EquipmentTypeManual,
		QuantityTotal:     total,
		QuantityAvailable: available,
		MinimumThreshold:  threshold,
	}
	require.NoError(t, db.Create(&eq).Error)
	return eq
}

// Available: DB'deki güncel quantity_available
func Available(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var eq models.Equipment
	require.NoError(t, db.First(&eq, "id = ?", id).Error)
	return eq.QuantityAvailable
}

func Count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
