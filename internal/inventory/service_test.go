package inventory_test

import (
	"context"
	"testing"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/auth"
	"equipment-backend/internal/inventory"
	"equipment-backend/internal/models"
	"equipment-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var admin = auth.Principal{ID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin}

func intPtr(v int) *int { return &v }

func TestCreateDefaultsAvailableToTotal(t *testing.T) {
	db := testutil.NewDB(t)
	svc := inventory.NewService(db)
	price := decimal.RequireFromString("12.50")

	eq, err := svc.Create(context.Background(), admin, inventory.CreateEquipmentRequest{
		Name:             "  Extension cable ",
		Type:             models.EquipmentTypeElectrical,
		QuantityTotal:    20,
		MinimumThreshold: 5,
		UnitPrice:        &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "Extension cable", eq.Name)
	assert.Equal(t, 20, eq.QuantityAvailable)
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.AuditLog{}))

	got, err := svc.Get(context.Background(), eq.ID)
	require.NoError(t, err)
	require.NotNil(t, got.UnitPrice)
	assert.True(t, price.Equal(*got.UnitPrice))
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	db := testutil.NewDB(t)
	svc := inventory.NewService(db)

	_, err := svc.Create(context.Background(), admin, inventory.CreateEquipmentRequest{
		Name: "Saw", Type: models.EquipmentTypeManual, QuantityTotal: 2, QuantityAvailable: intPtr(3),
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Create(context.Background(), admin, inventory.CreateEquipmentRequest{
		Name: "Saw", Type: "hydraulic", QuantityTotal: 2,
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	neg := decimal.NewFromInt(-1)
	_, err = svc.Create(context.Background(), admin, inventory.CreateEquipmentRequest{
		Name: "Saw", Type: models.EquipmentTypeManual, QuantityTotal: 2, UnitPrice: &neg,
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	assert.Equal(t, int64(0), testutil.Count(t, db, &models.Equipment{}))
}

func TestUpdateChecksMergedInvariant(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Ladder", 10, 8, 2)
	svc := inventory.NewService(db)

	// total 8'in altına inemez çünkü available 8
	_, err := svc.Update(context.Background(), admin, eq.ID, inventory.UpdateEquipmentRequest{QuantityTotal: intPtr(5)})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	updated, err := svc.Update(context.Background(), admin, eq.ID, inventory.UpdateEquipmentRequest{
		QuantityTotal:     intPtr(5),
		QuantityAvailable: intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.QuantityTotal)
	assert.Equal(t, 5, updated.QuantityAvailable)

	name := "Tall ladder"
	updated, err = svc.Update(context.Background(), admin, eq.ID, inventory.UpdateEquipmentRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Tall ladder", updated.Name)
	assert.Equal(t, 5, updated.QuantityAvailable)

	_, err = svc.Update(context.Background(), admin, uuid.New(), inventory.UpdateEquipmentRequest{Name: &name})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// stockChangedBeforeWrite: ilk ekipman UPDATE'inden hemen önce, aynı transaction içinde
// quantity_available'ı değiştirir. Okuma ile yazma arasına giren başka bir istek gibi davranır.
func stockChangedBeforeWrite(t *testing.T, db *gorm.DB, id uuid.UUID) {
	t.Helper()
	fired := false
	err := db.Callback().Update().Before("gorm:update").Register("test:stock_changed", func(d *gorm.DB) {
		if fired || d.Statement.Table != "equipments" {
			return
		}
		fired = true
		_, err := d.Statement.ConnPool.ExecContext(d.Statement.Context,
			"UPDATE equipments SET quantity_available = quantity_available - 1 WHERE id = ?", id)
		require.NoError(t, err)
	})
	require.NoError(t, err)
}

func TestUpdateQuantityConflictsWhenStockChanged(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Generator", 10, 6, 2)
	svc := inventory.NewService(db)
	stockChangedBeforeWrite(t, db, eq.ID)

	_, err := svc.Update(context.Background(), admin, eq.ID, inventory.UpdateEquipmentRequest{QuantityTotal: intPtr(12)})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	// transaction geri alındı, ne yeni total ne de araya giren değişiklik kaldı
	got, err := svc.Get(context.Background(), eq.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.QuantityTotal)
	assert.Equal(t, 6, got.QuantityAvailable)
	assert.Zero(t, testutil.Count(t, db, &models.AuditLog{}))
}

func TestUpdateWithoutQuantityIgnoresStockChange(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Generator", 10, 6, 2)
	svc := inventory.NewService(db)
	stockChangedBeforeWrite(t, db, eq.ID)

	loc := "Depot B"
	updated, err := svc.Update(context.Background(), admin, eq.ID, inventory.UpdateEquipmentRequest{Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Depot B", updated.Location)
	assert.Equal(t, 5, updated.QuantityAvailable)
}

func TestDeleteReferencedEquipmentConflicts(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Pump", 4, 4, 1)
	free := testutil.SeedEquipment(t, db, "Spare", 1, 1, 0)
	require.NoError(t, db.Create(&models.StockMovement{
		EquipmentID: eq.ID, Type: models.MovementOut, Quantity: 1, ReceiverName: "Ali", CreatedBy: admin.ID,
	}).Error)
	svc := inventory.NewService(db)

	err := svc.Delete(context.Background(), admin, eq.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	require.NoError(t, svc.Delete(context.Background(), admin, free.ID))
	_, err = svc.Get(context.Background(), free.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), admin, free.ID), apperror.ErrNotFound)
}

func TestLowStockOrdering(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedEquipment(t, db, "Plenty", 50, 40, 5)
	testutil.SeedEquipment(t, db, "AtThreshold", 10, 3, 3)
	testutil.SeedEquipment(t, db, "Empty", 10, 0, 2)
	testutil.SeedEquipment(t, db, "Below", 10, 1, 4)

	list, err := inventory.NewService(db).LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Empty", list[0].Name)
	assert.Equal(t, "Below", list[1].Name)
	assert.Equal(t, "AtThreshold", list[2].Name)
}

func TestListEmptyIsNotNil(t *testing.T) {
	db := testutil.NewDB(t)
	list, err := inventory.NewService(db).List(context.Background(), inventory.ListFilter{Search: "nothing"})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
