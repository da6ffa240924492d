package inventory_test

import (
	"context"
	"sync"
	"testing"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/inventory"
	"equipment-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryReserveDecrements(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Cable", 10, 10, 2)
	l := inventory.NewLedger(db)

	res, err := l.TryReserve(context.Background(), eq.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Equipment.QuantityAvailable)
	assert.Equal(t, 10, res.PreviousAvailable)

	avail, err := l.Available(context.Background(), eq.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, avail)
}

func TestTryReserveInsufficientLeavesStock(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Drill", 5, 3, 1)
	l := inventory.NewLedger(db)

	_, err := l.TryReserve(context.Background(), eq.ID, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	assert.Equal(t, "Insufficient stock for Drill. Available: 3, Requested: 4", err.Error())
	assert.Equal(t, 3, testutil.Available(t, db, eq.ID))
}

func TestTryReserveExactAmountReachesZero(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Fuse", 3, 3, 0)

	_, err := inventory.NewLedger(db).TryReserve(context.Background(), eq.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, testutil.Available(t, db, eq.ID))
}

func TestTryReserveUnknownEquipment(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := inventory.NewLedger(db).TryReserve(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestTryReserveRejectsNonPositive(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Fuse", 3, 3, 0)
	_, err := inventory.NewLedger(db).TryReserve(context.Background(), eq.ID, 0)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, 3, testutil.Available(t, db, eq.ID))
}

func TestReleaseSaturatesAtTotal(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Hammer", 10, 8, 1)
	l := inventory.NewLedger(db)

	require.NoError(t, l.Release(context.Background(), eq.ID, 1))
	assert.Equal(t, 9, testutil.Available(t, db, eq.ID))

	require.NoError(t, l.Release(context.Background(), eq.ID, 5))
	assert.Equal(t, 10, testutil.Available(t, db, eq.ID))

	assert.ErrorIs(t, l.Release(context.Background(), uuid.New(), 1), apperror.ErrNotFound)
}

// Eşzamanlı rezervasyonlar toplamda stoktan fazlasını düşemez
func TestConcurrentReservationsNeverOversell(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Generator", 10, 10, 0)
	l := inventory.NewLedger(db)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.TryReserve(context.Background(), eq.ID, 3); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, success)
	assert.Equal(t, 1, testutil.Available(t, db, eq.ID))
}
