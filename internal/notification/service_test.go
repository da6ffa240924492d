package notification_test

import (
	"testing"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/models"
	"equipment-backend/internal/notification"
	"equipment-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListScopesToUserAndBroadcast(t *testing.T) {
	db := testutil.NewDB(t)
	me, other := uuid.New(), uuid.New()

	for _, n := range []models.Notification{
		{Type: models.NotificationDashboard, Message: "broadcast"},
		{Type: models.NotificationEmail, Message: "mine", UserID: &me},
		{Type: models.NotificationEmail, Message: "theirs", UserID: &other, Sent: true},
	} {
		rec := n
		require.NoError(t, db.Create(&rec).Error)
	}
	svc := notification.NewService(db)

	mine, err := svc.List(notification.Filter{UserID: &me})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, n := range mine {
		assert.NotEqual(t, "theirs", n.Message)
	}

	all, err := svc.List(notification.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sent := true
	onlySent, err := svc.List(notification.Filter{Sent: &sent})
	require.NoError(t, err)
	require.Len(t, onlySent, 1)
	assert.Equal(t, "theirs", onlySent[0].Message)
}

func TestMarkSent(t *testing.T) {
	db := testutil.NewDB(t)
	me, other := uuid.New(), uuid.New()
	theirs := models.Notification{Type: models.NotificationEmail, Message: "theirs", UserID: &other}
	require.NoError(t, db.Create(&theirs).Error)
	svc := notification.NewService(db)

	_, err := svc.MarkSent(theirs.ID, &me)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	n, err := svc.MarkSent(theirs.ID, nil)
	require.NoError(t, err)
	assert.True(t, n.Sent)

	_, err = svc.MarkSent(uuid.New(), nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateLowStockOnlyOnCrossing(t *testing.T) {
	db := testutil.NewDB(t)
	eq := models.Equipment{ID: uuid.New(), Name: "Rope", QuantityTotal: 10, QuantityAvailable: 3, MinimumThreshold: 3}

	created, err := notification.CreateLowStock(db, eq, 5)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = notification.CreateLowStock(db, eq, 3)
	require.NoError(t, err)
	assert.False(t, created)

	eq.QuantityAvailable = 4
	created, err = notification.CreateLowStock(db, eq, 6)
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Notification{}))
}
