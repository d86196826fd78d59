package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/models"
)

func TestNotificationListByUserNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)

	userID := uuid.NewString()
	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"first", "second", "third"} {
		notification := models.Notification{UserID: userID, Title: title, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(context.Background(), &notification))
	}
	other := models.Notification{UserID: uuid.NewString(), Title: "not yours"}
	require.NoError(t, repo.Create(context.Background(), &other))

	listed, err := repo.ListByUser(context.Background(), userID, 0, 0)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, "third", listed[0].Title)

	listed, err = repo.ListByUser(context.Background(), userID, 2, 1)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, "second", listed[0].Title)
}

func TestNotificationMarkReadScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)

	userID := uuid.NewString()
	notification := models.Notification{UserID: userID, Title: "Algorithm draft approved"}
	require.NoError(t, repo.Create(context.Background(), &notification))

	_, err := repo.MarkRead(context.Background(), notification.ID, uuid.NewString())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	updated, err := repo.MarkRead(context.Background(), notification.ID, userID)
	require.NoError(t, err)
	require.True(t, updated.Read)

	// Marking an already-read notification is a no-op.
	again, err := repo.MarkRead(context.Background(), notification.ID, userID)
	require.NoError(t, err)
	require.True(t, again.Read)
}
