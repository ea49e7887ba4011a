package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationStoreCreate(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresNotificationStore(db, discardLogger())
	recipeID := uuid.New()
	n := &domain.Notification{
		ID:        uuid.New(),
		Title:     "New Recipe Available!",
		Message:   "The recipe 'Paella' is now public and available to make.",
		RecipeID:  &recipeID,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(n.ID, n.Title, n.Message, recipeID, n.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), n))
}

func TestNotificationStoreGetByID(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresNotificationStore(db, discardLogger())
	id, userID := uuid.New(), uuid.New()

	mock.ExpectQuery("FROM notifications").WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "message", "related_dish_id", "created_at"}).
			AddRow(id.String(), "t", "m", nil, time.Now()))
	mock.ExpectQuery("FROM notification_seen_by").WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(userID.String()))

	n, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, n.RecipeID)
	assert.True(t, n.SeenByUser(userID))
}

func TestNotificationStoreGetByIDNotFound(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresNotificationStore(db, discardLogger())

	mock.ExpectQuery("FROM notifications").WillReturnError(sql.ErrNoRows)

	_, err := s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotificationNotFound)
}

func TestNotificationStoreAddSeenBy(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresNotificationStore(db, discardLogger())
	nid, uid := uuid.New(), uuid.New()

	mock.ExpectExec(q("ON CONFLICT (notification_id, user_id) DO NOTHING")).
		WithArgs(nid, uid, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notification_seen_by").
		WithArgs(nid, uid, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	added, err := s.AddSeenBy(context.Background(), nid, uid)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddSeenBy(context.Background(), nid, uid)
	require.NoError(t, err)
	assert.False(t, added, "existing membership is not an error")
}

func TestNotificationStoreSeenQueries(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresNotificationStore(db, discardLogger())
	nid, uid := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT EXISTS").WithArgs(nid, uid).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("WHERE NOT EXISTS").WithArgs(uid, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "message", "related_dish_id", "created_at"}).
			AddRow(uuid.New().String(), "a", "b", nil, time.Now()).
			AddRow(uuid.New().String(), "c", "d", nil, time.Now()))

	seen, err := s.IsSeenBy(context.Background(), nid, uid)
	require.NoError(t, err)
	assert.True(t, seen)

	unseen, err := s.ListUnseen(context.Background(), uid, 10)
	require.NoError(t, err)
	assert.Len(t, unseen, 2)
}
