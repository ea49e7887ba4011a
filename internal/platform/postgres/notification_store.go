package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/store"
)

// PostgresNotificationStore implements store.NotificationStore. The seen-by
// set is the notification_seen_by join table.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a notification store.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

func (s *PostgresNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, title, message, related_dish_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, n.ID, n.Title, n.Message, n.RecipeID, n.CreatedAt)
	return MapError(err, nil)
}

func (s *PostgresNotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var n domain.Notification
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, message, related_dish_id, created_at
		FROM notifications
		WHERE id = $1
	`, id).Scan(&n.ID, &n.Title, &n.Message, &n.RecipeID, &n.CreatedAt)
	if err != nil {
		return nil, MapError(err, store.ErrNotificationNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM notification_seen_by WHERE notification_id = $1 ORDER BY seen_at`, id)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	n.SeenBy = []uuid.UUID{}
	for rows.Next() {
		var uid uuid.UUID
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("failed to scan seen-by row: %w", err)
		}
		n.SeenBy = append(n.SeenBy, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seen-by rows: %w", err)
	}
	return &n, nil
}

func (s *PostgresNotificationStore) IsSeenBy(ctx context.Context, notificationID, userID uuid.UUID) (bool, error) {
	var seen bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notification_seen_by WHERE notification_id = $1 AND user_id = $2
		)
	`, notificationID, userID).Scan(&seen)
	if err != nil {
		return false, MapError(err, nil)
	}
	return seen, nil
}

// AddSeenBy returns store.ErrInvalidEntity when the notification does not exist.
func (s *PostgresNotificationStore) AddSeenBy(ctx context.Context, notificationID, userID uuid.UUID) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_seen_by (notification_id, user_id, seen_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (notification_id, user_id) DO NOTHING
	`, notificationID, userID, time.Now().UTC())
	if err != nil {
		return false, MapError(err, nil)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// ListUnseen leaves SeenBy empty on the returned rows.
func (s *PostgresNotificationStore) ListUnseen(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.title, n.message, n.related_dish_id, n.created_at
		FROM notifications n
		WHERE NOT EXISTS (
			SELECT 1 FROM notification_seen_by sb
			WHERE sb.notification_id = n.id AND sb.user_id = $1
		)
		ORDER BY n.created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.RecipeID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return out, nil
}
