package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
)

// NotificationStore persists broadcast notifications and their seen-by sets.
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error

	// GetByID returns the notification with its seen-by set populated.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)

	IsSeenBy(ctx context.Context, notificationID, userID uuid.UUID) (bool, error)

	// AddSeenBy inserts userID into the seen-by set. It reports whether the
	// user was newly added; an existing membership is not an error.
	AddSeenBy(ctx context.Context, notificationID, userID uuid.UUID) (bool, error)

	// ListUnseen returns notifications userID has not seen, newest first.
	ListUnseen(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error)
}
