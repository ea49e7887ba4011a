// Package notification broadcasts in-app messages to all users and tracks
// which users have seen them.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/store"
)

// PublishedTitle is the title of the notification sent when a dish goes public.
const PublishedTitle = "New Recipe Available!"

// PublishedMessage is the body of the notification sent when dishName goes public.
func PublishedMessage(dishName string) string {
	return fmt.Sprintf("The recipe '%s' is now public and available to make.", dishName)
}

// DefaultUnseenLimit caps Unseen when no positive limit is given.
const DefaultUnseenLimit = 50

// ErrEmptyTitle is returned when broadcasting without a title.
var ErrEmptyTitle = errors.New("notification title cannot be empty")

// Service fans notifications out to every user.
type Service struct {
	store  store.NotificationStore
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(notifications store.NotificationStore, log *slog.Logger) (*Service, error) {
	if notifications == nil {
		return nil, errors.New("notification store cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Service{
		store:  notifications,
		now:    func() time.Time { return time.Now().UTC() },
		logger: log.With("component", "notification_service"),
	}, nil
}

// Broadcast creates a single notification addressed to all users. Nobody
// has seen it yet.
func (s *Service) Broadcast(ctx context.Context, title, message string, recipeID *uuid.UUID) (*domain.Notification, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	n := &domain.Notification{
		ID:        uuid.New(),
		Title:     title,
		Message:   message,
		RecipeID:  recipeID,
		SeenBy:    []uuid.UUID{},
		CreatedAt: s.now(),
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.logger.Info("notification created", "notification_id", n.ID, "title", n.Title)
	return n, nil
}

// MarkSeen adds userID to the notification's seen set. It reports whether
// the user was newly added; marking twice is a no-op.
func (s *Service) MarkSeen(ctx context.Context, notificationID, userID uuid.UUID) (bool, error) {
	if notificationID == uuid.Nil || userID == uuid.Nil {
		return false, domain.ErrInvalidID
	}

	seen, err := s.store.IsSeenBy(ctx, notificationID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check seen state: %w", err)
	}
	if seen {
		return false, nil
	}

	added, err := s.store.AddSeenBy(ctx, notificationID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification seen: %w", err)
	}
	return added, nil
}

// Unseen lists notifications userID has not seen, newest first.
func (s *Service) Unseen(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrInvalidID
	}
	if limit <= 0 {
		limit = DefaultUnseenLimit
	}

	list, err := s.store.ListUnseen(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unseen notifications: %w", err)
	}
	return list, nil
}
