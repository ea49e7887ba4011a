package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/notification"
	"github.com/phrazzld/mise-api/internal/platform/logger"
	"github.com/phrazzld/mise-api/internal/store"
)

// Broadcaster sends a notification to every user.
type Broadcaster interface {
	Broadcast(ctx context.Context, title, message string, recipeID *uuid.UUID) (*domain.Notification, error)
}

// PublicationTask makes a scheduled recipe public and announces it.
type PublicationTask struct {
	recipes     store.RecipeStore
	schedules   store.ScheduleStore
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewPublicationTask creates a PublicationTask.
func NewPublicationTask(
	recipes store.RecipeStore,
	schedules store.ScheduleStore,
	broadcaster Broadcaster,
	log *slog.Logger,
) (*PublicationTask, error) {
	if recipes == nil || schedules == nil || broadcaster == nil || log == nil {
		return nil, fmt.Errorf("%w: publication task", ErrNilDependency)
	}
	return &PublicationTask{
		recipes:     recipes,
		schedules:   schedules,
		broadcaster: broadcaster,
		logger:      log.With("task_type", KindPublishDish),
	}, nil
}

// Run publishes recipeID, completes its schedule and broadcasts the news.
// A recipe that is already public is left alone.
func (t *PublicationTask) Run(ctx context.Context, recipeID uuid.UUID) error {
	if recipeID == uuid.Nil {
		return ErrEmptySubject
	}
	log := logger.FromContextOrDefault(ctx, t.logger).With("recipe_id", recipeID)

	recipe, err := t.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("failed to load recipe: %w", err)
	}
	if recipe.IsPublic() {
		log.Info("recipe is already public, skipping publication")
		return nil
	}

	if err := t.recipes.SetStatus(ctx, recipeID, domain.RecipeStatusPublic); err != nil {
		return fmt.Errorf("failed to publish recipe: %w", err)
	}
	if err := t.recipes.SetScheduled(ctx, recipeID, false); err != nil {
		return fmt.Errorf("failed to clear schedule flag: %w", err)
	}
	if err := t.schedules.CompleteByRecipe(ctx, recipeID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to complete schedule: %w", err)
	}

	n, err := t.broadcaster.Broadcast(ctx,
		notification.PublishedTitle,
		notification.PublishedMessage(recipe.DishName),
		&recipeID)
	if err != nil {
		// The recipe is public either way.
		log.Error("failed to broadcast publication", "error", err)
		return nil
	}

	log.Info("recipe published", "notification_id", n.ID)
	return nil
}
