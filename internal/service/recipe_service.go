package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/audit"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/events"
	"github.com/phrazzld/mise-api/internal/store"
)

// ChangeObserver captures entity state and audits saves. *audit.Tracker
// satisfies it.
type ChangeObserver interface {
	Capture(e audit.Trackable)
	Observe(ctx context.Context, e audit.Trackable, created bool)
}

// RecipeService saves recipes with their steps, tags, essentials and cooking
// comments, and starch preparations. Every save is audited; recipe and starch
// saves are also announced after commit.
type RecipeService struct {
	db       *sql.DB
	recipes  store.RecipeStore
	starches store.StarchPreparationStore
	tracker  ChangeObserver
	emitter  events.EventEmitter
	now      func() time.Time
	logger   *slog.Logger
}

// NewRecipeService creates a RecipeService.
func NewRecipeService(
	db *sql.DB,
	recipes store.RecipeStore,
	starches store.StarchPreparationStore,
	tracker ChangeObserver,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*RecipeService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if recipes == nil || starches == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "stores cannot be nil"}
	}
	if tracker == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "tracker cannot be nil"}
	}
	if emitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RecipeService{
		db:       db,
		recipes:  recipes,
		starches: starches,
		tracker:  tracker,
		emitter:  emitter,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With("component", "recipe_service"),
	}, nil
}

// GetRecipe loads a recipe and records its state for later diffs.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, wrapError("get_recipe", "failed to retrieve recipe", err)
	}
	s.tracker.Capture(recipe)
	return recipe, nil
}

// CreateRecipe saves a new recipe and announces it.
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	if err := recipe.Validate(); err != nil {
		return wrapError("create_recipe", "invalid recipe", err)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.recipes.WithTx(tx).Create(ctx, recipe)
	})
	if err != nil {
		s.logger.Error("failed to create recipe", "error", err, "recipe_id", recipe.ID)
		return wrapError("create_recipe", "failed to save recipe", err)
	}

	s.tracker.Observe(ctx, recipe, true)
	s.emit(ctx, events.TypeRecipeCreated, recipe.ID, nil)

	s.logger.Info("recipe created", "recipe_id", recipe.ID, "dish_name", recipe.DishName)
	return nil
}

// UpdateRecipe saves every field of recipe. Load it with GetRecipe first so
// the change audit has a baseline.
func (s *RecipeService) UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	if err := recipe.Validate(); err != nil {
		return wrapError("update_recipe", "invalid recipe", err)
	}
	recipe.UpdatedAt = s.now()

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.recipes.WithTx(tx).Update(ctx, recipe)
	})
	if err != nil {
		s.logger.Error("failed to update recipe", "error", err, "recipe_id", recipe.ID)
		return wrapError("update_recipe", "failed to save recipe", err)
	}

	s.tracker.Observe(ctx, recipe, false)
	s.emit(ctx, events.TypeRecipeUpdated, recipe.ID, nil)
	return nil
}

// GetStep loads a recipe step and records its state for later diffs.
func (s *RecipeService) GetStep(ctx context.Context, id uuid.UUID) (*domain.Step, error) {
	step, err := s.recipes.GetStep(ctx, id)
	if err != nil {
		return nil, wrapError("get_step", "failed to retrieve step", err)
	}
	s.tracker.Capture(step)
	return step, nil
}

// UpdateStep saves a step. Changes are audited against the owning recipe.
func (s *RecipeService) UpdateStep(ctx context.Context, step *domain.Step) error {
	if step.ID == uuid.Nil || step.RecipeID == uuid.Nil {
		return wrapError("update_step", "invalid step", domain.ErrInvalidID)
	}
	step.UpdatedAt = s.now()

	if err := s.recipes.UpdateStep(ctx, step); err != nil {
		return wrapError("update_step", "failed to save step", err)
	}

	s.tracker.Observe(ctx, step, false)
	return nil
}

// GetStarchPreparation loads a preparation and records its state.
func (s *RecipeService) GetStarchPreparation(ctx context.Context, id uuid.UUID) (*domain.StarchPreparation, error) {
	prep, err := s.starches.GetByID(ctx, id)
	if err != nil {
		return nil, wrapError("get_starch_preparation", "failed to retrieve starch preparation", err)
	}
	s.tracker.Capture(prep)
	return prep, nil
}

// SaveStarchPreparation creates or updates prep and announces the save so
// an image can be generated for it.
func (s *RecipeService) SaveStarchPreparation(ctx context.Context, prep *domain.StarchPreparation) error {
	if prep.RecipeID == uuid.Nil {
		return wrapError("save_starch_preparation", "invalid starch preparation", domain.ErrInvalidID)
	}

	now := s.now()
	created := prep.ID == uuid.Nil
	if !created {
		if _, err := s.starches.GetByID(ctx, prep.ID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return wrapError("save_starch_preparation", "failed to check starch preparation", err)
			}
			created = true
		}
	}

	var err error
	if created {
		if prep.ID == uuid.Nil {
			prep.ID = uuid.New()
		}
		prep.CreatedAt, prep.UpdatedAt = now, now
		err = s.starches.Create(ctx, prep)
	} else {
		prep.UpdatedAt = now
		err = s.starches.Update(ctx, prep)
	}
	if err != nil {
		return wrapError("save_starch_preparation", "failed to save starch preparation", err)
	}

	s.tracker.Observe(ctx, prep, created)
	s.emit(ctx, events.TypeStarchPreparationSaved, prep.ID, events.StarchSavedPayload{
		RecipeID: prep.RecipeID,
		Created:  created,
		HasImage: prep.HasImage(),
	})
	return nil
}

// emit publishes a post-commit event. The save already succeeded, so
// failures are only logged.
func (s *RecipeService) emit(ctx context.Context, eventType string, subjectID uuid.UUID, payload any) {
	event, err := events.NewMutationEvent(eventType, subjectID, payload)
	if err != nil {
		s.logger.Error("failed to create event", "error", err, "event_type", eventType, "subject_id", subjectID)
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit event",
			"error", fmt.Errorf("emit %s: %w", eventType, err),
			"event_id", event.ID,
			"subject_id", subjectID)
	}
}
