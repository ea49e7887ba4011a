package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
)

// ScheduleStore persists publication schedules.
type ScheduleStore interface {
	Create(ctx context.Context, s *domain.ScheduledDish) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledDish, error)

	// ActiveForRecipe returns the earliest schedule of a recipe that is neither
	// deleted nor completed.
	// Returns ErrScheduleNotFound when there is none.
	ActiveForRecipe(ctx context.Context, recipeID uuid.UUID) (*domain.ScheduledDish, error)

	Update(ctx context.Context, s *domain.ScheduledDish) error

	// CompleteByRecipe marks the recipe's active schedules completed and
	// clears their job ids.
	CompleteByRecipe(ctx context.Context, recipeID uuid.UUID) error

	WithTx(tx *sql.Tx) ScheduleStore
}
