package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/generation"
	"github.com/phrazzld/mise-api/internal/platform/logger"
	"github.com/phrazzld/mise-api/internal/store"
)

// WinePairingTask replaces a recipe's wine pairings with fresh suggestions.
type WinePairingTask struct {
	recipes   store.RecipeStore
	pairings  store.PairingStore
	generator generation.PairingGenerator
	policy    generation.Policy
	logger    *slog.Logger
}

// NewWinePairingTask creates a WinePairingTask.
func NewWinePairingTask(
	recipes store.RecipeStore,
	pairings store.PairingStore,
	generator generation.PairingGenerator,
	policy generation.Policy,
	log *slog.Logger,
) (*WinePairingTask, error) {
	if recipes == nil || pairings == nil || generator == nil || log == nil {
		return nil, fmt.Errorf("%w: wine pairing task", ErrNilDependency)
	}
	return &WinePairingTask{
		recipes:   recipes,
		pairings:  pairings,
		generator: generator,
		policy:    policy,
		logger:    log.With("task_type", KindWinePairing),
	}, nil
}

// Run looks up wines for a non-draft recipe and stores them as its pairing set.
func (t *WinePairingTask) Run(ctx context.Context, recipeID uuid.UUID) error {
	if recipeID == uuid.Nil {
		return ErrEmptySubject
	}
	log := logger.FromContextOrDefault(ctx, t.logger).With("recipe_id", recipeID)

	recipe, err := t.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("failed to load recipe: %w", err)
	}
	if recipe.IsDraft {
		log.Info("skipping wine pairing for draft recipe")
		return nil
	}

	ingredients, err := t.recipes.IngredientNames(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("failed to load ingredients: %w", err)
	}
	description := domain.DescribeDish(recipe.DishName, ingredients)

	wines, err := generation.Do(ctx, t.policy, KindWinePairing, log,
		func(ctx context.Context) ([]domain.PairingSuggestion, error) {
			return t.generator.GeneratePairings(ctx, description)
		})
	if err != nil {
		return err
	}

	saved, err := t.pairings.ReplacePairings(ctx, recipeID, wines)
	if err != nil {
		return fmt.Errorf("failed to save wine pairings: %w", err)
	}

	log.Info("wine pairing generated", "description", description, "wine_count", len(saved))
	return nil
}
