package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
)

// RecipeStore defines persistence for recipes and the child rows job bodies
// and the audit tracker operate on.
type RecipeStore interface {
	// Create saves a new recipe.
	Create(ctx context.Context, recipe *domain.Recipe) error

	// GetByID retrieves a recipe by ID.
	// Returns ErrRecipeNotFound if the recipe does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)

	// Update saves every column of an existing recipe.
	Update(ctx context.Context, recipe *domain.Recipe) error

	// SetStatus changes only the visibility of a recipe.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.RecipeStatus) error

	// SetScheduled toggles the is_schedule flag.
	SetScheduled(ctx context.Context, id uuid.UUID, scheduled bool) error

	// IngredientNames returns the recipe's own ingredient titles followed by
	// its predefined ingredient names.
	IngredientNames(ctx context.Context, id uuid.UUID) ([]string, error)

	// HasImages reports whether any image is attached to the recipe.
	HasImages(ctx context.Context, id uuid.UUID) (bool, error)

	// AddImage attaches an image to a recipe.
	AddImage(ctx context.Context, image *domain.RecipeImage) error

	GetStep(ctx context.Context, id uuid.UUID) (*domain.Step, error)
	UpdateStep(ctx context.Context, step *domain.Step) error

	GetTag(ctx context.Context, id uuid.UUID) (*domain.Tag, error)
	UpdateTag(ctx context.Context, tag *domain.Tag) error

	// GetEssential and UpdateEssential operate on recipe_ingredients rows;
	// the ingredient title is the essential's name.
	GetEssential(ctx context.Context, id uuid.UUID) (*domain.Essential, error)
	UpdateEssential(ctx context.Context, essential *domain.Essential) error

	GetComment(ctx context.Context, id uuid.UUID) (*domain.CookingComment, error)
	UpdateComment(ctx context.Context, comment *domain.CookingComment) error

	// WithTx returns a RecipeStore bound to tx.
	WithTx(tx *sql.Tx) RecipeStore
}

// StarchPreparationStore persists starch preparations and their steps.
type StarchPreparationStore interface {
	Create(ctx context.Context, prep *domain.StarchPreparation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StarchPreparation, error)
	Update(ctx context.Context, prep *domain.StarchPreparation) error
	SetImageURL(ctx context.Context, id uuid.UUID, url string) error
}

// PairingStore persists the wines paired with recipes.
type PairingStore interface {
	// ReplacePairings gets or creates each suggested wine by (name, type),
	// keeping the attributes of a wine that already exists, then replaces the
	// recipe's pairing set with exactly those wines.
	ReplacePairings(ctx context.Context, recipeID uuid.UUID, wines []domain.PairingSuggestion) ([]*domain.WinePairing, error)

	// ListPairings returns the wines currently paired with a recipe.
	ListPairings(ctx context.Context, recipeID uuid.UUID) ([]*domain.WinePairing, error)
}
