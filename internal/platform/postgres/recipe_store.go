package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/platform/logger"
	"github.com/phrazzld/mise-api/internal/store"
)

const recipeColumns = `id, restaurant_id, dish_name, description, status, is_draft, is_schedule,
	prep_time, servings, video, video_id, is_deleted, created_at, updated_at`

// PostgresRecipeStore implements store.RecipeStore.
type PostgresRecipeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRecipeStore creates a recipe store on db, which may be a
// connection pool or a transaction.
func NewPostgresRecipeStore(db store.DBTX, logger *slog.Logger) *PostgresRecipeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRecipeStore{
		db:     db,
		logger: logger.With(slog.String("component", "recipe_store")),
	}
}

var _ store.RecipeStore = (*PostgresRecipeStore)(nil)

// WithTx returns a store that runs its queries inside tx.
func (s *PostgresRecipeStore) WithTx(tx *sql.Tx) store.RecipeStore {
	return &PostgresRecipeStore{db: tx, logger: s.logger}
}

func (s *PostgresRecipeStore) Create(ctx context.Context, recipe *domain.Recipe) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := recipe.Validate(); err != nil {
		log.Warn("recipe validation failed during create",
			slog.String("error", err.Error()),
			slog.String("recipe_id", recipe.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO recipes (` + recipeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		recipe.ID,
		recipe.RestaurantID,
		recipe.DishName,
		recipe.Description,
		recipe.Status,
		recipe.IsDraft,
		recipe.IsScheduled,
		recipe.PrepTimeMinutes,
		recipe.Servings,
		recipe.VideoURL,
		recipe.VideoID,
		recipe.IsDeleted,
		recipe.CreatedAt,
		recipe.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create recipe",
			slog.String("error", err.Error()),
			slog.String("recipe_id", recipe.ID.String()))
		return MapError(err, nil)
	}
	return nil
}

// GetByID returns store.ErrRecipeNotFound for missing and soft-deleted recipes.
func (s *PostgresRecipeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = $1 AND NOT is_deleted`

	var (
		r      domain.Recipe
		status string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID,
		&r.RestaurantID,
		&r.DishName,
		&r.Description,
		&status,
		&r.IsDraft,
		&r.IsScheduled,
		&r.PrepTimeMinutes,
		&r.Servings,
		&r.VideoURL,
		&r.VideoID,
		&r.IsDeleted,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, MapError(err, store.ErrRecipeNotFound)
	}
	r.Status = domain.RecipeStatus(status)
	return &r, nil
}

func (s *PostgresRecipeStore) Update(ctx context.Context, recipe *domain.Recipe) error {
	if err := recipe.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE recipes
		SET restaurant_id = $2, dish_name = $3, description = $4, status = $5,
			is_draft = $6, is_schedule = $7, prep_time = $8, servings = $9,
			video = $10, video_id = $11, is_deleted = $12, updated_at = $13
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		recipe.ID,
		recipe.RestaurantID,
		recipe.DishName,
		recipe.Description,
		recipe.Status,
		recipe.IsDraft,
		recipe.IsScheduled,
		recipe.PrepTimeMinutes,
		recipe.Servings,
		recipe.VideoURL,
		recipe.VideoID,
		recipe.IsDeleted,
		recipe.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update recipe",
			slog.String("error", err.Error()),
			slog.String("recipe_id", recipe.ID.String()))
		return MapError(err, nil)
	}
	return checkRowsAffected(result, store.ErrRecipeNotFound)
}

func (s *PostgresRecipeStore) SetStatus(ctx context.Context, id uuid.UUID, status domain.RecipeStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidRecipeStatus)
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE recipes SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC())
	if err != nil {
		return MapError(err, nil)
	}
	return checkRowsAffected(result, store.ErrRecipeNotFound)
}

func (s *PostgresRecipeStore) SetScheduled(ctx context.Context, id uuid.UUID, scheduled bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE recipes SET is_schedule = $2, updated_at = $3 WHERE id = $1`,
		id, scheduled, time.Now().UTC())
	if err != nil {
		return MapError(err, nil)
	}
	return checkRowsAffected(result, store.ErrRecipeNotFound)
}

// IngredientNames returns the recipe's ingredient titles in position order,
// then its predefined ingredient names alphabetically.
func (s *PostgresRecipeStore) IngredientNames(ctx context.Context, id uuid.UUID) ([]string, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM recipes WHERE id = $1 AND NOT is_deleted)`, id,
	).Scan(&exists); err != nil {
		return nil, MapError(err, nil)
	}
	if !exists {
		return nil, store.ErrRecipeNotFound
	}

	names, err := s.queryStrings(ctx,
		`SELECT title FROM recipe_ingredients WHERE recipe_id = $1 ORDER BY position, title`, id)
	if err != nil {
		return nil, err
	}
	predefined, err := s.queryStrings(ctx, `
		SELECT p.name
		FROM predefined_ingredients p
		JOIN recipe_predefined_ingredients rp ON rp.ingredient_id = p.id
		WHERE rp.recipe_id = $1
		ORDER BY p.name
	`, id)
	if err != nil {
		return nil, err
	}
	return append(names, predefined...), nil
}

func (s *PostgresRecipeStore) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func (s *PostgresRecipeStore) HasImages(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM recipe_images WHERE recipe_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, MapError(err, nil)
	}
	return exists, nil
}

// AddImage returns store.ErrInvalidEntity when the recipe does not exist.
func (s *PostgresRecipeStore) AddImage(ctx context.Context, image *domain.RecipeImage) error {
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recipe_images (id, recipe_id, url, created_at) VALUES ($1, $2, $3, $4)`,
		image.ID, image.RecipeID, image.URL, image.CreatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to add recipe image",
			slog.String("error", err.Error()),
			slog.String("recipe_id", image.RecipeID.String()))
		return MapError(err, nil)
	}
	return nil
}

func (s *PostgresRecipeStore) GetStep(ctx context.Context, id uuid.UUID) (*domain.Step, error) {
	var step domain.Step
	err := s.db.QueryRowContext(ctx, `
		SELECT id, recipe_id, position, instruction, duration, image, created_at, updated_at
		FROM recipe_steps
		WHERE id = $1
	`, id).Scan(
		&step.ID,
		&step.RecipeID,
		&step.Position,
		&step.Instruction,
		&step.DurationMinutes,
		&step.ImageURL,
		&step.CreatedAt,
		&step.UpdatedAt,
	)
	if err != nil {
		return nil, MapError(err, store.ErrStepNotFound)
	}
	return &step, nil
}

func (s *PostgresRecipeStore) UpdateStep(ctx context.Context, step *domain.Step) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE recipe_steps
		SET position = $2, instruction = $3, duration = $4, image = $5, updated_at = $6
		WHERE id = $1
	`, step.ID, step.Position, step.Instruction, step.DurationMinutes, step.ImageURL, step.UpdatedAt)
	if err != nil {
		return MapError(err, nil)
	}
	return checkRowsAffected(result, store.ErrStepNotFound)
}
