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

// inTx runs fn inside a transaction, or directly when db already is one.
func inTx(ctx context.Context, db store.DBTX, fn func(ctx context.Context, q store.DBTX) error) error {
	conn, ok := db.(*sql.DB)
	if !ok {
		return fn(ctx, db)
	}
	return store.RunInTransaction(ctx, conn, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, tx)
	})
}

// PostgresStarchStore implements store.StarchPreparationStore. Steps live in
// starch_preparation_steps and are rewritten on every save.
type PostgresStarchStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStarchStore creates a starch preparation store.
func NewPostgresStarchStore(db store.DBTX, logger *slog.Logger) *PostgresStarchStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStarchStore{
		db:     db,
		logger: logger.With(slog.String("component", "starch_store")),
	}
}

var _ store.StarchPreparationStore = (*PostgresStarchStore)(nil)

func (s *PostgresStarchStore) Create(ctx context.Context, prep *domain.StarchPreparation) error {
	if prep.ID == uuid.Nil || prep.RecipeID == uuid.Nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidID)
	}

	err := inTx(ctx, s.db, func(ctx context.Context, q store.DBTX) error {
		_, err := q.ExecContext(ctx, `
			INSERT INTO starch_preparations (id, recipe_id, name, image_url, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, prep.ID, prep.RecipeID, prep.Name, prep.ImageURL, prep.CreatedAt, prep.UpdatedAt)
		if err != nil {
			return MapError(err, nil)
		}
		return insertStarchSteps(ctx, q, prep)
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create starch preparation",
			slog.String("error", err.Error()),
			slog.String("preparation_id", prep.ID.String()))
		return err
	}
	return nil
}

func (s *PostgresStarchStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.StarchPreparation, error) {
	var prep domain.StarchPreparation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, recipe_id, name, image_url, created_at, updated_at
		FROM starch_preparations
		WHERE id = $1
	`, id).Scan(&prep.ID, &prep.RecipeID, &prep.Name, &prep.ImageURL, &prep.CreatedAt, &prep.UpdatedAt)
	if err != nil {
		return nil, MapError(err, store.ErrStarchPreparationNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT instruction FROM starch_preparation_steps WHERE preparation_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var step string
		if err := rows.Scan(&step); err != nil {
			return nil, fmt.Errorf("failed to scan starch step: %w", err)
		}
		prep.Steps = append(prep.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating starch steps: %w", err)
	}
	return &prep, nil
}

func (s *PostgresStarchStore) Update(ctx context.Context, prep *domain.StarchPreparation) error {
	return inTx(ctx, s.db, func(ctx context.Context, q store.DBTX) error {
		result, err := q.ExecContext(ctx, `
			UPDATE starch_preparations
			SET recipe_id = $2, name = $3, image_url = $4, updated_at = $5
			WHERE id = $1
		`, prep.ID, prep.RecipeID, prep.Name, prep.ImageURL, prep.UpdatedAt)
		if err != nil {
			return MapError(err, nil)
		}
		if err := checkRowsAffected(result, store.ErrStarchPreparationNotFound); err != nil {
			return err
		}

		if _, err := q.ExecContext(ctx,
			`DELETE FROM starch_preparation_steps WHERE preparation_id = $1`, prep.ID); err != nil {
			return MapError(err, nil)
		}
		return insertStarchSteps(ctx, q, prep)
	})
}

// SetImageURL updates only the image column so a concurrent step edit is
// not overwritten.
func (s *PostgresStarchStore) SetImageURL(ctx context.Context, id uuid.UUID, url string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE starch_preparations SET image_url = $2, updated_at = $3 WHERE id = $1`,
		id, url, time.Now().UTC())
	if err != nil {
		return MapError(err, nil)
	}
	return checkRowsAffected(result, store.ErrStarchPreparationNotFound)
}

func insertStarchSteps(ctx context.Context, q store.DBTX, prep *domain.StarchPreparation) error {
	for i, step := range prep.Steps {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO starch_preparation_steps (preparation_id, position, instruction)
			VALUES ($1, $2, $3)
		`, prep.ID, i+1, step); err != nil {
			return MapError(err, nil)
		}
	}
	return nil
}
