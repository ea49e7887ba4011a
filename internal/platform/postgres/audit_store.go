package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/store"
)

// PostgresAuditStore implements store.AuditStore.
type PostgresAuditStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAuditStore creates an audit record store.
func NewPostgresAuditStore(db store.DBTX, logger *slog.Logger) *PostgresAuditStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAuditStore{
		db:     db,
		logger: logger.With(slog.String("component", "audit_store")),
	}
}

var _ store.AuditStore = (*PostgresAuditStore)(nil)

func (s *PostgresAuditStore) Create(ctx context.Context, record *domain.AuditRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_records (id, recipe_id, changed_by, restaurant_id, changes_made, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, record.ID, record.RecipeID, record.ActorID, record.RestaurantID, record.ChangesMade, record.ChangedAt)
	return MapError(err, nil)
}

func (s *PostgresAuditStore) ListByRecipe(ctx context.Context, recipeID uuid.UUID, limit int) ([]*domain.AuditRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recipe_id, changed_by, restaurant_id, changes_made, changed_at
		FROM audit_records
		WHERE recipe_id = $1
		ORDER BY changed_at DESC
		LIMIT $2
	`, recipeID, limit)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.AuditRecord
	for rows.Next() {
		var r domain.AuditRecord
		if err := rows.Scan(&r.ID, &r.RecipeID, &r.ActorID, &r.RestaurantID, &r.ChangesMade, &r.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit records: %w", err)
	}
	return out, nil
}
