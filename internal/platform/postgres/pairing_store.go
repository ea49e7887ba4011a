package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/platform/logger"
	"github.com/phrazzld/mise-api/internal/store"
)

// PostgresPairingStore implements store.PairingStore. Wines are shared rows
// keyed case-insensitively by (wine_name, wine_type).
type PostgresPairingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPairingStore creates a pairing store.
func NewPostgresPairingStore(db store.DBTX, logger *slog.Logger) *PostgresPairingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPairingStore{
		db:     db,
		logger: logger.With(slog.String("component", "pairing_store")),
	}
}

var _ store.PairingStore = (*PostgresPairingStore)(nil)

const wineColumns = `id, wine_name, wine_type, flavor, profile, proteins, reason, region`

// getOrCreateWineQuery inserts a wine unless one with the same name and type
// exists, and returns the stored row either way. Existing attributes are kept.
const getOrCreateWineQuery = `
	WITH ins AS (
		INSERT INTO wines (` + wineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ((lower(wine_name)), (lower(wine_type))) DO NOTHING
		RETURNING ` + wineColumns + `
	)
	SELECT ` + wineColumns + ` FROM ins
	UNION ALL
	SELECT ` + wineColumns + ` FROM wines
	WHERE lower(wine_name) = lower($2) AND lower(wine_type) = lower($3)
	LIMIT 1
`

// findWineQuery covers a conflicting row committed after the statement
// snapshot was taken, which the CTE cannot see.
const findWineQuery = `
	SELECT ` + wineColumns + ` FROM wines
	WHERE lower(wine_name) = lower($1) AND lower(wine_type) = lower($2)
`

func getOrCreateWine(ctx context.Context, q store.DBTX, w domain.PairingSuggestion) (*domain.WinePairing, error) {
	var wine domain.WinePairing
	dest := []any{&wine.ID, &wine.Name, &wine.Type, &wine.Flavor, &wine.Profile, &wine.Proteins, &wine.Reason, &wine.Region}

	err := q.QueryRowContext(ctx, getOrCreateWineQuery,
		uuid.New(), w.Name, w.Type, w.Flavor, w.Profile, w.Proteins, w.Reason, w.Region,
	).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		err = q.QueryRowContext(ctx, findWineQuery, w.Name, w.Type).Scan(dest...)
	}
	if err != nil {
		return nil, MapError(err, nil)
	}
	return &wine, nil
}

// ReplacePairings gets or creates every wine, then replaces the recipe's pairing
// set with exactly those wines, all in one transaction.
func (s *PostgresPairingStore) ReplacePairings(
	ctx context.Context,
	recipeID uuid.UUID,
	wines []domain.PairingSuggestion,
) ([]*domain.WinePairing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var paired []*domain.WinePairing
	err := inTx(ctx, s.db, func(ctx context.Context, q store.DBTX) error {
		paired = paired[:0]
		seen := make(map[uuid.UUID]bool, len(wines))

		for _, w := range wines {
			wine, err := getOrCreateWine(ctx, q, w)
			if err != nil {
				return fmt.Errorf("failed to get or create wine %q: %w", w.Name, err)
			}
			if seen[wine.ID] {
				continue
			}
			seen[wine.ID] = true
			paired = append(paired, wine)
		}

		if _, err := q.ExecContext(ctx,
			`DELETE FROM recipe_wine_pairings WHERE recipe_id = $1`, recipeID); err != nil {
			return MapError(err, nil)
		}
		for _, wine := range paired {
			if _, err := q.ExecContext(ctx, `
				INSERT INTO recipe_wine_pairings (recipe_id, wine_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, recipeID, wine.ID); err != nil {
				return MapError(err, nil)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to replace wine pairings",
			slog.String("error", err.Error()),
			slog.String("recipe_id", recipeID.String()))
		return nil, err
	}
	return paired, nil
}

func (s *PostgresPairingStore) ListPairings(ctx context.Context, recipeID uuid.UUID) ([]*domain.WinePairing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.wine_name, w.wine_type, w.flavor, w.profile, w.proteins, w.reason, w.region
		FROM wines w
		JOIN recipe_wine_pairings rw ON rw.wine_id = w.id
		WHERE rw.recipe_id = $1
		ORDER BY w.wine_name
	`, recipeID)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.WinePairing
	for rows.Next() {
		var w domain.WinePairing
		if err := rows.Scan(&w.ID, &w.Name, &w.Type, &w.Flavor, &w.Profile, &w.Proteins, &w.Reason, &w.Region); err != nil {
			return nil, fmt.Errorf("failed to scan wine: %w", err)
		}
		out = append(out, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wines: %w", err)
	}
	return out, nil
}
