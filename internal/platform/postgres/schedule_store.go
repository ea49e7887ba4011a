package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/store"
)

const scheduleColumns = `id, dish_id, creator_id, schedule_datetime, holiday, season, status,
	job, is_deleted, created_at, updated_at`

// PostgresScheduleStore implements store.ScheduleStore.
type PostgresScheduleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresScheduleStore creates a publication schedule store.
func NewPostgresScheduleStore(db store.DBTX, logger *slog.Logger) *PostgresScheduleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresScheduleStore{
		db:     db,
		logger: logger.With(slog.String("component", "schedule_store")),
	}
}

var _ store.ScheduleStore = (*PostgresScheduleStore)(nil)

func (s *PostgresScheduleStore) WithTx(tx *sql.Tx) store.ScheduleStore {
	return &PostgresScheduleStore{db: tx, logger: s.logger}
}

func (s *PostgresScheduleStore) Create(ctx context.Context, d *domain.ScheduledDish) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_dishes (`+scheduleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, d.ID, d.RecipeID, d.CreatorID, d.RunAt, d.Holiday, d.Season, d.Status,
		d.Job, d.IsDeleted, d.CreatedAt, d.UpdatedAt)
	return MapError(err, nil)
}

func (s *PostgresScheduleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledDish, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM scheduled_dishes WHERE id = $1`, id)
	return scanSchedule(row)
}

func (s *PostgresScheduleStore) ActiveForRecipe(ctx context.Context, recipeID uuid.UUID) (*domain.ScheduledDish, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+scheduleColumns+`
		FROM scheduled_dishes
		WHERE dish_id = $1 AND NOT is_deleted AND status <> $2
		ORDER BY schedule_datetime
		LIMIT 1
	`, recipeID, domain.ScheduleStatusCompleted)
	return scanSchedule(row)
}

func (s *PostgresScheduleStore) Update(ctx context.Context, d *domain.ScheduledDish) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_dishes
		SET schedule_datetime = $2, holiday = $3, season = $4, status = $5,
			job = $6, is_deleted = $7, updated_at = $8
		WHERE id = $1
	`, d.ID, d.RunAt, d.Holiday, d.Season, d.Status, d.Job, d.IsDeleted, d.UpdatedAt)
	if err != nil {
		return MapError(err, nil)
	}
	return checkRowsAffected(result, store.ErrScheduleNotFound)
}

// CompleteByRecipe touching no rows is not an error.
func (s *PostgresScheduleStore) CompleteByRecipe(ctx context.Context, recipeID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_dishes
		SET status = $2, job = NULL, updated_at = $3
		WHERE dish_id = $1 AND NOT is_deleted
	`, recipeID, domain.ScheduleStatusCompleted, time.Now().UTC())
	return MapError(err, nil)
}

func scanSchedule(row *sql.Row) (*domain.ScheduledDish, error) {
	var (
		d      domain.ScheduledDish
		status string
		job    sql.NullString
	)
	err := row.Scan(
		&d.ID,
		&d.RecipeID,
		&d.CreatorID,
		&d.RunAt,
		&d.Holiday,
		&d.Season,
		&status,
		&job,
		&d.IsDeleted,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, MapError(err, store.ErrScheduleNotFound)
	}
	d.Status = domain.ScheduleStatus(status)
	if job.Valid {
		d.Job = &job.String
	}
	return &d, nil
}
