package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/mise-api/internal/platform/logger"
	"github.com/phrazzld/mise-api/internal/scheduler"
	"github.com/phrazzld/mise-api/internal/store"
)

// PostgresJobStore persists pending scheduler jobs in scheduled_jobs so
// they survive a restart.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a job store.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

var _ scheduler.JobStore = (*PostgresJobStore)(nil)

// SaveJob inserts job or replaces the row with the same id.
func (s *PostgresJobStore) SaveJob(ctx context.Context, job scheduler.Job) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_jobs (id, kind, subject_id, run_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET kind = EXCLUDED.kind, subject_id = EXCLUDED.subject_id,
			run_at = EXCLUDED.run_at, created_at = EXCLUDED.created_at
	`, job.ID, job.Kind, job.SubjectID, job.RunAt, job.CreatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID))
		return MapError(err, nil)
	}
	return nil
}

// DeleteJob is a no-op for unknown ids.
func (s *PostgresJobStore) DeleteJob(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM scheduled_jobs WHERE id = $1`, id)
	return MapError(err, nil)
}

// ClaimJob deletes the row of this exact submission. A row that was already
// claimed, cancelled or replaced by a newer submission yields false.
func (s *PostgresJobStore) ClaimJob(ctx context.Context, job scheduler.Job) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM scheduled_jobs WHERE id = $1 AND created_at = $2`,
		job.ID, job.CreatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to claim job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID))
		return false, MapError(err, nil)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}
	return n > 0, nil
}

// ListJobs returns every persisted job, earliest first.
func (s *PostgresJobStore) ListJobs(ctx context.Context) ([]scheduler.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, subject_id, run_at, created_at
		FROM scheduled_jobs
		ORDER BY run_at, id
	`)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	var jobs []scheduler.Job
	for rows.Next() {
		var j scheduler.Job
		if err := rows.Scan(&j.ID, &j.Kind, &j.SubjectID, &j.RunAt, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}
	return jobs, nil
}
