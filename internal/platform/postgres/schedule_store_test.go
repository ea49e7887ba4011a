package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/scheduler"
	"github.com/phrazzld/mise-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scheduleRowColumns = []string{
	"id", "dish_id", "creator_id", "schedule_datetime", "holiday", "season", "status",
	"job", "is_deleted", "created_at", "updated_at",
}

func TestScheduleStoreCreate(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresScheduleStore(db, discardLogger())
	now := time.Now().UTC()
	d, err := domain.NewScheduledDish(uuid.New(), now.Add(time.Hour), now)
	require.NoError(t, err)
	job := "publish_dish_x_1"
	d.Job = &job

	mock.ExpectExec("INSERT INTO scheduled_dishes").
		WithArgs(d.ID, d.RecipeID, nil, d.RunAt, "", "", domain.ScheduleStatusPending,
			job, false, d.CreatedAt, d.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), d))
}

func TestScheduleStoreGetByID(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresScheduleStore(db, discardLogger())
	id, recipeID, creator := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("FROM scheduled_dishes WHERE id").WithArgs(id).
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns).AddRow(
			id.String(), recipeID.String(), creator.String(), now, "Easter", "Spring", "PD",
			nil, false, now, now))

	d, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, recipeID, d.RecipeID)
	require.NotNil(t, d.CreatorID)
	assert.Equal(t, creator, *d.CreatorID)
	assert.Equal(t, domain.ScheduleStatusPending, d.Status)
	assert.Nil(t, d.Job)
	assert.Equal(t, "", d.JobID())
}

func TestScheduleStoreActiveForRecipe(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresScheduleStore(db, discardLogger())
	recipeID := uuid.New()

	mock.ExpectQuery("AND NOT is_deleted").
		WithArgs(recipeID, domain.ScheduleStatusCompleted).
		WillReturnError(sql.ErrNoRows)

	_, err := s.ActiveForRecipe(context.Background(), recipeID)
	assert.ErrorIs(t, err, store.ErrScheduleNotFound)
}

func TestScheduleStoreUpdateAndComplete(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresScheduleStore(db, discardLogger())
	d := &domain.ScheduledDish{ID: uuid.New(), RecipeID: uuid.New(), Status: domain.ScheduleStatusPending, IsDeleted: true}

	mock.ExpectExec("UPDATE scheduled_dishes").
		WithArgs(d.ID, sqlmock.AnyArg(), "", "", domain.ScheduleStatusPending, nil, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("SET status = $2, job = NULL")).
		WithArgs(d.RecipeID, domain.ScheduleStatusCompleted, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE scheduled_dishes").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Update(context.Background(), d))
	require.NoError(t, s.CompleteByRecipe(context.Background(), d.RecipeID))
	assert.ErrorIs(t, s.Update(context.Background(), d), store.ErrScheduleNotFound)
}

func TestJobStore(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresJobStore(db, discardLogger())
	subject := uuid.New()
	runAt := time.Date(2024, 12, 24, 18, 0, 0, 0, time.UTC)
	job := scheduler.Job{
		ID:        scheduler.NewJobID("publish_dish", subject, runAt),
		Kind:      "publish_dish",
		SubjectID: subject,
		RunAt:     runAt,
		CreatedAt: runAt.Add(-time.Hour),
	}

	mock.ExpectExec(q("run_at = EXCLUDED.run_at, created_at = EXCLUDED.created_at")).
		WithArgs(job.ID, job.Kind, subject, runAt, job.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM scheduled_jobs").
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "subject_id", "run_at", "created_at"}).
			AddRow(job.ID, job.Kind, subject.String(), runAt, job.CreatedAt))
	mock.ExpectExec("DELETE FROM scheduled_jobs").WithArgs(job.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SaveJob(context.Background(), job))

	jobs, err := s.ListJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []scheduler.Job{job}, jobs)

	require.NoError(t, s.DeleteJob(context.Background(), job.ID))
}

func TestJobStoreClaim(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresJobStore(db, discardLogger())
	subject := uuid.New()
	runAt := time.Date(2024, 12, 24, 18, 0, 0, 0, time.UTC)
	job := scheduler.Job{
		ID:        scheduler.NewJobID("pair_wine", subject, runAt),
		Kind:      "pair_wine",
		SubjectID: subject,
		RunAt:     runAt,
		CreatedAt: runAt.Add(-time.Minute),
	}
	claim := q("DELETE FROM scheduled_jobs WHERE id = $1 AND created_at = $2")

	mock.ExpectExec(claim).WithArgs(job.ID, job.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(claim).WithArgs(job.ID, job.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(claim).WithArgs(job.ID, job.CreatedAt).
		WillReturnError(errors.New("connection reset"))

	claimed, err := s.ClaimJob(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, claimed, "first claim removes the row")

	claimed, err = s.ClaimJob(context.Background(), job)
	require.NoError(t, err)
	assert.False(t, claimed, "a second claim finds nothing")

	claimed, err = s.ClaimJob(context.Background(), job)
	require.Error(t, err)
	assert.False(t, claimed)
}
