package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/mocks"
	"github.com/phrazzld/mise-api/internal/service"
	"github.com/phrazzld/mise-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submission struct {
	kind    string
	subject uuid.UUID
	delay   time.Duration
}

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []submission
}

func (f *fakeSubmitter) Submit(_ context.Context, kind string, subjectID uuid.UUID, delay time.Duration) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, submission{kind: kind, subject: subjectID, delay: delay})
	return kind + "_job"
}

type jobFixture struct {
	svc       *service.JobService
	sqlMock   sqlmock.Sqlmock
	recipes   *mocks.MockRecipeStore
	schedules *mocks.MockScheduleStore
	scheduler *mocks.MockScheduler
	submitter *fakeSubmitter
}

func newJobFixture(t *testing.T) *jobFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &jobFixture{
		sqlMock:   mock,
		recipes:   mocks.NewMockRecipeStore(),
		schedules: mocks.NewMockScheduleStore(),
		scheduler: &mocks.MockScheduler{},
		submitter: &fakeSubmitter{},
	}
	f.svc, err = service.NewJobService(db, f.recipes, f.schedules, f.scheduler, f.submitter, task.DefaultDelays(), discard())
	require.NoError(t, err)
	return f
}

func (f *jobFixture) privateRecipe(t *testing.T) *domain.Recipe {
	t.Helper()
	recipe, err := domain.NewRecipe(nil, "Beef Wellington")
	require.NoError(t, err)
	f.recipes.Put(recipe)
	return recipe
}

func TestScheduleGenerationJobs(t *testing.T) {
	t.Parallel()

	f := newJobFixture(t)
	id := uuid.New()
	defaults := task.DefaultDelays()

	assert.Equal(t, "recipe_image_job", f.svc.ScheduleImageJob(context.Background(), id, 0))
	f.svc.SchedulePairingJob(context.Background(), id, 0)
	f.svc.ScheduleStarchImageJob(context.Background(), id, 5*time.Second)

	assert.Equal(t, []submission{
		{kind: task.KindRecipeImage, subject: id, delay: defaults.RecipeImage},
		{kind: task.KindWinePairing, subject: id, delay: defaults.WinePairing},
		{kind: task.KindStarchImage, subject: id, delay: 5 * time.Second},
	}, f.submitter.calls)
}

func TestSchedulePublicationJob(t *testing.T) {
	t.Parallel()

	f := newJobFixture(t)
	recipe := f.privateRecipe(t)
	runAt := time.Now().Add(48 * time.Hour)
	ctx := withActor()
	actor, _ := domain.ActorFromContext(ctx)

	f.sqlMock.ExpectBegin()
	f.sqlMock.ExpectCommit()

	sched, err := f.svc.SchedulePublicationJob(ctx, recipe.ID, runAt, service.PublicationOptions{Holiday: "Christmas"})
	require.NoError(t, err)

	calls := f.scheduler.Scheduled()
	require.Len(t, calls, 1)
	assert.Equal(t, task.KindPublishDish, calls[0].Kind)
	assert.Equal(t, recipe.ID, calls[0].SubjectID)
	assert.True(t, runAt.Equal(calls[0].RunAt))

	require.NotNil(t, sched.Job)
	assert.NotEmpty(t, sched.JobID())
	assert.Equal(t, "Christmas", sched.Holiday)
	assert.Equal(t, domain.ScheduleStatusPending, sched.Status)
	require.NotNil(t, sched.CreatorID)
	assert.Equal(t, actor.UserID, *sched.CreatorID)

	stored, err := f.schedules.GetByID(context.Background(), sched.ID)
	require.NoError(t, err)
	assert.Equal(t, sched.JobID(), stored.JobID())

	updated, err := f.recipes.GetByID(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsScheduled)
	assert.NoError(t, f.sqlMock.ExpectationsWereMet())
}

func TestSchedulePublicationJobRejections(t *testing.T) {
	t.Parallel()

	t.Run("in the past", func(t *testing.T) {
		t.Parallel()
		f := newJobFixture(t)
		recipe := f.privateRecipe(t)

		_, err := f.svc.SchedulePublicationJob(context.Background(), recipe.ID, time.Now().Add(-time.Minute), service.PublicationOptions{})
		assert.ErrorIs(t, err, domain.ErrScheduleInPast)
		assert.Empty(t, f.scheduler.Scheduled())
	})

	t.Run("already public", func(t *testing.T) {
		t.Parallel()
		f := newJobFixture(t)
		recipe := f.privateRecipe(t)
		recipe.Status = domain.RecipeStatusPublic
		f.recipes.Put(recipe)

		_, err := f.svc.SchedulePublicationJob(context.Background(), recipe.ID, time.Now().Add(time.Hour), service.PublicationOptions{})
		assert.ErrorIs(t, err, domain.ErrAlreadyPublic)
		assert.Empty(t, f.scheduler.Scheduled())
	})

	t.Run("already scheduled", func(t *testing.T) {
		t.Parallel()
		f := newJobFixture(t)
		recipe := f.privateRecipe(t)
		existing, err := domain.NewScheduledDish(recipe.ID, time.Now().Add(time.Hour), time.Now())
		require.NoError(t, err)
		require.NoError(t, f.schedules.Create(context.Background(), existing))

		_, err = f.svc.SchedulePublicationJob(context.Background(), recipe.ID, time.Now().Add(2*time.Hour), service.PublicationOptions{})
		assert.ErrorIs(t, err, domain.ErrAlreadyScheduled)
		assert.Empty(t, f.scheduler.Scheduled())
	})

	t.Run("missing recipe", func(t *testing.T) {
		t.Parallel()
		f := newJobFixture(t)

		_, err := f.svc.SchedulePublicationJob(context.Background(), uuid.New(), time.Now().Add(time.Hour), service.PublicationOptions{})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("nil recipe id", func(t *testing.T) {
		t.Parallel()
		f := newJobFixture(t)

		_, err := f.svc.SchedulePublicationJob(context.Background(), uuid.Nil, time.Now().Add(time.Hour), service.PublicationOptions{})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("scheduler unavailable", func(t *testing.T) {
		t.Parallel()
		f := newJobFixture(t)
		recipe := f.privateRecipe(t)
		f.scheduler.ScheduleFn = func(context.Context, string, uuid.UUID, time.Time) (string, error) {
			return "", errors.New("scheduler stopped")
		}

		_, err := f.svc.SchedulePublicationJob(context.Background(), recipe.ID, time.Now().Add(time.Hour), service.PublicationOptions{})
		var svcErr *service.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "schedule_publication", svcErr.Operation)

		_, err = f.schedules.ActiveForRecipe(context.Background(), recipe.ID)
		assert.Error(t, err, "no schedule row without a job")
	})
}

func TestSchedulePublicationJobCancelsJobWhenSaveFails(t *testing.T) {
	t.Parallel()

	f := newJobFixture(t)
	recipe := f.privateRecipe(t)
	f.schedules.CreateError = errors.New("unique violation")
	f.sqlMock.ExpectBegin()
	f.sqlMock.ExpectRollback()

	_, err := f.svc.SchedulePublicationJob(context.Background(), recipe.ID, time.Now().Add(time.Hour), service.PublicationOptions{})
	require.Error(t, err)

	calls := f.scheduler.Scheduled()
	require.Len(t, calls, 1)
	assert.Len(t, f.scheduler.Cancelled(), 1)

	stored, err := f.recipes.GetByID(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsScheduled)
	assert.NoError(t, f.sqlMock.ExpectationsWereMet())
}

func TestCancelPublication(t *testing.T) {
	t.Parallel()

	f := newJobFixture(t)
	recipe := f.privateRecipe(t)
	f.sqlMock.ExpectBegin()
	f.sqlMock.ExpectCommit()
	sched, err := f.svc.SchedulePublicationJob(context.Background(), recipe.ID, time.Now().Add(time.Hour), service.PublicationOptions{})
	require.NoError(t, err)
	jobID := sched.JobID()

	f.sqlMock.ExpectBegin()
	f.sqlMock.ExpectCommit()
	require.NoError(t, f.svc.CancelPublication(context.Background(), sched.ID))

	assert.Equal(t, []string{jobID}, f.scheduler.Cancelled())
	stored, err := f.schedules.GetByID(context.Background(), sched.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
	assert.Nil(t, stored.Job)

	updated, err := f.recipes.GetByID(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsScheduled)

	// Cancelling twice is a no-op.
	require.NoError(t, f.svc.CancelPublication(context.Background(), sched.ID))
	assert.Len(t, f.scheduler.Cancelled(), 1)
	assert.NoError(t, f.sqlMock.ExpectationsWereMet())

	assert.ErrorIs(t, f.svc.CancelPublication(context.Background(), uuid.New()), service.ErrNotFound)
}

func TestCancelJobError(t *testing.T) {
	t.Parallel()

	f := newJobFixture(t)
	require.NoError(t, f.svc.CancelJob(context.Background(), "recipe_image_x_1"))

	f.scheduler.CancelErr = errors.New("store offline")
	var svcErr *service.ServiceError
	assert.ErrorAs(t, f.svc.CancelJob(context.Background(), "recipe_image_x_1"), &svcErr)
}

func TestNewJobServiceValidation(t *testing.T) {
	t.Parallel()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = service.NewJobService(db, mocks.NewMockRecipeStore(), mocks.NewMockScheduleStore(), nil, &fakeSubmitter{}, task.DefaultDelays(), discard())
	assert.Error(t, err)
	_, err = service.NewJobService(db, mocks.NewMockRecipeStore(), mocks.NewMockScheduleStore(), &mocks.MockScheduler{}, nil, task.DefaultDelays(), discard())
	assert.Error(t, err)
	_, err = service.NewJobService(nil, mocks.NewMockRecipeStore(), mocks.NewMockScheduleStore(), &mocks.MockScheduler{}, &fakeSubmitter{}, task.DefaultDelays(), discard())
	assert.Error(t, err)
}
