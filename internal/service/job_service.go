package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/scheduler"
	"github.com/phrazzld/mise-api/internal/store"
	"github.com/phrazzld/mise-api/internal/task"
)

// PublicationOptions are optional attributes of a publication schedule.
type PublicationOptions struct {
	Holiday string
	Season  string
}

// JobService schedules and cancels background jobs for recipes.
type JobService struct {
	db        *sql.DB
	recipes   store.RecipeStore
	schedules store.ScheduleStore
	scheduler scheduler.Scheduler
	submitter task.JobSubmitter
	delays    task.Delays
	now       func() time.Time
	logger    *slog.Logger
}

// NewJobService creates a JobService. Publications go straight to sched
// since they may be days away; image and pairing jobs go through submitter.
func NewJobService(
	db *sql.DB,
	recipes store.RecipeStore,
	schedules store.ScheduleStore,
	sched scheduler.Scheduler,
	submitter task.JobSubmitter,
	delays task.Delays,
	logger *slog.Logger,
) (*JobService, error) {
	if db == nil || recipes == nil || schedules == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db and stores cannot be nil"}
	}
	if sched == nil || submitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "scheduler and submitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &JobService{
		db:        db,
		recipes:   recipes,
		schedules: schedules,
		scheduler: sched,
		submitter: submitter,
		delays:    delays,
		now:       time.Now,
		logger:    logger.With("component", "job_service"),
	}, nil
}

// ScheduleImageJob queues image generation for a recipe. A zero delay uses
// the configured default. It returns the job id, or "" when the job went to
// the fallback runner.
func (s *JobService) ScheduleImageJob(ctx context.Context, recipeID uuid.UUID, delay time.Duration) string {
	if delay <= 0 {
		delay = s.delays.RecipeImage
	}
	return s.submitter.Submit(ctx, task.KindRecipeImage, recipeID, delay)
}

// SchedulePairingJob queues a wine pairing lookup for a recipe.
func (s *JobService) SchedulePairingJob(ctx context.Context, recipeID uuid.UUID, delay time.Duration) string {
	if delay <= 0 {
		delay = s.delays.WinePairing
	}
	return s.submitter.Submit(ctx, task.KindWinePairing, recipeID, delay)
}

// ScheduleStarchImageJob queues image generation for a starch preparation.
func (s *JobService) ScheduleStarchImageJob(ctx context.Context, prepID uuid.UUID, delay time.Duration) string {
	if delay <= 0 {
		delay = s.delays.StarchImage
	}
	return s.submitter.Submit(ctx, task.KindStarchImage, prepID, delay)
}

// SchedulePublicationJob arranges for a private recipe to go public at runAt.
func (s *JobService) SchedulePublicationJob(
	ctx context.Context,
	recipeID uuid.UUID,
	runAt time.Time,
	opts PublicationOptions,
) (*domain.ScheduledDish, error) {
	const op = "schedule_publication"

	sched, err := domain.NewScheduledDish(recipeID, runAt, s.now())
	if err != nil {
		return nil, wrapError(op, "invalid schedule", err)
	}
	sched.Holiday, sched.Season = opts.Holiday, opts.Season
	if actor, ok := domain.ActorFromContext(ctx); ok {
		creator := actor.UserID
		sched.CreatorID = &creator
	}

	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, wrapError(op, "failed to retrieve recipe", err)
	}
	if recipe.IsPublic() {
		return nil, domain.ErrAlreadyPublic
	}

	existing, err := s.schedules.ActiveForRecipe(ctx, recipeID)
	switch {
	case err == nil:
		s.logger.Info("recipe already has an active schedule",
			"recipe_id", recipeID,
			"schedule_id", existing.ID)
		return nil, domain.ErrAlreadyScheduled
	case !errors.Is(err, store.ErrNotFound):
		return nil, wrapError(op, "failed to check existing schedule", err)
	}

	jobID, err := s.scheduler.Schedule(ctx, task.KindPublishDish, recipeID, sched.RunAt)
	if err != nil {
		s.logger.Error("failed to schedule publication", "error", err, "recipe_id", recipeID)
		return nil, wrapError(op, "failed to schedule publication job", err)
	}
	sched.Job = &jobID

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.schedules.WithTx(tx).Create(ctx, sched); err != nil {
			return err
		}
		return s.recipes.WithTx(tx).SetScheduled(ctx, recipeID, true)
	})
	if err != nil {
		if cancelErr := s.scheduler.Cancel(ctx, jobID); cancelErr != nil {
			s.logger.Error("failed to cancel orphaned publication job", "error", cancelErr, "job_id", jobID)
		}
		return nil, wrapError(op, "failed to save schedule", err)
	}

	s.logger.Info("publication scheduled",
		"recipe_id", recipeID,
		"schedule_id", sched.ID,
		"job_id", jobID,
		"run_at", sched.RunAt)
	return sched, nil
}

// CancelJob removes a pending job. Unknown or finished jobs are ignored.
func (s *JobService) CancelJob(ctx context.Context, jobID string) error {
	if err := s.scheduler.Cancel(ctx, jobID); err != nil {
		return wrapError("cancel_job", "failed to cancel job", err)
	}
	return nil
}

// CancelPublication cancels a schedule's job, clears the recipe's
// is_schedule flag and soft-deletes the schedule.
func (s *JobService) CancelPublication(ctx context.Context, scheduleID uuid.UUID) error {
	const op = "cancel_publication"

	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return wrapError(op, "failed to retrieve schedule", err)
	}
	if sched.IsDeleted {
		return nil
	}

	if jobID := sched.JobID(); jobID != "" {
		if err := s.scheduler.Cancel(ctx, jobID); err != nil {
			return wrapError(op, "failed to cancel publication job", err)
		}
	}

	sched.Job = nil
	sched.IsDeleted = true
	sched.UpdatedAt = s.now().UTC()

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.schedules.WithTx(tx).Update(ctx, sched); err != nil {
			return err
		}
		return s.recipes.WithTx(tx).SetScheduled(ctx, sched.RecipeID, false)
	})
	if err != nil {
		return wrapError(op, "failed to save cancelled schedule", err)
	}

	s.logger.Info("publication cancelled", "schedule_id", scheduleID, "recipe_id", sched.RecipeID)
	return nil
}
