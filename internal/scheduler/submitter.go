package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/platform/logger"
)

// Submitter schedules background work on the primary scheduler and falls
// back to a detached delayed run when the primary rejects it.
type Submitter struct {
	primary  Scheduler
	fallback *Fallback
	registry *Registry
	now      func() time.Time
	logger   *slog.Logger
}

// NewSubmitter wires a Submitter. primary may be nil, in which case every
// submission takes the fallback path.
func NewSubmitter(primary Scheduler, fallback *Fallback, registry *Registry, log *slog.Logger) (*Submitter, error) {
	if fallback == nil {
		return nil, errors.New("fallback cannot be nil")
	}
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Submitter{
		primary:  primary,
		fallback: fallback,
		registry: registry,
		now:      time.Now,
		logger:   log.With("component", "job_submitter"),
	}, nil
}

// Submit queues kind for subjectID after delay. It returns the primary job
// id, or "" when the job went to the fallback or could not be queued at all.
func (s *Submitter) Submit(ctx context.Context, kind string, subjectID uuid.UUID, delay time.Duration) string {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.primary != nil {
		id, err := s.primary.Schedule(ctx, kind, subjectID, s.now().Add(delay))
		if err == nil {
			return id
		}
		log.Warn("primary scheduler rejected job, using fallback",
			"job_kind", kind,
			"subject_id", subjectID,
			"error", err)
	}

	fn, ok := s.registry.Lookup(kind)
	if !ok {
		log.Error("cannot run job, kind not registered", "job_kind", kind, "subject_id", subjectID)
		return ""
	}
	s.fallback.RunDelayed(kind, fn, subjectID, delay)
	return ""
}
