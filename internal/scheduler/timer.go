package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/platform/logger"
	"github.com/robfig/cron/v3"
)

// Config tunes a TimerScheduler.
type Config struct {
	// ShutdownTimeout bounds how long Stop waits for in-flight jobs.
	ShutdownTimeout time.Duration

	// SweepSpec is a cron spec for re-arming persisted jobs this instance
	// does not hold. Empty disables the sweep.
	SweepSpec string
}

// DefaultConfig returns a 30 second shutdown bound and a one minute sweep.
func DefaultConfig() Config {
	return Config{
		ShutdownTimeout: 30 * time.Second,
		SweepSpec:       "@every 1m",
	}
}

// Option configures a TimerScheduler.
type Option func(*TimerScheduler)

// WithJobStore persists jobs so they survive restarts.
func WithJobStore(store JobStore) Option {
	return func(s *TimerScheduler) { s.store = store }
}

// WithLocker guards each execution with a cross-process lock.
func WithLocker(locker Locker) Option {
	return func(s *TimerScheduler) { s.locker = locker }
}

// WithClock overrides the time source used for job ids and delays.
func WithClock(now func() time.Time) Option {
	return func(s *TimerScheduler) { s.now = now }
}

type entry struct {
	job   Job
	timer *time.Timer
}

// TimerScheduler executes registered jobs at their run time.
type TimerScheduler struct {
	registry *Registry
	store    JobStore
	locker   Locker
	cfg      Config
	now      func() time.Time
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	pending map[string]*entry
	running map[string]struct{}
	wg      *sync.WaitGroup
	sweeper *cron.Cron
}

var _ Scheduler = (*TimerScheduler)(nil)

// NewTimerScheduler creates a stopped scheduler resolving kinds through registry.
func NewTimerScheduler(registry *Registry, cfg Config, log *slog.Logger, opts ...Option) (*TimerScheduler, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}
	if cfg.SweepSpec != "" {
		if _, err := cron.ParseStandard(cfg.SweepSpec); err != nil {
			return nil, fmt.Errorf("invalid sweep spec %q: %w", cfg.SweepSpec, err)
		}
	}

	s := &TimerScheduler{
		registry: registry,
		cfg:      cfg,
		now:      time.Now,
		logger:   log.With("component", "job_scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start begins accepting jobs and re-arms persisted ones. Calling Start on a
// running scheduler is a no-op.
func (s *TimerScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.pending = make(map[string]*entry)
	s.running = make(map[string]struct{})
	s.wg = &sync.WaitGroup{}
	s.started = true
	s.mu.Unlock()

	if s.store != nil {
		n, err := s.Reconcile(ctx)
		if err != nil {
			s.logger.Error("failed to recover persisted jobs", "error", err)
		} else {
			s.logger.Info("recovered persisted jobs", "count", n)
		}
	}

	if s.cfg.SweepSpec != "" && s.store != nil {
		c := cron.New()
		if _, err := c.AddFunc(s.cfg.SweepSpec, s.sweep); err != nil {
			return fmt.Errorf("failed to register sweep: %w", err)
		}
		c.Start()

		s.mu.Lock()
		s.sweeper = c
		s.mu.Unlock()
	}

	s.logger.Info("scheduler started", "kinds", s.registry.Kinds())
	return nil
}

// Stop stops accepting jobs, disarms pending timers and waits up to
// ShutdownTimeout (or until ctx is done) for running jobs. Pending jobs stay
// persisted for the next Start. Calling Stop on a stopped scheduler is a no-op.
func (s *TimerScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	for id, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, id)
	}
	sweeper, wg, cancel := s.sweeper, s.wg, s.cancel
	s.sweeper = nil
	s.mu.Unlock()

	waitCtx, waitCancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer waitCancel()

	done := make(chan struct{})
	go func() {
		if sweeper != nil {
			<-sweeper.Stop().Done()
		}
		wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		s.logger.Info("scheduler stopped")
	case <-waitCtx.Done():
		err = ErrShutdownTimeout
		s.logger.Warn("scheduler stopped before running jobs finished",
			"timeout", s.cfg.ShutdownTimeout)
	}

	cancel()
	return err
}

// Running reports whether the scheduler accepts jobs.
func (s *TimerScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Schedule submits a job of kind for subjectID at runAt and returns its id.
func (s *TimerScheduler) Schedule(ctx context.Context, kind string, subjectID uuid.UUID, runAt time.Time) (string, error) {
	now := s.now()
	job := Job{
		ID:        NewJobID(kind, subjectID, now),
		Kind:      kind,
		SubjectID: subjectID,
		RunAt:     runAt.UTC(),
		CreatedAt: now.UTC(),
	}
	if err := s.Submit(ctx, job); err != nil {
		return "", err
	}
	return job.ID, nil
}

// ScheduleWithID schedules a job under a caller-chosen id, replacing any
// pending job with that id.
func (s *TimerScheduler) ScheduleWithID(ctx context.Context, id, kind string, subjectID uuid.UUID, runAt time.Time) error {
	if id == "" {
		return fmt.Errorf("job id cannot be empty")
	}
	return s.Submit(ctx, Job{
		ID:        id,
		Kind:      kind,
		SubjectID: subjectID,
		RunAt:     runAt.UTC(),
		CreatedAt: s.now().UTC(),
	})
}

// Submit schedules a fully specified job. A pending job with the same id is
// replaced rather than duplicated.
func (s *TimerScheduler) Submit(ctx context.Context, job Job) error {
	// Claims match on created_at, so keep it at the precision the store holds.
	job.CreatedAt = job.CreatedAt.UTC().Truncate(time.Microsecond)
	job.RunAt = job.RunAt.UTC()

	if _, ok := s.registry.Lookup(job.Kind); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, job.Kind)
	}
	if !s.Running() {
		return ErrNotStarted
	}

	if s.store != nil {
		if err := s.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to persist job %s: %w", job.ID, err)
		}
	}

	if !s.arm(job) {
		return ErrNotStarted
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("job scheduled",
		"job_id", job.ID,
		"job_kind", job.Kind,
		"subject_id", job.SubjectID,
		"run_at", job.RunAt)
	return nil
}

// Cancel removes a pending job. Cancelling a job that already ran or never
// existed is a no-op.
func (s *TimerScheduler) Cancel(ctx context.Context, jobID string) error {
	if jobID == "" {
		return nil
	}

	s.mu.Lock()
	e, ok := s.pending[jobID]
	if ok {
		e.timer.Stop()
		delete(s.pending, jobID)
	}
	s.mu.Unlock()

	if ok {
		s.logger.Info("job cancelled", "job_id", jobID)
	}

	if s.store != nil {
		if err := s.store.DeleteJob(ctx, jobID); err != nil {
			return fmt.Errorf("failed to delete job %s: %w", jobID, err)
		}
	}
	return nil
}

// Pending returns the armed jobs ordered by run time.
func (s *TimerScheduler) Pending() []Job {
	s.mu.Lock()
	jobs := make([]Job, 0, len(s.pending))
	for _, e := range s.pending {
		jobs = append(jobs, e.job)
	}
	s.mu.Unlock()

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].RunAt.Equal(jobs[j].RunAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].RunAt.Before(jobs[j].RunAt)
	})
	return jobs
}

// Reconcile arms every persisted job that is neither pending nor running
// here, and drops persisted jobs whose kind is unknown. It returns how many
// jobs were armed.
func (s *TimerScheduler) Reconcile(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}

	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list persisted jobs: %w", err)
	}

	armed := 0
	for _, job := range jobs {
		if _, ok := s.registry.Lookup(job.Kind); !ok {
			s.logger.Warn("dropping persisted job of unknown kind", "job_id", job.ID, "job_kind", job.Kind)
			if err := s.store.DeleteJob(ctx, job.ID); err != nil {
				s.logger.Error("failed to drop persisted job", "job_id", job.ID, "error", err)
			}
			continue
		}

		s.mu.Lock()
		_, isPending := s.pending[job.ID]
		_, isRunning := s.running[job.ID]
		s.mu.Unlock()
		if isPending || isRunning {
			continue
		}

		if s.arm(job) {
			armed++
		}
	}
	return armed, nil
}

func (s *TimerScheduler) sweep() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	n, err := s.Reconcile(ctx)
	if err != nil {
		s.logger.Error("job sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("job sweep re-armed jobs", "count", n)
	}
}

// arm installs or replaces the timer for job. It reports false when the
// scheduler is stopped.
func (s *TimerScheduler) arm(job Job) bool {
	delay := job.RunAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return false
	}

	if prev, ok := s.pending[job.ID]; ok {
		prev.timer.Stop()
		s.logger.Debug("replacing pending job", "job_id", job.ID)
	}

	e := &entry{job: job}
	e.timer = time.AfterFunc(delay, func() { s.fire(e) })
	s.pending[job.ID] = e
	return true
}

func (s *TimerScheduler) fire(e *entry) {
	id := e.job.ID

	s.mu.Lock()
	if !s.started || s.pending[id] != e {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)

	if _, busy := s.running[id]; busy {
		s.mu.Unlock()
		s.logger.Warn("skipping job run, previous instance still running", "job_id", id)
		return
	}
	s.running[id] = struct{}{}
	wg, ctx := s.wg, s.ctx
	wg.Add(1)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.running, id)
		s.mu.Unlock()
		wg.Done()
	}()

	s.execute(ctx, e.job)
}

func (s *TimerScheduler) execute(ctx context.Context, job Job) {
	log := s.logger.With("job_id", job.ID, "job_kind", job.Kind, "subject_id", job.SubjectID)

	fn, ok := s.registry.Lookup(job.Kind)
	if !ok {
		log.Error("no body registered for job kind")
		return
	}

	if s.locker != nil {
		acquired, err := s.locker.Acquire(ctx, job.ID)
		switch {
		case err != nil:
			log.Warn("job lock unavailable, running unguarded", "error", err)
		case !acquired:
			log.Info("job is being run by another instance")
			return
		default:
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), job.ID); err != nil {
					log.Warn("failed to release job lock", "error", err)
				}
			}()
		}
	}

	if s.store != nil {
		claimed, err := s.store.ClaimJob(ctx, job)
		switch {
		case err != nil:
			log.Error("failed to claim job, leaving it for the next sweep", "error", err)
			return
		case !claimed:
			log.Info("job already claimed by another run")
			return
		}
	}

	start := time.Now()
	log.Info("job started")

	if err := runSafely(logger.WithLogger(ctx, log), fn, job.SubjectID); err != nil {
		log.Error("job failed", "error", err, "duration", time.Since(start))
		return
	}
	log.Info("job completed", "duration", time.Since(start))
}
