package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Func is a job body. It receives only the subject id and must re-fetch
// whatever state it needs.
type Func func(ctx context.Context, subjectID uuid.UUID) error

// Job is one scheduled invocation of a registered kind.
type Job struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	SubjectID uuid.UUID `json:"subject_id"`
	RunAt     time.Time `json:"run_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewJobID builds the deterministic id "<kind>_<subject>_<unix seconds>".
func NewJobID(kind string, subjectID uuid.UUID, submittedAt time.Time) string {
	return fmt.Sprintf("%s_%s_%d", kind, subjectID, submittedAt.Unix())
}

// JobStore persists pending jobs. DeleteJob on a missing id is not an error.
type JobStore interface {
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, id string) error
	ListJobs(ctx context.Context) ([]Job, error)

	// ClaimJob atomically removes the row of this exact submission (same id
	// and created_at) and reports whether it was still there. Only the caller
	// that gets true may run the job.
	ClaimJob(ctx context.Context, job Job) (bool, error)
}

// Locker guards job execution across processes.
type Locker interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Scheduler accepts delayed jobs.
type Scheduler interface {
	Schedule(ctx context.Context, kind string, subjectID uuid.UUID, runAt time.Time) (string, error)
	Cancel(ctx context.Context, jobID string) error
}

// Registry maps job kinds to their bodies.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register binds fn to kind.
func (r *Registry) Register(kind string, fn Func) error {
	if kind == "" || fn == nil {
		return fmt.Errorf("kind and func are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, kind)
	}
	r.funcs[kind] = fn
	return nil
}

// Lookup returns the body registered for kind.
func (r *Registry) Lookup(kind string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[kind]
	return fn, ok
}

// Kinds lists registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.funcs))
	for k := range r.funcs {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// runSafely calls fn and converts a panic into an error.
func runSafely(ctx context.Context, fn Func, subjectID uuid.UUID) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	return fn(ctx, subjectID)
}
