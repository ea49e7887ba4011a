package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/platform/logger"
)

// Fallback runs a job body on a detached goroutine after a delay. It is not
// persisted and does not survive a restart.
type Fallback struct {
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewFallback creates a Fallback.
func NewFallback(log *slog.Logger) *Fallback {
	return &Fallback{logger: log.With("component", "fallback_runner")}
}

// RunDelayed sleeps for delay and then calls fn for subjectID. Errors and
// panics are logged, never returned.
func (f *Fallback) RunDelayed(kind string, fn Func, subjectID uuid.UUID, delay time.Duration) {
	log := f.logger.With("job_kind", kind, "subject_id", subjectID)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				log.Error("fallback job panicked", "panic", fmt.Sprint(p))
			}
		}()

		if delay > 0 {
			time.Sleep(delay)
		}

		ctx := logger.WithLogger(context.Background(), log)
		if err := fn(ctx, subjectID); err != nil {
			log.Error("fallback job failed", "error", err)
			return
		}
		log.Info("fallback job completed")
	}()
}

// Wait blocks until every started fallback job returns or ctx is done.
func (f *Fallback) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
