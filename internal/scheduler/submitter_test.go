package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/mocks"
	"github.com/phrazzld/mise-api/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackRunsAfterDelay(t *testing.T) {
	t.Parallel()

	f := scheduler.NewFallback(discardLogger())
	done := make(chan uuid.UUID, 1)
	subject := uuid.New()

	start := time.Now()
	f.RunDelayed("image", func(_ context.Context, id uuid.UUID) error {
		done <- id
		return nil
	}, subject, 20*time.Millisecond)

	require.NoError(t, f.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, subject, <-done)
}

func TestFallbackSwallowsErrorsAndPanics(t *testing.T) {
	t.Parallel()

	f := scheduler.NewFallback(discardLogger())
	f.RunDelayed("fails", func(context.Context, uuid.UUID) error { return errors.New("nope") }, uuid.New(), 0)
	f.RunDelayed("panics", func(context.Context, uuid.UUID) error { panic("bad") }, uuid.New(), 0)

	assert.NoError(t, f.Wait(context.Background()))
}

func TestFallbackWaitHonoursContext(t *testing.T) {
	t.Parallel()

	f := scheduler.NewFallback(discardLogger())
	release := make(chan struct{})
	f.RunDelayed("stuck", func(context.Context, uuid.UUID) error {
		<-release
		return nil
	}, uuid.New(), 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.Wait(ctx), context.DeadlineExceeded)
	close(release)
}

func TestSubmitter(t *testing.T) {
	t.Parallel()

	subject := uuid.New()
	registryWith := func(t *testing.T, ran chan uuid.UUID) *scheduler.Registry {
		r := scheduler.NewRegistry()
		require.NoError(t, r.Register("image", func(_ context.Context, id uuid.UUID) error {
			ran <- id
			return nil
		}))
		return r
	}

	t.Run("primary accepts", func(t *testing.T) {
		t.Parallel()

		ran := make(chan uuid.UUID, 1)
		primary := &mocks.MockScheduler{}
		fallback := scheduler.NewFallback(discardLogger())
		s, err := scheduler.NewSubmitter(primary, fallback, registryWith(t, ran), discardLogger())
		require.NoError(t, err)

		before := time.Now()
		id := s.Submit(context.Background(), "image", subject, time.Second)
		assert.NotEmpty(t, id)

		calls := primary.Scheduled()
		require.Len(t, calls, 1)
		assert.Equal(t, "image", calls[0].Kind)
		assert.Equal(t, subject, calls[0].SubjectID)
		assert.WithinDuration(t, before.Add(time.Second), calls[0].RunAt, 100*time.Millisecond)

		require.NoError(t, fallback.Wait(context.Background()))
		assert.Empty(t, ran)
	})

	t.Run("primary rejects", func(t *testing.T) {
		t.Parallel()

		ran := make(chan uuid.UUID, 1)
		primary := &mocks.MockScheduler{
			ScheduleFn: func(context.Context, string, uuid.UUID, time.Time) (string, error) {
				return "", scheduler.ErrNotStarted
			},
		}
		fallback := scheduler.NewFallback(discardLogger())
		s, err := scheduler.NewSubmitter(primary, fallback, registryWith(t, ran), discardLogger())
		require.NoError(t, err)

		assert.Empty(t, s.Submit(context.Background(), "image", subject, 0))
		require.NoError(t, fallback.Wait(context.Background()))
		assert.Equal(t, subject, <-ran)
		assert.Len(t, primary.Scheduled(), 1)
	})

	t.Run("no primary", func(t *testing.T) {
		t.Parallel()

		ran := make(chan uuid.UUID, 1)
		fallback := scheduler.NewFallback(discardLogger())
		s, err := scheduler.NewSubmitter(nil, fallback, registryWith(t, ran), discardLogger())
		require.NoError(t, err)

		assert.Empty(t, s.Submit(context.Background(), "image", subject, 0))
		require.NoError(t, fallback.Wait(context.Background()))
		assert.Equal(t, subject, <-ran)
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()

		ran := make(chan uuid.UUID, 1)
		fallback := scheduler.NewFallback(discardLogger())
		s, err := scheduler.NewSubmitter(nil, fallback, registryWith(t, ran), discardLogger())
		require.NoError(t, err)

		assert.Empty(t, s.Submit(context.Background(), "missing", subject, 0))
		require.NoError(t, fallback.Wait(context.Background()))
		assert.Empty(t, ran)
	})
}

func TestNewSubmitterValidation(t *testing.T) {
	t.Parallel()

	f := scheduler.NewFallback(discardLogger())
	r := scheduler.NewRegistry()

	_, err := scheduler.NewSubmitter(nil, nil, r, discardLogger())
	assert.Error(t, err)
	_, err = scheduler.NewSubmitter(nil, f, nil, discardLogger())
	assert.Error(t, err)
	_, err = scheduler.NewSubmitter(nil, f, r, nil)
	assert.Error(t, err)
}
