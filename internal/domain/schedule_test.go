package domain

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduledDish(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recipeID := uuid.New()

	s, err := NewScheduledDish(recipeID, now.Add(time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, ScheduleStatusPending, s.Status)
	assert.Equal(t, "", s.JobID())

	job := "publish_dish_x_1"
	s.Job = &job
	assert.Equal(t, job, s.JobID())

	_, err = NewScheduledDish(recipeID, now, now)
	assert.ErrorIs(t, err, ErrScheduleInPast)

	_, err = NewScheduledDish(uuid.Nil, now.Add(time.Hour), now)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestActorFromContext(t *testing.T) {
	t.Parallel()

	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithActor(context.Background(), Actor{UserID: uuid.New()})
	_, ok = ActorFromContext(ctx)
	assert.False(t, ok, "unauthenticated actor")

	user := uuid.New()
	ctx = WithActor(context.Background(), Actor{UserID: user, Authenticated: true})
	actor, ok := ActorFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, actor.UserID)
}

func TestNotificationSeenByUser(t *testing.T) {
	t.Parallel()

	u1, u2 := uuid.New(), uuid.New()
	n := &Notification{SeenBy: []uuid.UUID{u1}}
	assert.True(t, n.SeenByUser(u1))
	assert.False(t, n.SeenByUser(u2))
}
