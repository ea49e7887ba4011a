package domain

import (
	"context"

	"github.com/google/uuid"
)

// Actor is the principal performing a mutation.
type Actor struct {
	UserID        uuid.UUID
	RestaurantID  *uuid.UUID
	Authenticated bool
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying the acting principal.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored in ctx. ok is false when no actor
// was attached or the actor is not authenticated.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || !actor.Authenticated || actor.UserID == uuid.Nil {
		return Actor{}, false
	}
	return actor, true
}
