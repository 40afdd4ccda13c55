package http

import (
	"context"

	"clubhub-backend/internal/domain"
)

type actorKey struct{}

// WithActor stores the authenticated caller on ctx.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the caller stored by the auth middleware.
func ActorFromContext(ctx context.Context) (domain.Actor, error) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	if !ok || actor.UserID <= 0 {
		return domain.Actor{}, domain.NewAppError(domain.ErrCodeUnauthenticated)
	}
	return actor, nil
}
