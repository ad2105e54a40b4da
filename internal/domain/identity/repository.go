package identity

import "context"

type Repository interface {
	CreateActor(ctx context.Context, a Actor) error
	GetActor(ctx context.Context, id string) (Actor, error)

	// GrantRole es idempotente: re-otorgar un role existente es no-op.
	GrantRole(ctx context.Context, actorID string, r Role) error
	RevokeRole(ctx context.Context, actorID string, r Role) error
	ListRoles(ctx context.Context, actorID string) ([]Role, error)
}
