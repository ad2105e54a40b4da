package memory

import (
	"context"
	"errors"
	"sync"

	"pet-adoption-api/internal/domain/identity"
)

var (
	ErrNotFound = errors.New("not found")
)

type identityRepo struct {
	mu      sync.RWMutex
	actors  map[string]identity.Actor
	roles   map[string][]identity.Role // actorID -> roles otorgados (append-only salvo revoke explícito)
}

func NewIdentityRepo() identity.Repository {
	return &identityRepo{
		actors: make(map[string]identity.Actor),
		roles:  make(map[string][]identity.Role),
	}
}

func (r *identityRepo) CreateActor(ctx context.Context, a identity.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return errors.New("actor id required")
	}
	if _, exists := r.actors[a.ID]; exists {
		return errors.New("actor already exists")
	}
	r.actors[a.ID] = a
	return nil
}

func (r *identityRepo) GetActor(ctx context.Context, id string) (identity.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.actors[id]
	if !ok {
		return identity.Actor{}, ErrNotFound
	}
	return a, nil
}

func (r *identityRepo) GrantRole(ctx context.Context, actorID string, role identity.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.actors[actorID]; !ok {
		return ErrNotFound
	}
	for _, have := range r.roles[actorID] {
		if have == role {
			return nil // ya lo tiene
		}
	}
	r.roles[actorID] = append(r.roles[actorID], role)
	return nil
}

func (r *identityRepo) RevokeRole(ctx context.Context, actorID string, role identity.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.actors[actorID]; !ok {
		return ErrNotFound
	}
	kept := r.roles[actorID][:0]
	for _, have := range r.roles[actorID] {
		if have != role {
			kept = append(kept, have)
		}
	}
	r.roles[actorID] = kept
	return nil
}

func (r *identityRepo) ListRoles(ctx context.Context, actorID string) ([]identity.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.actors[actorID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]identity.Role, len(r.roles[actorID]))
	copy(out, r.roles[actorID])
	return out, nil
}
