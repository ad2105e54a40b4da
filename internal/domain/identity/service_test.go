package identity

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	actors map[string]Actor
	roles  map[string][]Role
}

func newTestRepo() *testRepo {
	return &testRepo{
		actors: map[string]Actor{},
		roles:  map[string][]Role{},
	}
}

func (r *testRepo) CreateActor(ctx context.Context, a Actor) error {
	if a.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.actors[a.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.actors[a.ID] = a
	return nil
}

func (r *testRepo) GetActor(ctx context.Context, id string) (Actor, error) {
	a, ok := r.actors[id]
	if !ok {
		return Actor{}, errRepoNotFound
	}
	return a, nil
}

func (r *testRepo) GrantRole(ctx context.Context, actorID string, role Role) error {
	for _, have := range r.roles[actorID] {
		if have == role {
			return nil
		}
	}
	r.roles[actorID] = append(r.roles[actorID], role)
	return nil
}

func (r *testRepo) RevokeRole(ctx context.Context, actorID string, role Role) error {
	out := r.roles[actorID][:0]
	for _, have := range r.roles[actorID] {
		if have != role {
			out = append(out, have)
		}
	}
	r.roles[actorID] = out
	return nil
}

func (r *testRepo) ListRoles(ctx context.Context, actorID string) ([]Role, error) {
	return append([]Role(nil), r.roles[actorID]...), nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_DefaultsToAdopter(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	a, err := svc.Register(context.Background(), RegisterInput{
		ActorID:  "user-1",
		FullName: "Ana",
		Email:    "ana@example.com",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if a.CreatedAt != now || a.UpdatedAt != now {
		t.Fatalf("expected timestamps set to now")
	}

	roles, err := svc.Roles(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Roles error: %v", err)
	}
	if len(roles) != 1 || roles[0] != RoleAdopter {
		t.Fatalf("expected [adopter], got %v", roles)
	}
}

func TestService_Register_ShelterRole(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		ActorID:     "user-1",
		InitialRole: "shelter",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	ok, err := svc.HasRole(context.Background(), "user-1", RoleShelter)
	if err != nil || !ok {
		t.Fatalf("expected shelter role, ok=%v err=%v", ok, err)
	}
}

func TestService_Register_RejectsAdminAsInitialRole(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		ActorID:     "user-1",
		InitialRole: "admin",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Register_Idempotent(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	a1, err := svc.Register(context.Background(), RegisterInput{ActorID: "user-1", FullName: "Ana"})
	if err != nil {
		t.Fatalf("Register #1 error: %v", err)
	}

	// re-registro: devuelve el existente, no pisa el perfil
	a2, err := svc.Register(context.Background(), RegisterInput{ActorID: "user-1", FullName: "Otro Nombre"})
	if err != nil {
		t.Fatalf("Register #2 error: %v", err)
	}
	if a2.FullName != a1.FullName {
		t.Fatalf("expected existing profile kept, got %q", a2.FullName)
	}
}

func TestService_Roles_UnknownActor(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Roles(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_GrantAndRevoke(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Register(context.Background(), RegisterInput{ActorID: "user-1"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if err := svc.Grant(context.Background(), "user-1", RoleShelter); err != nil {
		t.Fatalf("Grant error: %v", err)
	}
	// re-grant es no-op
	if err := svc.Grant(context.Background(), "user-1", RoleShelter); err != nil {
		t.Fatalf("re-Grant error: %v", err)
	}

	roles, _ := svc.Roles(context.Background(), "user-1")
	if len(roles) != 2 {
		t.Fatalf("expected 2 roles, got %v", roles)
	}

	if err := svc.Revoke(context.Background(), "user-1", RoleShelter); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	ok, _ := svc.HasRole(context.Background(), "user-1", RoleShelter)
	if ok {
		t.Fatalf("expected shelter role revoked")
	}

	if err := svc.Grant(context.Background(), "ghost", RoleShelter); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound granting to unknown actor, got %v", err)
	}
}
