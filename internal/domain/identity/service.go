package identity

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RegisterInput struct {
	ActorID     string
	FullName    string
	Email       string
	Phone       string
	Location    string
	InitialRole string // adopter o shelter; admin jamás por registro
}

// Register crea el actor con su role inicial (claim del IdP).
// Si el actor ya existe, devuelve el existente sin tocar roles.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Actor, error) {
	actorID := strings.TrimSpace(in.ActorID)
	if actorID == "" {
		return Actor{}, ErrInvalidInput
	}

	if existing, err := s.repo.GetActor(ctx, actorID); err == nil {
		return existing, nil
	}

	role := Role(strings.TrimSpace(in.InitialRole))
	if role == "" {
		role = RoleAdopter
	}
	// admin no se auto-asigna: lo otorga otro admin después
	if role == RoleAdmin || !role.Valid() {
		return Actor{}, ErrInvalidInput
	}

	now := s.now()
	a := Actor{
		ID:        actorID,
		FullName:  strings.TrimSpace(in.FullName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Location:  strings.TrimSpace(in.Location),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateActor(ctx, a); err != nil {
		return Actor{}, err
	}
	if err := s.repo.GrantRole(ctx, actorID, role); err != nil {
		return Actor{}, err
	}
	return a, nil
}

func (s *Service) GetActor(ctx context.Context, id string) (Actor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Actor{}, ErrInvalidInput
	}
	a, err := s.repo.GetActor(ctx, id)
	if err != nil {
		return Actor{}, ErrNotFound
	}
	return a, nil
}

// Roles devuelve el set de roles del actor. ErrNotFound si el actor
// no existe (un actor desconocido no tiene roles, ni vacíos).
func (s *Service) Roles(ctx context.Context, actorID string) ([]Role, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.repo.GetActor(ctx, actorID); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.ListRoles(ctx, actorID)
}

func (s *Service) HasRole(ctx context.Context, actorID string, r Role) (bool, error) {
	roles, err := s.Roles(ctx, actorID)
	if err != nil {
		return false, err
	}
	for _, have := range roles {
		if have == r {
			return true, nil
		}
	}
	return false, nil
}

// Grant otorga un role (acción administrativa). Idempotente.
func (s *Service) Grant(ctx context.Context, actorID string, r Role) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" || !r.Valid() {
		return ErrInvalidInput
	}
	if _, err := s.repo.GetActor(ctx, actorID); err != nil {
		return ErrNotFound
	}
	return s.repo.GrantRole(ctx, actorID, r)
}

// Revoke quita un role. Es la única vía de revocación: el core nunca
// revoca roles como efecto colateral.
func (s *Service) Revoke(ctx context.Context, actorID string, r Role) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" || !r.Valid() {
		return ErrInvalidInput
	}
	if _, err := s.repo.GetActor(ctx, actorID); err != nil {
		return ErrNotFound
	}
	return s.repo.RevokeRole(ctx, actorID, r)
}
