package shelters

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("shelter already exists for owner")
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

type CreateInput struct {
	Name        string
	Description string
	Address     string
	City        string
	State       string
	Phone       string
	Email       string
	Website     string
}

// Create registra el shelter del actor. Es 1:1: un actor no puede
// tener más de un shelter. Nace sin verificar.
func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Shelter, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return Shelter{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return Shelter{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByOwner(ctx, ownerUserID); err == nil {
		return Shelter{}, ErrAlreadyExists
	}

	now := s.now()
	sh := Shelter{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Address:     strings.TrimSpace(in.Address),
		City:        strings.TrimSpace(in.City),
		State:       strings.TrimSpace(in.State),
		Phone:       strings.TrimSpace(in.Phone),
		Email:       strings.TrimSpace(in.Email),
		Website:     strings.TrimSpace(in.Website),
		Verified:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, sh); err != nil {
		return Shelter{}, err
	}
	return sh, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Shelter, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Shelter{}, ErrInvalidInput
	}
	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Shelter{}, ErrNotFound
	}
	return sh, nil
}

func (s *Service) GetByOwner(ctx context.Context, ownerUserID string) (Shelter, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return Shelter{}, ErrInvalidInput
	}
	sh, err := s.repo.GetByOwner(ctx, ownerUserID)
	if err != nil {
		return Shelter{}, ErrNotFound
	}
	return sh, nil
}

func (s *Service) List(ctx context.Context) ([]Shelter, error) {
	return s.repo.List(ctx)
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name        *string
	Description *string
	Address     *string
	City        *string
	State       *string
	Phone       *string
	Email       *string
	Website     *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Shelter, error) {
	sh, err := s.GetByID(ctx, id)
	if err != nil {
		return Shelter{}, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&sh.Name, in.Name)
	apply(&sh.Description, in.Description)
	apply(&sh.Address, in.Address)
	apply(&sh.City, in.City)
	apply(&sh.State, in.State)
	apply(&sh.Phone, in.Phone)
	apply(&sh.Email, in.Email)
	apply(&sh.Website, in.Website)

	if sh.Name == "" || sh.Email == "" {
		return Shelter{}, ErrInvalidInput
	}

	sh.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, sh); err != nil {
		return Shelter{}, err
	}
	return sh, nil
}

// SetVerified marca el shelter como verificado (o lo desmarca).
// Acción exclusiva de admin; el handler ya validó la política.
func (s *Service) SetVerified(ctx context.Context, id string, verified bool) (Shelter, error) {
	sh, err := s.GetByID(ctx, id)
	if err != nil {
		return Shelter{}, err
	}

	// Idempotente
	if sh.Verified == verified {
		return sh, nil
	}

	sh.Verified = verified
	sh.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, sh); err != nil {
		return Shelter{}, err
	}
	return sh, nil
}

// OwnerOf expone el owner de un shelter sin acoplar módulos que
// solo necesitan la relación de ownership.
func (s *Service) OwnerOf(ctx context.Context, shelterID string) (string, error) {
	sh, err := s.GetByID(ctx, shelterID)
	if err != nil {
		return "", err
	}
	return sh.OwnerUserID, nil
}
