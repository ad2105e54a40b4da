package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"pet-adoption-api/internal/domain/pets"
)

// PetRepo queda exportado porque el repo de applications lo necesita
// como colaborador para el commit atómico de aprobación.
type PetRepo struct {
	mu   sync.RWMutex
	byID map[string]pets.Pet
}

func NewPetRepo() *PetRepo {
	return &PetRepo{
		byID: make(map[string]pets.Pet),
	}
}

var _ pets.Repository = (*PetRepo)(nil)

func (r *PetRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *PetRepo) Update(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		return errors.New("pet id required")
	}
	current, exists := r.byID[p.ID]
	if !exists {
		return ErrNotFound
	}
	// status solo se mueve por UpdateStatus
	p.Status = current.Status
	r.byID[p.ID] = p
	return nil
}

func (r *PetRepo) UpdateStatus(ctx context.Context, id string, from []pets.Status, to pets.Status, updatedAt time.Time) (pets.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.casStatusLocked(id, from, to, updatedAt)
}

// casStatusLocked es el compare-and-set real; el caller ya tiene r.mu.
// Lo comparte el approve atómico de applications.
func (r *PetRepo) casStatusLocked(id string, from []pets.Status, to pets.Status, updatedAt time.Time) (pets.Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return pets.Pet{}, ErrNotFound
	}

	matched := false
	for _, f := range from {
		if p.Status == f {
			matched = true
			break
		}
	}
	if !matched {
		return pets.Pet{}, pets.ErrConflict
	}

	p.Status = to
	p.UpdatedAt = updatedAt
	r.byID[id] = p
	return p, nil
}

func (r *PetRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return pets.Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *PetRepo) ListByShelter(ctx context.Context, shelterID string) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.byID {
		if p.ShelterID == shelterID {
			out = append(out, p)
		}
	}
	sortPets(out)
	return out, nil
}

func (r *PetRepo) List(ctx context.Context) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sortPets(out)
	return out, nil
}

// Orden estable por created_at asc (consistencia en dev/tests)
func sortPets(out []pets.Pet) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}
