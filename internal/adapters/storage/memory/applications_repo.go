package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"pet-adoption-api/internal/domain/applications"
	"pet-adoption-api/internal/domain/pets"
)

type applicationsRepo struct {
	mu   sync.RWMutex
	byID map[string]applications.Application

	// colaborador para el commit atómico de aprobación
	pets *PetRepo
}

// NewApplicationsRepo necesita el PetRepo in-memory: la aprobación
// cruza ambas entidades en un solo commit y acá la "transacción" es
// tomar los dos mutex (siempre en el orden applications → pets).
func NewApplicationsRepo(petRepo *PetRepo) applications.Repository {
	return &applicationsRepo{
		byID: make(map[string]applications.Application),
		pets: petRepo,
	}
}

func (r *applicationsRepo) Create(ctx context.Context, a applications.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return errors.New("application id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("application already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *applicationsRepo) GetByID(ctx context.Context, id string) (applications.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return applications.Application{}, ErrNotFound
	}
	return a, nil
}

func (r *applicationsRepo) ListByPet(ctx context.Context, petID string) ([]applications.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]applications.Application, 0)
	for _, a := range r.byID {
		if a.PetID == petID {
			out = append(out, a)
		}
	}
	sortApplications(out)
	return out, nil
}

func (r *applicationsRepo) ListByAdopter(ctx context.Context, adopterUserID string) ([]applications.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]applications.Application, 0)
	for _, a := range r.byID {
		if a.AdopterUserID == adopterUserID {
			out = append(out, a)
		}
	}
	sortApplications(out)
	return out, nil
}

func (r *applicationsRepo) Approve(ctx context.Context, id string, now time.Time) (applications.DecideResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return applications.DecideResult{}, ErrNotFound
	}
	if a.Status != applications.StatusPending {
		return applications.DecideResult{}, applications.ErrConflict
	}

	// Primero la mascota: si el CAS available→adopted falla, no se
	// tocó nada y el conflicto sale limpio.
	r.pets.mu.Lock()
	defer r.pets.mu.Unlock()

	if _, err := r.pets.casStatusLocked(a.PetID, []pets.Status{pets.StatusAvailable}, pets.StatusAdopted, now); err != nil {
		if errors.Is(err, pets.ErrConflict) {
			return applications.DecideResult{}, applications.ErrConflict
		}
		return applications.DecideResult{}, err
	}

	reviewed := now
	a.Status = applications.StatusApproved
	a.ReviewedAt = &reviewed
	a.UpdatedAt = now
	r.byID[a.ID] = a

	rejected := make([]applications.Application, 0)
	for id2, sib := range r.byID {
		if id2 == a.ID || sib.PetID != a.PetID || sib.Status != applications.StatusPending {
			continue
		}
		sib.Status = applications.StatusRejected
		sib.RejectReason = applications.RejectReasonPetGone
		sib.ReviewedAt = &reviewed
		sib.UpdatedAt = now
		r.byID[id2] = sib
		rejected = append(rejected, sib)
	}
	sortApplications(rejected)

	return applications.DecideResult{
		Application:      a,
		RejectedSiblings: rejected,
	}, nil
}

func (r *applicationsRepo) Reject(ctx context.Context, id string, reason string, now time.Time) (applications.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return applications.Application{}, ErrNotFound
	}
	if a.Status != applications.StatusPending {
		return applications.Application{}, applications.ErrConflict
	}

	reviewed := now
	a.Status = applications.StatusRejected
	a.RejectReason = reason
	a.ReviewedAt = &reviewed
	a.UpdatedAt = now
	r.byID[id] = a
	return a, nil
}

func (r *applicationsRepo) RejectPendingByPet(ctx context.Context, petID string, reason string, now time.Time) ([]applications.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reviewed := now
	out := make([]applications.Application, 0)
	for id, a := range r.byID {
		if a.PetID != petID || a.Status != applications.StatusPending {
			continue
		}
		a.Status = applications.StatusRejected
		a.RejectReason = reason
		a.ReviewedAt = &reviewed
		a.UpdatedAt = now
		r.byID[id] = a
		out = append(out, a)
	}
	sortApplications(out)
	return out, nil
}

func sortApplications(out []applications.Application) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}
