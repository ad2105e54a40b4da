package applications

import (
	"context"
	"time"
)

// DecideResult es lo que commiteó una aprobación: la application
// ganadora y las hermanas que cayeron en cascada.
type DecideResult struct {
	Application      Application
	RejectedSiblings []Application
}

type Repository interface {
	Create(ctx context.Context, a Application) error
	GetByID(ctx context.Context, id string) (Application, error)
	ListByPet(ctx context.Context, petID string) ([]Application, error)
	ListByAdopter(ctx context.Context, adopterUserID string) ([]Application, error)

	// Approve es UN commit atómico que cruza entidades:
	//   application pending → approved
	//   pet available → adopted (compare-and-set)
	//   hermanas pending → rejected (pet-no-longer-available)
	// Todo o nada. ErrConflict si la application no está pending o la
	// mascota no está available.
	Approve(ctx context.Context, id string, now time.Time) (DecideResult, error)

	// Reject es condicional: solo escribe si la application sigue
	// pending. ErrConflict si no.
	Reject(ctx context.Context, id string, reason string, now time.Time) (Application, error)

	// RejectPendingByPet rechaza todas las pending de una mascota
	// (cascada de withdraw).
	RejectPendingByPet(ctx context.Context, petID string, reason string, now time.Time) ([]Application, error)
}
