package pets

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p Pet) error

	// Update escribe campos descriptivos y el flag approved.
	// NO toca status: para eso está UpdateStatus.
	Update(ctx context.Context, p Pet) error

	// UpdateStatus es el compare-and-set del lifecycle: solo escribe
	// `to` si el status actual está en `from`. Si no, ErrConflict.
	// Toda transición de status pasa por acá.
	UpdateStatus(ctx context.Context, id string, from []Status, to Status, updatedAt time.Time) (Pet, error)

	GetByID(ctx context.Context, id string) (Pet, error)
	ListByShelter(ctx context.Context, shelterID string) ([]Pet, error)
	List(ctx context.Context) ([]Pet, error)
}
