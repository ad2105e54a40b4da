package shelters

import "time"

// Shelter es el perfil de refugio. Pertenece a exactamente un actor
// (1:1) y solo un admin puede marcarlo verificado. Un shelter sin
// verificar puede existir y cargar mascotas, pero no publicarlas.
type Shelter struct {
	ID          string
	OwnerUserID string

	Name        string
	Description string
	Address     string
	City        string
	State       string
	Phone       string
	Email       string
	Website     string

	Verified bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
