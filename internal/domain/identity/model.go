package identity

import "time"

// Role define los roles soportados.
// @Enum admin, shelter, adopter
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleShelter Role = "shelter"
	RoleAdopter Role = "adopter"
)

// Valid reporta si el role pertenece al enum.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleShelter, RoleAdopter:
		return true
	}
	return false
}

// Actor es una identidad autenticada con su perfil básico.
// Los roles viven aparte (append-only): se otorgan, nunca se pierden
// en forma implícita.
type Actor struct {
	ID string

	FullName string
	Email    string
	Phone    string
	Location string

	CreatedAt time.Time
	UpdatedAt time.Time
}
