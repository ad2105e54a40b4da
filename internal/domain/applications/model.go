package applications

import "time"

// Status es el ciclo de vida de la solicitud:
//
//	pending → approved | rejected
//
// Ambos destinos son terminales. A lo sumo UNA application por
// mascota llega a approved, siempre.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// RejectReasonPetGone marca los rechazos en cascada: otra application
// ganó la mascota, o la mascota fue retirada.
const RejectReasonPetGone = "pet-no-longer-available"

// Application pertenece a exactamente una mascota y un adopter.
// ShelterID viene denormalizado para resolver ownership sin joins.
// La decide el shelter dueño, o la rechaza la cascada.
type Application struct {
	ID            string
	PetID         string
	ShelterID     string
	AdopterUserID string

	Message      string
	HomeType     string
	HasChildren  bool
	HasOtherPets bool
	Experience   string

	Status       Status
	RejectReason string
	ReviewedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
