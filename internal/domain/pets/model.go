package pets

import "time"

// Species define las especies soportadas.
// @Enum dog, cat, rabbit, bird, other
type Species string

const (
	SpeciesDog    Species = "dog"
	SpeciesCat    Species = "cat"
	SpeciesRabbit Species = "rabbit"
	SpeciesBird   Species = "bird"
	SpeciesOther  Species = "other"
)

func (s Species) Valid() bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesRabbit, SpeciesBird, SpeciesOther:
		return true
	}
	return false
}

// Status es el ciclo de vida de la mascota:
//
//	unlisted → available → pending → adopted
//	             └──────┴→ withdrawn
//
// adopted y withdrawn son terminales. Una mascota nueva SIEMPRE nace
// unlisted, sin importar lo que mande el caller.
type Status string

const (
	StatusUnlisted  Status = "unlisted"
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusAdopted   Status = "adopted"
	StatusWithdrawn Status = "withdrawn"
)

func (s Status) Terminal() bool {
	return s == StatusAdopted || s == StatusWithdrawn
}

// Pet pertenece a exactamente un shelter. El flag Approved lo maneja
// admin y es independiente del control del shelter; Status lo mueven
// el shelter (publish/withdraw) y el workflow de applications
// (adopción). Nunca se borra con applications no-terminales: se
// retira (withdrawn).
type Pet struct {
	ID        string
	ShelterID string

	Name          string
	Species       Species
	Breed         string
	Gender        string
	Size          string
	Color         string
	AgeYears      int
	AgeMonths     int
	Description   string
	BehaviorNotes string
	MedicalInfo   string
	PhotoURL      string

	Approved bool
	Status   Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
