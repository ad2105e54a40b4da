package authz

import (
	"pet-adoption-api/internal/domain/identity"
)

// Action enumera las acciones que la política conoce.
type Action string

const (
	ActionPetCreate      Action = "pet:create"
	ActionPetRead        Action = "pet:read"
	ActionPetUpdate      Action = "pet:update"
	ActionPetPublish     Action = "pet:publish"
	ActionPetWithdraw    Action = "pet:withdraw"
	ActionPetSetApproval Action = "pet:set_approval"

	ActionShelterUpdate Action = "shelter:update"
	ActionShelterVerify Action = "shelter:verify"

	ActionApplicationCreate Action = "application:create"
	ActionApplicationRead   Action = "application:read"
	ActionApplicationDecide Action = "application:decide"

	ActionMessageSend Action = "message:send"
	ActionMessageRead Action = "message:read"

	ActionRoleGrant  Action = "role:grant"
	ActionRoleRevoke Action = "role:revoke"
)

type Kind string

const (
	KindPet         Kind = "pet"
	KindShelter     Kind = "shelter"
	KindApplication Kind = "application"
)

// Resource es un snapshot inmutable de lo que la política necesita
// saber del recurso. El caller lo arma con el estado ya leído; acá
// no se consulta storage (la evaluación es pura y nunca bloquea).
type Resource struct {
	Kind Kind

	// OwnerUserID es el dueño efectivo: el owner del shelter para
	// pets y applications, el owner directo para shelters.
	OwnerUserID string

	// AdopterUserID aplica a applications (autor de la solicitud).
	AdopterUserID string

	PetApproved     bool
	PetStatus       string
	ShelterVerified bool
}

type Input struct {
	ActorID  string
	Roles    []identity.Role
	Action   Action
	Resource Resource
}

func (in Input) hasRole(r identity.Role) bool {
	for _, have := range in.Roles {
		if have == r {
			return true
		}
	}
	return false
}

func (in Input) isOwner() bool {
	return in.ActorID != "" && in.ActorID == in.Resource.OwnerUserID
}

func (in Input) isAdopterAuthor() bool {
	return in.ActorID != "" && in.ActorID == in.Resource.AdopterUserID
}

func petPubliclyVisible(r Resource) bool {
	return r.PetApproved && r.PetStatus == "available"
}

// Evaluate aplica la tabla de política fija sobre (roles, acción,
// recurso, relación de ownership). Default: Deny. Ante input ambiguo
// jamás se permite en silencio.
func Evaluate(in Input) Decision {
	// admin: saltea roles y ownership, no los guards de estado del
	// recurso. Publicar exige approved + shelter verificado también
	// para admins: un shelter sin verificar nunca llega a available.
	if in.hasRole(identity.RoleAdmin) {
		if in.Action == ActionPetPublish && (!in.Resource.PetApproved || !in.Resource.ShelterVerified) {
			return Deny(ReasonResourceState)
		}
		return Allow()
	}

	// sin identidad o sin roles: solo lectura de listings públicos
	if in.ActorID == "" || len(in.Roles) == 0 {
		if in.Action == ActionPetRead && petPubliclyVisible(in.Resource) {
			return Allow()
		}
		return Deny(ReasonRoleInsufficient)
	}

	switch in.Action {
	case ActionPetRead:
		if in.hasRole(identity.RoleShelter) && in.isOwner() {
			return Allow()
		}
		if petPubliclyVisible(in.Resource) {
			return Allow()
		}
		return Deny(ReasonResourceState)

	case ActionPetCreate, ActionPetUpdate, ActionPetWithdraw:
		if !in.hasRole(identity.RoleShelter) {
			return Deny(ReasonRoleInsufficient)
		}
		if !in.isOwner() {
			return Deny(ReasonNotOwner)
		}
		return Allow()

	case ActionPetPublish:
		if !in.hasRole(identity.RoleShelter) {
			return Deny(ReasonRoleInsufficient)
		}
		if !in.isOwner() {
			return Deny(ReasonNotOwner)
		}
		// publicar exige approved por admin y shelter verificado
		if !in.Resource.PetApproved || !in.Resource.ShelterVerified {
			return Deny(ReasonResourceState)
		}
		return Allow()

	case ActionShelterUpdate:
		if !in.hasRole(identity.RoleShelter) {
			return Deny(ReasonRoleInsufficient)
		}
		if !in.isOwner() {
			return Deny(ReasonNotOwner)
		}
		return Allow()

	case ActionApplicationCreate:
		if !in.hasRole(identity.RoleAdopter) {
			return Deny(ReasonRoleInsufficient)
		}
		// solo sobre pets aprobados y disponibles
		if !petPubliclyVisible(in.Resource) {
			return Deny(ReasonResourceState)
		}
		return Allow()

	case ActionApplicationRead:
		if in.isAdopterAuthor() || (in.hasRole(identity.RoleShelter) && in.isOwner()) {
			return Allow()
		}
		return Deny(ReasonNotOwner)

	case ActionApplicationDecide:
		if !in.hasRole(identity.RoleShelter) {
			return Deny(ReasonRoleInsufficient)
		}
		if !in.isOwner() {
			return Deny(ReasonNotOwner)
		}
		return Allow()

	case ActionMessageSend, ActionMessageRead:
		// abierto al adopter autor y al shelter dueño, sin importar
		// el estado de la application; cerrado a terceros
		if in.isAdopterAuthor() || (in.hasRole(identity.RoleShelter) && in.isOwner()) {
			return Allow()
		}
		return Deny(ReasonNotOwner)

	case ActionPetSetApproval, ActionShelterVerify, ActionRoleGrant, ActionRoleRevoke:
		// admin-only; el bypass de admin ya pasó arriba
		return Deny(ReasonRoleInsufficient)
	}

	return Deny(ReasonRoleInsufficient)
}
