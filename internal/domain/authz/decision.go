package authz

// Reason codifica por qué se negó una acción.
type Reason string

const (
	ReasonRoleInsufficient Reason = "role-insufficient"
	ReasonNotOwner         Reason = "not-owner"
	ReasonResourceState    Reason = "resource-state-invalid"
)

type Decision struct {
	Allowed bool
	Reason  Reason // vacío cuando Allowed
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(r Reason) Decision {
	return Decision{Allowed: false, Reason: r}
}
