package auth

// Claims es la identidad autenticada que entrega el IdP.
type Claims struct {
	UserID string
	Email  string

	// InitialRole es el role claim con el que el usuario se registró
	// (adopter o shelter). Solo se usa al crear el actor; después manda
	// el role store.
	InitialRole string
}
