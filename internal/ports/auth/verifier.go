package auth

import "context"

// Verifier valida un token del identity provider y devuelve claims.
// Este core confía en el IdP como fuente de verdad de "quién es";
// los roles NO vienen del token, los resuelve el módulo identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
