package auth

import "context"

// AuthVerifier verifica un session token y devuelve el Principal o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}
