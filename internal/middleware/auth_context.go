package middleware

import (
	"context"
	"net/http"

	"invoicing-backend/internal/auth/session"
	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/respond"
	"invoicing-backend/internal/ports/auth"
)

type ctxKey string

const principalKey ctxKey = "principal"

// AuthContext:
// - Si viene Bearer token => intenta Verify() y setea el Principal.
// - Si no hay token o es inválido, el request sigue igual; RequireAuth decide el 401.
// - Errores no-auth del verifier (p.ej. storage caído) se propagan como 503, no como 401.
func AuthContext(verifier auth.AuthVerifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.BearerToken(r.Header.Get("Authorization"))
			if token == "" || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			p, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if apperr.CodeOf(err) == apperr.CodeUnavailable {
					respond.Error(w, r, log, err)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAuth corta con 401 si AuthContext no dejó un Principal válido.
// Header ausente y header inválido dan la misma respuesta.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetPrincipal(r.Context()); !ok {
			respond.Error(w, r, nil, apperr.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	v := ctx.Value(principalKey)
	if v == nil {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok && p.Valid()
}

// PrincipalOr401 devuelve el Principal del request o escribe 401.
func PrincipalOr401(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := GetPrincipal(r.Context())
	if !ok {
		respond.Error(w, r, nil, apperr.ErrUnauthenticated)
		return auth.Principal{}, false
	}
	return p, true
}
