// Package tenancy concentra la regla de aislamiento: toda lectura o escritura
// de una entidad propia recibe el tenant y lo aplica como filtro en la misma
// consulta que busca por id. Ajeno e inexistente son el mismo NotFound.
package tenancy

import (
	"context"
	"errors"

	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/ports/auth"
	"invoicing-backend/internal/ports/capabilities"
)

// Require valida que haya un tenant utilizable.
func Require(tenantID int64) error {
	if tenantID <= 0 {
		return apperr.ErrUnauthenticated
	}
	return nil
}

// FromPrincipal devuelve el tenant de un Principal autenticado.
func FromPrincipal(p auth.Principal) (int64, error) {
	if !p.Valid() {
		return 0, apperr.ErrUnauthenticated
	}
	return p.TenantID, nil
}

// FromGrant devuelve el tenant de un capability token ya verificado. Para el
// acceso anónimo es la única fuente de tenant.
func FromGrant(g capabilities.Grant) (int64, error) {
	if g.TenantID <= 0 {
		return 0, apperr.ErrInvalidCapability
	}
	return g.TenantID, nil
}

// FindOwned busca id dentro de tenantID con find, que debe filtrar por ambos
// en la misma consulta. Cualquier not-found del storage se normaliza a
// NotFound(what); el resto de errores (timeouts incluidos) pasa tal cual.
func FindOwned[T any](
	ctx context.Context,
	find func(ctx context.Context, tenantID, id int64) (T, error),
	tenantID, id int64,
	what string,
) (T, error) {
	var zero T
	if err := Require(tenantID); err != nil {
		return zero, err
	}
	if id <= 0 {
		return zero, apperr.NotFound(what)
	}

	v, err := find(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return zero, apperr.NotFound(what)
		}
		return zero, err
	}
	return v, nil
}
