package invoices

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserta la invoice y sus líneas en una sola unidad; asigna IDs.
	// (tenant, number) duplicado => apperr Conflict.
	Create(ctx context.Context, inv Invoice) (Invoice, error)
	// FindOwned no carga Lines.
	FindOwned(ctx context.Context, tenantID, id int64) (Invoice, error)
	// Lines devuelve las líneas por id ascendente.
	Lines(ctx context.Context, tenantID, invoiceID int64) ([]Line, error)
	// List ordena por id descendente, sin Lines.
	List(ctx context.Context, tenantID int64, limit, offset int) ([]Invoice, error)
	// TransitionStatus cambia a `to` solo si el status actual está en `from`.
	// changed=false si el status no lo permitía; NotFound si no es del tenant.
	TransitionStatus(ctx context.Context, tenantID, id int64, from []Status, to Status, at time.Time) (inv Invoice, changed bool, err error)
}
