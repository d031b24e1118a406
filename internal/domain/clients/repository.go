package clients

import "context"

// Repository: todas las operaciones filtran por tenant en la misma consulta.
type Repository interface {
	// Create asigna ID. (tenant, name) duplicado => apperr Conflict.
	Create(ctx context.Context, c Client) (Client, error)
	FindOwned(ctx context.Context, tenantID, id int64) (Client, error)
	List(ctx context.Context, tenantID int64, f ListFilter) ([]Client, error)
	// Update reescribe name/email/phone de (tenant, id).
	Update(ctx context.Context, c Client) (Client, error)
	// Delete borra el client y sus quotes, todo dentro del tenant.
	Delete(ctx context.Context, tenantID, id int64) error
}
