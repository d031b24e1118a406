package quotes

import "context"

type Repository interface {
	// Create asigna ID. (tenant, number) duplicado => apperr Conflict.
	Create(ctx context.Context, q Quote) (Quote, error)
	FindOwned(ctx context.Context, tenantID, id int64) (Quote, error)
	// List ordena por id descendente.
	List(ctx context.Context, tenantID int64, f ListFilter) ([]Quote, error)
	Update(ctx context.Context, q Quote) (Quote, error)
	Delete(ctx context.Context, tenantID, id int64) error
}
