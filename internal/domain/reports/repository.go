package reports

import (
	"context"
	"time"
)

// Repository lee el último snapshot refrescado. Las lecturas pueden estar
// desactualizadas hasta el próximo Refresh; los writes de CRUD no lo tocan.
type Repository interface {
	// Refresh recalcula los agregados de todos los tenants.
	Refresh(ctx context.Context) error
	// QuotesByStatus ordena por status.
	QuotesByStatus(ctx context.Context, tenantID int64) ([]StatusRow, error)
	// MonthlyRevenue devuelve los meses >= since, ascendente.
	MonthlyRevenue(ctx context.Context, tenantID int64, since time.Time) ([]MonthRow, error)
}
