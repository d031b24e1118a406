package payments

import (
	"context"

	"invoicing-backend/internal/domain/invoices"
)

// Tx son las operaciones de storage de la conciliación. Todas corren dentro
// de la misma transacción abierta por Repository.WithinTx.
type Tx interface {
	// LockInvoice busca (tenant, id) y bloquea la fila hasta el fin de la tx.
	LockInvoice(ctx context.Context, tenantID, invoiceID int64) (invoices.Invoice, error)
	Insert(ctx context.Context, p Payment) (Payment, error)
	SumByInvoice(ctx context.Context, tenantID, invoiceID int64) (int64, error)
	// UpdateStatusIf cambia el status solo si sigue siendo `from`.
	UpdateStatusIf(ctx context.Context, tenantID, invoiceID int64, from, to invoices.Status) (bool, error)
}

type Repository interface {
	// WithinTx corre fn atómicamente: si fn devuelve error no queda nada escrito.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	// List devuelve los pagos de la invoice por id ascendente.
	List(ctx context.Context, tenantID, invoiceID int64) ([]Payment, error)
}
