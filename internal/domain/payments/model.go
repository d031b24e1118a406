package payments

import "time"

// Payment es append-only: no hay update ni delete.
type Payment struct {
	ID          int64
	TenantID    int64
	InvoiceID   int64
	AmountCents int64
	Method      string
	PaidAt      *time.Time
	Note        string
	CreatedAt   time.Time
}

// Receipt es el resultado de registrar un pago.
type Receipt struct {
	Payment Payment
	// PaidSum es la suma de pagos de la invoice incluyendo este.
	PaidSum int64
	// Status de la invoice después de conciliar.
	Status string
	// Transitioned indica que este pago movió la invoice a paid.
	Transitioned bool
}
