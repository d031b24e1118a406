package invoices

import "time"

// Status de la invoice: draft -> sent -> paid, y * -> cancelled.
// paid solo lo setea la conciliación de pagos; cancelled es una acción explícita.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

type Invoice struct {
	ID       int64
	TenantID int64
	ClientID int64

	Number     string // INV-YYYY-NNNN, inmutable
	Title      string
	Status     Status
	Currency   string
	TotalCents int64 // suma de Lines[].TotalCents, calculada en el server

	IssuedDate *time.Time
	DueDate    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Lines solo viene cargado en Create y en Get.
	Lines []Line
}

type Line struct {
	ID             int64
	InvoiceID      int64
	Description    string
	Qty            int64
	UnitPriceCents int64
	TotalCents     int64
}

// PublicLink es un link anónimo de descarga con su expiración.
type PublicLink struct {
	URL       string
	ExpiresAt time.Time
}
