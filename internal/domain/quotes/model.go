package quotes

import "time"

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Quote es un presupuesto. Los aceptados alimentan el reporte de revenue mensual.
type Quote struct {
	ID       int64
	TenantID int64
	ClientID int64

	Number      string // Q-YYYY-NNNN, inmutable
	Title       string
	AmountCents int64
	Status      Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListFilter struct {
	Status Status // vacío = todos
	Limit  int
	Offset int
}
