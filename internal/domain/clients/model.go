package clients

import "time"

// Client es un cliente de la company. Name es único dentro del tenant.
type Client struct {
	ID       int64
	TenantID int64

	Name  string
	Email string
	Phone string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListFilter struct {
	Query  string // substring de name, case-insensitive
	Limit  int
	Offset int
}
