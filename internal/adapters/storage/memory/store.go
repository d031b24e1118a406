// Package memory implementa los repositorios sobre un Store en proceso.
// Sirve para dev y tests; el estado se pierde al reiniciar.
package memory

import (
	"sync"

	"invoicing-backend/internal/domain/accounts"
	"invoicing-backend/internal/domain/clients"
	"invoicing-backend/internal/domain/invoices"
	"invoicing-backend/internal/domain/payments"
	"invoicing-backend/internal/domain/quotes"
	"invoicing-backend/internal/domain/reports"
)

// Store es el estado compartido por todos los repos. Un solo mutex: así
// cascadas y transacciones de pagos ven un estado consistente.
type Store struct {
	mu sync.RWMutex

	lastID int64

	companies     map[int64]accounts.Company
	companyByName map[string]int64
	users         map[string]accounts.User // por email

	clients  map[int64]clients.Client
	quotes   map[int64]quotes.Quote
	invoices map[int64]invoices.Invoice
	lines    map[int64][]invoices.Line // por invoice id
	payments []payments.Payment

	sequences map[seqKey]int64

	// snapshot de reportes; solo cambia en Refresh
	byStatus map[int64][]reports.StatusRow
	monthly  map[int64][]reports.MonthRow
}

type seqKey struct {
	tenantID int64
	prefix   string
	year     int
}

func NewStore() *Store {
	return &Store{
		companies:     make(map[int64]accounts.Company),
		companyByName: make(map[string]int64),
		users:         make(map[string]accounts.User),
		clients:       make(map[int64]clients.Client),
		quotes:        make(map[int64]quotes.Quote),
		invoices:      make(map[int64]invoices.Invoice),
		lines:         make(map[int64][]invoices.Line),
		sequences:     make(map[seqKey]int64),
		byStatus:      make(map[int64][]reports.StatusRow),
		monthly:       make(map[int64][]reports.MonthRow),
	}
}

// nextID asume s.mu tomado. Un contador para todas las entidades alcanza.
func (s *Store) nextID() int64 {
	s.lastID++
	return s.lastID
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
