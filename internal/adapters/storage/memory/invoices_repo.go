package memory

import (
	"context"
	"sort"
	"time"

	"invoicing-backend/internal/domain/invoices"
	"invoicing-backend/internal/platform/apperr"
)

type invoicesRepo struct{ s *Store }

func NewInvoicesRepo(s *Store) invoices.Repository {
	return &invoicesRepo{s: s}
}

func (r *invoicesRepo) Create(_ context.Context, inv invoices.Invoice) (invoices.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.invoices {
		if other.TenantID == inv.TenantID && other.Number == inv.Number {
			return invoices.Invoice{}, apperr.Conflict("invoice number already exists")
		}
	}

	inv.ID = r.s.nextID()
	lines := make([]invoices.Line, len(inv.Lines))
	for i, l := range inv.Lines {
		l.ID = r.s.nextID()
		l.InvoiceID = inv.ID
		lines[i] = l
	}

	stored := inv
	stored.Lines = nil
	r.s.invoices[inv.ID] = stored
	r.s.lines[inv.ID] = lines

	inv.Lines = append([]invoices.Line(nil), lines...)
	return inv, nil
}

func (r *invoicesRepo) FindOwned(_ context.Context, tenantID, id int64) (invoices.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inv, ok := r.s.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return invoices.Invoice{}, apperr.ErrNotFound
	}
	return inv, nil
}

func (r *invoicesRepo) Lines(_ context.Context, tenantID, invoiceID int64) ([]invoices.Line, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inv, ok := r.s.invoices[invoiceID]
	if !ok || inv.TenantID != tenantID {
		return nil, apperr.ErrNotFound
	}
	return append([]invoices.Line{}, r.s.lines[invoiceID]...), nil
}

func (r *invoicesRepo) List(_ context.Context, tenantID int64, limit, offset int) ([]invoices.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]invoices.Invoice, 0)
	for _, inv := range r.s.invoices {
		if inv.TenantID == tenantID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

func (r *invoicesRepo) TransitionStatus(_ context.Context, tenantID, id int64, from []invoices.Status, to invoices.Status, at time.Time) (invoices.Invoice, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return invoices.Invoice{}, false, apperr.ErrNotFound
	}
	for _, st := range from {
		if inv.Status == st {
			inv.Status = to
			inv.UpdatedAt = at
			r.s.invoices[id] = inv
			return inv, true, nil
		}
	}
	return inv, false, nil
}
