package memory

import (
	"context"

	"invoicing-backend/internal/domain/invoices"
	"invoicing-backend/internal/domain/payments"
	"invoicing-backend/internal/platform/apperr"
)

type paymentsRepo struct{ s *Store }

func NewPaymentsRepo(s *Store) payments.Repository {
	return &paymentsRepo{s: s}
}

// WithinTx toma el lock de escritura del Store durante toda fn. Los writes
// quedan en staging y se aplican solo si fn no falla.
func (r *paymentsRepo) WithinTx(ctx context.Context, fn func(tx payments.Tx) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &paymentsTx{s: r.s, status: make(map[int64]invoices.Status)}
	if err := fn(tx); err != nil {
		return err
	}

	r.s.payments = append(r.s.payments, tx.inserted...)
	for id, st := range tx.status {
		inv := r.s.invoices[id]
		inv.Status = st
		r.s.invoices[id] = inv
	}
	return nil
}

func (r *paymentsRepo) List(_ context.Context, tenantID, invoiceID int64) ([]payments.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]payments.Payment, 0)
	for _, p := range r.s.payments {
		if p.TenantID == tenantID && p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

// paymentsTx corre con el lock del Store ya tomado.
type paymentsTx struct {
	s        *Store
	inserted []payments.Payment
	status   map[int64]invoices.Status
}

func (t *paymentsTx) LockInvoice(_ context.Context, tenantID, invoiceID int64) (invoices.Invoice, error) {
	inv, ok := t.s.invoices[invoiceID]
	if !ok || inv.TenantID != tenantID {
		return invoices.Invoice{}, apperr.ErrNotFound
	}
	if st, staged := t.status[invoiceID]; staged {
		inv.Status = st
	}
	return inv, nil
}

func (t *paymentsTx) Insert(_ context.Context, p payments.Payment) (payments.Payment, error) {
	p.ID = t.s.nextID()
	t.inserted = append(t.inserted, p)
	return p, nil
}

func (t *paymentsTx) SumByInvoice(_ context.Context, tenantID, invoiceID int64) (int64, error) {
	var sum int64
	for _, set := range [][]payments.Payment{t.s.payments, t.inserted} {
		for _, p := range set {
			if p.TenantID == tenantID && p.InvoiceID == invoiceID {
				sum += p.AmountCents
			}
		}
	}
	return sum, nil
}

func (t *paymentsTx) UpdateStatusIf(ctx context.Context, tenantID, invoiceID int64, from, to invoices.Status) (bool, error) {
	inv, err := t.LockInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return false, err
	}
	if inv.Status != from {
		return false, nil
	}
	t.status[invoiceID] = to
	return true, nil
}
