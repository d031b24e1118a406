package payments

import (
	"context"
	"errors"
	"sync"
	"testing"

	"invoicing-backend/internal/domain/invoices"
	"invoicing-backend/internal/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo serializa las tx con un mutex y descarta lo escrito si fn falla.
type fakeRepo struct {
	mu       sync.Mutex
	invoices map[int64]invoices.Invoice
	payments []Payment
	nextID   int64
}

func newFakeRepo(invs ...invoices.Invoice) *fakeRepo {
	f := &fakeRepo{invoices: map[int64]invoices.Invoice{}}
	for _, inv := range invs {
		f.invoices[inv.ID] = inv
	}
	return f
}

type fakeTx struct {
	r        *fakeRepo
	payments []Payment
	status   map[int64]invoices.Status
}

func (f *fakeRepo) WithinTx(ctx context.Context, fn func(Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx := &fakeTx{r: f, status: map[int64]invoices.Status{}}
	if err := fn(tx); err != nil {
		return err
	}
	f.payments = append(f.payments, tx.payments...)
	for id, st := range tx.status {
		inv := f.invoices[id]
		inv.Status = st
		f.invoices[id] = inv
	}
	return nil
}

func (f *fakeRepo) List(_ context.Context, tenantID, invoiceID int64) ([]Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Payment
	for _, p := range f.payments {
		if p.TenantID == tenantID && p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindOwned(_ context.Context, tenantID, id int64) (invoices.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return invoices.Invoice{}, apperr.ErrNotFound
	}
	return inv, nil
}

func (f *fakeRepo) statusOf(id int64) invoices.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invoices[id].Status
}

func (t *fakeTx) LockInvoice(_ context.Context, tenantID, id int64) (invoices.Invoice, error) {
	inv, ok := t.r.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return invoices.Invoice{}, apperr.ErrNotFound
	}
	return inv, nil
}

func (t *fakeTx) Insert(_ context.Context, p Payment) (Payment, error) {
	t.r.nextID++
	p.ID = t.r.nextID
	t.payments = append(t.payments, p)
	return p, nil
}

func (t *fakeTx) SumByInvoice(_ context.Context, tenantID, id int64) (int64, error) {
	var sum int64
	for _, ps := range [][]Payment{t.r.payments, t.payments} {
		for _, p := range ps {
			if p.TenantID == tenantID && p.InvoiceID == id {
				sum += p.AmountCents
			}
		}
	}
	return sum, nil
}

func (t *fakeTx) UpdateStatusIf(_ context.Context, tenantID, id int64, from, to invoices.Status) (bool, error) {
	inv := t.r.invoices[id]
	if inv.TenantID != tenantID || inv.Status != from {
		return false, nil
	}
	t.status[id] = to
	return true, nil
}

func invoice(id, tenant, total int64, st invoices.Status) invoices.Invoice {
	return invoices.Invoice{ID: id, TenantID: tenant, TotalCents: total, Status: st}
}

func TestReconcile(t *testing.T) {
	cases := []struct {
		name    string
		current invoices.Status
		total   int64
		sum     int64
		next    invoices.Status
		moved   bool
	}{
		{"exact", invoices.StatusSent, 12345, 12345, invoices.StatusPaid, true},
		{"over", invoices.StatusDraft, 100, 150, invoices.StatusPaid, true},
		{"partial", invoices.StatusSent, 12345, 6000, invoices.StatusSent, false},
		{"zero total", invoices.StatusSent, 0, 0, invoices.StatusSent, false},
		{"cancelled", invoices.StatusCancelled, 100, 100, invoices.StatusCancelled, false},
		{"already paid", invoices.StatusPaid, 100, 200, invoices.StatusPaid, false},
		{"paid no regression", invoices.StatusPaid, 100, 10, invoices.StatusPaid, false},
	}
	for _, tc := range cases {
		next, moved := Reconcile(tc.current, tc.total, tc.sum)
		assert.Equal(t, tc.next, next, tc.name)
		assert.Equal(t, tc.moved, moved, tc.name)
	}
}

func TestRecord_SinglePaymentPaysInvoice(t *testing.T) {
	repo := newFakeRepo(invoice(1, 1, 12345, invoices.StatusSent))
	svc := NewService(repo, repo, nil, nil)

	rc, err := svc.Record(context.Background(), 1, 1, RecordInput{AmountCents: 12345, Method: "card"})
	require.NoError(t, err)
	assert.True(t, rc.Transitioned)
	assert.Equal(t, "paid", rc.Status)
	assert.Equal(t, int64(12345), rc.PaidSum)
	assert.Equal(t, invoices.StatusPaid, repo.statusOf(1))
}

func TestRecord_TwoIncrementsReachPaid(t *testing.T) {
	repo := newFakeRepo(invoice(1, 1, 12345, invoices.StatusSent))
	svc := NewService(repo, repo, nil, nil)
	ctx := context.Background()

	rc, err := svc.Record(ctx, 1, 1, RecordInput{AmountCents: 6000})
	require.NoError(t, err)
	assert.False(t, rc.Transitioned)
	assert.Equal(t, invoices.StatusSent, repo.statusOf(1))

	rc, err = svc.Record(ctx, 1, 1, RecordInput{AmountCents: 6345})
	require.NoError(t, err)
	assert.True(t, rc.Transitioned)
	assert.Equal(t, int64(12345), rc.PaidSum)
	assert.Equal(t, invoices.StatusPaid, repo.statusOf(1))

	// pagos sobre una invoice ya paid: se registran, status igual
	rc, err = svc.Record(ctx, 1, 1, RecordInput{AmountCents: 1})
	require.NoError(t, err)
	assert.False(t, rc.Transitioned)
	assert.Equal(t, "paid", rc.Status)

	items, err := svc.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestRecord_PartialLeavesStatus(t *testing.T) {
	repo := newFakeRepo(invoice(1, 1, 12345, invoices.StatusDraft))
	svc := NewService(repo, repo, nil, nil)

	rc, err := svc.Record(context.Background(), 1, 1, RecordInput{AmountCents: 6000})
	require.NoError(t, err)
	assert.Equal(t, "draft", rc.Status)
	assert.Equal(t, invoices.StatusDraft, repo.statusOf(1))
}

func TestRecord_CancelledNeverPaid(t *testing.T) {
	repo := newFakeRepo(invoice(1, 1, 100, invoices.StatusCancelled))
	svc := NewService(repo, repo, nil, nil)

	rc, err := svc.Record(context.Background(), 1, 1, RecordInput{AmountCents: 100})
	require.NoError(t, err)
	assert.False(t, rc.Transitioned)
	assert.Equal(t, invoices.StatusCancelled, repo.statusOf(1))
}

func TestRecord_RejectsNegativeAmount(t *testing.T) {
	repo := newFakeRepo(invoice(1, 1, 100, invoices.StatusSent))
	svc := NewService(repo, repo, nil, nil)

	_, err := svc.Record(context.Background(), 1, 1, RecordInput{AmountCents: -1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, repo.payments)
}

func TestRecord_CrossTenantIsNotFound(t *testing.T) {
	repo := newFakeRepo(invoice(1, 2, 100, invoices.StatusSent))
	svc := NewService(repo, repo, nil, nil)

	_, err := svc.Record(context.Background(), 1, 1, RecordInput{AmountCents: 100})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "invoice not found", err.Error())
	assert.Empty(t, repo.payments)
	assert.Equal(t, invoices.StatusSent, repo.statusOf(1))

	_, err = svc.List(context.Background(), 1, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRecord_ConcurrentPaymentsTransitionOnce(t *testing.T) {
	repo := newFakeRepo(invoice(1, 1, 10000, invoices.StatusSent))
	svc := NewService(repo, repo, nil, nil)

	const n = 10
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		transitions int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rc, err := svc.Record(context.Background(), 1, 1, RecordInput{AmountCents: 1000})
			if err != nil {
				return
			}
			if rc.Transitioned {
				mu.Lock()
				transitions++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, transitions)
	assert.Equal(t, invoices.StatusPaid, repo.statusOf(1))
	assert.Len(t, repo.payments, n)
}

type failingRepo struct{ *fakeRepo }

func (f failingRepo) WithinTx(ctx context.Context, fn func(Tx) error) error {
	return f.fakeRepo.WithinTx(ctx, func(tx Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errors.New("commit failed")
	})
}

func TestRecord_FailedTxWritesNothing(t *testing.T) {
	base := newFakeRepo(invoice(1, 1, 100, invoices.StatusSent))
	svc := NewService(failingRepo{base}, base, nil, nil)

	_, err := svc.Record(context.Background(), 1, 1, RecordInput{AmountCents: 100})
	require.Error(t, err)
	assert.Empty(t, base.payments)
	assert.Equal(t, invoices.StatusSent, base.statusOf(1))
}
