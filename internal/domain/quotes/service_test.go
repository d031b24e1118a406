package quotes

import (
	"context"
	"fmt"
	"testing"

	"invoicing-backend/internal/domain/clients"
	"invoicing-backend/internal/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byID   map[int64]Quote
	nextID int64
}

func (f *fakeRepo) Create(_ context.Context, q Quote) (Quote, error) {
	f.nextID++
	q.ID = f.nextID
	f.byID[q.ID] = q
	return q, nil
}

func (f *fakeRepo) FindOwned(_ context.Context, tenantID, id int64) (Quote, error) {
	q, ok := f.byID[id]
	if !ok || q.TenantID != tenantID {
		return Quote{}, apperr.ErrNotFound
	}
	return q, nil
}

func (f *fakeRepo) List(_ context.Context, tenantID int64, fl ListFilter) ([]Quote, error) {
	var out []Quote
	for _, q := range f.byID {
		if q.TenantID == tenantID && (fl.Status == "" || q.Status == fl.Status) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, q Quote) (Quote, error) {
	f.byID[q.ID] = q
	return q, nil
}

func (f *fakeRepo) Delete(_ context.Context, tenantID, id int64) error {
	delete(f.byID, id)
	return nil
}

// fakeClients: client 1 y 2 son del tenant 1, client 3 del tenant 2.
type fakeClients struct{}

func (fakeClients) Get(_ context.Context, tenantID, id int64) (clients.Client, error) {
	owner := map[int64]int64{1: 1, 2: 1, 3: 2}
	if owner[id] != tenantID {
		return clients.Client{}, apperr.NotFound("client")
	}
	return clients.Client{ID: id, TenantID: tenantID}, nil
}

type fakeNumbers struct{ n map[int64]int }

func (f *fakeNumbers) Next(_ context.Context, tenantID int64, prefix string) (string, error) {
	f.n[tenantID]++
	return fmt.Sprintf("%s-2025-%04d", prefix, f.n[tenantID]), nil
}

func newTestService() *Service {
	return NewService(&fakeRepo{byID: map[int64]Quote{}}, fakeClients{}, &fakeNumbers{n: map[int64]int{}})
}

func TestCreate_NumbersAndDefaults(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	q1, err := svc.Create(ctx, 1, CreateInput{ClientID: 1, Title: "Web", AmountCents: 5000})
	require.NoError(t, err)
	assert.Equal(t, "Q-2025-0001", q1.Number)
	assert.Equal(t, StatusDraft, q1.Status)

	q2, err := svc.Create(ctx, 1, CreateInput{ClientID: 2, Title: "App", AmountCents: 0, Status: StatusAccepted})
	require.NoError(t, err)
	assert.Equal(t, "Q-2025-0002", q2.Number)
	assert.Equal(t, StatusAccepted, q2.Status)
}

func TestCreate_ForeignClientIsValidationError(t *testing.T) {
	svc := newTestService()
	_, err := svc.Create(context.Background(), 1, CreateInput{ClientID: 3, Title: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateInput{ClientID: 1, Title: ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Create(ctx, 1, CreateInput{ClientID: 1, Title: "x", AmountCents: -1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Create(ctx, 1, CreateInput{ClientID: 1, Title: "x", Status: "won"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetUpdateDelete_TenantScoped(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	q, err := svc.Create(ctx, 1, CreateInput{ClientID: 1, Title: "Web", AmountCents: 5000})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, q.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	accepted := StatusAccepted
	_, err = svc.Update(ctx, 2, q.ID, UpdateInput{Status: &accepted})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, 2, q.ID), apperr.ErrNotFound)

	got, err := svc.Update(ctx, 1, q.ID, UpdateInput{Status: &accepted})
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)
	assert.Equal(t, q.Number, got.Number)

	other := int64(3)
	_, err = svc.Update(ctx, 1, q.ID, UpdateInput{ClientID: &other})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, svc.Delete(ctx, 1, q.ID))
	_, err = svc.Get(ctx, 1, q.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestList_StatusFilter(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, _ = svc.Create(ctx, 1, CreateInput{ClientID: 1, Title: "a"})
	_, _ = svc.Create(ctx, 1, CreateInput{ClientID: 1, Title: "b", Status: StatusSent})

	items, err := svc.List(ctx, 1, ListFilter{Status: StatusSent})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].Title)

	_, err = svc.List(ctx, 1, ListFilter{Status: "bogus"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
