package tenancy

import (
	"context"
	"testing"

	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/ports/auth"
	"invoicing-backend/internal/ports/capabilities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID       int64
	TenantID int64
	Name     string
}

type key struct{ tenant, id int64 }

// finder filtra por (tenant, id) en la misma búsqueda, como un WHERE conjuntivo.
func finder(rows ...row) func(context.Context, int64, int64) (row, error) {
	idx := map[key]row{}
	for _, r := range rows {
		idx[key{r.TenantID, r.ID}] = r
	}
	return func(_ context.Context, tenantID, id int64) (row, error) {
		r, ok := idx[key{tenantID, id}]
		if !ok {
			return row{}, apperr.ErrNotFound
		}
		return r, nil
	}
}

func TestFindOwned_CrossTenantIsNotFound(t *testing.T) {
	find := finder(
		row{ID: 1, TenantID: 10, Name: "a-1"},
		row{ID: 2, TenantID: 20, Name: "b-2"},
	)
	ctx := context.Background()

	got, err := FindOwned(ctx, find, 10, 1, "client")
	require.NoError(t, err)
	assert.Equal(t, "a-1", got.Name)

	// id 2 existe pero es de otro tenant
	got, err = FindOwned(ctx, find, 10, 2, "client")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "client not found", err.Error())
	assert.Empty(t, got.Name)

	// id inexistente: mismo error, mismo mensaje
	_, err2 := FindOwned(ctx, find, 10, 99, "client")
	assert.Equal(t, err.Error(), err2.Error())
}

func TestFindOwned_Guards(t *testing.T) {
	called := false
	find := func(context.Context, int64, int64) (row, error) {
		called = true
		return row{}, nil
	}

	_, err := FindOwned(context.Background(), find, 0, 1, "invoice")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = FindOwned(context.Background(), find, 1, 0, "invoice")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.False(t, called)
}

func TestFindOwned_StorageErrorsPassThrough(t *testing.T) {
	find := func(context.Context, int64, int64) (row, error) {
		return row{}, context.DeadlineExceeded
	}
	_, err := FindOwned(context.Background(), find, 1, 1, "invoice")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, apperr.CodeUnavailable, apperr.CodeOf(err))
}

func TestFromPrincipalAndGrant(t *testing.T) {
	id, err := FromPrincipal(auth.Principal{SubjectID: "a@b.c", TenantID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	_, err = FromPrincipal(auth.Principal{})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	id, err = FromGrant(capabilities.Grant{TenantID: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)

	_, err = FromGrant(capabilities.Grant{})
	assert.ErrorIs(t, err, apperr.ErrInvalidCapability)
}
