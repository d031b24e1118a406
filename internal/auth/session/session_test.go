package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"invoicing-backend/internal/auth/codec"
	"invoicing-backend/internal/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newAuth(t *testing.T, clk *clock, opts ...Option) *Authenticator {
	t.Helper()
	c, err := codec.New("test-secret", codec.WithClock(clk.Now))
	require.NoError(t, err)
	return New(c, time.Hour, opts...)
}

type fakeResolver struct {
	tenants map[string]int64
	err     error
}

func (f fakeResolver) TenantOf(_ context.Context, subject string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	t, ok := f.tenants[subject]
	if !ok {
		return 0, apperr.NotFound("user")
	}
	return t, nil
}

func TestIssueAuthenticate_RoundTrip(t *testing.T) {
	clk := &clock{now: t0}
	a := newAuth(t, clk)

	for _, tc := range []struct {
		subject string
		tenant  int64
	}{
		{"ana@example.com", 1},
		{"bob@example.com", 42},
		{"x", 1 << 40},
	} {
		tok, err := a.Issue(tc.subject, tc.tenant)
		require.NoError(t, err)
		assert.Equal(t, t0, tok.IssuedAt)
		assert.Equal(t, t0.Add(time.Hour), tok.ExpiresAt)

		p, err := a.Authenticate(context.Background(), tok.Value)
		require.NoError(t, err)
		assert.Equal(t, tc.subject, p.SubjectID)
		assert.Equal(t, tc.tenant, p.TenantID)
	}
}

func TestAuthenticate_ExpiryBoundary(t *testing.T) {
	clk := &clock{now: t0}
	a := newAuth(t, clk)
	tok, err := a.Issue("ana@example.com", 7)
	require.NoError(t, err)

	// now == issued_at
	_, err = a.Authenticate(context.Background(), tok.Value)
	require.NoError(t, err)

	clk.now = tok.ExpiresAt.Add(-time.Second)
	_, err = a.Authenticate(context.Background(), tok.Value)
	require.NoError(t, err)

	// now == expires_at
	clk.now = tok.ExpiresAt
	_, err = a.Authenticate(context.Background(), tok.Value)
	require.NoError(t, err)

	clk.now = tok.ExpiresAt.Add(time.Second)
	_, err = a.Authenticate(context.Background(), tok.Value)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestAuthenticate_UniformFailures(t *testing.T) {
	clk := &clock{now: t0}
	a := newAuth(t, clk)

	other, _ := codec.New("other-secret", codec.WithClock(clk.Now))
	forged, _ := other.Encode(codec.Claims{"sub": "a", "company_id": 1, "typ": "session", codec.ClaimExpiry: t0.Add(time.Hour).Unix()})

	c, _ := codec.New("test-secret", codec.WithClock(clk.Now))
	noTenant, _ := c.Encode(codec.Claims{"sub": "a", "typ": "session", codec.ClaimExpiry: t0.Add(time.Hour).Unix()})
	noSubject, _ := c.Encode(codec.Claims{"company_id": 1, "typ": "session", codec.ClaimExpiry: t0.Add(time.Hour).Unix()})
	capability, _ := c.Encode(codec.Claims{"scope": "invoice_pdf", "tenant_id": 1, "resource_id": 3, codec.ClaimExpiry: t0.Add(time.Hour).Unix()})

	cases := map[string]string{
		"empty":       "",
		"garbage":     "abc",
		"wrong key":   forged,
		"no tenant":   noTenant,
		"no subject":  noSubject,
		"capability":  capability,
		"whitespaces": "   ",
	}
	for name, raw := range cases {
		_, err := a.Authenticate(context.Background(), raw)
		require.Error(t, err, name)
		assert.Equal(t, apperr.ErrUnauthenticated, err, name)
	}
}

func TestAuthenticate_AcceptsTenantIDClaim(t *testing.T) {
	clk := &clock{now: t0}
	a := newAuth(t, clk)
	c, _ := codec.New("test-secret", codec.WithClock(clk.Now))
	raw, _ := c.Encode(codec.Claims{"sub": "a", "tenant_id": 5, "typ": "session", codec.ClaimExpiry: t0.Add(time.Hour).Unix()})

	p, err := a.Authenticate(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.TenantID)
}

func TestAuthenticate_ResolverDetectsTenantDrift(t *testing.T) {
	clk := &clock{now: t0}
	res := fakeResolver{tenants: map[string]int64{"ana@example.com": 2}}
	a := newAuth(t, clk, WithResolver(res))

	stale, _ := a.Issue("ana@example.com", 1)
	_, err := a.Authenticate(context.Background(), stale.Value)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	fresh, _ := a.Issue("ana@example.com", 2)
	p, err := a.Authenticate(context.Background(), fresh.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.TenantID)

	gone, _ := a.Issue("deleted@example.com", 2)
	_, err = a.Authenticate(context.Background(), gone.Value)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestAuthenticate_StorageFailureIsNotUnauthenticated(t *testing.T) {
	clk := &clock{now: t0}
	a := newAuth(t, clk, WithResolver(fakeResolver{err: context.DeadlineExceeded}))
	tok, _ := a.Issue("ana@example.com", 1)

	_, err := a.Authenticate(context.Background(), tok.Value)
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperr.ErrUnauthenticated))
	assert.Equal(t, apperr.CodeUnavailable, apperr.CodeOf(err))
}

func TestIssue_Validation(t *testing.T) {
	a := newAuth(t, &clock{now: t0})
	_, err := a.Issue("", 1)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = a.Issue("a", 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer   abc "))
	assert.Equal(t, "", BearerToken(""))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken("Bearer"))
	assert.Equal(t, "", BearerToken("abc"))
}
