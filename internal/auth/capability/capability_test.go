package capability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"invoicing-backend/internal/auth/codec"
	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/ports/capabilities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newService(t *testing.T, clk *clock, opts ...Option) *Service {
	t.Helper()
	c, err := codec.New("test-secret", codec.WithClock(clk.Now))
	require.NoError(t, err)
	return New(c, 0, opts...)
}

type memLedger struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (l *memLedger) Consume(_ context.Context, id string, _ time.Time) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen == nil {
		l.seen = map[string]bool{}
	}
	if l.seen[id] {
		return false, nil
	}
	l.seen[id] = true
	return true, nil
}

func TestIssue_DefaultTTL(t *testing.T) {
	clk := &clock{now: t0}
	s := newService(t, clk)

	tok, err := s.Issue(capabilities.ScopeInvoicePDF, 10, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(900*time.Second), tok.ExpiresAt)

	clk.now = t0.Add(899 * time.Second)
	g, err := s.Verify(context.Background(), tok.Value, capabilities.ScopeInvoicePDF, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.TenantID)
	assert.Equal(t, int64(10), g.ResourceID)
	assert.Equal(t, capabilities.ScopeInvoicePDF, g.Scope)
	assert.Equal(t, t0, g.IssuedAt)
	assert.Equal(t, tok.ExpiresAt, g.ExpiresAt)

	clk.now = t0.Add(900 * time.Second)
	_, err = s.Verify(context.Background(), tok.Value, capabilities.ScopeInvoicePDF, 10)
	require.NoError(t, err)

	clk.now = t0.Add(901 * time.Second)
	_, err = s.Verify(context.Background(), tok.Value, capabilities.ScopeInvoicePDF, 10)
	assert.Equal(t, apperr.ErrInvalidCapability, err)
}

func TestIssue_CustomTTL(t *testing.T) {
	clk := &clock{now: t0}
	s := newService(t, clk)

	tok, err := s.Issue(capabilities.ScopeInvoicePDF, 10, 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Minute), tok.ExpiresAt)
}

func TestVerify_BoundToScopeAndResource(t *testing.T) {
	clk := &clock{now: t0}
	s := newService(t, clk)
	tok, err := s.Issue(capabilities.ScopeInvoicePDF, 10, 1, 0)
	require.NoError(t, err)

	other, _ := codec.New("other-secret", codec.WithClock(clk.Now))
	forged, _ := other.Encode(codec.Claims{
		claimScope: "invoice_pdf", claimResource: 10, claimTenant: 1,
		codec.ClaimExpiry: t0.Add(time.Hour).Unix(),
	})

	cases := []struct {
		name     string
		raw      string
		scope    capabilities.Scope
		resource int64
	}{
		{"other resource", tok.Value, capabilities.ScopeInvoicePDF, 11},
		{"other scope", tok.Value, capabilities.Scope("quote_pdf"), 10},
		{"wrong key", forged, capabilities.ScopeInvoicePDF, 10},
		{"garbage", "x.y.z", capabilities.ScopeInvoicePDF, 10},
		{"empty", "", capabilities.ScopeInvoicePDF, 10},
	}
	for _, tc := range cases {
		_, err := s.Verify(context.Background(), tc.raw, tc.scope, tc.resource)
		assert.Equal(t, apperr.ErrInvalidCapability, err, tc.name)
	}
}

func TestVerify_RejectsSessionToken(t *testing.T) {
	clk := &clock{now: t0}
	s := newService(t, clk)
	c, _ := codec.New("test-secret", codec.WithClock(clk.Now))
	raw, _ := c.Encode(codec.Claims{
		"sub": "ana@example.com", "company_id": 1, "typ": "session",
		codec.ClaimExpiry: t0.Add(time.Hour).Unix(),
	})

	_, err := s.Verify(context.Background(), raw, capabilities.ScopeInvoicePDF, 1)
	assert.Equal(t, apperr.ErrInvalidCapability, err)
}

func TestVerify_ReplayAllowedWithoutLedger(t *testing.T) {
	clk := &clock{now: t0}
	s := newService(t, clk)
	tok, _ := s.Issue(capabilities.ScopeInvoicePDF, 10, 1, 0)

	for i := 0; i < 3; i++ {
		_, err := s.Verify(context.Background(), tok.Value, capabilities.ScopeInvoicePDF, 10)
		require.NoError(t, err)
	}
}

func TestIssue_DeterministicWithoutLedger(t *testing.T) {
	clk := &clock{now: t0}
	s := newService(t, clk)

	a, err := s.Issue(capabilities.ScopeInvoicePDF, 10, 1, 0)
	require.NoError(t, err)
	b, err := s.Issue(capabilities.ScopeInvoicePDF, 10, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, a.Value, b.Value)
}

func TestVerify_SingleUseWithLedger(t *testing.T) {
	clk := &clock{now: t0}
	n := 0
	s := newService(t, clk,
		WithLedger(&memLedger{}),
		WithTokenIDs(func() string { n++; return "jti-" + string(rune('a'+n)) }),
	)

	tok, err := s.Issue(capabilities.ScopeInvoicePDF, 10, 1, 0)
	require.NoError(t, err)

	g, err := s.Verify(context.Background(), tok.Value, capabilities.ScopeInvoicePDF, 10)
	require.NoError(t, err)
	assert.Equal(t, "jti-b", g.TokenID)

	_, err = s.Verify(context.Background(), tok.Value, capabilities.ScopeInvoicePDF, 10)
	assert.Equal(t, apperr.ErrInvalidCapability, err)

	// un token nuevo para el mismo recurso sigue sirviendo
	tok2, _ := s.Issue(capabilities.ScopeInvoicePDF, 10, 1, 0)
	_, err = s.Verify(context.Background(), tok2.Value, capabilities.ScopeInvoicePDF, 10)
	require.NoError(t, err)
}

func TestCheck_DoesNotConsumeUntilRedeem(t *testing.T) {
	clk := &clock{now: t0}
	ledger := &memLedger{}
	s := newService(t, clk, WithLedger(ledger))
	tok, err := s.Issue(capabilities.ScopeInvoicePDF, 10, 1, 0)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		g, err := s.Check(context.Background(), tok.Value, capabilities.ScopeInvoicePDF, 10)
		require.NoError(t, err)
		assert.NotEmpty(t, g.TokenID)
	}
	assert.Empty(t, ledger.seen)

	g, _ := s.Check(context.Background(), tok.Value, capabilities.ScopeInvoicePDF, 10)
	require.NoError(t, s.Redeem(context.Background(), g))
	assert.Equal(t, apperr.ErrInvalidCapability, s.Redeem(context.Background(), g))
}

func TestRedeem_NoopWithoutLedger(t *testing.T) {
	s := newService(t, &clock{now: t0})
	assert.NoError(t, s.Redeem(context.Background(), capabilities.Grant{}))
}

func TestVerify_LedgerFailureIsUnavailable(t *testing.T) {
	clk := &clock{now: t0}
	s := newService(t, clk, WithLedger(&memLedger{err: errors.New("redis down")}))
	tok, _ := s.Issue(capabilities.ScopeInvoicePDF, 10, 1, 0)

	_, err := s.Verify(context.Background(), tok.Value, capabilities.ScopeInvoicePDF, 10)
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}

func TestIssue_Validation(t *testing.T) {
	s := newService(t, &clock{now: t0})
	_, err := s.Issue("", 1, 1, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = s.Issue(capabilities.ScopeInvoicePDF, 0, 1, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = s.Issue(capabilities.ScopeInvoicePDF, 1, 0, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPublicLink(t *testing.T) {
	link, err := PublicLink("http://localhost:8000/", 42, "a.b+c")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/public/42/download.pdf?token=a.b%2Bc", link)

	link, err = PublicLink("https://app.example.com/api", 7, "tok")
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/api/public/7/download.pdf?token=tok", link)

	_, err = PublicLink("not a url", 1, "tok")
	assert.Error(t, err)
}
