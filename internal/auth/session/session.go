// Package session emite y verifica los session tokens ligados a un tenant.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"invoicing-backend/internal/auth/codec"
	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/metrics"
	"invoicing-backend/internal/ports/auth"
)

const (
	DefaultTTL = 7 * 24 * time.Hour

	claimSubject  = "sub"
	claimCompany  = "company_id"
	claimTenant   = "tenant_id"
	claimIssuedAt = "iat"
	claimType     = "typ"

	tokenType = "session"
)

// SubjectResolver devuelve el tenant actual de un subject. Si está configurado,
// Authenticate no confía en un tenant claim que ya no coincide con el store.
type SubjectResolver interface {
	TenantOf(ctx context.Context, subject string) (int64, error)
}

// Token es un session token emitido.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Authenticator struct {
	codec    *codec.Codec
	ttl      time.Duration
	resolver SubjectResolver
	log      logger.Logger
	metrics  *metrics.Metrics
}

type Option func(*Authenticator)

func WithResolver(r SubjectResolver) Option {
	return func(a *Authenticator) { a.resolver = r }
}

func WithLogger(l logger.Logger) Option {
	return func(a *Authenticator) { a.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Authenticator) { a.metrics = m }
}

func New(c *codec.Codec, ttl time.Duration, opts ...Option) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	a := &Authenticator{
		codec: c,
		ttl:   ttl,
		log:   logger.Nop(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Issue emite un token para (subject, tenant) con iat=now y exp=now+TTL.
func (a *Authenticator) Issue(subject string, tenantID int64) (Token, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" || tenantID <= 0 {
		return Token{}, apperr.Validation("subject and tenant are required")
	}

	now := a.codec.Now().UTC().Truncate(time.Second)
	exp := now.Add(a.ttl)

	raw, err := a.codec.Encode(codec.Claims{
		claimSubject:      subject,
		claimCompany:      tenantID,
		claimIssuedAt:     now.Unix(),
		codec.ClaimExpiry: exp.Unix(),
		claimType:         tokenType,
	})
	if err != nil {
		return Token{}, apperr.Wrap(err, apperr.CodeInternal, "issue session token")
	}
	return Token{Value: raw, IssuedAt: now, ExpiresAt: exp}, nil
}

// Authenticate resuelve un token crudo a Principal. Cualquier fallo del token
// (vacío, malformado, firma, expirado, claims faltantes) es ErrUnauthenticated,
// sin distinguir la causa.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (auth.Principal, error) {
	p, err := a.authenticate(ctx, strings.TrimSpace(raw))
	a.metrics.ObserveToken(tokenType, err == nil)
	return p, err
}

// Verify implementa auth.AuthVerifier.
func (a *Authenticator) Verify(ctx context.Context, raw string) (auth.Principal, error) {
	return a.Authenticate(ctx, raw)
}

func (a *Authenticator) authenticate(ctx context.Context, raw string) (auth.Principal, error) {
	if raw == "" {
		return auth.Principal{}, apperr.ErrUnauthenticated
	}

	claims, err := a.codec.Decode(raw)
	if err != nil {
		a.log.Debug("session token rejected", map[string]any{"reason": err})
		return auth.Principal{}, apperr.ErrUnauthenticated
	}

	if typ, ok := claims.String(claimType); !ok || typ != tokenType {
		a.log.Debug("session token rejected", map[string]any{"reason": "wrong token type"})
		return auth.Principal{}, apperr.ErrUnauthenticated
	}

	subject, ok := claims.String(claimSubject)
	if !ok {
		return auth.Principal{}, apperr.ErrUnauthenticated
	}
	tenantID, ok := claims.Int64(claimCompany)
	if !ok {
		tenantID, ok = claims.Int64(claimTenant)
	}
	if !ok || tenantID <= 0 {
		return auth.Principal{}, apperr.ErrUnauthenticated
	}

	if a.resolver != nil {
		current, err := a.resolver.TenantOf(ctx, subject)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return auth.Principal{}, apperr.ErrUnauthenticated
		case err != nil:
			// fallo de storage: reintentable, no es un token inválido
			return auth.Principal{}, err
		case current != tenantID:
			a.log.Warn("session tenant drift", map[string]any{
				"subject":      subject,
				"token_tenant": tenantID,
				"store_tenant": current,
			})
			return auth.Principal{}, apperr.ErrUnauthenticated
		}
	}

	return auth.Principal{SubjectID: subject, TenantID: tenantID}, nil
}

// BearerToken extrae el token de un header "Authorization: Bearer <token>".
// Header ausente y header mal formado devuelven "" por igual.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
