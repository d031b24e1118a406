// Package capability emite y canjea tokens de vida corta ligados a un scope,
// un recurso y un tenant, para acceso anónimo (p.ej. descarga pública de PDF).
//
// Por defecto los tokens son stateless: un mismo token se puede canjear todas
// las veces que se quiera dentro de su TTL. Quien tenga el link tiene acceso
// hasta que expire. Con un Ledger configurado, cada token se canjea una sola vez.
package capability

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"invoicing-backend/internal/auth/codec"
	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/metrics"
	"invoicing-backend/internal/ports/capabilities"

	"github.com/google/uuid"
)

const (
	DefaultTTL = 900 * time.Second

	claimScope    = "scope"
	claimResource = "resource_id"
	claimTenant   = "tenant_id"
	claimIssuedAt = "iat"
	claimTokenID  = "jti"

	metricsClass = "capability"
)

type Service struct {
	codec   *codec.Codec
	ttl     time.Duration
	ledger  capabilities.Ledger
	newID   func() string
	log     logger.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

// WithLedger activa el modo single-use.
func WithLedger(l capabilities.Ledger) Option {
	return func(s *Service) { s.ledger = l }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTokenIDs reemplaza el generador de jti (tests).
func WithTokenIDs(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

func New(c *codec.Codec, defaultTTL time.Duration, opts ...Option) *Service {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	s := &Service{
		codec: c,
		ttl:   defaultTTL,
		newID: uuid.NewString,
		log:   logger.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Token es un capability token emitido.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Issue emite un token útil solo para (scope, resourceID, tenantID).
// ttl <= 0 usa el TTL por defecto del servicio.
func (s *Service) Issue(scope capabilities.Scope, resourceID, tenantID int64, ttl time.Duration) (Token, error) {
	if strings.TrimSpace(string(scope)) == "" || resourceID <= 0 || tenantID <= 0 {
		return Token{}, apperr.Validation("scope, resource and tenant are required")
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.codec.Now().UTC().Truncate(time.Second)
	exp := now.Add(ttl)

	claims := codec.Claims{
		claimScope:        string(scope),
		claimResource:     resourceID,
		claimTenant:       tenantID,
		claimIssuedAt:     now.Unix(),
		codec.ClaimExpiry: exp.Unix(),
	}
	// Sin ledger el jti no aporta nada y solo haría distintos dos tokens
	// emitidos con los mismos datos en el mismo instante.
	if s.ledger != nil {
		claims[claimTokenID] = s.newID()
	}

	raw, err := s.codec.Encode(claims)
	if err != nil {
		return Token{}, apperr.Wrap(err, apperr.CodeInternal, "issue capability token")
	}
	return Token{Value: raw, ExpiresAt: exp}, nil
}

// Verify es Check seguido de Redeem, para callers que no tienen nada que
// hacer entre la validación y el canje.
func (s *Service) Verify(ctx context.Context, raw string, scope capabilities.Scope, resourceID int64) (capabilities.Grant, error) {
	g, err := s.Check(ctx, raw, scope, resourceID)
	if err != nil {
		return capabilities.Grant{}, err
	}
	if err := s.Redeem(ctx, g); err != nil {
		return capabilities.Grant{}, err
	}
	return g, nil
}

// Check comprueba, en orden: firma/expiración, scope, recurso. Cualquier fallo
// colapsa en ErrInvalidCapability, sin indicar qué chequeo falló. No consume
// el token: en modo single-use el caller llama a Redeem cuando entregó.
func (s *Service) Check(_ context.Context, raw string, scope capabilities.Scope, resourceID int64) (capabilities.Grant, error) {
	g, reason := s.check(strings.TrimSpace(raw), scope, resourceID)
	s.metrics.ObserveToken(metricsClass, reason == "")
	if reason != "" {
		s.reject(reason, scope, resourceID)
		return capabilities.Grant{}, apperr.ErrInvalidCapability
	}
	return g, nil
}

// Redeem marca el token como usado. Sin ledger no hace nada.
func (s *Service) Redeem(ctx context.Context, g capabilities.Grant) error {
	if s.ledger == nil {
		return nil
	}
	first, err := s.ledger.Consume(ctx, g.TokenID, g.ExpiresAt)
	if err != nil {
		s.log.Error("capability ledger failed", map[string]any{"error": err})
		return apperr.ErrUnavailable
	}
	if !first {
		s.reject("already redeemed", g.Scope, g.ResourceID)
		return apperr.ErrInvalidCapability
	}
	return nil
}

func (s *Service) reject(reason string, scope capabilities.Scope, resourceID int64) {
	s.log.Debug("capability token rejected", map[string]any{
		"reason":      reason,
		"scope":       string(scope),
		"resource_id": resourceID,
	})
}

func (s *Service) check(raw string, scope capabilities.Scope, resourceID int64) (capabilities.Grant, string) {
	if raw == "" {
		return capabilities.Grant{}, "empty token"
	}

	claims, err := s.codec.Decode(raw)
	if err != nil {
		return capabilities.Grant{}, err.Error()
	}

	gotScope, ok := claims.String(claimScope)
	if !ok || capabilities.Scope(gotScope) != scope {
		return capabilities.Grant{}, "scope mismatch"
	}

	gotResource, ok := claims.Int64(claimResource)
	if !ok || gotResource != resourceID {
		return capabilities.Grant{}, "resource mismatch"
	}

	tenantID, ok := claims.Int64(claimTenant)
	if !ok || tenantID <= 0 {
		return capabilities.Grant{}, "missing tenant"
	}

	g := capabilities.Grant{
		Scope:      scope,
		ResourceID: gotResource,
		TenantID:   tenantID,
	}
	g.TokenID, _ = claims.String(claimTokenID)
	g.IssuedAt, _ = claims.Time(claimIssuedAt)
	g.ExpiresAt, _ = claims.Time(codec.ClaimExpiry)

	if s.ledger != nil && g.TokenID == "" {
		return capabilities.Grant{}, "missing token id"
	}
	return g, ""
}

// PublicLink arma {base}/public/{id}/download.pdf?token=...
func PublicLink(baseURL string, resourceID int64, token string) (string, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("capability: invalid base url %q", baseURL)
	}
	base.Path = base.Path + "/public/" + strconv.FormatInt(resourceID, 10) + "/download.pdf"
	base.RawQuery = url.Values{"token": []string{token}}.Encode()
	return base.String(), nil
}
