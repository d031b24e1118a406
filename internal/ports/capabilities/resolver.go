package capabilities

import (
	"context"
	"time"
)

// Scope identifica la clase de operación que habilita un capability token.
type Scope string

const (
	ScopeInvoicePDF Scope = "invoice_pdf"
)

// Grant son los claims verificados de un capability token.
// TenantID es la única fuente de tenant para el acceso anónimo.
type Grant struct {
	TokenID    string
	Scope      Scope
	ResourceID int64
	TenantID   int64
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// Verifier valida un token contra el scope y el recurso esperados por el caller
// (el recurso sale del path, no del token). Check no consume; Redeem marca el
// token como usado y es no-op cuando los tokens no son single-use.
type Verifier interface {
	Check(ctx context.Context, raw string, scope Scope, resourceID int64) (Grant, error)
	Redeem(ctx context.Context, g Grant) error
}

// Ledger registra tokens ya canjeados. Solo se usa en modo single-use.
type Ledger interface {
	// Consume marca tokenID como usado hasta expiresAt.
	// Devuelve false si ya estaba usado.
	Consume(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error)
}
