// Package numbering genera los números legibles de quotes e invoices
// ({PREFIX}-{YEAR}-{seq:04d}).
//
// El secuencial sale de un contador atómico por (tenant, prefijo, año) y no de
// count(*)+1: dos creaciones concurrentes del mismo tenant nunca leen el mismo
// valor. La columna number es única por (tenant, number); si aun así choca
// (p.ej. contador reseteado a mano) el insert devuelve Conflict y no se reintenta.
package numbering

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoicing-backend/internal/platform/apperr"
)

const (
	PrefixQuote   = "Q"
	PrefixInvoice = "INV"
)

// Sequencer incrementa y devuelve el siguiente valor del contador.
// El primer valor de cada (tenant, prefix, year) es 1.
type Sequencer interface {
	Next(ctx context.Context, tenantID int64, prefix string, year int) (int64, error)
}

type Service struct {
	seq Sequencer
	now func() time.Time
}

func NewService(seq Sequencer) *Service {
	return &Service{
		seq: seq,
		now: time.Now,
	}
}

// WithClock reemplaza el reloj usado para el año (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Next devuelve el próximo número para tenantID con el año actual (UTC).
func (s *Service) Next(ctx context.Context, tenantID int64, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if tenantID <= 0 || prefix == "" {
		return "", apperr.Validation("tenant and prefix are required")
	}
	year := s.now().UTC().Year()

	n, err := s.seq.Next(ctx, tenantID, prefix, year)
	if err != nil {
		return "", err
	}
	return Format(prefix, year, n), nil
}

// Format arma {PREFIX}-{YEAR}-{seq:04d}. Más de 9999 simplemente usa más dígitos.
func Format(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}
