package reports

import (
	"context"
	"time"

	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/metrics"
	"invoicing-backend/internal/tenancy"
)

const (
	DefaultMonths = 12
	MaxMonths     = 36
)

type Service struct {
	repo    Repository
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo Repository, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Refresh es global: no recibe tenant. Cualquier usuario autenticado lo puede
// disparar; solo cambia qué tan viejo es el snapshot.
func (s *Service) Refresh(ctx context.Context) error {
	start := s.now()
	err := s.repo.Refresh(ctx)
	s.metrics.ObserveRefresh(err)
	if err != nil {
		s.log.Error("report refresh failed", map[string]any{"error": err})
		return err
	}
	s.log.Info("reports refreshed", map[string]any{"duration_ms": s.now().Sub(start).Milliseconds()})
	return nil
}

func (s *Service) Status(ctx context.Context, tenantID int64, refresh bool) ([]StatusRow, error) {
	if err := tenancy.Require(tenantID); err != nil {
		return nil, err
	}
	if refresh {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return s.repo.QuotesByStatus(ctx, tenantID)
}

// Monthly devuelve los últimos `months` meses incluyendo el actual.
func (s *Service) Monthly(ctx context.Context, tenantID int64, months int, refresh bool) ([]MonthRow, error) {
	if err := tenancy.Require(tenantID); err != nil {
		return nil, err
	}
	if months < 1 || months > MaxMonths {
		return nil, apperr.Validation("months must be 1..36")
	}
	if refresh {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return s.repo.MonthlyRevenue(ctx, tenantID, Since(s.now(), months))
}

// Since es el primer día del mes (UTC) que abre una ventana de `months` meses
// que termina en el mes de now.
func Since(now time.Time, months int) time.Time {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -(months - 1), 0)
}

// MonthOf trunca t al primer día de su mes (UTC).
func MonthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
