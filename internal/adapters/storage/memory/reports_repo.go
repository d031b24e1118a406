package memory

import (
	"context"
	"sort"
	"time"

	"invoicing-backend/internal/domain/quotes"
	"invoicing-backend/internal/domain/reports"
)

type reportsRepo struct{ s *Store }

func NewReportsRepo(s *Store) reports.Repository {
	return &reportsRepo{s: s}
}

// Refresh recalcula el snapshot de todos los tenants desde las quotes.
func (r *reportsRepo) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type statusKey struct {
		tenant int64
		status string
	}
	type monthKey struct {
		tenant int64
		month  time.Time
	}
	byStatus := map[statusKey]*reports.StatusRow{}
	byMonth := map[monthKey]int64{}

	for _, q := range r.s.quotes {
		sk := statusKey{q.TenantID, string(q.Status)}
		row, ok := byStatus[sk]
		if !ok {
			row = &reports.StatusRow{Status: string(q.Status)}
			byStatus[sk] = row
		}
		row.Count++
		row.AmountCents += q.AmountCents

		if q.Status == quotes.StatusAccepted {
			byMonth[monthKey{q.TenantID, reports.MonthOf(q.CreatedAt)}] += q.AmountCents
		}
	}

	statusSnap := make(map[int64][]reports.StatusRow)
	for k, row := range byStatus {
		statusSnap[k.tenant] = append(statusSnap[k.tenant], *row)
	}
	for _, rows := range statusSnap {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Status < rows[j].Status })
	}

	monthSnap := make(map[int64][]reports.MonthRow)
	for k, amount := range byMonth {
		monthSnap[k.tenant] = append(monthSnap[k.tenant], reports.MonthRow{Month: k.month, AmountCents: amount})
	}
	for _, rows := range monthSnap {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Month.Before(rows[j].Month) })
	}

	r.s.byStatus = statusSnap
	r.s.monthly = monthSnap
	return nil
}

func (r *reportsRepo) QuotesByStatus(_ context.Context, tenantID int64) ([]reports.StatusRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]reports.StatusRow{}, r.s.byStatus[tenantID]...), nil
}

func (r *reportsRepo) MonthlyRevenue(_ context.Context, tenantID int64, since time.Time) ([]reports.MonthRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]reports.MonthRow, 0)
	for _, row := range r.s.monthly[tenantID] {
		if !row.Month.Before(since) {
			out = append(out, row)
		}
	}
	return out, nil
}
