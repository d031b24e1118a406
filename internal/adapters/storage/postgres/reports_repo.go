package postgres

import (
	"context"
	"database/sql"
	"time"

	"invoicing-backend/internal/domain/reports"
)

type ReportsRepo struct {
	db *sql.DB
}

func NewReportsRepo(db *sql.DB) *ReportsRepo {
	return &ReportsRepo{db: db}
}

// Refresh recalcula ambas vistas. CONCURRENTLY usa los índices únicos y no
// bloquea a los lectores mientras corre.
func (r *ReportsRepo) Refresh(ctx context.Context) error {
	for _, stmt := range []string{
		`REFRESH MATERIALIZED VIEW CONCURRENTLY public.mv_quotes_by_status`,
		`REFRESH MATERIALIZED VIEW CONCURRENTLY public.mv_monthly_revenue`,
	} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return mapErr(err, "report")
		}
	}
	return nil
}

func (r *ReportsRepo) QuotesByStatus(ctx context.Context, tenantID int64) ([]reports.StatusRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, count, amount_cents
		FROM mv_quotes_by_status
		WHERE company_id = $1
		ORDER BY status
	`, tenantID)
	if err != nil {
		return nil, mapErr(err, "report")
	}
	defer rows.Close()

	out := make([]reports.StatusRow, 0)
	for rows.Next() {
		var row reports.StatusRow
		if err := rows.Scan(&row.Status, &row.Count, &row.AmountCents); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, mapErr(rows.Err(), "report")
}

func (r *ReportsRepo) MonthlyRevenue(ctx context.Context, tenantID int64, since time.Time) ([]reports.MonthRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT month, amount_cents
		FROM mv_monthly_revenue
		WHERE company_id = $1 AND month >= $2::date
		ORDER BY month ASC
	`, tenantID, since)
	if err != nil {
		return nil, mapErr(err, "report")
	}
	defer rows.Close()

	out := make([]reports.MonthRow, 0)
	for rows.Next() {
		var row reports.MonthRow
		if err := rows.Scan(&row.Month, &row.AmountCents); err != nil {
			return nil, err
		}
		row.Month = reports.MonthOf(row.Month)
		out = append(out, row)
	}
	return out, mapErr(rows.Err(), "report")
}
