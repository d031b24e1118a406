package postgres

import (
	"context"
	"database/sql"

	"invoicing-backend/internal/domain/quotes"
	"invoicing-backend/internal/platform/apperr"
)

type QuotesRepo struct {
	db *sql.DB
}

func NewQuotesRepo(db *sql.DB) *QuotesRepo {
	return &QuotesRepo{db: db}
}

const quoteColumns = `id, company_id, client_id, number, title, amount_cents, status, created_at, updated_at`

func scanQuote(sc interface{ Scan(...any) error }) (quotes.Quote, error) {
	var q quotes.Quote
	var status string
	err := sc.Scan(&q.ID, &q.TenantID, &q.ClientID, &q.Number, &q.Title, &q.AmountCents, &status, &q.CreatedAt, &q.UpdatedAt)
	q.Status = quotes.Status(status)
	return q, err
}

func (r *QuotesRepo) Create(ctx context.Context, q quotes.Quote) (quotes.Quote, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO quotes (company_id, client_id, number, title, amount_cents, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, q.TenantID, q.ClientID, q.Number, q.Title, q.AmountCents, string(q.Status), q.CreatedAt, q.UpdatedAt).Scan(&q.ID)
	if err != nil {
		return quotes.Quote{}, mapErr(err, "quote number")
	}
	return q, nil
}

func (r *QuotesRepo) FindOwned(ctx context.Context, tenantID, id int64) (quotes.Quote, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE id = $1 AND company_id = $2
	`, id, tenantID)
	q, err := scanQuote(row)
	if err != nil {
		return quotes.Quote{}, mapErr(err, "quote")
	}
	return q, nil
}

func (r *QuotesRepo) List(ctx context.Context, tenantID int64, f quotes.ListFilter) ([]quotes.Quote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE company_id = $1
		  AND ($2 = '' OR status = $2)
		ORDER BY id DESC
		LIMIT $3 OFFSET $4
	`, tenantID, string(f.Status), f.Limit, f.Offset)
	if err != nil {
		return nil, mapErr(err, "quote")
	}
	defer rows.Close()

	out := make([]quotes.Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, mapErr(rows.Err(), "quote")
}

func (r *QuotesRepo) Update(ctx context.Context, q quotes.Quote) (quotes.Quote, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE quotes
		SET client_id = $3, title = $4, amount_cents = $5, status = $6, updated_at = $7
		WHERE id = $1 AND company_id = $2
		RETURNING `+quoteColumns,
		q.ID, q.TenantID, q.ClientID, q.Title, q.AmountCents, string(q.Status), q.UpdatedAt,
	)
	updated, err := scanQuote(row)
	if err != nil {
		return quotes.Quote{}, mapErr(err, "quote")
	}
	return updated, nil
}

func (r *QuotesRepo) Delete(ctx context.Context, tenantID, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM quotes WHERE id = $1 AND company_id = $2
	`, id, tenantID)
	if err != nil {
		return mapErr(err, "quote")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("quote")
	}
	return nil
}
