package postgres

import (
	"context"
	"database/sql"
	"time"

	"invoicing-backend/internal/domain/invoices"
)

type InvoicesRepo struct {
	db *sql.DB
}

func NewInvoicesRepo(db *sql.DB) *InvoicesRepo {
	return &InvoicesRepo{db: db}
}

const invoiceColumns = `id, company_id, client_id, number, title, status, currency, total_cents,
	issued_date, due_date, created_at, updated_at`

func scanInvoice(sc interface{ Scan(...any) error }) (invoices.Invoice, error) {
	var (
		inv            invoices.Invoice
		status         string
		issued, dueDay sql.NullTime
	)
	err := sc.Scan(
		&inv.ID,
		&inv.TenantID,
		&inv.ClientID,
		&inv.Number,
		&inv.Title,
		&status,
		&inv.Currency,
		&inv.TotalCents,
		&issued,
		&dueDay,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	inv.Status = invoices.Status(status)
	inv.IssuedDate = fromNullTime(issued)
	inv.DueDate = fromNullTime(dueDay)
	return inv, err
}

// Create inserta invoice y líneas en una sola tx.
func (r *InvoicesRepo) Create(ctx context.Context, inv invoices.Invoice) (invoices.Invoice, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO invoices (
				company_id, client_id, number, title, status, currency, total_cents,
				issued_date, due_date, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			RETURNING id
		`,
			inv.TenantID,
			inv.ClientID,
			inv.Number,
			inv.Title,
			string(inv.Status),
			inv.Currency,
			inv.TotalCents,
			toNullTime(inv.IssuedDate),
			toNullTime(inv.DueDate),
			inv.CreatedAt,
			inv.UpdatedAt,
		).Scan(&inv.ID)
		if err != nil {
			return mapErr(err, "invoice number")
		}

		for i := range inv.Lines {
			l := &inv.Lines[i]
			l.InvoiceID = inv.ID
			if err := tx.QueryRowContext(ctx, `
				INSERT INTO invoice_lines (invoice_id, description, qty, unit_price_cents, total_cents)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id
			`, inv.ID, l.Description, l.Qty, l.UnitPriceCents, l.TotalCents).Scan(&l.ID); err != nil {
				return mapErr(err, "invoice line")
			}
		}
		return nil
	})
	if err != nil {
		return invoices.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoicesRepo) FindOwned(ctx context.Context, tenantID, id int64) (invoices.Invoice, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1 AND company_id = $2
	`, id, tenantID)
	inv, err := scanInvoice(row)
	if err != nil {
		return invoices.Invoice{}, mapErr(err, "invoice")
	}
	return inv, nil
}

// Lines hace join con invoices para filtrar por company en la misma consulta.
func (r *InvoicesRepo) Lines(ctx context.Context, tenantID, invoiceID int64) ([]invoices.Line, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.invoice_id, l.description, l.qty, l.unit_price_cents, l.total_cents
		FROM invoice_lines l
		JOIN invoices i ON i.id = l.invoice_id
		WHERE l.invoice_id = $1 AND i.company_id = $2
		ORDER BY l.id ASC
	`, invoiceID, tenantID)
	if err != nil {
		return nil, mapErr(err, "invoice")
	}
	defer rows.Close()

	out := make([]invoices.Line, 0)
	for rows.Next() {
		var l invoices.Line
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Description, &l.Qty, &l.UnitPriceCents, &l.TotalCents); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, mapErr(rows.Err(), "invoice")
}

func (r *InvoicesRepo) List(ctx context.Context, tenantID int64, limit, offset int) ([]invoices.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE company_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, mapErr(err, "invoice")
	}
	defer rows.Close()

	out := make([]invoices.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, mapErr(rows.Err(), "invoice")
}

// TransitionStatus es un UPDATE condicional; si no toca filas relee para
// distinguir not-found de status no permitido.
func (r *InvoicesRepo) TransitionStatus(ctx context.Context, tenantID, id int64, from []invoices.Status, to invoices.Status, at time.Time) (invoices.Invoice, bool, error) {
	allowed := make([]string, 0, len(from))
	for _, st := range from {
		allowed = append(allowed, string(st))
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE invoices
		SET status = $3, updated_at = $4
		WHERE id = $1 AND company_id = $2 AND status = ANY($5)
		RETURNING `+invoiceColumns,
		id, tenantID, string(to), at, allowed,
	)
	inv, err := scanInvoice(row)
	if err == nil {
		return inv, true, nil
	}
	if err != sql.ErrNoRows {
		return invoices.Invoice{}, false, mapErr(err, "invoice")
	}

	cur, err := r.FindOwned(ctx, tenantID, id)
	if err != nil {
		return invoices.Invoice{}, false, err
	}
	return cur, false, nil
}
