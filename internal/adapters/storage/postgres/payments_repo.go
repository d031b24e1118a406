package postgres

import (
	"context"
	"database/sql"

	"invoicing-backend/internal/domain/invoices"
	"invoicing-backend/internal/domain/payments"
)

type PaymentsRepo struct {
	db *sql.DB
}

func NewPaymentsRepo(db *sql.DB) *PaymentsRepo {
	return &PaymentsRepo{db: db}
}

// WithinTx abre una tx read-committed; LockInvoice hace SELECT ... FOR UPDATE,
// así dos pagos concurrentes sobre la misma invoice se serializan.
func (r *PaymentsRepo) WithinTx(ctx context.Context, fn func(tx payments.Tx) error) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&paymentsTx{tx: tx})
	})
}

func (r *PaymentsRepo) List(ctx context.Context, tenantID, invoiceID int64) ([]payments.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, company_id, invoice_id, amount_cents, method, paid_at, note, created_at
		FROM payments
		WHERE invoice_id = $1 AND company_id = $2
		ORDER BY id ASC
	`, invoiceID, tenantID)
	if err != nil {
		return nil, mapErr(err, "payment")
	}
	defer rows.Close()

	out := make([]payments.Payment, 0)
	for rows.Next() {
		var (
			p      payments.Payment
			paidAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.TenantID, &p.InvoiceID, &p.AmountCents, &p.Method, &paidAt, &p.Note, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.PaidAt = fromNullTime(paidAt)
		out = append(out, p)
	}
	return out, mapErr(rows.Err(), "payment")
}

type paymentsTx struct {
	tx *sql.Tx
}

func (t *paymentsTx) LockInvoice(ctx context.Context, tenantID, invoiceID int64) (invoices.Invoice, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1 AND company_id = $2
		FOR UPDATE
	`, invoiceID, tenantID)
	inv, err := scanInvoice(row)
	if err != nil {
		return invoices.Invoice{}, mapErr(err, "invoice")
	}
	return inv, nil
}

func (t *paymentsTx) Insert(ctx context.Context, p payments.Payment) (payments.Payment, error) {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO payments (company_id, invoice_id, amount_cents, method, paid_at, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, p.TenantID, p.InvoiceID, p.AmountCents, p.Method, toNullTime(p.PaidAt), p.Note, p.CreatedAt).Scan(&p.ID)
	if err != nil {
		return payments.Payment{}, mapErr(err, "payment")
	}
	return p, nil
}

func (t *paymentsTx) SumByInvoice(ctx context.Context, tenantID, invoiceID int64) (int64, error) {
	var sum int64
	err := t.tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)::bigint
		FROM payments
		WHERE invoice_id = $1 AND company_id = $2
	`, invoiceID, tenantID).Scan(&sum)
	if err != nil {
		return 0, mapErr(err, "payment")
	}
	return sum, nil
}

func (t *paymentsTx) UpdateStatusIf(ctx context.Context, tenantID, invoiceID int64, from, to invoices.Status) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE invoices
		SET status = $4, updated_at = now()
		WHERE id = $1 AND company_id = $2 AND status = $3
	`, invoiceID, tenantID, string(from), string(to))
	if err != nil {
		return false, mapErr(err, "invoice")
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}
