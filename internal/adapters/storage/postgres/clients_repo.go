package postgres

import (
	"context"
	"database/sql"

	"invoicing-backend/internal/domain/clients"
	"invoicing-backend/internal/platform/apperr"
)

type ClientsRepo struct {
	db *sql.DB
}

func NewClientsRepo(db *sql.DB) *ClientsRepo {
	return &ClientsRepo{db: db}
}

const clientColumns = `id, company_id, name, email, phone, created_at, updated_at`

func scanClient(sc interface{ Scan(...any) error }) (clients.Client, error) {
	var c clients.Client
	err := sc.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *ClientsRepo) Create(ctx context.Context, c clients.Client) (clients.Client, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO clients (company_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, c.TenantID, c.Name, c.Email, c.Phone, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	if err != nil {
		return clients.Client{}, mapErr(err, "client name")
	}
	return c, nil
}

func (r *ClientsRepo) FindOwned(ctx context.Context, tenantID, id int64) (clients.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE id = $1 AND company_id = $2
	`, id, tenantID)
	c, err := scanClient(row)
	if err != nil {
		return clients.Client{}, mapErr(err, "client")
	}
	return c, nil
}

func (r *ClientsRepo) List(ctx context.Context, tenantID int64, f clients.ListFilter) ([]clients.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE company_id = $1
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY name ASC, id ASC
		LIMIT $3 OFFSET $4
	`, tenantID, f.Query, f.Limit, f.Offset)
	if err != nil {
		return nil, mapErr(err, "client")
	}
	defer rows.Close()

	out := make([]clients.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, mapErr(rows.Err(), "client")
}

func (r *ClientsRepo) Update(ctx context.Context, c clients.Client) (clients.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE clients
		SET name = $3, email = $4, phone = $5, updated_at = $6
		WHERE id = $1 AND company_id = $2
		RETURNING `+clientColumns,
		c.ID, c.TenantID, c.Name, c.Email, c.Phone, c.UpdatedAt,
	)
	updated, err := scanClient(row)
	if err != nil {
		return clients.Client{}, mapErr(err, "client name")
	}
	return updated, nil
}

// Delete borra quotes y client en la misma tx, ambos filtrados por company.
func (r *ClientsRepo) Delete(ctx context.Context, tenantID, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM quotes WHERE client_id = $1 AND company_id = $2
		`, id, tenantID); err != nil {
			return mapErr(err, "client")
		}

		res, err := tx.ExecContext(ctx, `
			DELETE FROM clients WHERE id = $1 AND company_id = $2
		`, id, tenantID)
		if err != nil {
			// FK desde invoices
			if apperr.CodeOf(mapErr(err, "client")) == apperr.CodeConflict {
				return apperr.Conflict("client has invoices")
			}
			return mapErr(err, "client")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("client")
		}
		return nil
	})
}
