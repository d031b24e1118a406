package postgres

import (
	"context"
	"database/sql"
	"strings"

	"invoicing-backend/internal/domain/accounts"
)

type AccountsRepo struct {
	db *sql.DB
}

func NewAccountsRepo(db *sql.DB) *AccountsRepo {
	return &AccountsRepo{db: db}
}

// FindOrCreateCompany es un upsert sobre lower(name): dos registros
// concurrentes con la misma company terminan en la misma fila.
func (r *AccountsRepo) FindOrCreateCompany(ctx context.Context, name string) (accounts.Company, error) {
	name = strings.TrimSpace(name)

	var c accounts.Company
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO companies (name) VALUES ($1)
		ON CONFLICT ((lower(name))) DO UPDATE SET name = companies.name
		RETURNING id, name, created_at
	`, name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return accounts.Company{}, mapErr(err, "company")
	}
	return c, nil
}

func (r *AccountsRepo) CreateUser(ctx context.Context, u accounts.User) (accounts.User, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, company_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Email, u.PasswordHash, u.CompanyID, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return accounts.User{}, mapErr(err, "email")
	}
	return u, nil
}

func (r *AccountsRepo) GetUserByEmail(ctx context.Context, email string) (accounts.User, error) {
	var u accounts.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, company_id, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CompanyID, &u.CreatedAt)
	if err != nil {
		return accounts.User{}, mapErr(err, "user")
	}
	return u, nil
}
