package memory

import (
	"context"
	"strings"

	"invoicing-backend/internal/domain/accounts"
	"invoicing-backend/internal/platform/apperr"
)

type accountsRepo struct{ s *Store }

func NewAccountsRepo(s *Store) accounts.Repository {
	return &accountsRepo{s: s}
}

func (r *accountsRepo) FindOrCreateCompany(_ context.Context, name string) (accounts.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := r.s.companyByName[key]; ok {
		return r.s.companies[id], nil
	}
	c := accounts.Company{ID: r.s.nextID(), Name: strings.TrimSpace(name)}
	r.s.companies[c.ID] = c
	r.s.companyByName[key] = c.ID
	return c, nil
}

func (r *accountsRepo) CreateUser(_ context.Context, u accounts.User) (accounts.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[u.Email]; exists {
		return accounts.User{}, apperr.Conflict("email already registered")
	}
	if _, ok := r.s.companies[u.CompanyID]; !ok {
		return accounts.User{}, apperr.NotFound("company")
	}
	u.ID = r.s.nextID()
	r.s.users[u.Email] = u
	return u, nil
}

func (r *accountsRepo) GetUserByEmail(_ context.Context, email string) (accounts.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[email]
	if !ok {
		return accounts.User{}, apperr.NotFound("user")
	}
	return u, nil
}
