package memory

import (
	"context"
	"sort"
	"strings"

	"invoicing-backend/internal/domain/clients"
	"invoicing-backend/internal/platform/apperr"
)

type clientsRepo struct{ s *Store }

func NewClientsRepo(s *Store) clients.Repository {
	return &clientsRepo{s: s}
}

// nameTakenLocked: (tenant, name) es único, sin distinguir mayúsculas.
func (r *clientsRepo) nameTakenLocked(tenantID, exceptID int64, name string) bool {
	for _, c := range r.s.clients {
		if c.TenantID == tenantID && c.ID != exceptID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (r *clientsRepo) Create(_ context.Context, c clients.Client) (clients.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTakenLocked(c.TenantID, 0, c.Name) {
		return clients.Client{}, apperr.Conflict("client name already exists")
	}
	c.ID = r.s.nextID()
	r.s.clients[c.ID] = c
	return c, nil
}

func (r *clientsRepo) FindOwned(_ context.Context, tenantID, id int64) (clients.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clients[id]
	if !ok || c.TenantID != tenantID {
		return clients.Client{}, apperr.ErrNotFound
	}
	return c, nil
}

func (r *clientsRepo) List(_ context.Context, tenantID int64, f clients.ListFilter) ([]clients.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(f.Query)
	out := make([]clients.Client, 0)
	for _, c := range r.s.clients {
		if c.TenantID != tenantID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *clientsRepo) Update(_ context.Context, c clients.Client) (clients.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.clients[c.ID]
	if !ok || cur.TenantID != c.TenantID {
		return clients.Client{}, apperr.ErrNotFound
	}
	if r.nameTakenLocked(c.TenantID, c.ID, c.Name) {
		return clients.Client{}, apperr.Conflict("client name already exists")
	}
	c.CreatedAt = cur.CreatedAt
	r.s.clients[c.ID] = c
	return c, nil
}

// Delete borra el client y sus quotes. La cascada filtra por tenant además de
// client_id. Un client con invoices no se borra.
func (r *clientsRepo) Delete(_ context.Context, tenantID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.clients[id]
	if !ok || c.TenantID != tenantID {
		return apperr.ErrNotFound
	}
	for _, inv := range r.s.invoices {
		if inv.TenantID == tenantID && inv.ClientID == id {
			return apperr.Conflict("client has invoices")
		}
	}
	for qid, q := range r.s.quotes {
		if q.TenantID == tenantID && q.ClientID == id {
			delete(r.s.quotes, qid)
		}
	}
	delete(r.s.clients, id)
	return nil
}
