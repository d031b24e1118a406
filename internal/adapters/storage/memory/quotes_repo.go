package memory

import (
	"context"
	"sort"

	"invoicing-backend/internal/domain/quotes"
	"invoicing-backend/internal/platform/apperr"
)

type quotesRepo struct{ s *Store }

func NewQuotesRepo(s *Store) quotes.Repository {
	return &quotesRepo{s: s}
}

func (r *quotesRepo) Create(_ context.Context, q quotes.Quote) (quotes.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.quotes {
		if other.TenantID == q.TenantID && other.Number == q.Number {
			return quotes.Quote{}, apperr.Conflict("quote number already exists")
		}
	}
	q.ID = r.s.nextID()
	r.s.quotes[q.ID] = q
	return q, nil
}

func (r *quotesRepo) FindOwned(_ context.Context, tenantID, id int64) (quotes.Quote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q, ok := r.s.quotes[id]
	if !ok || q.TenantID != tenantID {
		return quotes.Quote{}, apperr.ErrNotFound
	}
	return q, nil
}

func (r *quotesRepo) List(_ context.Context, tenantID int64, f quotes.ListFilter) ([]quotes.Quote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]quotes.Quote, 0)
	for _, q := range r.s.quotes {
		if q.TenantID != tenantID {
			continue
		}
		if f.Status != "" && q.Status != f.Status {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, f.Limit, f.Offset), nil
}

func (r *quotesRepo) Update(_ context.Context, q quotes.Quote) (quotes.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.quotes[q.ID]
	if !ok || cur.TenantID != q.TenantID {
		return quotes.Quote{}, apperr.ErrNotFound
	}
	// number y created_at no cambian
	q.Number = cur.Number
	q.CreatedAt = cur.CreatedAt
	r.s.quotes[q.ID] = q
	return q, nil
}

func (r *quotesRepo) Delete(_ context.Context, tenantID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.quotes[id]
	if !ok || q.TenantID != tenantID {
		return apperr.ErrNotFound
	}
	delete(r.s.quotes, id)
	return nil
}
