package quotes

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"invoicing-backend/internal/domain/clients"
	"invoicing-backend/internal/domain/numbering"
	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/tenancy"
)

const (
	maxTitle      = 200
	DefaultLimit  = 50
	MaxLimit      = 500
	resourceQuote = "quote"
)

// ClientLookup resuelve un client dentro del tenant.
type ClientLookup interface {
	Get(ctx context.Context, tenantID, id int64) (clients.Client, error)
}

// NumberSource entrega el próximo número legible.
type NumberSource interface {
	Next(ctx context.Context, tenantID int64, prefix string) (string, error)
}

type Service struct {
	repo    Repository
	clients ClientLookup
	numbers NumberSource
	now     func() time.Time
}

func NewService(repo Repository, clients ClientLookup, numbers NumberSource) *Service {
	return &Service{
		repo:    repo,
		clients: clients,
		numbers: numbers,
		now:     time.Now,
	}
}

type CreateInput struct {
	ClientID    int64
	Title       string
	AmountCents int64
	Status      Status
}

type UpdateInput struct {
	ClientID    *int64
	Title       *string
	AmountCents *int64
	Status      *Status
}

func (s *Service) Create(ctx context.Context, tenantID int64, in CreateInput) (Quote, error) {
	if err := tenancy.Require(tenantID); err != nil {
		return Quote{}, err
	}
	title, err := validTitle(in.Title)
	if err != nil {
		return Quote{}, err
	}
	if in.AmountCents < 0 {
		return Quote{}, apperr.Validation("amount_cents must be >= 0")
	}
	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() {
		return Quote{}, apperr.Validation("invalid status")
	}
	if err := s.ensureClient(ctx, tenantID, in.ClientID); err != nil {
		return Quote{}, err
	}

	number, err := s.numbers.Next(ctx, tenantID, numbering.PrefixQuote)
	if err != nil {
		return Quote{}, err
	}

	now := s.now().UTC()
	return s.repo.Create(ctx, Quote{
		TenantID:    tenantID,
		ClientID:    in.ClientID,
		Number:      number,
		Title:       title,
		AmountCents: in.AmountCents,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *Service) Get(ctx context.Context, tenantID, id int64) (Quote, error) {
	return tenancy.FindOwned(ctx, s.repo.FindOwned, tenantID, id, resourceQuote)
}

func (s *Service) List(ctx context.Context, tenantID int64, f ListFilter) ([]Quote, error) {
	if err := tenancy.Require(tenantID); err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Validation("invalid status")
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, tenantID, f)
}

func (s *Service) Update(ctx context.Context, tenantID, id int64, in UpdateInput) (Quote, error) {
	q, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return Quote{}, err
	}

	if in.Title != nil {
		if q.Title, err = validTitle(*in.Title); err != nil {
			return Quote{}, err
		}
	}
	if in.AmountCents != nil {
		if *in.AmountCents < 0 {
			return Quote{}, apperr.Validation("amount_cents must be >= 0")
		}
		q.AmountCents = *in.AmountCents
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return Quote{}, apperr.Validation("invalid status")
		}
		q.Status = *in.Status
	}
	if in.ClientID != nil && *in.ClientID != q.ClientID {
		if err := s.ensureClient(ctx, tenantID, *in.ClientID); err != nil {
			return Quote{}, err
		}
		q.ClientID = *in.ClientID
	}
	q.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, q)
	if err != nil {
		return Quote{}, normalizeNotFound(err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id int64) error {
	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return err
	}
	return normalizeNotFound(s.repo.Delete(ctx, tenantID, id))
}

// ensureClient: un client ajeno o inexistente en el body es un input inválido,
// no un 404 del recurso que se está creando.
func (s *Service) ensureClient(ctx context.Context, tenantID, clientID int64) error {
	_, err := s.clients.Get(ctx, tenantID, clientID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Validation("client not in your company")
	}
	return err
}

func validTitle(raw string) (string, error) {
	t := strings.TrimSpace(raw)
	if t == "" || utf8.RuneCountInString(t) > maxTitle {
		return "", apperr.Validation("title must be 1..200 characters")
	}
	return t, nil
}

func normalizeNotFound(err error) error {
	if err != nil && apperr.CodeOf(err) == apperr.CodeNotFound {
		return apperr.NotFound(resourceQuote)
	}
	return err
}
