package clients

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/tenancy"
)

const (
	maxName        = 200
	DefaultLimit   = 50
	MaxLimit       = 500
	resourceClient = "client"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name  string
	Email string
	Phone string
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	Name  *string
	Email *string
	Phone *string
}

func (s *Service) Create(ctx context.Context, tenantID int64, in CreateInput) (Client, error) {
	if err := tenancy.Require(tenantID); err != nil {
		return Client{}, err
	}
	name, err := validName(in.Name)
	if err != nil {
		return Client{}, err
	}
	email, err := validEmail(in.Email)
	if err != nil {
		return Client{}, err
	}

	now := s.now().UTC()
	return s.repo.Create(ctx, Client{
		TenantID:  tenantID,
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *Service) Get(ctx context.Context, tenantID, id int64) (Client, error) {
	return tenancy.FindOwned(ctx, s.repo.FindOwned, tenantID, id, resourceClient)
}

func (s *Service) List(ctx context.Context, tenantID int64, f ListFilter) ([]Client, error) {
	if err := tenancy.Require(tenantID); err != nil {
		return nil, err
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
	f.Query = strings.TrimSpace(f.Query)
	return s.repo.List(ctx, tenantID, f)
}

func (s *Service) Update(ctx context.Context, tenantID, id int64, in UpdateInput) (Client, error) {
	c, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return Client{}, err
	}

	if in.Name != nil {
		if c.Name, err = validName(*in.Name); err != nil {
			return Client{}, err
		}
	}
	if in.Email != nil {
		if c.Email, err = validEmail(*in.Email); err != nil {
			return Client{}, err
		}
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	c.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return Client{}, normalizeNotFound(err)
	}
	return updated, nil
}

// Delete borra el client y, en cascada, sus quotes (solo las del tenant).
func (s *Service) Delete(ctx context.Context, tenantID, id int64) error {
	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return err
	}
	return normalizeNotFound(s.repo.Delete(ctx, tenantID, id))
}

func validName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > maxName {
		return "", apperr.Validation("name must be 1..200 characters")
	}
	return name, nil
}

func validEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", nil
	}
	if at := strings.IndexByte(email, '@'); at <= 0 || at == len(email)-1 {
		return "", apperr.Validation("invalid email")
	}
	return email, nil
}

func normalizeNotFound(err error) error {
	if err != nil && apperr.CodeOf(err) == apperr.CodeNotFound {
		return apperr.NotFound(resourceClient)
	}
	return err
}
