package accounts

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"invoicing-backend/internal/auth/session"
	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/ports/auth"
)

const maxCompanyName = 200

// TokenIssuer emite el session token al registrarse o loguearse.
type TokenIssuer interface {
	Issue(subject string, tenantID int64) (session.Token, error)
}

type Service struct {
	repo   Repository
	tokens TokenIssuer
	hasher hasher
	log    logger.Logger
	now    func() time.Time

	// hash de relleno para que login con email desconocido tarde lo mismo
	dummyHash string
}

type Option func(*Service)

// WithHashCost fija el costo de bcrypt (tests usan bcrypt.MinCost).
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hasher = newHasher(cost) }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(repo Repository, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		tokens: tokens,
		hasher: newHasher(0),
		log:    logger.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	return s
}

type RegisterInput struct {
	Email       string
	Password    string
	CompanyName string
}

// Register crea el usuario dentro de la company indicada (creándola si no
// existe) y devuelve un session token. La company se busca por nombre sin
// distinguir mayúsculas y no hay invitación: conocer el nombre alcanza para
// entrar al tenant.
func (s *Service) Register(ctx context.Context, in RegisterInput) (session.Token, error) {
	email := normalizeEmail(in.Email)
	company := strings.TrimSpace(in.CompanyName)

	if !validEmail(email) {
		return session.Token{}, apperr.Validation("invalid email")
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return session.Token{}, apperr.Validation("password must be at least 8 characters")
	}
	if company == "" || utf8.RuneCountInString(company) > maxCompanyName {
		return session.Token{}, apperr.Validation("company_name must be 1..200 characters")
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return session.Token{}, apperr.Conflict("email already registered")
	case !errors.Is(err, apperr.ErrNotFound):
		return session.Token{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return session.Token{}, apperr.Wrap(err, apperr.CodeInternal, "hash password")
	}

	c, err := s.repo.FindOrCreateCompany(ctx, company)
	if err != nil {
		return session.Token{}, err
	}

	u, err := s.repo.CreateUser(ctx, User{
		Email:        email,
		PasswordHash: hash,
		CompanyID:    c.ID,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return session.Token{}, err
	}

	s.log.Info("user registered", map[string]any{"user_id": u.ID, "company_id": c.ID})
	return s.tokens.Issue(u.Email, u.CompanyID)
}

// Login devuelve ErrUnauthenticated tanto para email desconocido como para
// password incorrecta.
func (s *Service) Login(ctx context.Context, email, password string) (session.Token, error) {
	email = normalizeEmail(email)

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.hasher.Check(password, s.dummyHash)
			return session.Token{}, apperr.ErrUnauthenticated
		}
		return session.Token{}, err
	}
	if !s.hasher.Check(password, u.PasswordHash) {
		return session.Token{}, apperr.ErrUnauthenticated
	}
	return s.tokens.Issue(u.Email, u.CompanyID)
}

func (s *Service) Me(ctx context.Context, p auth.Principal) (Profile, error) {
	if !p.Valid() {
		return Profile{}, apperr.ErrUnauthenticated
	}
	return Profile{Email: p.SubjectID, CompanyID: p.TenantID}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t\r\n") && len(s) <= 320
}
