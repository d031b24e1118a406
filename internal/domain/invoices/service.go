package invoices

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"invoicing-backend/internal/auth/capability"
	"invoicing-backend/internal/domain/clients"
	"invoicing-backend/internal/domain/numbering"
	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/ports/capabilities"
	"invoicing-backend/internal/ports/render"
	"invoicing-backend/internal/tenancy"
)

const (
	maxTitle        = 200
	maxDescription  = 300
	maxLines        = 500
	DefaultLimit    = 50
	MaxLimit        = 500
	DefaultCurrency = "EUR"
	resourceInvoice = "invoice"

	FormatPDF  = "pdf"
	FormatHTML = "html"
)

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

type ClientLookup interface {
	Get(ctx context.Context, tenantID, id int64) (clients.Client, error)
}

type NumberSource interface {
	Next(ctx context.Context, tenantID int64, prefix string) (string, error)
}

// CapabilityIssuer emite el token del link público.
type CapabilityIssuer interface {
	Issue(scope capabilities.Scope, resourceID, tenantID int64, ttl time.Duration) (capability.Token, error)
}

type Deps struct {
	Repo     Repository
	Clients  ClientLookup
	Numbers  NumberSource
	Issuer   CapabilityIssuer
	Verifier capabilities.Verifier
	// Renderer sirve el formato por defecto (pdf); HTML es opcional.
	Renderer render.Renderer
	HTML     render.Renderer
	Log      logger.Logger

	PublicBaseURL string
	CapabilityTTL time.Duration
}

type Service struct {
	repo     Repository
	clients  ClientLookup
	numbers  NumberSource
	issuer   CapabilityIssuer
	verifier capabilities.Verifier
	renderer render.Renderer
	html     render.Renderer
	log      logger.Logger

	baseURL string
	linkTTL time.Duration
	now     func() time.Time
}

func NewService(d Deps) *Service {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.CapabilityTTL <= 0 {
		d.CapabilityTTL = capability.DefaultTTL
	}
	return &Service{
		repo:     d.Repo,
		clients:  d.Clients,
		numbers:  d.Numbers,
		issuer:   d.Issuer,
		verifier: d.Verifier,
		renderer: d.Renderer,
		html:     d.HTML,
		log:      d.Log,
		baseURL:  d.PublicBaseURL,
		linkTTL:  d.CapabilityTTL,
		now:      time.Now,
	}
}

type LineInput struct {
	Description    string
	Qty            int64
	UnitPriceCents int64
}

type CreateInput struct {
	ClientID   int64
	Title      string
	Currency   string
	IssuedDate *time.Time
	DueDate    *time.Time
	Lines      []LineInput
}

// Create arma la invoice en draft con totales calculados en el server.
func (s *Service) Create(ctx context.Context, tenantID int64, in CreateInput) (Invoice, error) {
	if err := tenancy.Require(tenantID); err != nil {
		return Invoice{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || utf8.RuneCountInString(title) > maxTitle {
		return Invoice{}, apperr.Validation("title must be 1..200 characters")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if !currencyRe.MatchString(currency) {
		return Invoice{}, apperr.Validation("currency must be a 3-letter code")
	}
	if in.IssuedDate != nil && in.DueDate != nil && in.DueDate.Before(*in.IssuedDate) {
		return Invoice{}, apperr.Validation("due_date must not be before issued_date")
	}

	lines, total, err := buildLines(in.Lines)
	if err != nil {
		return Invoice{}, err
	}

	if _, err := s.clients.Get(ctx, tenantID, in.ClientID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Invoice{}, apperr.Validation("client not in your company")
		}
		return Invoice{}, err
	}

	number, err := s.numbers.Next(ctx, tenantID, numbering.PrefixInvoice)
	if err != nil {
		return Invoice{}, err
	}

	now := s.now().UTC()
	inv, err := s.repo.Create(ctx, Invoice{
		TenantID:   tenantID,
		ClientID:   in.ClientID,
		Number:     number,
		Title:      title,
		Status:     StatusDraft,
		Currency:   currency,
		TotalCents: total,
		IssuedDate: in.IssuedDate,
		DueDate:    in.DueDate,
		CreatedAt:  now,
		UpdatedAt:  now,
		Lines:      lines,
	})
	if err != nil {
		return Invoice{}, err
	}

	s.log.Info("invoice created", map[string]any{
		"tenant_id":   tenantID,
		"invoice_id":  inv.ID,
		"number":      inv.Number,
		"total_cents": inv.TotalCents,
	})
	return inv, nil
}

func buildLines(in []LineInput) ([]Line, int64, error) {
	if len(in) > maxLines {
		return nil, 0, apperr.Validation("too many lines")
	}
	out := make([]Line, 0, len(in))
	var total int64
	for _, l := range in {
		desc := strings.TrimSpace(l.Description)
		if desc == "" || utf8.RuneCountInString(desc) > maxDescription {
			return nil, 0, apperr.Validation("line description must be 1..300 characters")
		}
		if l.Qty < 1 {
			return nil, 0, apperr.Validation("line qty must be >= 1")
		}
		if l.UnitPriceCents < 0 {
			return nil, 0, apperr.Validation("line unit_price_cents must be >= 0")
		}
		if l.UnitPriceCents > 0 && l.Qty > math.MaxInt64/l.UnitPriceCents {
			return nil, 0, apperr.Validation("line total too large")
		}
		lt := l.Qty * l.UnitPriceCents
		if total > math.MaxInt64-lt {
			return nil, 0, apperr.Validation("invoice total too large")
		}
		total += lt
		out = append(out, Line{
			Description:    desc,
			Qty:            l.Qty,
			UnitPriceCents: l.UnitPriceCents,
			TotalCents:     lt,
		})
	}
	return out, total, nil
}

// Get devuelve la invoice con sus líneas.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (Invoice, error) {
	inv, err := tenancy.FindOwned(ctx, s.repo.FindOwned, tenantID, id, resourceInvoice)
	if err != nil {
		return Invoice{}, err
	}
	lines, err := s.repo.Lines(ctx, tenantID, id)
	if err != nil {
		return Invoice{}, err
	}
	inv.Lines = lines
	return inv, nil
}

func (s *Service) List(ctx context.Context, tenantID int64, limit, offset int) ([]Invoice, error) {
	if err := tenancy.Require(tenantID); err != nil {
		return nil, err
	}
	if limit < 1 || limit > MaxLimit {
		return nil, apperr.Validation("limit must be between 1 and 500")
	}
	if offset < 0 {
		return nil, apperr.Validation("offset must be >= 0")
	}
	return s.repo.List(ctx, tenantID, limit, offset)
}

// Send: draft -> sent.
func (s *Service) Send(ctx context.Context, tenantID, id int64) (Invoice, error) {
	return s.transition(ctx, tenantID, id, []Status{StatusDraft}, StatusSent)
}

// Cancel: cualquier estado salvo cancelled -> cancelled.
func (s *Service) Cancel(ctx context.Context, tenantID, id int64) (Invoice, error) {
	return s.transition(ctx, tenantID, id, []Status{StatusDraft, StatusSent, StatusPaid}, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, tenantID, id int64, from []Status, to Status) (Invoice, error) {
	if err := tenancy.Require(tenantID); err != nil {
		return Invoice{}, err
	}
	inv, changed, err := s.repo.TransitionStatus(ctx, tenantID, id, from, to, s.now().UTC())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Invoice{}, apperr.NotFound(resourceInvoice)
		}
		return Invoice{}, err
	}
	if !changed {
		return Invoice{}, apperr.Conflict("invoice is " + string(inv.Status))
	}
	s.log.Info("invoice status changed", map[string]any{
		"tenant_id":  tenantID,
		"invoice_id": id,
		"status":     string(to),
	})
	return inv, nil
}

// PublicURL emite un capability token para descargar esta invoice sin sesión.
// El link vale CapabilityTTL y se puede usar varias veces dentro de ese lapso
// salvo que el verifier esté en modo single-use.
func (s *Service) PublicURL(ctx context.Context, tenantID, id int64) (PublicLink, error) {
	inv, err := tenancy.FindOwned(ctx, s.repo.FindOwned, tenantID, id, resourceInvoice)
	if err != nil {
		return PublicLink{}, err
	}

	tok, err := s.issuer.Issue(capabilities.ScopeInvoicePDF, inv.ID, inv.TenantID, s.linkTTL)
	if err != nil {
		return PublicLink{}, err
	}
	link, err := capability.PublicLink(s.baseURL, inv.ID, tok.Value)
	if err != nil {
		return PublicLink{}, apperr.Wrap(err, apperr.CodeInternal, "build public link")
	}

	s.log.Info("public link issued", map[string]any{
		"tenant_id":  inv.TenantID,
		"invoice_id": inv.ID,
		"expires_at": tok.ExpiresAt,
	})
	return PublicLink{URL: link, ExpiresAt: tok.ExpiresAt}, nil
}

// Document arma la entrada de render de (tenant, id).
func (s *Service) Document(ctx context.Context, tenantID, id int64) (render.Document, error) {
	inv, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return render.Document{}, err
	}

	doc := render.Document{
		InvoiceID:  inv.ID,
		TenantID:   inv.TenantID,
		Number:     inv.Number,
		Title:      inv.Title,
		Status:     string(inv.Status),
		Currency:   inv.Currency,
		TotalCents: inv.TotalCents,
		IssuedDate: inv.IssuedDate,
		DueDate:    inv.DueDate,
		Lines:      make([]render.Line, 0, len(inv.Lines)),
	}
	// el client puede haber sido borrado; la invoice sigue siendo imprimible
	if c, err := s.clients.Get(ctx, tenantID, inv.ClientID); err == nil {
		doc.ClientName = c.Name
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return render.Document{}, err
	}
	for _, l := range inv.Lines {
		doc.Lines = append(doc.Lines, render.Line{
			Description:    l.Description,
			Qty:            l.Qty,
			UnitPriceCents: l.UnitPriceCents,
			TotalCents:     l.TotalCents,
		})
	}
	return doc, nil
}

// Download renderiza la invoice del tenant en format ("" o pdf, html).
func (s *Service) Download(ctx context.Context, tenantID, id int64, format string) (render.Rendered, error) {
	r, err := s.rendererFor(format)
	if err != nil {
		return render.Rendered{}, err
	}
	doc, err := s.Document(ctx, tenantID, id)
	if err != nil {
		return render.Rendered{}, err
	}
	return r.Render(ctx, doc)
}

// PublicDocument canjea un capability token para la invoice del path.
// El id sale del path y tiene que coincidir con el del token; el tenant sale
// del token, no de una sesión. El token se consume recién con el documento
// armado: un fallo previo no gasta un link single-use.
func (s *Service) PublicDocument(ctx context.Context, rawToken string, id int64) (render.Document, error) {
	g, doc, err := s.publicDocument(ctx, rawToken, id)
	if err != nil {
		return render.Document{}, err
	}
	if err := s.verifier.Redeem(ctx, g); err != nil {
		return render.Document{}, err
	}
	return doc, nil
}

// PublicDownload es PublicDocument más render; consume el token después de
// renderizar.
func (s *Service) PublicDownload(ctx context.Context, rawToken string, id int64, format string) (render.Rendered, error) {
	r, err := s.rendererFor(format)
	if err != nil {
		return render.Rendered{}, err
	}
	g, doc, err := s.publicDocument(ctx, rawToken, id)
	if err != nil {
		return render.Rendered{}, err
	}
	out, err := r.Render(ctx, doc)
	if err != nil {
		return render.Rendered{}, err
	}
	if err := s.verifier.Redeem(ctx, g); err != nil {
		return render.Rendered{}, err
	}
	return out, nil
}

func (s *Service) publicDocument(ctx context.Context, rawToken string, id int64) (capabilities.Grant, render.Document, error) {
	g, err := s.verifier.Check(ctx, rawToken, capabilities.ScopeInvoicePDF, id)
	if err != nil {
		return capabilities.Grant{}, render.Document{}, err
	}
	tenantID, err := tenancy.FromGrant(g)
	if err != nil {
		return capabilities.Grant{}, render.Document{}, err
	}
	doc, err := s.Document(ctx, tenantID, g.ResourceID)
	if err != nil {
		return capabilities.Grant{}, render.Document{}, err
	}
	return g, doc, nil
}

func (s *Service) rendererFor(format string) (render.Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatPDF:
		return s.renderer, nil
	case FormatHTML:
		if s.html != nil {
			return s.html, nil
		}
	}
	return nil, apperr.Validation("format must be pdf or html")
}
