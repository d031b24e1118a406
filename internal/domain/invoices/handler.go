package invoices

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"invoicing-backend/internal/middleware"
	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/respond"
	"invoicing-backend/internal/ports/render"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

// RegisterRoutes monta /invoices (requiere sesión).
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/invoices", func(ir chi.Router) {
		ir.Post("/", createInvoiceHandler(svc, log))
		ir.Get("/", listInvoicesHandler(svc, log))
		ir.Get("/{invoiceID}", getInvoiceHandler(svc, log))
		ir.Post("/{invoiceID}/send", transitionHandler(svc.Send, log))
		ir.Post("/{invoiceID}/cancel", transitionHandler(svc.Cancel, log))
		ir.Get("/{invoiceID}/public_url", publicURLHandler(svc, log))
		ir.Get("/{invoiceID}/download.pdf", downloadHandler(svc, log))
	})
}

// RegisterPublicRoutes monta la descarga anónima por capability token.
func RegisterPublicRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Get("/public/{invoiceID}/download.pdf", publicDownloadHandler(svc, log))
}

type lineRequest struct {
	Description    string `json:"description"`
	Qty            int64  `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type createInvoiceRequest struct {
	ClientID   int64         `json:"client_id"`
	Title      string        `json:"title"`
	Currency   string        `json:"currency"`
	IssuedDate string        `json:"issued_date"` // YYYY-MM-DD opcional
	DueDate    string        `json:"due_date"`    // YYYY-MM-DD opcional
	Lines      []lineRequest `json:"lines"`
}

type lineResponse struct {
	ID             int64  `json:"id"`
	InvoiceID      int64  `json:"invoice_id"`
	Description    string `json:"description"`
	Qty            int64  `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
}

type invoiceResponse struct {
	ID         int64          `json:"id"`
	Number     string         `json:"number"`
	ClientID   int64          `json:"client_id"`
	Title      string         `json:"title"`
	Status     Status         `json:"status"`
	Currency   string         `json:"currency"`
	TotalCents int64          `json:"total_cents"`
	IssuedDate string         `json:"issued_date,omitempty"`
	DueDate    string         `json:"due_date,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Lines      []lineResponse `json:"lines,omitempty"`
}

type publicURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// createInvoiceHandler godoc
// @Summary Crear factura
// @Description Crea la factura en draft. Totales de línea y de factura se calculan en el server. Número INV-YYYY-NNNN.
// @Tags invoices
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer <session token>"
// @Param payload body createInvoiceRequest true "Cabecera y líneas"
// @Success 201 {object} invoiceResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Router /invoices [post]
func createInvoiceHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}

		var req createInvoiceRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err)
			return
		}

		issued, err := parseDate(req.IssuedDate, "issued_date")
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		due, err := parseDate(req.DueDate, "due_date")
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		in := CreateInput{
			ClientID:   req.ClientID,
			Title:      req.Title,
			Currency:   req.Currency,
			IssuedDate: issued,
			DueDate:    due,
			Lines:      make([]LineInput, 0, len(req.Lines)),
		}
		for _, l := range req.Lines {
			in.Lines = append(in.Lines, LineInput{
				Description:    l.Description,
				Qty:            l.Qty,
				UnitPriceCents: l.UnitPriceCents,
			})
		}

		inv, err := svc.Create(r.Context(), p.TenantID, in)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toInvoiceResponse(inv))
	}
}

func listInvoicesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}

		limit, err := respond.QueryInt(r, "limit", DefaultLimit, 1, MaxLimit)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		offset, err := respond.QueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		items, err := svc.List(r.Context(), p.TenantID, limit, offset)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		out := make([]invoiceResponse, 0, len(items))
		for _, inv := range items {
			out = append(out, toInvoiceResponse(inv))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func getInvoiceHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		id, err := respond.PathID(chi.URLParam(r, "invoiceID"), resourceInvoice)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		inv, err := svc.Get(r.Context(), p.TenantID, id)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusOK, toInvoiceResponse(inv))
	}
}

// transitionHandler sirve send/cancel; fn es el método del service.
func transitionHandler(fn func(ctx context.Context, tenantID, id int64) (Invoice, error), log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		id, err := respond.PathID(chi.URLParam(r, "invoiceID"), resourceInvoice)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		inv, err := fn(r.Context(), p.TenantID, id)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusOK, toInvoiceResponse(inv))
	}
}

// publicURLHandler godoc
// @Summary URL pública de descarga
// @Description Devuelve un link /public/{id}/download.pdf?token=... válido por CAPABILITY_TTL (15 min por defecto). Quien tenga el link puede descargar la factura hasta que expire.
// @Tags invoices
// @Produce json
// @Param Authorization header string true "Bearer <session token>"
// @Param invoiceID path int true "ID de la factura"
// @Success 200 {object} publicURLResponse
// @Failure 401 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Router /invoices/{invoiceID}/public_url [get]
func publicURLHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		id, err := respond.PathID(chi.URLParam(r, "invoiceID"), resourceInvoice)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		link, err := svc.PublicURL(r.Context(), p.TenantID, id)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusOK, publicURLResponse{URL: link.URL, ExpiresAt: link.ExpiresAt})
	}
}

func downloadHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		id, err := respond.PathID(chi.URLParam(r, "invoiceID"), resourceInvoice)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		out, err := svc.Download(r.Context(), p.TenantID, id, r.URL.Query().Get("format"))
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		writeFile(w, out)
	}
}

// publicDownloadHandler godoc
// @Summary Descarga pública de factura
// @Description Sin sesión. El token tiene que ser de scope invoice_pdf y del mismo id que el path. Devuelve PDF; format=html devuelve HTML imprimible y format=json la entrada de render.
// @Tags public
// @Produce application/pdf
// @Param invoiceID path int true "ID de la factura"
// @Param token query string true "Capability token"
// @Param format query string false "pdf (default), html o json"
// @Success 200 {file} file
// @Failure 401 {object} respond.ErrorBody "invalid or expired token"
// @Failure 404 {object} respond.ErrorBody
// @Router /public/{invoiceID}/download.pdf [get]
func publicDownloadHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// id mal formado y token inválido responden igual
		id, err := strconv.ParseInt(chi.URLParam(r, "invoiceID"), 10, 64)
		if err != nil || id <= 0 {
			respond.Error(w, r, log, apperr.ErrInvalidCapability)
			return
		}
		token := r.URL.Query().Get("token")
		format := r.URL.Query().Get("format")

		if strings.EqualFold(format, "json") {
			doc, err := svc.PublicDocument(r.Context(), token, id)
			if err != nil {
				respond.Error(w, r, log, err)
				return
			}
			respond.JSON(w, http.StatusOK, doc)
			return
		}

		out, err := svc.PublicDownload(r.Context(), token, id, format)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		writeFile(w, out)
	}
}

func writeFile(w http.ResponseWriter, out render.Rendered) {
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}

func parseDate(raw, field string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apperr.Validation(field + " must be YYYY-MM-DD")
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func toInvoiceResponse(inv Invoice) invoiceResponse {
	out := invoiceResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		ClientID:   inv.ClientID,
		Title:      inv.Title,
		Status:     inv.Status,
		Currency:   inv.Currency,
		TotalCents: inv.TotalCents,
		IssuedDate: formatDate(inv.IssuedDate),
		DueDate:    formatDate(inv.DueDate),
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
	for _, l := range inv.Lines {
		out.Lines = append(out.Lines, lineResponse{
			ID:             l.ID,
			InvoiceID:      l.InvoiceID,
			Description:    l.Description,
			Qty:            l.Qty,
			UnitPriceCents: l.UnitPriceCents,
			TotalCents:     l.TotalCents,
		})
	}
	return out
}
