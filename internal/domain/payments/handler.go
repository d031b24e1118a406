package payments

import (
	"net/http"
	"strings"
	"time"

	"invoicing-backend/internal/middleware"
	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/payments", func(pr chi.Router) {
		pr.Post("/{invoiceID}", recordPaymentHandler(svc, log))
		pr.Get("/{invoiceID}", listPaymentsHandler(svc, log))
	})
}

type recordPaymentRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method"`
	PaidAt      string `json:"paid_at"` // YYYY-MM-DD opcional
	Note        string `json:"note"`
}

type paymentResponse struct {
	ID          int64  `json:"id"`
	InvoiceID   int64  `json:"invoice_id"`
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method,omitempty"`
	PaidAt      string `json:"paid_at,omitempty"`
	Note        string `json:"note,omitempty"`
}

type receiptResponse struct {
	paymentResponse
	PaidSum       int64  `json:"paid_sum_cents"`
	InvoiceStatus string `json:"invoice_status"`
}

// recordPaymentHandler godoc
// @Summary Registrar pago
// @Description Agrega un pago (amount_cents >= 0) y concilia: si la suma de pagos alcanza el total (> 0) la factura pasa a paid.
// @Tags payments
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer <session token>"
// @Param invoiceID path int true "ID de la factura"
// @Param payload body recordPaymentRequest true "Pago"
// @Success 201 {object} receiptResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Router /payments/{invoiceID} [post]
func recordPaymentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		invoiceID, err := respond.PathID(chi.URLParam(r, "invoiceID"), resourceInvoice)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		var req recordPaymentRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err)
			return
		}

		var paidAt *time.Time
		if s := strings.TrimSpace(req.PaidAt); s != "" {
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				respond.Error(w, r, log, apperr.Validation("paid_at must be YYYY-MM-DD"))
				return
			}
			paidAt = &t
		}

		rc, err := svc.Record(r.Context(), p.TenantID, invoiceID, RecordInput{
			AmountCents: req.AmountCents,
			Method:      req.Method,
			PaidAt:      paidAt,
			Note:        req.Note,
		})
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		respond.JSON(w, http.StatusCreated, receiptResponse{
			paymentResponse: toPaymentResponse(rc.Payment),
			PaidSum:         rc.PaidSum,
			InvoiceStatus:   rc.Status,
		})
	}
}

func listPaymentsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		invoiceID, err := respond.PathID(chi.URLParam(r, "invoiceID"), resourceInvoice)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		items, err := svc.List(r.Context(), p.TenantID, invoiceID)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		out := make([]paymentResponse, 0, len(items))
		for _, pm := range items {
			out = append(out, toPaymentResponse(pm))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func toPaymentResponse(p Payment) paymentResponse {
	out := paymentResponse{
		ID:          p.ID,
		InvoiceID:   p.InvoiceID,
		AmountCents: p.AmountCents,
		Method:      p.Method,
		Note:        p.Note,
	}
	if p.PaidAt != nil {
		out.PaidAt = p.PaidAt.Format("2006-01-02")
	}
	return out
}
