package quotes

import (
	"net/http"
	"time"

	"invoicing-backend/internal/middleware"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/quotes", func(qr chi.Router) {
		qr.Post("/", createQuoteHandler(svc, log))
		qr.Get("/", listQuotesHandler(svc, log))
		qr.Get("/{quoteID}", getQuoteHandler(svc, log))
		qr.Patch("/{quoteID}", updateQuoteHandler(svc, log))
		qr.Delete("/{quoteID}", deleteQuoteHandler(svc, log))
	})
}

type createQuoteRequest struct {
	ClientID    int64  `json:"client_id"`
	Title       string `json:"title"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
}

type updateQuoteRequest struct {
	ClientID    *int64  `json:"client_id"`
	Title       *string `json:"title"`
	AmountCents *int64  `json:"amount_cents"`
	Status      *string `json:"status"`
}

type quoteResponse struct {
	ID          int64     `json:"id"`
	Number      string    `json:"number"`
	ClientID    int64     `json:"client_id"`
	Title       string    `json:"title"`
	AmountCents int64     `json:"amount_cents"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// createQuoteHandler godoc
// @Summary Crear presupuesto
// @Description Asigna número Q-YYYY-NNNN. El client_id tiene que ser de la company.
// @Tags quotes
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer <session token>"
// @Param payload body createQuoteRequest true "Datos del presupuesto"
// @Success 201 {object} quoteResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Router /quotes [post]
func createQuoteHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}

		var req createQuoteRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err)
			return
		}

		q, err := svc.Create(r.Context(), p.TenantID, CreateInput{
			ClientID:    req.ClientID,
			Title:       req.Title,
			AmountCents: req.AmountCents,
			Status:      Status(req.Status),
		})
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toQuoteResponse(q))
	}
}

func listQuotesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
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

		items, err := svc.List(r.Context(), p.TenantID, ListFilter{
			Status: Status(r.URL.Query().Get("status")),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		out := make([]quoteResponse, 0, len(items))
		for _, q := range items {
			out = append(out, toQuoteResponse(q))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func getQuoteHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		id, err := respond.PathID(chi.URLParam(r, "quoteID"), resourceQuote)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		q, err := svc.Get(r.Context(), p.TenantID, id)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusOK, toQuoteResponse(q))
	}
}

func updateQuoteHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		id, err := respond.PathID(chi.URLParam(r, "quoteID"), resourceQuote)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		var req updateQuoteRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err)
			return
		}

		in := UpdateInput{
			ClientID:    req.ClientID,
			Title:       req.Title,
			AmountCents: req.AmountCents,
		}
		if req.Status != nil {
			st := Status(*req.Status)
			in.Status = &st
		}

		q, err := svc.Update(r.Context(), p.TenantID, id, in)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusOK, toQuoteResponse(q))
	}
}

func deleteQuoteHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		id, err := respond.PathID(chi.URLParam(r, "quoteID"), resourceQuote)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		if err := svc.Delete(r.Context(), p.TenantID, id); err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.NoContent(w)
	}
}

func toQuoteResponse(q Quote) quoteResponse {
	return quoteResponse{
		ID:          q.ID,
		Number:      q.Number,
		ClientID:    q.ClientID,
		Title:       q.Title,
		AmountCents: q.AmountCents,
		Status:      q.Status,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}
