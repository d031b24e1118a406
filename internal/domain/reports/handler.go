package reports

import (
	"net/http"

	"invoicing-backend/internal/middleware"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

const monthLayout = "2006-01"

// RegisterRoutes monta /reports. El router padre ya exige auth.
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/reports", func(rr chi.Router) {
		rr.Post("/refresh", refreshHandler(svc, log))
		rr.Get("/status", statusHandler(svc, log))
		rr.Get("/monthly", monthlyHandler(svc, log))
	})
}

type refreshResponse struct {
	Refreshed bool `json:"refreshed"`
}

type statusRowResponse struct {
	Status      string `json:"status"`
	Count       int64  `json:"count"`
	AmountCents int64  `json:"amount_cents"`
}

type monthRowResponse struct {
	Month       string `json:"month"`
	AmountCents int64  `json:"amount_cents"`
}

// refreshHandler godoc
// @Summary Refrescar reportes
// @Description Recalcula los agregados de todas las companies.
// @Tags reports
// @Produce json
// @Param Authorization header string true "Bearer <session token>"
// @Success 202 {object} refreshResponse
// @Failure 401 {object} respond.ErrorBody
// @Router /reports/refresh [post]
func refreshHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.PrincipalOr401(w, r); !ok {
			return
		}
		if err := svc.Refresh(r.Context()); err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusAccepted, refreshResponse{Refreshed: true})
	}
}

// statusHandler godoc
// @Summary Quotes por status
// @Description Lee el último snapshot; refresh=true lo recalcula antes.
// @Tags reports
// @Produce json
// @Param Authorization header string true "Bearer <session token>"
// @Param refresh query bool false "Refrescar antes de leer"
// @Success 200 {array} statusRowResponse
// @Router /reports/status [get]
func statusHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}

		rows, err := svc.Status(r.Context(), p.TenantID, respond.QueryBool(r, "refresh"))
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		out := make([]statusRowResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, statusRowResponse{Status: row.Status, Count: row.Count, AmountCents: row.AmountCents})
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// monthlyHandler godoc
// @Summary Revenue mensual
// @Description Suma de quotes accepted por mes de creación.
// @Tags reports
// @Produce json
// @Param Authorization header string true "Bearer <session token>"
// @Param months query int false "1-36, por defecto 12"
// @Param refresh query bool false "Refrescar antes de leer"
// @Success 200 {array} monthRowResponse
// @Failure 400 {object} respond.ErrorBody
// @Router /reports/monthly [get]
func monthlyHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		months, err := respond.QueryInt(r, "months", DefaultMonths, 1, MaxMonths)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		rows, err := svc.Monthly(r.Context(), p.TenantID, months, respond.QueryBool(r, "refresh"))
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		out := make([]monthRowResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, monthRowResponse{Month: row.Month.Format(monthLayout), AmountCents: row.AmountCents})
		}
		respond.JSON(w, http.StatusOK, out)
	}
}
