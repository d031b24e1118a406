package clients

import (
	"net/http"
	"time"

	"invoicing-backend/internal/middleware"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /clients. El router padre ya exige auth.
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/clients", func(cr chi.Router) {
		cr.Post("/", createClientHandler(svc, log))
		cr.Get("/", listClientsHandler(svc, log))
		cr.Get("/{clientID}", getClientHandler(svc, log))
		cr.Patch("/{clientID}", updateClientHandler(svc, log))
		cr.Delete("/{clientID}", deleteClientHandler(svc, log))
	})
}

type createClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type updateClientRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type clientResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createClientHandler godoc
// @Summary Crear cliente
// @Description El nombre es único dentro de la company.
// @Tags clients
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer <session token>"
// @Param payload body createClientRequest true "Datos del cliente"
// @Success 201 {object} clientResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Failure 409 {object} respond.ErrorBody "nombre duplicado"
// @Router /clients [post]
func createClientHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}

		var req createClientRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err)
			return
		}

		c, err := svc.Create(r.Context(), p.TenantID, CreateInput{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		})
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toClientResponse(c))
	}
}

// listClientsHandler godoc
// @Summary Listar clientes
// @Tags clients
// @Produce json
// @Param Authorization header string true "Bearer <session token>"
// @Param q query string false "Filtro por nombre (contiene)"
// @Param limit query int false "1-500, por defecto 50"
// @Param offset query int false "Offset"
// @Success 200 {array} clientResponse
// @Router /clients [get]
func listClientsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
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
			Query:  r.URL.Query().Get("q"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		out := make([]clientResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toClientResponse(c))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func getClientHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		id, err := respond.PathID(chi.URLParam(r, "clientID"), resourceClient)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		c, err := svc.Get(r.Context(), p.TenantID, id)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusOK, toClientResponse(c))
	}
}

func updateClientHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		id, err := respond.PathID(chi.URLParam(r, "clientID"), resourceClient)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		var req updateClientRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err)
			return
		}

		c, err := svc.Update(r.Context(), p.TenantID, id, UpdateInput{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		})
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusOK, toClientResponse(c))
	}
}

// deleteClientHandler godoc
// @Summary Borrar cliente
// @Description Borra el cliente y sus presupuestos.
// @Tags clients
// @Param Authorization header string true "Bearer <session token>"
// @Param clientID path int true "ID del cliente"
// @Success 204
// @Failure 404 {object} respond.ErrorBody
// @Router /clients/{clientID} [delete]
func deleteClientHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		id, err := respond.PathID(chi.URLParam(r, "clientID"), resourceClient)
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

func toClientResponse(c Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
