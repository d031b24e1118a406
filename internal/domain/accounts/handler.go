package accounts

import (
	"net/http"
	"time"

	"invoicing-backend/internal/auth/session"
	"invoicing-backend/internal/middleware"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", registerHandler(svc, log))
		ar.Post("/login", loginHandler(svc, log))
		ar.With(middleware.RequireAuth).Get("/me", meHandler(svc, log))
	})
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type meResponse struct {
	Email     string `json:"email"`
	CompanyID int64  `json:"company_id"`
}

// registerHandler godoc
// @Summary Registrar usuario
// @Description Crea el usuario en la company indicada (la crea si no existe) y devuelve un session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerRequest true "email, password (min 8) y company_name"
// @Success 201 {object} tokenResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 409 {object} respond.ErrorBody "email already registered"
// @Router /auth/register [post]
func registerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err)
			return
		}

		tok, err := svc.Register(r.Context(), RegisterInput{
			Email:       req.Email,
			Password:    req.Password,
			CompanyName: req.CompanyName,
		})
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toTokenResponse(tok))
	}
}

// loginHandler godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} respond.ErrorBody
// @Router /auth/login [post]
func loginHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err)
			return
		}

		tok, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusOK, toTokenResponse(tok))
	}
}

func meHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalOr401(w, r)
		if !ok {
			return
		}
		prof, err := svc.Me(r.Context(), p)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusOK, meResponse{Email: prof.Email, CompanyID: prof.CompanyID})
	}
}

func toTokenResponse(t session.Token) tokenResponse {
	return tokenResponse{
		AccessToken: t.Value,
		TokenType:   "bearer",
		ExpiresAt:   t.ExpiresAt,
	}
}
