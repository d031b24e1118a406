// Package respond centraliza la escritura de respuestas JSON y errores de los
// handlers. Antes writeJSON estaba duplicado por módulo; con siete módulos ya
// convenía extraerlo.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/platform/logger"
)

const maxBody = 1 << 20

// ErrorBody es el cuerpo de toda respuesta de error.
type ErrorBody struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error escribe {"error": msg} con el status del código de err. Los errores
// internos se loguean con la causa; al cliente solo le llega el mensaje público.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": status,
			"error":  err,
		})
	}
	JSON(w, status, ErrorBody{Error: apperr.PublicMessage(err)})
}

// Decode lee un body JSON a dst. Campos desconocidos y body vacío son error
// de validación.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body required")
		}
		return apperr.Validation("invalid json")
	}
	return nil
}

// PathID parsea un id entero positivo del path. Un id inválido es NotFound,
// igual que uno inexistente.
func PathID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound(what)
	}
	return id, nil
}

// QueryInt lee un entero opcional de la query con default y rango [min, max].
func QueryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return 0, apperr.Validation(name + " must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max))
	}
	return n, nil
}

// QueryBool lee un flag opcional (true/1/yes).
func QueryBool(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "TRUE", "True", "yes":
		return true
	default:
		return false
	}
}
