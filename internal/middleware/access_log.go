package middleware

import (
	"net/http"
	"strconv"
	"time"

	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// AccessLog loguea una línea por request y alimenta las métricas HTTP.
// Va después de chimw.RequestID para tener el request_id.
func AccessLog(log logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			// patrón de chi, no el path crudo: evita cardinalidad por id
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}

			if m != nil {
				m.RequestCount.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
				m.RequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
			}

			if log != nil {
				log.Info("http request", map[string]any{
					"request_id":  chimw.GetReqID(r.Context()),
					"method":      r.Method,
					"route":       route,
					"status":      status,
					"duration_ms": elapsed.Milliseconds(),
					"bytes":       ww.BytesWritten(),
				})
			}
		})
	}
}
