package middleware

import (
	"net/http"

	"pet-adoption-api/internal/platform/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// CountDenials registra en métricas cada respuesta 401/403.
// El reason code fino viaja en el body; acá solo interesa el volumen.
func CountDenials(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			switch rec.status {
			case http.StatusUnauthorized:
				m.Denial("unauthenticated")
			case http.StatusForbidden:
				m.Denial("forbidden")
			}
		})
	}
}
