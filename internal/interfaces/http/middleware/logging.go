package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
)

// LoggingMiddleware emits one structured log line per request.
type LoggingMiddleware struct {
	logger logging.Logger
}

// NewLoggingMiddleware builds the request logger.
func NewLoggingMiddleware(logger logging.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &LoggingMiddleware{logger: logger}
}

// Handler wraps the response writer to capture status and size.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		fields := []logging.Field{
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Int("bytes", ww.BytesWritten()),
			logging.Duration("duration", time.Since(start)),
			logging.String("remote", r.RemoteAddr),
		}
		if reqID := chimw.GetReqID(r.Context()); reqID != "" {
			fields = append(fields, logging.String("request_id", reqID))
		}

		switch {
		case ww.Status() >= http.StatusInternalServerError:
			m.logger.Error("http request", fields...)
		case ww.Status() >= http.StatusBadRequest:
			m.logger.Warn("http request", fields...)
		default:
			m.logger.Info("http request", fields...)
		}
	})
}
