package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger writes one zap line per request. 5xx responses log at error
// level, 4xx at warn, everything else at info.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("remote_addr", r.RemoteAddr),
		}

		switch {
		case status >= http.StatusInternalServerError:
			zap.L().Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			zap.L().Warn("HTTP request", fields...)
		default:
			zap.L().Info("HTTP request", fields...)
		}
	})
}
