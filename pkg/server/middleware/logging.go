package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging logs every completed request with method, path, status, latency
// and client details. The request ID is added by the logger's context
// handler when RequestID runs first.
//
// 5xx responses are logged at error level, 4xx at warn, the rest at info.
//
// Log format (JSON):
//
//	{
//	  "time": "2026-01-16T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "GET",
//	  "path": "/vouchers/42",
//	  "status": 200,
//	  "latency_ms": 3,
//	  "bytes": 512,
//	  "remote_addr": "192.168.1.100:54321",
//	  "user_agent": "curl/8.5.0",
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000"
//	}
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)
			ctx := r.Context()

			logger.DebugContext(ctx, "request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			next.ServeHTTP(rw, r)

			level := slog.LevelInfo
			if rw.statusCode >= 500 {
				level = slog.LevelError
			} else if rw.statusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(ctx, level, "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"latency_ms", time.Since(start).Milliseconds(),
				"bytes", rw.bytes,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		})
	}
}
