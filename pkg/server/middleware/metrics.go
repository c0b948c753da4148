package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// UnmatchedRoute labels requests no route pattern matched.
const UnmatchedRoute = "unmatched"

// Recorder receives request measurements. *metrics.Collector implements it.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RequestStarted()
	RequestFinished()
}

// Metrics records request count, duration and in-flight requests. Requests
// are labelled by the chi route pattern that served them ("/vouchers/{id}"),
// never by the raw path, so label cardinality stays bounded.
func Metrics(rec Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec.RequestStarted()
			defer rec.RequestFinished()

			r, rctx := withRouteContext(r)

			start := time.Now()
			rw := newResponseWriter(w)
			defer func() {
				rec.RecordRequest(methodLabel(r.Method), routeLabel(rctx), rw.statusCode, time.Since(start))
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

// withRouteContext installs a chi route context unless one is present. The
// chi router below reuses it, so the matched pattern is readable once it
// returns.
func withRouteContext(r *http.Request) (*http.Request, *chi.Context) {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return r, rctx
	}
	rctx := chi.NewRouteContext()
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx)), rctx
}

func routeLabel(rctx *chi.Context) string {
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return UnmatchedRoute
}

func methodLabel(m string) string {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
		http.MethodConnect, http.MethodTrace:
		return m
	default:
		return "OTHER"
	}
}
