package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// defaultRegistry is the process-wide registry, seeded with a liveness
// route so a bare BasicRouter is never empty.
var defaultRegistry = NewRegistry(Route{
	Method:  http.MethodGet,
	Pattern: "/healthz",
	Handler: http.HandlerFunc(healthz),
})

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// AddRoute registers a route on the process-wide registry.
func AddRoute(method, pattern string, h http.Handler) error {
	return defaultRegistry.AddRoute(method, pattern, h)
}

// BasicRouter returns a snapshot of the process-wide registry.
func BasicRouter() *chi.Mux {
	return defaultRegistry.Router()
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
