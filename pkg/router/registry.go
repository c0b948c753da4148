package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// ErrInvalidRoute is wrapped by every error returned from AddRoute.
var ErrInvalidRoute = errors.New("invalid route")

// Route is one registered handler. An empty Method matches every method.
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler
}

// RouteError describes a route rejected by AddRoute.
type RouteError struct {
	Method  string
	Pattern string
	Reason  string
}

func (e *RouteError) Error() string {
	method := e.Method
	if method == "" {
		method = "*"
	}
	return fmt.Sprintf("%s: %s %s: %s", ErrInvalidRoute, method, e.Pattern, e.Reason)
}

func (e *RouteError) Unwrap() error { return ErrInvalidRoute }

// Registry is an append-only set of routes shared by concurrent readers and
// writers. Router builds a fresh router from the routes present at the time
// of the call; routes added later are not served by earlier snapshots.
type Registry struct {
	mu     sync.RWMutex
	routes []Route
}

// NewRegistry creates a registry seeded with routes. It panics if a seed
// route is invalid.
func NewRegistry(routes ...Route) *Registry {
	r := &Registry{}
	for _, rt := range routes {
		if err := r.AddRoute(rt.Method, rt.Pattern, rt.Handler); err != nil {
			panic(err)
		}
	}
	return r
}

// AddRoute registers h for method and pattern. Patterns use chi syntax
// ("/vouchers/{id}"). A route for an existing method and pattern replaces
// it in later snapshots.
func (r *Registry) AddRoute(method, pattern string, h http.Handler) error {
	rt := Route{Method: strings.ToUpper(method), Pattern: pattern, Handler: h}
	if err := validate(rt); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy on write so snapshots taken under RLock never alias a slice that
	// is being appended to.
	routes := make([]Route, len(r.routes), len(r.routes)+1)
	copy(routes, r.routes)
	r.routes = append(routes, rt)
	return nil
}

// Get registers a GET handler.
func (r *Registry) Get(pattern string, h http.HandlerFunc) error {
	return r.AddRoute(http.MethodGet, pattern, h)
}

// Post registers a POST handler.
func (r *Registry) Post(pattern string, h http.HandlerFunc) error {
	return r.AddRoute(http.MethodPost, pattern, h)
}

// Routes returns a copy of the registered routes in registration order.
func (r *Registry) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Route(nil), r.routes...)
}

// Len returns the number of registered routes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

// Router returns a new router serving every route registered so far.
func (r *Registry) Router() *chi.Mux {
	r.mu.RLock()
	routes := r.routes
	r.mu.RUnlock()

	mux := chi.NewRouter()
	for _, rt := range routes {
		mount(mux, rt)
	}
	return mux
}

func mount(mux chi.Router, rt Route) {
	if rt.Method == "" {
		mux.Handle(rt.Pattern, rt.Handler)
		return
	}
	mux.Method(rt.Method, rt.Pattern, rt.Handler)
}

// validate rejects routes chi would panic on when a snapshot is built.
func validate(rt Route) (err error) {
	if rt.Handler == nil {
		return &RouteError{Method: rt.Method, Pattern: rt.Pattern, Reason: "nil handler"}
	}
	if !strings.HasPrefix(rt.Pattern, "/") {
		return &RouteError{Method: rt.Method, Pattern: rt.Pattern, Reason: "pattern must begin with '/'"}
	}

	defer func() {
		if p := recover(); p != nil {
			err = &RouteError{Method: rt.Method, Pattern: rt.Pattern, Reason: fmt.Sprint(p)}
		}
	}()
	mount(chi.NewRouter(), rt)
	return nil
}
