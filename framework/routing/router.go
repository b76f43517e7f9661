package routing

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/km-arc/go-multihost/framework/container"
)

// Router wraps chi.Router and carries the root resolution scope that handler
// construction defaults to. Host mounting goes through a decorator that
// swaps the scope without touching anything else here.
type Router struct {
	mux chi.Router

	mu    sync.RWMutex
	scope *container.Scope
}

// New creates a Router with sane defaults (Recoverer, RealIP).
func New() *Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	return &Router{mux: r}
}

// ── Resolution scope ─────────────────────────────────────────────────────────

// BindScope attaches the root resolution scope. Called once at boot, before
// any host is mounted.
func (r *Router) BindScope(s *container.Scope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scope = s
}

// Scope returns the resolution scope for handlers mounted directly on this
// router. May be nil before boot.
func (r *Router) Scope() *container.Scope {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scope
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Patch(pattern string, h http.HandlerFunc)  { r.mux.Patch(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// ── Mounting ─────────────────────────────────────────────────────────────────

// Mount attaches a complete handler set under a path prefix. The mounted
// handler sees request paths stripped of the prefix.
func (r *Router) Mount(pattern string, h http.Handler) {
	r.mux.Mount(pattern, h)
}

// Route is a descriptor of one mounted route.
type Route struct {
	Method  string
	Pattern string
}

// Routes lists the currently mounted route descriptors.
func (r *Router) Routes() []Route {
	var out []Route
	_ = chi.Walk(r.mux, func(method, pattern string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, Route{Method: method, Pattern: pattern})
		return nil
	})
	return out
}

// Pipeline returns a fresh request-pipeline builder.
func (r *Router) Pipeline() *Pipeline {
	return &Pipeline{}
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing this router's mount point.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx, scope: r.Scope()})
	})
}

// Prefix creates a sub-router under a URL prefix.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx, scope: r.Scope()})
	})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL param from the request.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.ListenAndServe.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}
