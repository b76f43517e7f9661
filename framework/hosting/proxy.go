package hosting

import (
	"fmt"
	"net/http"

	"github.com/km-arc/go-multihost/framework/container"
	gohttp "github.com/km-arc/go-multihost/framework/http"
	"github.com/km-arc/go-multihost/framework/routing"
)

// Mounter is the router capability the mount step needs: attach a handler
// set under a prefix, list mounted route descriptors, build a request
// pipeline, and answer which scope handler construction resolves from.
// *routing.Router satisfies it with the root scope; scopedRouter decorates
// it with a host scope.
type Mounter interface {
	Mount(pattern string, h http.Handler)
	Routes() []routing.Route
	Pipeline() *routing.Pipeline
	Scope() *container.Scope
}

// scopedRouter overrides exactly one capability of the real router — the
// resolution scope — and delegates everything else. It lives only for the
// duration of one mount call and never appears in the serving path.
type scopedRouter struct {
	inner Mounter
	scope *container.Scope
}

func newScopedRouter(inner Mounter, scope *container.Scope) *scopedRouter {
	return &scopedRouter{inner: inner, scope: scope}
}

func (p *scopedRouter) Scope() *container.Scope            { return p.scope }
func (p *scopedRouter) Mount(pattern string, h http.Handler) { p.inner.Mount(pattern, h) }
func (p *scopedRouter) Routes() []routing.Route            { return p.inner.Routes() }
func (p *scopedRouter) Pipeline() *routing.Pipeline        { return p.inner.Pipeline() }

// MountHandle is passed to a host's mount-conventions callback after the
// handler set has been built, before it is attached to the router.
type MountHandle struct {
	prefix   string
	handler  http.Handler
	pipeline *routing.Pipeline
}

// Prefix returns the route prefix being mounted.
func (mh *MountHandle) Prefix() string { return mh.prefix }

// Use appends middleware around the host's entire handler set.
func (mh *MountHandle) Use(mw ...func(http.Handler) http.Handler) *MountHandle {
	mh.pipeline.Use(mw...)
	return mh
}

// RequireAuthorization wraps the handler set with a simple allow/deny
// policy; denied requests get 403 without reaching the host.
func (mh *MountHandle) RequireAuthorization(allow func(r *http.Request) bool) *MountHandle {
	mh.pipeline.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(r) {
				gohttp.NewResponse(w).Forbidden()
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	return mh
}

func (mh *MountHandle) build() http.Handler {
	return mh.pipeline.Then(mh.handler)
}

// mountHost resolves the host's handler set from the mounter's scope (the
// host scope, via the decorator), applies mount conventions, and attaches
// the result to the shared router.
func mountHost(m Mounter, def *HostDefinition) error {
	scope := m.Scope()

	v, ok := scope.Get(KeyProtocolHandler)
	if !ok {
		return fmt.Errorf("hosting: mounting host %q at %s: protocol configuration registered no handler", def.Name, def.RoutePrefix)
	}
	handler, ok := v.(http.Handler)
	if !ok {
		return fmt.Errorf("hosting: mounting host %q at %s: protocol handler is %T, not http.Handler", def.Name, def.RoutePrefix, v)
	}

	mh := &MountHandle{
		prefix:   def.RoutePrefix,
		handler:  handler,
		pipeline: m.Pipeline(),
	}
	if def.ConfigureMount != nil {
		def.ConfigureMount(mh)
	}

	m.Mount(def.RoutePrefix, mh.build())
	return nil
}
