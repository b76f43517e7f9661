package routing_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/km-arc/go-multihost/framework/container"
	"github.com/km-arc/go-multihost/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func do(t *testing.T, r *routing.Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func echo(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

// ── Verbs ────────────────────────────────────────────────────────────────────

func TestRouter_Verbs(t *testing.T) {
	r := routing.New()
	r.Get("/x", echo("get"))
	r.Post("/x", echo("post"))
	r.Put("/x", echo("put"))
	r.Patch("/x", echo("patch"))
	r.Delete("/x", echo("delete"))

	for _, method := range []string{"GET", "POST", "PUT", "PATCH", "DELETE"} {
		rr := do(t, r, method, "/x")
		if rr.Code != http.StatusOK {
			t.Errorf("%s /x: got %d", method, rr.Code)
		}
		if want := strings.ToLower(method); rr.Body.String() != want {
			t.Errorf("%s /x: body %q, want %q", method, rr.Body.String(), want)
		}
	}
}

func TestRouter_Param(t *testing.T) {
	r := routing.New()
	r.Get("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(routing.Param(req, "id")))
	})

	rr := do(t, r, "GET", "/users/42")
	if rr.Body.String() != "42" {
		t.Errorf("param body %q, want %q", rr.Body.String(), "42")
	}
}

func TestRouter_Prefix(t *testing.T) {
	r := routing.New()
	r.Prefix("/api", func(api *routing.Router) {
		api.Get("/ping", echo("pong"))
	})

	if rr := do(t, r, "GET", "/api/ping"); rr.Body.String() != "pong" {
		t.Errorf("GET /api/ping: body %q", rr.Body.String())
	}
	if rr := do(t, r, "GET", "/ping"); rr.Code != http.StatusNotFound {
		t.Errorf("prefixed route must not leak to the root: got %d", rr.Code)
	}
}

// ── Mounting ─────────────────────────────────────────────────────────────────

func TestRouter_MountStripsPrefix(t *testing.T) {
	inner := routing.New()
	inner.Get("/ping", echo("inner"))

	r := routing.New()
	r.Mount("/mounted", inner)

	if rr := do(t, r, "GET", "/mounted/ping"); rr.Code != http.StatusOK || rr.Body.String() != "inner" {
		t.Errorf("GET /mounted/ping: got %d %q", rr.Code, rr.Body.String())
	}
}

func TestRouter_RoutesListsMounts(t *testing.T) {
	inner := routing.New()
	inner.Get("/ping", echo("inner"))

	r := routing.New()
	r.Get("/health", echo("ok"))
	r.Mount("/mounted", inner)

	var sawHealth, sawMounted bool
	for _, route := range r.Routes() {
		if route.Pattern == "/health" {
			sawHealth = true
		}
		if strings.HasPrefix(route.Pattern, "/mounted") {
			sawMounted = true
		}
	}
	if !sawHealth {
		t.Error("Routes() should list direct routes")
	}
	if !sawMounted {
		t.Error("Routes() should list mounted prefixes")
	}
}

// ── Middleware & pipeline ────────────────────────────────────────────────────

func TestRouter_Middleware(t *testing.T) {
	r := routing.New()
	r.Middleware(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Tag", "mw")
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/x", echo("ok"))

	rr := do(t, r, "GET", "/x")
	if rr.Header().Get("X-Tag") != "mw" {
		t.Error("router middleware should run on every request")
	}
}

func TestPipeline_ThenOrdering(t *testing.T) {
	tag := func(s string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(s))
				next.ServeHTTP(w, r)
			})
		}
	}

	p := routing.New().Pipeline()
	p.Use(tag("a")).Use(tag("b"))
	if p.Len() != 2 {
		t.Fatalf("pipeline length %d, want 2", p.Len())
	}

	h := p.Then(http.HandlerFunc(echo("h")))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Body.String() != "abh" {
		t.Errorf("pipeline order %q, want %q", rr.Body.String(), "abh")
	}
}

func TestPipeline_EmptyIsIdentity(t *testing.T) {
	inner := http.HandlerFunc(echo("h"))
	p := routing.New().Pipeline()
	if got := p.Then(inner); got == nil {
		t.Fatal("Then must never return nil")
	}
	rr := httptest.NewRecorder()
	p.Then(inner).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Body.String() != "h" {
		t.Errorf("empty pipeline should pass through: %q", rr.Body.String())
	}
}

func TestRouter_FreshPipelinePerCall(t *testing.T) {
	r := routing.New()
	r.Pipeline().Use(func(next http.Handler) http.Handler { return next })
	if got := r.Pipeline().Len(); got != 0 {
		t.Errorf("each Pipeline() call should start empty, got %d", got)
	}
}

// ── Resolution scope ─────────────────────────────────────────────────────────

func TestRouter_BindScope(t *testing.T) {
	b := container.NewBuilder()
	b.Instance("name", "multihost")
	scope, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	r := routing.New()
	if r.Scope() != nil {
		t.Error("a fresh router carries no scope")
	}
	r.BindScope(scope)
	if r.Scope() != scope {
		t.Error("Scope() should return the bound scope")
	}
}

func TestRouter_PrefixPropagatesScope(t *testing.T) {
	b := container.NewBuilder()
	scope, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	r := routing.New()
	r.BindScope(scope)

	var inherited *container.Scope
	r.Prefix("/api", func(api *routing.Router) {
		inherited = api.Scope()
		api.Get("/ping", echo("pong"))
	})
	if inherited != scope {
		t.Error("sub-routers should inherit the parent scope")
	}
}

// ── Recovery ─────────────────────────────────────────────────────────────────

func TestRouter_RecoversFromHandlerPanic(t *testing.T) {
	r := routing.New()
	r.Get("/boom", func(w http.ResponseWriter, req *http.Request) {
		panic("handler blew up")
	})

	rr := do(t, r, "GET", "/boom")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("panicking handler should yield 500, got %d", rr.Code)
	}
}
