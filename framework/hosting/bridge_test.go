package hosting_test

import (
	"testing"

	"github.com/km-arc/go-multihost/framework/container"
	"github.com/km-arc/go-multihost/framework/hosting"
)

// ── helpers ──────────────────────────────────────────────────────────────────

type widget struct {
	name string
}

func buildScope(t *testing.T, configure func(b *container.Builder)) *container.Scope {
	t.Helper()
	b := container.NewBuilder()
	if configure != nil {
		configure(b)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return s
}

// ── ForwardSingleton ─────────────────────────────────────────────────────────

func TestBridge_ForwardSingleton_ExactInstance(t *testing.T) {
	shared := &widget{name: "shared"}
	root := buildScope(t, func(b *container.Builder) {
		b.Instance("widget", shared)
	})

	bb := hosting.NewBridgeBuilder()
	bb.ForwardSingleton("widget")

	child := container.NewBuilder()
	bb.Apply(child, root)
	childScope, err := child.Build()
	if err != nil {
		t.Fatalf("child Build() failed: %v", err)
	}

	got, ok := childScope.Get("widget")
	if !ok {
		t.Fatal("forwarded widget should resolve from the child scope")
	}
	if got != shared {
		t.Error("forwarding must carry the identical instance, not a copy")
	}
}

func TestBridge_ForwardSingleton_AbsentIsNotAnError(t *testing.T) {
	root := buildScope(t, nil)

	bb := hosting.NewBridgeBuilder()
	bb.ForwardSingleton("missing")

	child := container.NewBuilder()
	bb.Apply(child, root)
	childScope, err := child.Build()
	if err != nil {
		t.Fatalf("child Build() failed: %v", err)
	}

	if _, ok := childScope.Get("missing"); ok {
		t.Error("a key absent from the root should stay absent from the child")
	}
}

func TestBridge_NeverWritesRootScope(t *testing.T) {
	root := buildScope(t, func(b *container.Builder) {
		b.Instance("widget", &widget{name: "root"})
	})
	before := len(root.Keys())

	bb := hosting.NewBridgeBuilder()
	bb.ForwardSingleton("widget").ApplyDefaults()
	bb.Apply(container.NewBuilder(), root)

	if got := len(root.Keys()); got != before {
		t.Errorf("bridging should only read the root scope: %d keys, want %d", got, before)
	}
}

// ── ForwardFunc ──────────────────────────────────────────────────────────────

func TestBridge_ForwardFunc_ComputedValue(t *testing.T) {
	root := buildScope(t, func(b *container.Builder) {
		b.Instance("name", "multihost")
	})

	bb := hosting.NewBridgeBuilder()
	bb.ForwardFunc("derived", func(root *container.Scope) any {
		return &widget{name: container.Resolve[string](root, "name")}
	})

	child := container.NewBuilder()
	bb.Apply(child, root)
	childScope, err := child.Build()
	if err != nil {
		t.Fatalf("child Build() failed: %v", err)
	}

	w, ok := container.Lookup[*widget](childScope, "derived")
	if !ok || w.name != "multihost" {
		t.Errorf("ForwardFunc value missing or wrong: %v, %v", w, ok)
	}
}

func TestBridge_ForwardFunc_NilResultSkipsRegistration(t *testing.T) {
	root := buildScope(t, nil)

	bb := hosting.NewBridgeBuilder()
	bb.ForwardFunc("derived", func(root *container.Scope) any { return nil })

	child := container.NewBuilder()
	bb.Apply(child, root)

	if child.Has("derived") {
		t.Error("a nil factory result should not register anything")
	}
}

func TestBridge_ForwardFunc_NilFactoryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("ForwardFunc(nil) should panic")
		}
	}()
	hosting.NewBridgeBuilder().ForwardFunc("x", nil)
}

// ── Defaults ─────────────────────────────────────────────────────────────────

func TestBridge_DefaultsForwardPresentKeys(t *testing.T) {
	logger := &widget{name: "logger"}
	root := buildScope(t, func(b *container.Builder) {
		b.Instance(hosting.KeyLogger, logger)
		// No config, env, lifetime, or request-context in this root.
	})

	bb := hosting.NewBridgeBuilder()
	bb.ApplyDefaults()

	child := container.NewBuilder()
	bb.Apply(child, root)

	if v, ok := child.PeekInstance(hosting.KeyLogger); !ok || v != logger {
		t.Error("defaults should forward the present logger instance")
	}
	if child.Has(hosting.KeyConfig) {
		t.Error("defaults must not invent registrations for absent keys")
	}
}

func TestBridge_DefaultsIdempotent(t *testing.T) {
	root := buildScope(t, func(b *container.Builder) {
		b.Instance(hosting.KeyLogger, &widget{name: "logger"})
	})

	once := hosting.NewBridgeBuilder()
	once.ApplyDefaults()
	thrice := hosting.NewBridgeBuilder()
	thrice.ApplyDefaults().ApplyDefaults().ApplyDefaults()

	childOnce := container.NewBuilder()
	once.Apply(childOnce, root)
	childThrice := container.NewBuilder()
	thrice.Apply(childThrice, root)

	scopeOnce, err := childOnce.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	scopeThrice, err := childThrice.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if len(scopeOnce.Keys()) != len(scopeThrice.Keys()) {
		t.Errorf("repeated ApplyDefaults changed registrations: %d vs %d",
			len(scopeOnce.Keys()), len(scopeThrice.Keys()))
	}
}

func TestBridge_HasActions(t *testing.T) {
	bb := hosting.NewBridgeBuilder()
	if bb.HasActions() {
		t.Error("a fresh bridge has no actions")
	}
	bb.ForwardSingleton("x")
	if !bb.HasActions() {
		t.Error("ForwardSingleton should record an action")
	}
}

// ── Ordering ─────────────────────────────────────────────────────────────────

func TestBridge_LaterForwardingWins(t *testing.T) {
	early := &widget{name: "early"}
	late := &widget{name: "late"}
	root := buildScope(t, func(b *container.Builder) {
		b.Instance("widget", early)
	})

	bb := hosting.NewBridgeBuilder()
	bb.ForwardSingleton("widget")
	bb.ForwardFunc("widget", func(root *container.Scope) any { return late })

	child := container.NewBuilder()
	bb.Apply(child, root)
	childScope, err := child.Build()
	if err != nil {
		t.Fatalf("child Build() failed: %v", err)
	}

	if got := childScope.Make("widget"); got != late {
		t.Error("the last forwarding action for a key must win")
	}
}
