package providers_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-multihost/framework/config"
	"github.com/km-arc/go-multihost/framework/container"
	"github.com/km-arc/go-multihost/framework/hosting"
	"github.com/km-arc/go-multihost/framework/lifecycle"
	"github.com/km-arc/go-multihost/framework/providers"
	"github.com/km-arc/go-multihost/framework/routing"
)

func rootScope(t *testing.T) *container.Scope {
	t.Helper()
	b := container.NewBuilder()
	reg := container.NewProviderRegistry(b)
	reg.Register(&providers.ConfigServiceProvider{EnvFiles: []string{"testdata/does-not-exist.env"}})
	reg.Register(&providers.LoggingServiceProvider{})
	reg.Register(&providers.RoutingServiceProvider{})
	reg.Register(&providers.LifetimeServiceProvider{})
	scope, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	reg.Boot(scope)
	return scope
}

func TestCoreProviders_BindExpectedAbstracts(t *testing.T) {
	t.Setenv("APP_ENV", config.EnvTesting)
	scope := rootScope(t)

	cfg := container.Resolve[*config.Config](scope, hosting.KeyConfig)
	if cfg.App.Env != config.EnvTesting {
		t.Errorf("config env = %q", cfg.App.Env)
	}
	env := container.Resolve[*config.Environment](scope, hosting.KeyEnvironment)
	if !env.IsTesting() {
		t.Error("environment descriptor should reflect APP_ENV")
	}
	_ = container.Resolve[zerolog.Logger](scope, hosting.KeyLogger)
	_ = container.Resolve[*routing.Router](scope, "router")
	_ = container.Resolve[*lifecycle.Lifetime](scope, hosting.KeyLifetime)
}

func TestCoreProviders_ConfigAlias(t *testing.T) {
	scope := rootScope(t)
	direct := container.Resolve[*config.Config](scope, hosting.KeyConfig)
	aliased := container.Resolve[*config.Config](scope, "configuration")
	if direct != aliased {
		t.Error("the configuration alias should resolve the same instance")
	}
}

func TestCoreProviders_DefaultBridgeForwardsThem(t *testing.T) {
	scope := rootScope(t)

	bb := hosting.NewBridgeBuilder()
	bb.ApplyDefaults()
	child := container.NewBuilder()
	bb.Apply(child, scope)
	childScope, err := child.Build()
	if err != nil {
		t.Fatalf("child Build() failed: %v", err)
	}

	if _, ok := childScope.Get(hosting.KeyLogger); !ok {
		t.Errorf("default bridging should forward %q", hosting.KeyLogger)
	}
	// Pointer-shaped services must cross the boundary as the same instance.
	for _, key := range []string{hosting.KeyConfig, hosting.KeyEnvironment, hosting.KeyLifetime} {
		got, ok := childScope.Get(key)
		if !ok {
			t.Errorf("default bridging should forward %q", key)
			continue
		}
		if got != scope.Make(key) {
			t.Errorf("forwarded %q is not the root instance", key)
		}
	}
}
