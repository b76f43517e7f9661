// Package app wires the framework together: root scope bootstrap, host
// composition, the HTTP server and graceful shutdown.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-multihost/framework/config"
	"github.com/km-arc/go-multihost/framework/container"
	"github.com/km-arc/go-multihost/framework/hosting"
	"github.com/km-arc/go-multihost/framework/lifecycle"
	"github.com/km-arc/go-multihost/framework/observability"
	"github.com/km-arc/go-multihost/framework/providers"
	"github.com/km-arc/go-multihost/framework/routing"
)

// Application is the top-level kernel. It owns the root scope, the host
// collection and, after Boot, the sealed host registry.
type Application struct {
	builder   *container.Builder
	Providers *container.ProviderRegistry
	Hosts     *hosting.HostCollection

	scope        *container.Scope
	router       *routing.Router
	registry     *hosting.HostRegistry
	metrics      *observability.Metrics
	logger       zerolog.Logger
	settingsFile string

	booted      bool
	server      *http.Server
	disposeOnce sync.Once
}

// Option customizes application construction.
type Option func(*options)

type options struct {
	envFiles     []string
	settingsFile string
}

// WithEnvFiles overrides which .env files are loaded.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.envFiles = files }
}

// WithSettingsFile overlays a TOML settings file onto the configuration.
func WithSettingsFile(path string) Option {
	return func(o *options) { o.settingsFile = path }
}

// New creates the application and registers the framework core providers.
func New(opts ...Option) *Application {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	b := container.NewBuilder()
	registry := container.NewProviderRegistry(b)

	a := &Application{
		builder:      b,
		Providers:    registry,
		Hosts:        hosting.NewHostCollection(),
		logger:       zerolog.Nop(),
		settingsFile: o.settingsFile,
	}

	registry.Register(&providers.ConfigServiceProvider{
		EnvFiles: o.envFiles,
	})
	registry.Register(&providers.LoggingServiceProvider{})
	registry.Register(&providers.RoutingServiceProvider{})
	registry.Register(&providers.LifetimeServiceProvider{})

	return a
}

// Register adds a ServiceProvider to the root scope bootstrap.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// AddHost registers one host definition. Must be called before Boot.
func (a *Application) AddHost(name string, configure func(hb *hosting.HostBuilder)) error {
	return a.Hosts.AddHost(name, configure)
}

// Boot builds the root scope, boots providers, composes every host onto the
// shared router and seals the registry. Safe to call once; a second call is
// a no-op.
func (a *Application) Boot() error {
	if a.booted {
		return nil
	}

	scope, err := a.buildRootScope()
	if err != nil {
		return fmt.Errorf("app: building root scope: %w", err)
	}
	a.scope = scope
	a.Providers.Boot(scope)

	cfg := container.Resolve[*config.Config](scope, hosting.KeyConfig)
	if a.settingsFile != "" {
		if err := cfg.MergeFile(a.settingsFile); err != nil {
			return fmt.Errorf("app: applying settings file: %w", err)
		}
	}
	env := container.Resolve[*config.Environment](scope, hosting.KeyEnvironment)
	a.logger = container.Resolve[zerolog.Logger](scope, hosting.KeyLogger)
	a.router = container.Resolve[*routing.Router](scope, "router")
	a.router.BindScope(scope)
	a.registry = hosting.NewHostRegistry(a.logger)

	if cfg.Hosting.MetricsEnabled {
		a.metrics = observability.NewMetrics(cfg.App.Name)
	}

	orch := &hosting.Orchestrator{
		Root:     scope,
		Router:   a.router,
		Registry: a.registry,
		Logger:   a.logger,
		Metrics:  a.metrics,
	}
	if err := orch.MapHosts(a.Hosts); err != nil {
		// Hosts mapped before the failure hold live scopes; tear them down
		// along with the root scope so a failed Boot leaks nothing.
		if derr := a.registry.DisposeAll(); derr != nil {
			a.logger.Error().Err(derr).Msg("host disposal completed with failures")
		}
		_ = scope.Close()
		return err
	}

	if cfg.Hosting.DiscoveryEnabled {
		hosting.EnableDiscovery(a.router, a.registry, cfg.Hosting.DiscoveryPath, env, a.logger)
	}
	if a.metrics != nil {
		a.router.Get("/metrics", a.metrics.Handler().ServeHTTP)
	}

	a.booted = true
	return nil
}

// buildRootScope finalizes the root builder, eagerly validated in
// development.
func (a *Application) buildRootScope() (*container.Scope, error) {
	if v, ok := a.builder.PeekInstance(hosting.KeyEnvironment); ok {
		if env, ok := v.(*config.Environment); ok && env.IsDevelopment() {
			return a.builder.BuildValidated()
		}
	}
	return a.builder.Build()
}

// Run boots the application (if needed) and serves HTTP until a termination
// signal arrives, then shuts down gracefully: drain the server, fire the
// stopping signal, dispose every host scope.
func (a *Application) Run() error {
	if err := a.Boot(); err != nil {
		return err
	}
	cfg := a.Config()

	a.server = &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: a.router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().
			Str("addr", a.server.Addr).
			Str("env", cfg.App.Env).
			Int("hosts", a.registry.Len()).
			Msg("server listening")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.shutdown(cfg)
		return err
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		a.shutdown(cfg)
		return nil
	}
}

// shutdown drains the server within the configured timeout and then runs
// the stopping sequence. Disposal failures are logged, never re-raised into
// the exit path.
func (a *Application) shutdown(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Hosting.ShutdownTimeout)
	defer cancel()
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error().Err(err).Msg("server shutdown failed")
		}
	}
	a.Stop()
}

// Stop fires the application-stopping signal and disposes every host scope
// exactly once. Safe to call without Run (e.g. in tests).
func (a *Application) Stop() {
	if !a.booted {
		return
	}
	if lt, ok := container.Lookup[*lifecycle.Lifetime](a.scope, hosting.KeyLifetime); ok {
		lt.NotifyStopping()
	}
	a.disposeOnce.Do(func() {
		n := a.registry.Len()
		if err := a.registry.DisposeAll(); err != nil {
			a.logger.Error().Err(err).Msg("host disposal completed with failures")
		} else {
			a.logger.Info().Int("hosts", n).Msg("host scopes disposed")
		}
		if a.metrics != nil {
			a.metrics.HostsDisposed(n)
		}
		if err := a.scope.Close(); err != nil {
			a.logger.Error().Err(err).Msg("root scope disposal completed with failures")
		}
	})
}

// ── Accessors ────────────────────────────────────────────────────────────────

// Scope returns the root scope. Valid after Boot.
func (a *Application) Scope() *container.Scope { return a.scope }

// Router returns the shared router. Valid after Boot.
func (a *Application) Router() *routing.Router { return a.router }

// Registry returns the host registry. Valid after Boot.
func (a *Application) Registry() *hosting.HostRegistry { return a.registry }

// Config resolves *config.Config from the root scope.
func (a *Application) Config() *config.Config {
	return container.Resolve[*config.Config](a.scope, hosting.KeyConfig)
}

// Logger returns the process logger. Valid after Boot.
func (a *Application) Logger() zerolog.Logger { return a.logger }

// Environment returns the ambient environment descriptor.
func (a *Application) Environment() *config.Environment {
	return container.Resolve[*config.Environment](a.scope, hosting.KeyEnvironment)
}

func (a *Application) IsDevelopment() bool { return a.Environment().IsDevelopment() }
func (a *Application) IsProduction() bool  { return a.Environment().IsProduction() }
