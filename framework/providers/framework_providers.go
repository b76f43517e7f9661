// Package providers holds the framework's core service providers, registered
// by the kernel in a fixed order before the root scope is built.
package providers

import (
	"github.com/rs/zerolog"

	"github.com/km-arc/go-multihost/framework/config"
	"github.com/km-arc/go-multihost/framework/container"
	"github.com/km-arc/go-multihost/framework/hosting"
	"github.com/km-arc/go-multihost/framework/lifecycle"
	"github.com/km-arc/go-multihost/framework/logging"
	"github.com/km-arc/go-multihost/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the root scope. Settings-file overlays are the kernel's job:
// it merges them during Boot, where a bad file comes back as an error.
//
// Bound abstracts:
//   - "config" → *config.Config
//   - "env"    → *config.Environment
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(b *container.Builder) {
	cfg := config.Load(p.EnvFiles...)
	b.Instance(hosting.KeyConfig, cfg)
	b.Instance(hosting.KeyEnvironment, cfg.Environment())
	b.Alias(hosting.KeyConfig, "configuration")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the process logger.
//
// Bound abstracts:
//   - "logger" → zerolog.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(b *container.Builder) {
	b.Singleton(hosting.KeyLogger, func(s *container.Scope) any {
		return logging.New(container.Resolve[*config.Config](s, hosting.KeyConfig))
	})
}

func (p *LoggingServiceProvider) Boot(s *container.Scope) {
	logger := container.Resolve[zerolog.Logger](s, hosting.KeyLogger)
	env := container.Resolve[*config.Environment](s, hosting.KeyEnvironment)
	logger.Debug().Str("env", env.Name).Msg("logging configured")
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the shared HTTP router.
//
// Bound abstracts:
//   - "router" → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(b *container.Builder) {
	b.Singleton("router", func(s *container.Scope) any {
		return routing.New()
	})
}

// ── LifetimeServiceProvider ───────────────────────────────────────────────────

// LifetimeServiceProvider registers the application-lifetime signal that the
// standard bridge set forwards into every host scope.
//
// Bound abstracts:
//   - "lifecycle" → *lifecycle.Lifetime
type LifetimeServiceProvider struct {
	container.BaseProvider
}

func (p *LifetimeServiceProvider) Register(b *container.Builder) {
	b.Instance(hosting.KeyLifetime, lifecycle.New())
}
