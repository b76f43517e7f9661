package container

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider registers services into a scope builder during bootstrap.
//
// Register runs against the builder while it is still open; do not resolve
// anything there. Boot runs after the scope has been finalized, so it is safe
// to resolve any binding from it.
//
//	type LoggingServiceProvider struct{ container.BaseProvider }
//
//	func (p *LoggingServiceProvider) Register(b *container.Builder) {
//	    b.Singleton("logger", func(s *container.Scope) any {
//	        return logging.New(container.Resolve[*config.Config](s, "config"))
//	    })
//	}
//
//	func (p *LoggingServiceProvider) Boot(s *container.Scope) {
//	    logger := container.Resolve[zerolog.Logger](s, "logger")
//	    logger.Info().Msg("application booted")
//	}
type ServiceProvider interface {
	// Register binds services into the builder.
	// Do NOT resolve other bindings here — use Boot() for that.
	Register(b *Builder)

	// Boot is called once after the scope has been built.
	Boot(s *Scope)
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides a no-op Boot().
// Embed it in your provider and only override what you need.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Scope) {}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders
// against one scope builder.
type ProviderRegistry struct {
	builder    *Builder
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to a builder.
func NewProviderRegistry(b *Builder) *ProviderRegistry {
	return &ProviderRegistry{
		builder:    b,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method. Registering the
// same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	if r.registered[provider] {
		return
	}
	r.registered[provider] = true
	provider.Register(r.builder)
	r.providers = append(r.providers, provider)
}

// Boot calls Boot() on all providers against the finalized scope.
// Must be called after the builder has been built.
func (r *ProviderRegistry) Boot(s *Scope) {
	if r.booted {
		return
	}
	r.booted = true
	for _, provider := range r.providers {
		provider.Boot(s)
	}
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
