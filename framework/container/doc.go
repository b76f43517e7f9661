// Package container provides the service-scope capability the multihost
// layer composes: a Builder that accumulates registrations and a finalized,
// immutable Scope that resolves them.
//
// # Lifecycle
//
//  1. Create:   b := container.NewBuilder()
//  2. Register: b.Singleton("cache", factory), b.Instance("config", cfg), ...
//  3. Finalize: s, err := b.Build()          — or b.BuildValidated() in dev
//  4. Resolve:  v, ok := s.Get("cache")      — or container.Resolve[T](s, "cache")
//  5. Dispose:  s.Close()                    — closes materialized io.Closers
//
// # Bindings
//
//	// Transient — new value every resolution
//	b.Bind("request-id", func(s *container.Scope) any { return uuid.NewString() })
//
//	// Singleton — created once, cached
//	b.Singleton("cache", func(s *container.Scope) any {
//	    cfg := container.Resolve[*config.Config](s, "config")
//	    return cache.New(cfg)
//	})
//
//	// Pre-built value
//	b.Instance("config", cfg)
//
//	// Alias
//	b.Alias("config", "configuration")
//
// Registration is last-write-wins: re-registering a key replaces the earlier
// binding. This is load-bearing for scope bridging, where a later forwarding
// action for the same key must override an earlier one.
//
// # Resolving
//
//	raw, ok := s.Get("cache")                       // ok-form, missing ⇒ false
//	c := container.Resolve[*Cache](s, "cache")      // panics if missing
//	c, ok := container.Lookup[*Cache](s, "cache")   // ok-form, typed
//
// # Isolation
//
// Every Scope is an isolation boundary. Two scopes built from two builders
// share nothing unless an instance was explicitly copied from one into the
// other's builder before finalization — which is exactly what the hosting
// package's bridge does.
//
// # Service Providers
//
// ServiceProvider/ProviderRegistry drive root-scope bootstrap: Register()
// binds into the open builder, Boot() runs against the finalized scope.
package container
