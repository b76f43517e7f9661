package container

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/multierr"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory is a function that builds a concrete value from the scope it is
// being resolved in.
type Factory func(s *Scope) any

// registration holds one registered factory or pre-built instance.
type registration struct {
	factory    Factory
	singleton  bool
	instance   any
	isInstance bool
}

// ── Builder ───────────────────────────────────────────────────────────────────

// Builder accumulates service registrations and finalizes them into an
// immutable, resolvable Scope.
//
// Registration is last-write-wins by abstract key: registering the same key
// twice replaces the earlier binding entirely. A Builder is single-use — once
// Build (or BuildValidated) has been called, further registration panics.
type Builder struct {
	mu      sync.Mutex
	regs    map[string]*registration
	order   []string // first-registration order of keys
	aliases map[string]string
	built   bool
}

// NewBuilder creates an empty scope builder.
func NewBuilder() *Builder {
	return &Builder{
		regs:    make(map[string]*registration),
		aliases: make(map[string]string),
	}
}

// Bind registers a transient factory — a new value on every resolution.
func (b *Builder) Bind(abstract string, factory Factory) {
	b.register(abstract, &registration{factory: factory})
}

// Singleton registers a factory whose result is cached after first resolution.
func (b *Builder) Singleton(abstract string, factory Factory) {
	b.register(abstract, &registration{factory: factory, singleton: true})
}

// Instance registers a pre-built value as a singleton.
func (b *Builder) Instance(abstract string, instance any) {
	b.register(abstract, &registration{instance: instance, isInstance: true})
}

// Alias registers an alternative name for an abstract.
func (b *Builder) Alias(abstract, alias string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	b.aliases[alias] = abstract
}

// Has returns true if the abstract has been registered on this builder.
func (b *Builder) Has(abstract string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.regs[b.canonical(abstract)]
	return ok
}

// PeekInstance returns a value registered via Instance, without building the
// scope. Factory-backed registrations are not materialized by a peek.
func (b *Builder) PeekInstance(abstract string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	reg, ok := b.regs[b.canonical(abstract)]
	if !ok || !reg.isInstance {
		return nil, false
	}
	return reg.instance, true
}

// register stores a registration, replacing any earlier one for the key.
func (b *Builder) register(abstract string, reg *registration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.built {
		panic(fmt.Sprintf("container: builder already built, cannot register [%s]", abstract))
	}
	key := b.canonical(abstract)
	if _, exists := b.regs[key]; !exists {
		b.order = append(b.order, key)
	}
	b.regs[key] = reg
}

func (b *Builder) canonical(abstract string) string {
	if target, ok := b.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// Build finalizes the builder into an immutable Scope. The builder must not
// be used for registration afterwards.
func (b *Builder) Build() (*Scope, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.built {
		return nil, fmt.Errorf("container: builder already built")
	}
	b.built = true

	s := &Scope{
		regs:      make(map[string]*registration, len(b.regs)),
		aliases:   make(map[string]string, len(b.aliases)),
		instances: make(map[string]any),
	}
	for k, v := range b.regs {
		s.regs[k] = v
	}
	for k, v := range b.aliases {
		s.aliases[k] = v
	}
	// Seed pre-built instances so they are disposable even if never resolved.
	for _, key := range b.order {
		if reg := b.regs[key]; reg.isInstance {
			s.instances[key] = reg.instance
			s.resolved = append(s.resolved, key)
		}
	}
	return s, nil
}

// BuildValidated finalizes like Build and then eagerly resolves every
// registered binding once, converting factory panics into errors. Intended
// for development environments, where misconfiguration should surface at
// build time rather than on first request.
func (b *Builder) BuildValidated() (*Scope, error) {
	keys := b.snapshotOrder()
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		if err := s.validate(key); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (b *Builder) snapshotOrder() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// ── Scope ─────────────────────────────────────────────────────────────────────

// Scope is a finalized, resolvable set of service registrations. Its binding
// table is immutable; only the singleton instance cache mutates, under lock.
//
// Scopes form an isolation boundary: nothing registered in one scope is
// visible from another unless a value was explicitly copied across at build
// time.
type Scope struct {
	mu        sync.RWMutex
	regs      map[string]*registration
	aliases   map[string]string
	instances map[string]any
	resolved  []string // keys materialized, in materialization order
	closed    bool
}

// Get resolves an abstract from the scope. A missing registration is not an
// error: it reports ok=false.
func (s *Scope) Get(abstract string) (any, bool) {
	key := s.canonical(abstract)

	s.mu.RLock()
	if inst, ok := s.instances[key]; ok {
		s.mu.RUnlock()
		return inst, true
	}
	reg, ok := s.regs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if reg.isInstance {
		return reg.instance, true
	}

	instance := reg.factory(s)

	if reg.singleton {
		s.mu.Lock()
		// Another goroutine may have won the race; keep the first instance.
		if cached, ok := s.instances[key]; ok {
			s.mu.Unlock()
			return cached, true
		}
		s.instances[key] = instance
		s.resolved = append(s.resolved, key)
		s.mu.Unlock()
	}
	return instance, true
}

// Make resolves an abstract and panics if it is not registered.
func (s *Scope) Make(abstract string) any {
	v, ok := s.Get(abstract)
	if !ok {
		panic(fmt.Sprintf("container: no binding registered for [%s]", abstract))
	}
	return v
}

// Bound returns true if an abstract has been registered in this scope.
func (s *Scope) Bound(abstract string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := abstract
	if target, ok := s.aliases[key]; ok {
		key = target
	}
	_, hasReg := s.regs[key]
	_, hasInst := s.instances[key]
	return hasReg || hasInst
}

// Keys returns every registered abstract key (for diagnostics).
func (s *Scope) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.regs))
	for k := range s.regs {
		out = append(out, k)
	}
	return out
}

// validate eagerly resolves one binding, converting a factory panic into an
// error attributed to the key.
func (s *Scope) validate(key string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("container: validating [%s]: %v", key, r)
		}
	}()
	if _, ok := s.Get(key); !ok {
		return fmt.Errorf("container: validating [%s]: not resolvable", key)
	}
	return nil
}

// Close disposes the scope: every materialized singleton implementing
// io.Closer is closed, in reverse materialization order. A failure does not
// stop the sweep; all failures are aggregated into the returned error.
// Close is idempotent — a second call is a no-op.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	order := s.resolved
	instances := s.instances
	s.resolved = nil
	s.instances = make(map[string]any)
	s.mu.Unlock()

	var errs error
	for i := len(order) - 1; i >= 0; i-- {
		closer, ok := instances[order[i]].(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("container: closing [%s]: %w", order[i], err))
		}
	}
	return errs
}

func (s *Scope) canonical(abstract string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if target, ok := s.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and type-asserts the result.
//
//	logger := container.Resolve[zerolog.Logger](scope, "logger")
func Resolve[T any](s *Scope, abstract string) T {
	instance := s.Make(abstract)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), abstract, instance))
	}
	return typed
}

// Lookup is like Resolve but reports ok=false instead of panicking, both for
// a missing registration and for a type mismatch.
func Lookup[T any](s *Scope, abstract string) (T, bool) {
	var zero T
	instance, ok := s.Get(abstract)
	if !ok {
		return zero, false
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
