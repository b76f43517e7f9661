package hosting

import (
	"fmt"

	"github.com/km-arc/go-multihost/framework/container"
)

// Well-known abstract keys shared between the root scope and host scopes.
const (
	// KeyLogger is the process logger (zerolog.Logger).
	KeyLogger = "logger"
	// KeyConfig is the configuration snapshot (*config.Config).
	KeyConfig = "config"
	// KeyEnvironment is the ambient environment descriptor (*config.Environment).
	KeyEnvironment = "env"
	// KeyLifetime is the application-lifetime signal (*lifecycle.Lifetime).
	KeyLifetime = "lifecycle"
	// KeyRequestContext is an optional ambient per-request context accessor.
	KeyRequestContext = "http.context"
	// KeyProtocolHandler is where a host's protocol layer registers its
	// handler construction.
	KeyProtocolHandler = "protocol.handler"
)

// BridgeAction copies one value across the isolation boundary: out of the
// root scope, into a not-yet-built child scope. Actions only ever read from
// the root scope.
type BridgeAction func(child *container.Builder, root *container.Scope)

// BridgeBuilder declares, without performing, the forwarding of root-scope
// services into a host scope. Actions run in insertion order when Apply is
// called; a later action for the same key overrides an earlier one, because
// builder registration is last-write-wins.
type BridgeBuilder struct {
	actions         []BridgeAction
	defaultsApplied bool
}

// NewBridgeBuilder creates an empty bridge.
func NewBridgeBuilder() *BridgeBuilder {
	return &BridgeBuilder{}
}

// ForwardSingleton records the forwarding of one root-scope value, by key,
// as the exact same instance in the child scope. A key absent from the root
// scope is not an error — it is simply absent from the child as well.
func (b *BridgeBuilder) ForwardSingleton(abstract string) *BridgeBuilder {
	b.actions = append(b.actions, func(child *container.Builder, root *container.Scope) {
		if v, ok := root.Get(abstract); ok {
			child.Instance(abstract, v)
		}
	})
	return b
}

// ForwardFunc records the forwarding of a computed value: factory runs
// against the root scope at apply time and its non-nil result is registered
// as a singleton in the child scope. A nil factory is a programming error.
func (b *BridgeBuilder) ForwardFunc(abstract string, factory func(root *container.Scope) any) *BridgeBuilder {
	if factory == nil {
		panic(fmt.Sprintf("hosting: ForwardFunc(%q) requires a non-nil factory", abstract))
	}
	b.actions = append(b.actions, func(child *container.Builder, root *container.Scope) {
		if v := factory(root); v != nil {
			child.Instance(abstract, v)
		}
	})
	return b
}

// ApplyDefaults appends the standard cross-cutting forwarding set: logger,
// configuration snapshot, environment descriptor, application lifetime and
// the ambient request-context accessor — each forwarded only if present in
// the root scope. Idempotent: calling it again is a no-op.
func (b *BridgeBuilder) ApplyDefaults() *BridgeBuilder {
	if b.defaultsApplied {
		return b
	}
	b.defaultsApplied = true
	b.actions = append(b.actions, func(child *container.Builder, root *container.Scope) {
		for _, key := range []string{KeyLogger, KeyConfig, KeyEnvironment, KeyLifetime, KeyRequestContext} {
			if v, ok := root.Get(key); ok {
				child.Instance(key, v)
			}
		}
	})
	return b
}

// HasActions reports whether any forwarding has been recorded.
func (b *BridgeBuilder) HasActions() bool {
	return len(b.actions) > 0
}

// Apply executes all recorded actions in insertion order. It must run at
// most once per child builder; the container factory is the single call
// site.
func (b *BridgeBuilder) Apply(child *container.Builder, root *container.Scope) {
	for _, action := range b.actions {
		action(child, root)
	}
}
