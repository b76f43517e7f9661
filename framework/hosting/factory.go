package hosting

import (
	"fmt"

	"github.com/km-arc/go-multihost/framework/config"
	"github.com/km-arc/go-multihost/framework/container"
)

// BuildContainer assembles one host's isolated scope from its definition and
// the shared root scope:
//
//  1. resolve the bridging policy (the definition's override, or defaults),
//  2. apply it into a fresh child builder,
//  3. apply host-local service registrations,
//  4. run the protocol configuration against a builder-bound ProtocolBuilder,
//  5. finalize — eagerly validated when the bridged environment descriptor
//     says development (absent descriptor means not development).
//
// Any failure in those steps, including a panicking callback, comes back as
// one wrapped error naming the host and its route prefix; no partial scope
// is ever returned.
func BuildContainer(def *HostDefinition, root *container.Scope) (scope *container.Scope, err error) {
	defer func() {
		if r := recover(); r != nil {
			scope, err = nil, wrapBuildErr(def, fmt.Errorf("%v", r))
		}
	}()

	bridge := NewBridgeBuilder()
	if def.ConfigureBridge != nil {
		def.ConfigureBridge(bridge)
	} else {
		bridge.ApplyDefaults()
	}

	child := container.NewBuilder()
	bridge.Apply(child, root)

	if def.ConfigureServices != nil {
		def.ConfigureServices(child)
	}

	def.ConfigureProtocol(newProtocolBuilder(child))

	if isDevelopment(child) {
		scope, err = child.BuildValidated()
	} else {
		scope, err = child.Build()
	}
	if err != nil {
		return nil, wrapBuildErr(def, err)
	}
	return scope, nil
}

// isDevelopment inspects the bridged environment descriptor on the child
// builder. No descriptor means production semantics: skip eager validation.
func isDevelopment(child *container.Builder) bool {
	v, ok := child.PeekInstance(KeyEnvironment)
	if !ok {
		return false
	}
	env, ok := v.(*config.Environment)
	return ok && env.IsDevelopment()
}

func wrapBuildErr(def *HostDefinition, cause error) error {
	return fmt.Errorf("hosting: building host %q at %s: %w", def.Name, def.RoutePrefix, cause)
}
