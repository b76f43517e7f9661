package hosting

import (
	"fmt"
	"strings"

	"github.com/km-arc/go-multihost/framework/container"
)

// HostDefinition is the frozen configuration of one host. Created by
// HostBuilder.build and never mutated afterwards.
type HostDefinition struct {
	// Name uniquely identifies the host, case-insensitively.
	Name string
	// RoutePrefix is the normalized path prefix the host mounts at.
	RoutePrefix string

	// ConfigureServices registers host-local services. Optional.
	ConfigureServices func(b *container.Builder)
	// ConfigureProtocol configures the opaque protocol layer. Required.
	ConfigureProtocol func(pb *ProtocolBuilder)
	// ConfigureMount customizes the mount after the handler is built
	// (authorization middleware and the like). Optional.
	ConfigureMount func(mh *MountHandle)
	// ConfigureBridge overrides the default bridging set. Optional; when
	// absent the standard defaults are applied.
	ConfigureBridge func(bb *BridgeBuilder)
}

// HostBuilder accumulates a host's configuration through chained setters.
// The first invalid call is remembered and surfaced by build, attributed to
// the host name.
type HostBuilder struct {
	prefix    string
	prefixSet bool
	services  func(b *container.Builder)
	protocol  func(pb *ProtocolBuilder)
	mount     func(mh *MountHandle)
	bridge    func(bb *BridgeBuilder)
	err       error
}

// NewHostBuilder creates an empty host builder.
func NewHostBuilder() *HostBuilder {
	return &HostBuilder{}
}

// WithRoutePrefix sets and normalizes the path prefix the host mounts at.
func (hb *HostBuilder) WithRoutePrefix(prefix string) *HostBuilder {
	normalized, err := NormalizePrefix(prefix)
	if err != nil {
		hb.fail(err)
		return hb
	}
	hb.prefix = normalized
	hb.prefixSet = true
	return hb
}

// WithServices sets the host-local service registration callback.
func (hb *HostBuilder) WithServices(fn func(b *container.Builder)) *HostBuilder {
	if fn == nil {
		hb.fail(fmt.Errorf("services callback must not be nil"))
		return hb
	}
	hb.services = fn
	return hb
}

// WithProtocol sets the protocol configuration callback.
func (hb *HostBuilder) WithProtocol(fn func(pb *ProtocolBuilder)) *HostBuilder {
	if fn == nil {
		hb.fail(fmt.Errorf("protocol callback must not be nil"))
		return hb
	}
	hb.protocol = fn
	return hb
}

// WithMountConventions sets the post-mount customization callback.
func (hb *HostBuilder) WithMountConventions(fn func(mh *MountHandle)) *HostBuilder {
	if fn == nil {
		hb.fail(fmt.Errorf("mount conventions callback must not be nil"))
		return hb
	}
	hb.mount = fn
	return hb
}

// WithBridge overrides the default bridging set.
func (hb *HostBuilder) WithBridge(fn func(bb *BridgeBuilder)) *HostBuilder {
	if fn == nil {
		hb.fail(fmt.Errorf("bridge callback must not be nil"))
		return hb
	}
	hb.bridge = fn
	return hb
}

func (hb *HostBuilder) fail(err error) {
	if hb.err == nil {
		hb.err = err
	}
}

// build freezes the accumulated configuration into a HostDefinition, or
// fails with an error naming the host and the missing requirement.
func (hb *HostBuilder) build(name string) (*HostDefinition, error) {
	if hb.err != nil {
		return nil, fmt.Errorf("host %q: %w", name, hb.err)
	}
	if !hb.prefixSet {
		return nil, fmt.Errorf("host %q: no route prefix configured", name)
	}
	if hb.protocol == nil {
		return nil, fmt.Errorf("host %q: no protocol configuration", name)
	}
	return &HostDefinition{
		Name:              name,
		RoutePrefix:       hb.prefix,
		ConfigureServices: hb.services,
		ConfigureProtocol: hb.protocol,
		ConfigureMount:    hb.mount,
		ConfigureBridge:   hb.bridge,
	}, nil
}

// NormalizePrefix validates and canonicalizes a route prefix: it must start
// with "/", and trailing slashes are stripped unless the prefix is exactly
// the root "/". Two prefixes differing only by trailing slash normalize to
// the same string.
func NormalizePrefix(prefix string) (string, error) {
	if strings.TrimSpace(prefix) == "" {
		return "", fmt.Errorf("route prefix must not be blank")
	}
	if !strings.HasPrefix(prefix, "/") {
		return "", fmt.Errorf("route prefix %q must start with '/'", prefix)
	}
	trimmed := strings.TrimRight(prefix, "/")
	if trimmed == "" {
		return "/", nil
	}
	return trimmed, nil
}
