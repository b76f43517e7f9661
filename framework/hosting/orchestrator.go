package hosting

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/km-arc/go-multihost/framework/container"
	"github.com/km-arc/go-multihost/framework/observability"
)

// Orchestrator drives host composition: for each configured definition, in
// order, it builds the host's isolated scope, mounts its handler set on the
// shared router through a scope-swapping decorator, and records it in the
// registry. After the last host it seals the registry.
type Orchestrator struct {
	Root     *container.Scope
	Router   Mounter
	Registry *HostRegistry
	Logger   zerolog.Logger
	Metrics  *observability.Metrics // optional
}

// MapHosts composes every host in the collection. The first failure aborts
// the remaining hosts: a misconfigured host must not silently vanish from
// the router, so a half-wired process never reaches ready.
func (o *Orchestrator) MapHosts(hc *HostCollection) error {
	for _, def := range hc.Definitions() {
		if err := o.mapHost(def); err != nil {
			if o.Metrics != nil {
				o.Metrics.HostBuildFailed()
			}
			return err
		}
	}
	o.Registry.Seal()
	o.Logger.Info().Int("hosts", o.Registry.Len()).Msg("host registry sealed")
	return nil
}

func (o *Orchestrator) mapHost(def *HostDefinition) error {
	o.Logger.Info().
		Str("host", def.Name).
		Str("prefix", def.RoutePrefix).
		Msg("building host")

	scope, err := BuildContainer(def, o.Root)
	if err != nil {
		return err
	}

	proxy := newScopedRouter(o.Router, scope)
	if err := mountHost(proxy, def); err != nil {
		// The scope was built but never registered; close it rather than
		// leak it.
		_ = scope.Close()
		return err
	}

	info := &HostRuntimeInfo{
		ID:          uuid.New(),
		Name:        def.Name,
		RoutePrefix: def.RoutePrefix,
		Scope:       scope,
		CreatedAt:   time.Now(),
	}
	if err := o.Registry.Register(info); err != nil {
		_ = scope.Close()
		return err
	}

	if o.Metrics != nil {
		o.Metrics.HostMounted()
	}
	o.Logger.Info().
		Str("host", def.Name).
		Str("id", info.ID.String()).
		Str("prefix", def.RoutePrefix).
		Msg("host mounted")
	return nil
}
