package hosting

import (
	"fmt"
	"strings"
	"sync"
)

// HostCollection accumulates host definitions during configuration and
// enforces name and route-prefix uniqueness before any container is built.
type HostCollection struct {
	mu       sync.Mutex
	names    map[string]struct{} // folded name → taken
	prefixes map[string]struct{} // folded normalized prefix → taken
	defs     []*HostDefinition
}

// NewHostCollection creates an empty collection.
func NewHostCollection() *HostCollection {
	return &HostCollection{
		names:    make(map[string]struct{}),
		prefixes: make(map[string]struct{}),
	}
}

// AddHost registers one host definition. The name is reserved up front; if
// the builder callback, validation, or the prefix-uniqueness check fails,
// the reservation is rolled back so the same name can be retried with a
// corrected configuration.
func (hc *HostCollection) AddHost(name string, configure func(hb *HostBuilder)) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("hosting: host name must not be blank")
	}
	if configure == nil {
		return fmt.Errorf("hosting: host %q: configure callback must not be nil", name)
	}

	folded := strings.ToLower(name)

	hc.mu.Lock()
	if _, taken := hc.names[folded]; taken {
		hc.mu.Unlock()
		return fmt.Errorf("hosting: host %q already added", name)
	}
	hc.names[folded] = struct{}{}
	hc.mu.Unlock()

	def, err := hc.buildDefinition(name, configure)

	hc.mu.Lock()
	defer hc.mu.Unlock()
	if err != nil {
		delete(hc.names, folded)
		return err
	}

	foldedPrefix := strings.ToLower(def.RoutePrefix)
	if _, taken := hc.prefixes[foldedPrefix]; taken {
		delete(hc.names, folded)
		return fmt.Errorf("hosting: host %q: route prefix %q already in use", name, def.RoutePrefix)
	}
	hc.prefixes[foldedPrefix] = struct{}{}
	hc.defs = append(hc.defs, def)
	return nil
}

// buildDefinition runs the user callback and the validator, converting a
// panicking callback into an error so the name reservation can be rolled
// back cleanly.
func (hc *HostCollection) buildDefinition(name string, configure func(hb *HostBuilder)) (def *HostDefinition, err error) {
	defer func() {
		if r := recover(); r != nil {
			def, err = nil, fmt.Errorf("hosting: host %q: configure panicked: %v", name, r)
		}
	}()
	hb := NewHostBuilder()
	configure(hb)
	return hb.build(name)
}

// Definitions returns the accepted definitions in insertion order.
func (hc *HostCollection) Definitions() []*HostDefinition {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	out := make([]*HostDefinition, len(hc.defs))
	copy(out, hc.defs)
	return out
}

// Len returns the number of accepted definitions.
func (hc *HostCollection) Len() int {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return len(hc.defs)
}
