// Package hosting composes multiple independently-configured sub-applications
// (hosts) inside one process. Each host owns an isolated service scope built
// from one shared root scope, is mounted at a unique path prefix on the
// shared router, and is torn down as part of one aggregated disposal sweep.
//
// # Composition flow
//
//	hosts := hosting.NewHostCollection()
//	_ = hosts.AddHost("admin", func(hb *hosting.HostBuilder) {
//	    hb.WithRoutePrefix("/mcp/admin").
//	        WithServices(func(b *container.Builder) {
//	            b.Singleton("store", newAdminStore)
//	        }).
//	        WithProtocol(func(pb *hosting.ProtocolBuilder) {
//	            pb.UseHandler(newAdminHandler)
//	        })
//	})
//
//	orch := &hosting.Orchestrator{Root: root, Router: router, Registry: registry, Logger: logger}
//	if err := orch.MapHosts(hosts); err != nil { ... }
//
// Per host, the orchestrator runs: BuildContainer (bridge defaults or the
// host's override, host services, protocol configuration, finalization) →
// mount through a decorator that swaps only the resolution scope → registry
// registration. After the last host the registry is sealed; no further
// registrations are accepted, ever.
//
// # Isolation and bridging
//
// A host scope sees nothing from the root scope or its siblings unless a
// BridgeBuilder action forwarded the value at build time. Forwarding copies
// the exact instance — reference identity holds across the boundary — and is
// always optional: a key absent from the root is simply absent from the
// child. Bridging only reads the root scope, never writes it.
//
// # Teardown
//
// DisposeAll closes every host scope, concurrently, collecting all failures
// into one aggregated error after every entry has had its attempt. It clears
// the registry regardless, and a second call is a no-op.
package hosting
