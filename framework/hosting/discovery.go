package hosting

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-multihost/framework/config"
	gohttp "github.com/km-arc/go-multihost/framework/http"
)

// discoveryDocument is the wire shape of the host listing.
type discoveryDocument struct {
	Hosts []discoveryEntry `json:"hosts"`
}

type discoveryEntry struct {
	Name        string `json:"name"`
	RoutePrefix string `json:"routePrefix"`
}

// DiscoveryHandler returns a read-only GET handler listing every registry
// entry, in insertion order. It is a thin view over Snapshot and holds no
// state of its own.
func DiscoveryHandler(registry *HostRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := gohttp.NewResponse(w)
		if r.Method != http.MethodGet {
			res.Error(http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		doc := discoveryDocument{Hosts: []discoveryEntry{}}
		for _, info := range registry.Snapshot() {
			doc.Hosts = append(doc.Hosts, discoveryEntry{
				Name:        info.Name,
				RoutePrefix: info.RoutePrefix,
			})
		}
		res.JSON(http.StatusOK, doc)
	}
}

// EnableDiscovery mounts the host listing at path (default /mcp/_hosts).
// Enabling it in production is allowed but warned about, since it exposes
// the process topology.
func EnableDiscovery(m Mounter, registry *HostRegistry, path string, env *config.Environment, logger zerolog.Logger) {
	if path == "" {
		path = config.DefaultDiscoveryPath
	}
	if env != nil && env.IsProduction() {
		logger.Warn().Str("path", path).Msg("host discovery endpoint enabled in production")
	}
	m.Mount(path, DiscoveryHandler(registry))
	logger.Info().Str("path", path).Msg("host discovery endpoint enabled")
}
