package hosting

import (
	"net/http"

	"github.com/km-arc/go-multihost/framework/container"
)

// ProtocolBuilder is handed to a host's protocol configuration callback. The
// protocol layer is opaque to the hosting core: all the core knows is that
// the callback registers whatever services it needs through Services() and
// declares how its handler set is constructed through UseHandler.
type ProtocolBuilder struct {
	services *container.Builder
}

func newProtocolBuilder(b *container.Builder) *ProtocolBuilder {
	return &ProtocolBuilder{services: b}
}

// Services exposes the host's scope builder so the protocol layer can
// register its own required services.
func (pb *ProtocolBuilder) Services() *container.Builder {
	return pb.services
}

// UseHandler declares how the host's handler set is built. The construct
// function runs once, at mount time, against the host's own finalized scope —
// never against the shared root scope.
func (pb *ProtocolBuilder) UseHandler(construct func(s *container.Scope) http.Handler) {
	if construct == nil {
		panic("hosting: UseHandler requires a non-nil constructor")
	}
	pb.services.Singleton(KeyProtocolHandler, func(s *container.Scope) any {
		return construct(s)
	})
}
