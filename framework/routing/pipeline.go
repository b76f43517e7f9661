package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Pipeline accumulates middleware and wraps a final handler with it.
type Pipeline struct {
	mws chi.Middlewares
}

// Use appends middleware to the pipeline, in execution order.
func (p *Pipeline) Use(mw ...func(http.Handler) http.Handler) *Pipeline {
	p.mws = append(p.mws, mw...)
	return p
}

// Len returns the number of middleware in the pipeline.
func (p *Pipeline) Len() int { return len(p.mws) }

// Then wraps h with the accumulated middleware chain.
func (p *Pipeline) Then(h http.Handler) http.Handler {
	if len(p.mws) == 0 {
		return h
	}
	return chi.Chain(p.mws...).Handler(h)
}
