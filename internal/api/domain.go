package api

import (
	"github.com/JaimeStill/segmenter/internal/registry"
	"github.com/JaimeStill/segmenter/internal/segments"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Segments segments.System
	Registry registry.System
}

// NewDomain creates all domain systems from the API runtime. The serving
// artifact is loaded here, once, before any route is registered.
func NewDomain(runtime *Runtime) *Domain {
	segmentsSystem := segments.Open(
		&runtime.Serving,
		segments.DefaultLabels,
		runtime.Logger,
		runtime.Metrics,
	)

	registrySystem := registry.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Segments: segmentsSystem,
		Registry: registrySystem,
	}
}
