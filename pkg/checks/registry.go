package checks

import (
	"maps"
	"slices"

	"github.com/ormasoftchile/argspec/pkg/geo"
	"github.com/ormasoftchile/argspec/pkg/spec"
)

// Registry maps type tags to checkers. A Registry is immutable once built;
// With returns an extended copy.
type Registry struct {
	checkers map[spec.TypeTag]Checker
}

// NewRegistry returns a registry holding exactly the given checkers.
func NewRegistry(checkers map[spec.TypeTag]Checker) *Registry {
	clone := make(map[spec.TypeTag]Checker, len(checkers))
	maps.Copy(clone, checkers)
	return &Registry{checkers: clone}
}

// Option configures DefaultRegistry.
type Option func(*registryConfig)

type registryConfig struct {
	backend geo.Backend
	access  AccessFunc
}

// WithGeoBackend sets the backend raster and vector checkers open datasets
// with.
func WithGeoBackend(b geo.Backend) Option {
	return func(c *registryConfig) { c.backend = b }
}

// WithAccess replaces the permission probe. Tests use it to simulate
// missing access rights.
func WithAccess(fn AccessFunc) Option {
	return func(c *registryConfig) { c.access = fn }
}

// DefaultRegistry returns the built-in checker table.
func DefaultRegistry(opts ...Option) *Registry {
	cfg := registryConfig{backend: geo.NewFileBackend(), access: SystemAccess}
	for _, opt := range opts {
		opt(&cfg)
	}
	perm := PermissionChecker{Access: cfg.access}
	file := FileChecker{Perm: perm}
	return NewRegistry(map[spec.TypeTag]Checker{
		spec.TypeDirectory:       DirectoryChecker{Perm: perm},
		spec.TypeFile:            file,
		spec.TypeCSV:             CSVChecker{File: file},
		spec.TypeRaster:          RasterChecker{File: file, Backend: cfg.backend},
		spec.TypeVector:          VectorChecker{File: file, Backend: cfg.backend},
		spec.TypeNumber:          NumberChecker{},
		spec.TypeBoolean:         BooleanChecker{},
		spec.TypeFreestyleString: FreestyleChecker{},
		spec.TypeOptionString:    OptionChecker{},
		spec.TypeOptionsString:   OptionChecker{},
	})
}

// Lookup returns the checker for tag.
func (r *Registry) Lookup(tag spec.TypeTag) (Checker, bool) {
	c, ok := r.checkers[tag]
	return c, ok
}

// Known reports whether tag has a checker.
func (r *Registry) Known(tag spec.TypeTag) bool {
	_, ok := r.checkers[tag]
	return ok
}

// With returns a copy of r with tag bound to c.
func (r *Registry) With(tag spec.TypeTag, c Checker) *Registry {
	next := NewRegistry(r.checkers)
	next.checkers[tag] = c
	return next
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []spec.TypeTag {
	return slices.Sorted(maps.Keys(r.checkers))
}
