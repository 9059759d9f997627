package trimesh

import (
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// DefaultEpsilon is the tolerance used to merge vertices and to drop
// zero length Voronoi edges.
const DefaultEpsilon = 1e-12

// Option configures a mesh, a Voronoi walker or a contouring run.
// Settings that do not apply to the receiving component are ignored.
type Option func(*options)

// MeshOption configures BuildMesh.
type MeshOption = Option

// VoronoiOption configures NewVoronoi.
type VoronoiOption = Option

// ContourOption configures Contour.
type ContourOption = Option

type options struct {
	epsilon  float64
	envelope *orb.Bound
	workers  int
	logger   *zap.Logger
}

func newOptions(opts []Option) options {
	o := options{
		epsilon: DefaultEpsilon,
		workers: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	return o
}

// WithEpsilon sets the distance under which two vertices are merged.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		if eps >= 0 {
			o.epsilon = eps
		}
	}
}

// WithEnvelope restricts the Voronoi diagram to the bound.
func WithEnvelope(b orb.Bound) Option {
	return func(o *options) {
		o.envelope = &b
	}
}

// WithWorkers sets how many triangles Contour processes concurrently.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger overrides the package logger for one component.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
