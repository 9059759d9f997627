package trimesh

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Normal returns the unit vector normal to the triangle plane.
// Every vertex must carry an elevation.
func (t Triangle) Normal() (r3.Vector, error) {
	if !t.P0.Is3D() || !t.P1.Is3D() || !t.P2.Is3D() {
		return r3.Vector{}, errors.Errorf("z is required to compute the normal of %v", t)
	}
	d1 := r3.Vector{X: t.P0.X - t.P1.X, Y: t.P0.Y - t.P1.Y, Z: t.P0.Z - t.P1.Z}
	d2 := r3.Vector{X: t.P1.X - t.P2.X, Y: t.P1.Y - t.P2.Y, Z: t.P1.Z - t.P2.Z}
	return d1.Cross(d2).Normalize(), nil
}

// SteepestVector returns the unit vector of steepest descent on the plane
// with the given normal. A horizontal plane yields the zero vector.
func SteepestVector(normal r3.Vector, eps float64) r3.Vector {
	if math.Abs(normal.X) < eps && math.Abs(normal.Y) < eps {
		return r3.Vector{}
	}
	var slope r3.Vector
	switch {
	case math.Abs(normal.X) < eps:
		slope = r3.Vector{X: 0, Y: 1, Z: -normal.Y / normal.Z}
	case math.Abs(normal.Y) < eps:
		slope = r3.Vector{X: 1, Y: 0, Z: -normal.X / normal.Z}
	default:
		slope = r3.Vector{
			X: normal.X / normal.Y,
			Y: 1,
			Z: -1 / normal.Z * (normal.X*normal.X/normal.Y + normal.Y),
		}
	}
	if slope.Z > eps {
		slope = slope.Mul(-1)
	}
	return slope.Normalize()
}

// SlopePercent returns the steepest slope of the plane in percent.
func SlopePercent(normal r3.Vector, eps float64) float64 {
	v := SteepestVector(normal, eps)
	if math.Abs(v.Z) < eps {
		return 0
	}
	return math.Abs(v.Z) / math.Hypot(v.X, v.Y) * 100
}
