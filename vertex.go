package trimesh

import (
	"math"

	"github.com/paulmach/orb"
)

// Vertex is a mesh coordinate. Z is NaN for planar input.
type Vertex struct {
	X, Y, Z float64
}

// V returns a planar vertex.
func V(x, y float64) Vertex {
	return Vertex{X: x, Y: y, Z: math.NaN()}
}

// V3 returns a vertex with an elevation.
func V3(x, y, z float64) Vertex {
	return Vertex{X: x, Y: y, Z: z}
}

// VertexFromPoint converts an orb point into a planar vertex.
func VertexFromPoint(p orb.Point) Vertex {
	return V(p[0], p[1])
}

// Point drops the elevation.
func (v Vertex) Point() orb.Point {
	return orb.Point{v.X, v.Y}
}

// Is3D reports whether the vertex carries an elevation.
func (v Vertex) Is3D() bool {
	return !math.IsNaN(v.Z)
}

// Dist returns the planar distance between two vertices.
func (v Vertex) Dist(o Vertex) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// lerp moves from v towards o by the ratio t on every axis.
// A missing elevation on either end yields a missing elevation.
func (v Vertex) lerp(o Vertex, t float64) Vertex {
	return Vertex{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// equal2D compares the planar coordinates within eps.
func (v Vertex) equal2D(o Vertex, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Points converts a vertex list into an orb multi point.
func Points(vs []Vertex) orb.MultiPoint {
	mp := make(orb.MultiPoint, 0, len(vs))
	for _, v := range vs {
		mp = append(mp, v.Point())
	}
	return mp
}
