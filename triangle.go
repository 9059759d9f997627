package trimesh

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// containsSlack is the barycentric tolerance of Contains.
const containsSlack = 1e-12

// Triangle is a counter clockwise triangle.
type Triangle struct {
	P0, P1, P2 Vertex
}

// NewTriangle returns the triangle with counter clockwise vertex order,
// swapping the first and last vertex of a clockwise input.
func NewTriangle(p0, p1, p2 Vertex) Triangle {
	if isClockwise(p0, p1, p2) {
		p0, p2 = p2, p0
	}
	return Triangle{P0: p0, P1: p1, P2: p2}
}

func isClockwise(p0, p1, p2 Vertex) bool {
	r := orb.Ring{p0.Point(), p1.Point(), p2.Point(), p0.Point()}
	return r.Orientation() == orb.CW
}

// Vertex returns the i-th vertex, i in [0, 2].
func (t Triangle) Vertex(i int) Vertex {
	switch i {
	case 0:
		return t.P0
	case 1:
		return t.P1
	default:
		return t.P2
	}
}

// Vertices returns the three vertices in ring order.
func (t Triangle) Vertices() [3]Vertex {
	return [3]Vertex{t.P0, t.P1, t.P2}
}

// Ring returns the closed ring P0, P1, P2, P0.
func (t Triangle) Ring() orb.Ring {
	return orb.Ring{t.P0.Point(), t.P1.Point(), t.P2.Point(), t.P0.Point()}
}

// Polygon returns the triangle as a single ring polygon.
func (t Triangle) Polygon() orb.Polygon {
	return orb.Polygon{t.Ring()}
}

// Area returns the planar area.
func (t Triangle) Area() float64 {
	return math.Abs(planar.Area(t.Polygon()))
}

// Bound returns the planar bounding box.
func (t Triangle) Bound() orb.Bound {
	return t.Ring().Bound()
}

// signedArea2 is twice the signed planar area, positive for counter
// clockwise order.
func (t Triangle) signedArea2() float64 {
	return (t.P1.X-t.P0.X)*(t.P2.Y-t.P0.Y) - (t.P2.X-t.P0.X)*(t.P1.Y-t.P0.Y)
}

// Degenerate reports a triangle with no area.
func (t Triangle) Degenerate() bool {
	return t.signedArea2() == 0
}

// Circumcenter returns the planar center of the circumscribed circle.
// Both coordinates are NaN for a degenerate triangle.
func (t Triangle) Circumcenter() Vertex {
	ax, ay := t.P0.X, t.P0.Y
	bx, by := t.P1.X, t.P1.Y
	cx, cy := t.P2.X, t.P2.Y

	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if d == 0 {
		return V(math.NaN(), math.NaN())
	}
	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy

	ux := (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d
	uy := (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d
	return V(ux, uy)
}

// barycentric returns the weights of P0 and P1 for the point (x, y).
// The weight of P2 is 1 - u - v.
func (t Triangle) barycentric(x, y float64) (u, v float64, ok bool) {
	x0, y0 := t.P0.X-t.P2.X, t.P0.Y-t.P2.Y
	x1, y1 := t.P1.X-t.P2.X, t.P1.Y-t.P2.Y
	px, py := x-t.P2.X, y-t.P2.Y

	dot00 := x0*x0 + y0*y0
	dot01 := x0*x1 + y0*y1
	dot02 := x0*px + y0*py
	dot11 := x1*x1 + y1*y1
	dot12 := x1*px + y1*py

	denom := dot00*dot11 - dot01*dot01
	if denom == 0 {
		return 0, 0, false
	}
	inv := 1 / denom
	u = (dot11*dot02 - dot01*dot12) * inv
	v = (dot00*dot12 - dot01*dot02) * inv
	return u, v, true
}

// Contains reports whether (x, y) lies inside or on the border of the triangle.
func (t Triangle) Contains(x, y float64) bool {
	u, v, ok := t.barycentric(x, y)
	if !ok {
		return false
	}
	return u > -containsSlack && v > -containsSlack && u+v < 1+containsSlack
}

// InterpolateZ returns the elevation of the plane through the three
// vertices at (x, y). The result is NaN when a vertex has no elevation
// or the triangle is degenerate.
func (t Triangle) InterpolateZ(x, y float64) float64 {
	u, v, ok := t.barycentric(x, y)
	if !ok {
		return math.NaN()
	}
	return u*t.P0.Z + v*t.P1.Z + (1-u-v)*t.P2.Z
}
