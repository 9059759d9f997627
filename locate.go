package trimesh

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// minRectPad keeps R-tree rectangles of axis aligned segments from collapsing.
const minRectPad = 1e-12

// triangleBox is the R-tree entry of a mesh triangle.
type triangleBox struct {
	id   int
	rect rtreego.Rect
}

func (b triangleBox) Bounds() rtreego.Rect {
	return b.rect
}

func boundRect(b orb.Bound, pad float64) rtreego.Rect {
	b = b.Pad(math.Max(pad, minRectPad))
	r, _ := rtreego.NewRectFromPoints(
		rtreego.Point{b.Min[0], b.Min[1]},
		rtreego.Point{b.Max[0], b.Max[1]},
	)
	return r
}

// index lazily builds the R-tree over the triangle bounds.
func (m *Mesh) index() *rtreego.Rtree {
	m.rtreeOnce.Do(func() {
		objs := make([]rtreego.Spatial, 0, len(m.triangles))
		for i, t := range m.triangles {
			objs = append(objs, triangleBox{id: i, rect: boundRect(t.Bound(), m.eps)})
		}
		m.rtree = rtreego.NewTree(2, 25, 50, objs...)
	})
	return m.rtree
}

// Locate returns the smallest id of the triangles containing (x, y).
func (m *Mesh) Locate(x, y float64) (int, bool) {
	if len(m.triangles) == 0 {
		return NoNeighbor, false
	}
	query := rtreego.Point{x, y}.ToRect(math.Max(m.eps, minRectPad))
	best := NoNeighbor
	for _, s := range m.index().SearchIntersect(query) {
		id := s.(triangleBox).id
		if (best == NoNeighbor || id < best) && m.triangles[id].Contains(x, y) {
			best = id
		}
	}
	return best, best != NoNeighbor
}

// walk moves from the start triangle towards (x, y), crossing at each step
// a side the point lies beyond. It fails when the walk leaves the mesh
// or does not end within one step per triangle.
func (m *Mesh) walk(start int, x, y float64) (int, bool) {
	cur := start
	for steps := 0; steps <= len(m.triangles); steps++ {
		t := m.triangles[cur]
		if t.Contains(x, y) {
			return cur, true
		}
		vs := t.Vertices()
		next := NoNeighbor
		for s := 0; s < 3; s++ {
			a, b := vs[(s+1)%3], vs[(s+2)%3]
			if (b.X-a.X)*(y-a.Y)-(b.Y-a.Y)*(x-a.X) < 0 {
				next = m.neighbors[cur][s]
				break
			}
		}
		if next == NoNeighbor {
			return NoNeighbor, false
		}
		cur = next
	}
	return NoNeighbor, false
}

// zAt returns the elevation of the mesh at (x, y), walking from the start
// triangle and falling back to the R-tree. NaN when no triangle contains
// the point.
func (m *Mesh) zAt(start int, x, y float64) float64 {
	id, ok := m.walk(start, x, y)
	if !ok {
		id, ok = m.Locate(x, y)
	}
	if !ok {
		return math.NaN()
	}
	return m.triangles[id].InterpolateZ(x, y)
}

// InterpolateZ returns the elevation of the mesh surface at (x, y),
// NaN outside of the mesh or when the mesh has no elevation.
func (m *Mesh) InterpolateZ(x, y float64) float64 {
	id, ok := m.Locate(x, y)
	if !ok {
		return math.NaN()
	}
	return m.triangles[id].InterpolateZ(x, y)
}
