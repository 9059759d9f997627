package trimesh

import (
	"fmt"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"go.uber.org/zap"
)

// NoNeighbor marks a triangle side on the mesh border.
const NoNeighbor = -1

// Triple holds one value per triangle corner or side.
//
// As neighbor triple, slot A is the triangle across the side B-C,
// slot B across C-A and slot C across A-B:
//
//	          A
//	          /\
//	         /  \
//	       c/    \b
//	       /      \
//	      /___a____\
//	     B          C
type Triple [3]int

// Contains reports whether one of the slots holds v.
func (t Triple) Contains(v int) bool {
	return t[0] == v || t[1] == v || t[2] == v
}

// Count returns the number of slots not set to NoNeighbor.
func (t Triple) Count() int {
	n := 0
	for _, v := range t {
		if v != NoNeighbor {
			n++
		}
	}
	return n
}

// Ambiguity records a non manifold side shared by more than two triangles.
// The smallest candidate id is kept as neighbor.
type Ambiguity struct {
	Triangle   int
	Side       int
	Candidates []int
}

// Mesh is a set of triangles with deduplicated vertices and side adjacency.
// It is read only after construction.
type Mesh struct {
	triangles []Triangle
	vertices  []Vertex
	sharing   [][]int
	corners   []Triple
	neighbors []Triple

	ambiguities []Ambiguity
	degenerate  []int
	hasZ        bool
	eps         float64
	logger      *zap.Logger

	rtreeOnce sync.Once
	rtree     *rtreego.Rtree
}

// BuildMesh indexes the triangles given as closed rings of four vertices.
// Vertices closer than the epsilon are merged. Every ring is checked
// before anything is built.
func BuildMesh(rings [][]Vertex, opts ...MeshOption) (*Mesh, error) {
	o := newOptions(opts)

	for i, r := range rings {
		if len(r) != 4 {
			return nil, invalidInput(i, "expected a closed ring of 4 coordinates, got %d", len(r))
		}
		if r[0].X != r[3].X || r[0].Y != r[3].Y {
			return nil, invalidInput(i, "ring is not closed: %v != %v", r[0], r[3])
		}
	}

	m := &Mesh{
		triangles: make([]Triangle, len(rings)),
		corners:   make([]Triple, len(rings)),
		neighbors: make([]Triple, len(rings)),
		eps:       o.epsilon,
		logger:    o.logger,
		hasZ:      len(rings) > 0,
	}
	if len(rings) == 0 {
		return m, nil
	}

	first := rings[0][0].Point()
	bound := orb.Bound{Min: first, Max: first}
	for _, r := range rings {
		for _, v := range r[:3] {
			bound = bound.Extend(v.Point())
			if !v.Is3D() {
				m.hasZ = false
			}
		}
	}

	ix := newVertexIndex(bound, o.epsilon)
	for i, r := range rings {
		t := NewTriangle(r[0], r[1], r[2])
		m.triangles[i] = t
		if t.Degenerate() {
			m.degenerate = append(m.degenerate, i)
			m.logger.Warn("degenerate triangle", zap.Int("triangle", i), zap.String("wkt", wkt.MarshalString(t.Polygon())))
		}
		for k, v := range t.Vertices() {
			id, err := ix.add(v, i)
			if err != nil {
				return nil, err
			}
			m.corners[i][k] = id
		}
	}

	for i, c := range m.corners {
		sides := [3][2]int{{c[1], c[2]}, {c[2], c[0]}, {c[0], c[1]}}
		for s, e := range sides {
			found := ix.common(i, e[0], e[1])
			switch len(found) {
			case 0:
				m.neighbors[i][s] = NoNeighbor
			case 1:
				m.neighbors[i][s] = found[0]
			default:
				m.neighbors[i][s] = found[0]
				m.ambiguities = append(m.ambiguities, Ambiguity{Triangle: i, Side: s, Candidates: found})
				m.logger.Warn("non manifold side",
					zap.Int("triangle", i),
					zap.Int("side", s),
					zap.Ints("candidates", found),
				)
			}
		}
	}
	m.vertices = ix.vertices
	m.sharing = ix.sharing

	m.logger.Debug("mesh built",
		zap.Int("triangles", len(m.triangles)),
		zap.Int("vertices", len(m.vertices)),
		zap.Int("degenerate", len(m.degenerate)),
		zap.Int("ambiguities", len(m.ambiguities)),
	)
	return m, nil
}

// MeshFromGeometry builds a mesh from a polygon, a multi polygon or a
// collection of polygons, each polygon being a single ring triangle.
func MeshFromGeometry(g orb.Geometry, opts ...MeshOption) (*Mesh, error) {
	var polys []orb.Polygon
	switch g := g.(type) {
	case orb.Polygon:
		polys = append(polys, g)
	case orb.MultiPolygon:
		polys = append(polys, g...)
	case orb.Collection:
		for i, item := range g {
			p, ok := item.(orb.Polygon)
			if !ok {
				return nil, invalidInput(i, "expected a polygon, got %s", item.GeoJSONType())
			}
			polys = append(polys, p)
		}
	default:
		if g == nil {
			return nil, invalidInput(-1, "nil geometry")
		}
		return nil, invalidInput(-1, "expected polygons, got %s", g.GeoJSONType())
	}

	rings := make([][]Vertex, len(polys))
	for i, p := range polys {
		if len(p) != 1 {
			return nil, invalidInput(i, "expected a triangle without holes, got %d rings", len(p))
		}
		r := make([]Vertex, len(p[0]))
		for k, pt := range p[0] {
			r[k] = VertexFromPoint(pt)
		}
		rings[i] = r
	}
	return BuildMesh(rings, opts...)
}

// Len returns the number of triangles.
func (m *Mesh) Len() int { return len(m.triangles) }

// Triangle returns the i-th triangle, counter clockwise.
func (m *Mesh) Triangle(i int) Triangle { return m.triangles[i] }

// Triangles returns the counter clockwise triangles indexed like the input.
func (m *Mesh) Triangles() []Triangle { return m.triangles }

// Vertices returns the deduplicated vertices indexed by vertex id.
func (m *Mesh) Vertices() []Vertex { return m.vertices }

// Corners returns the vertex ids of every triangle.
func (m *Mesh) Corners() []Triple { return m.corners }

// Neighbors returns the neighbor triple of every triangle.
func (m *Mesh) Neighbors() []Triple { return m.neighbors }

// VertexTriangles returns the sorted ids of the triangles sharing the vertex.
func (m *Mesh) VertexTriangles(id int) []int { return m.sharing[id] }

// Ambiguities returns the non manifold sides found while building.
func (m *Mesh) Ambiguities() []Ambiguity { return m.ambiguities }

// Degenerate returns the ids of the triangles without area.
func (m *Mesh) Degenerate() []int { return m.degenerate }

// HasZ reports whether every input vertex carries an elevation.
func (m *Mesh) HasZ() bool { return m.hasZ }

// Validate checks that adjacency is symmetric: whenever triangle i
// lists j as neighbor, j lists i.
func (m *Mesh) Validate() error {
	for i, n := range m.neighbors {
		for s, j := range n {
			if j == NoNeighbor {
				continue
			}
			if j < 0 || j >= len(m.neighbors) || !m.neighbors[j].Contains(i) {
				return &TopologyError{
					Op:       "validate mesh: asymmetric adjacency",
					Triangle: TriMarker{Triangle: m.triangles[i]},
					Flags:    fmt.Sprintf("triangle=%d side=%d neighbor=%d", i, s, j),
				}
			}
		}
	}
	return nil
}
