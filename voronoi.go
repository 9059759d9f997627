package trimesh

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// OutputDimension selects the geometry produced by the Voronoi walker.
type OutputDimension int

const (
	// DimensionPoints produces the triangle circumcenters.
	DimensionPoints OutputDimension = iota
	// DimensionLines produces the Voronoi edges.
	DimensionLines
	// DimensionPolygons produces the Voronoi cells.
	DimensionPolygons
)

func (d OutputDimension) String() string {
	switch d {
	case DimensionPoints:
		return "points"
	case DimensionLines:
		return "lines"
	case DimensionPolygons:
		return "polygons"
	}
	return "unknown"
}

// Voronoi derives the Voronoi diagram of the mesh vertices by walking the
// triangle adjacency graph. It memoizes circumcenters and is not safe for
// concurrent use.
type Voronoi struct {
	mesh     *Mesh
	envelope *orb.Bound
	eps      float64
	logger   *zap.Logger

	centers  []Vertex
	computed []bool
}

// NewVoronoi returns a walker over the mesh.
func NewVoronoi(m *Mesh, opts ...VoronoiOption) *Voronoi {
	o := newOptions(opts)
	return &Voronoi{
		mesh:     m,
		envelope: o.envelope,
		eps:      o.epsilon,
		logger:   o.logger,
		centers:  make([]Vertex, m.Len()),
		computed: make([]bool, m.Len()),
	}
}

// Circumcenter returns the circumcenter of triangle i. On a mesh with
// elevations its Z is the mesh surface elevation at that point, NaN when
// the point lies outside of the mesh.
func (v *Voronoi) Circumcenter(i int) Vertex {
	if v.computed[i] {
		return v.centers[i]
	}
	c := v.mesh.triangles[i].Circumcenter()
	if v.mesh.hasZ && !math.IsNaN(c.X) {
		c.Z = v.mesh.zAt(i, c.X, c.Y)
	}
	v.centers[i] = c
	v.computed[i] = true
	return c
}

// processed reports whether triangle i contributes to the diagram: its
// circumcenter exists and lies in the envelope, if any.
func (v *Voronoi) processed(i int) bool {
	c := v.Circumcenter(i)
	if math.IsNaN(c.X) || math.IsNaN(c.Y) {
		return false
	}
	return v.envelope == nil || v.envelope.Contains(c.Point())
}

// navigate walks around the vertex from the triangle, never stepping back
// into exclude. It stops on the border, when the fan is closed or when
// reaching a triangle that is not processed.
func (v *Voronoi) navigate(tri, vertex, exclude int) []int {
	var path []int
	for tri != NoNeighbor {
		next := NoNeighbor
		for _, n := range v.mesh.neighbors[tri] {
			if n != NoNeighbor && n != exclude && v.mesh.corners[n].Contains(vertex) {
				next = n
				break
			}
		}
		if next == NoNeighbor {
			break
		}
		exclude, tri = tri, next
		if slices.Contains(path, tri) || !v.processed(tri) {
			return path
		}
		path = append(path, tri)
	}
	return path
}

// cell returns the Voronoi cell of the vertex when the triangle fan
// around it is closed.
func (v *Voronoi) cell(tri, vertex int) (orb.Polygon, bool) {
	path := v.navigate(tri, vertex, NoNeighbor)
	loop := true
	if !slices.Contains(path, tri) {
		path = append([]int{tri}, path...)
		loop = len(path) > 2 && v.mesh.neighbors[path[0]].Contains(path[len(path)-1])
		if !loop && len(path) > 2 {
			// Complete the fan on the other side of the start triangle.
			other := v.navigate(tri, vertex, path[1])
			if len(other) > 0 {
				for i, j := 0, len(other)-1; i < j; i, j = i+1, j-1 {
					other[i], other[j] = other[j], other[i]
				}
				path = append(other, path...)
				loop = v.mesh.neighbors[path[0]].Contains(path[len(path)-1])
			}
		}
	}
	if !loop {
		return nil, false
	}

	ring := make(orb.Ring, 0, len(path)+1)
	var first, last Vertex
	for i, t := range path {
		c := v.Circumcenter(t)
		switch {
		case i == 0:
			first = c
		case last.Dist(c) <= v.eps:
			continue
		case i == len(path)-1 && first.Dist(c) <= v.eps:
			continue
		}
		ring = append(ring, c.Point())
		last = c
	}
	ring = append(ring, ring[0])
	if len(ring) < 4 {
		return nil, false
	}
	if ring.Orientation() == orb.CW {
		ring.Reverse()
	}
	return orb.Polygon{ring}, true
}

// Generate produces the diagram: an orb.MultiPoint, orb.MultiLineString
// or orb.MultiPolygon depending on the dimension.
func (v *Voronoi) Generate(dim OutputDimension) (orb.Geometry, error) {
	if v.mesh.Len() == 0 {
		return orb.MultiLineString{}, nil
	}
	switch dim {
	case DimensionPoints:
		return v.points(), nil
	case DimensionLines:
		lines := v.lines()
		v.logger.Debug("voronoi lines", zap.Int("lines", len(lines)), zap.Bool("envelope", v.envelope != nil))
		return lines, nil
	case DimensionPolygons:
		var cells orb.MultiPolygon
		if v.envelope == nil {
			cells = v.cells()
		} else {
			cells = polygonize(v.lines())
		}
		v.logger.Debug("voronoi cells", zap.Int("cells", len(cells)), zap.Bool("envelope", v.envelope != nil))
		return cells, nil
	}
	return nil, invalidInput(-1, "unknown output dimension %d", int(dim))
}

func (v *Voronoi) points() orb.MultiPoint {
	mp := make(orb.MultiPoint, 0, v.mesh.Len())
	for i := range v.mesh.triangles {
		c := v.Circumcenter(i)
		if math.IsNaN(c.X) || math.IsNaN(c.Y) {
			continue
		}
		mp = append(mp, c.Point())
	}
	if v.envelope != nil {
		mp = clip.MultiPoint(*v.envelope, mp)
	}
	return mp
}

// cells builds the closed cell of every vertex reachable through a
// triangle side shared with a neighbor.
func (v *Voronoi) cells() orb.MultiPolygon {
	var (
		polys orb.MultiPolygon
		done  = make(map[int]bool)
		open  int
	)
	for i := range v.mesh.triangles {
		if !v.processed(i) {
			continue
		}
		neigh := v.mesh.neighbors[i]
		for side := 0; side < 3; side++ {
			if neigh[side] == NoNeighbor {
				continue
			}
			for corner := 0; corner < 3; corner++ {
				if corner == side {
					continue
				}
				vertex := v.mesh.corners[i][corner]
				if done[vertex] {
					continue
				}
				done[vertex] = true
				if p, ok := v.cell(i, vertex); ok {
					polys = append(polys, p)
				} else {
					open++
				}
			}
		}
	}
	if open > 0 {
		v.logger.Debug("voronoi cells omitted on open fans", zap.Int("vertices", open))
	}
	return polys
}

// lines returns one edge per pair of adjacent processed triangles whose
// circumcenters are distinct. With an envelope, rays leaving the border
// sides and the envelope ring are added and everything is noded.
func (v *Voronoi) lines() orb.MultiLineString {
	var (
		edges  []orb.LineString
		border []orb.LineString
	)
	for i := range v.mesh.triangles {
		if !v.processed(i) {
			continue
		}
		for side, n := range v.mesh.neighbors[i] {
			if n != NoNeighbor && !v.processed(n) {
				n = NoNeighbor
			}
			switch {
			case n > i:
				a, b := v.Circumcenter(i), v.Circumcenter(n)
				if a.Dist(b) > v.eps {
					edges = append(edges, orb.LineString{a.Point(), b.Point()})
				}
			case n == NoNeighbor && v.envelope != nil:
				if ray, ok := v.ray(i, side); ok {
					border = append(border, ray)
				}
			}
		}
	}
	if v.envelope == nil {
		return orb.MultiLineString(edges)
	}
	// The envelope ring always has a node at its start corner.
	border = append(border, orb.LineString(v.envelope.ToRing()))
	return orb.MultiLineString(nodeLines(append(edges, border...), v.snapTolerance(), v.envelope.Min))
}

// ray returns the segment leaving the circumcenter of triangle tri
// perpendicular to the given side, away from the triangle, clipped to
// the envelope.
func (v *Voronoi) ray(tri, side int) (orb.LineString, bool) {
	t := v.mesh.triangles[tri]
	a, b := t.Vertex((side+1)%3), t.Vertex((side+2)%3)
	l := a.Dist(b)
	if l == 0 {
		return nil, false
	}
	// Triangles are counter clockwise: the outside lies on the right.
	dx, dy := (b.X-a.X)/l, (b.Y-a.Y)/l
	ox, oy := dy, -dx

	env := *v.envelope
	ext := (env.Max[0] - env.Min[0]) + (env.Max[1] - env.Min[1])
	c := v.Circumcenter(tri).Point()
	ls := orb.LineString{c, {c[0] + ox*ext, c[1] + oy*ext}}

	for _, piece := range clip.LineString(env, ls) {
		if planar.Length(piece) > v.eps {
			return piece, true
		}
	}
	return nil, false
}

// snapTolerance scales the epsilon to the envelope size for noding.
func (v *Voronoi) snapTolerance() float64 {
	env := *v.envelope
	size := math.Max(env.Max[0]-env.Min[0], env.Max[1]-env.Min[1])
	return math.Max(v.eps, size*1e-9)
}
