package trimesh

import (
	"math"

	"github.com/paulmach/orb"
)

// edge joins two vertex indexes of a triangulation.
type edge [2]int

func (e edge) isEq(o edge) bool {
	return e == o || (e[0] == o[1] && e[1] == o[0])
}

type circle struct {
	x, y, radius float64
}

// node is a triangle of the triangulation under construction with its
// cached circumcircle. The radius is stored squared.
type node struct {
	ids    [3]int
	circle circle
}

// Delaunay triangulates point sites with the Bowyer-Watson algorithm.
type Delaunay struct {
	vertices []Vertex
	nodes    []node
	// aux counts the leading vertices of the enclosing frame that are
	// dropped from the result.
	aux int
}

// NewDelaunay returns an empty triangulation.
func NewDelaunay() *Delaunay {
	return &Delaunay{}
}

// Init starts a triangulation of the rectangle split in two triangles.
// The four corners are kept in the result, every inserted point must lie
// inside the rectangle.
func (d *Delaunay) Init(b orb.Bound) *Delaunay {
	d.vertices = []Vertex{
		V(b.Min[0], b.Min[1]),
		V(b.Max[0], b.Min[1]),
		V(b.Max[0], b.Max[1]),
		V(b.Min[0], b.Max[1]),
	}
	d.aux = 0
	d.nodes = d.nodes[:0]
	d.nodes = append(d.nodes, d.newNode(0, 2, 3), d.newNode(0, 1, 2))
	return d
}

// initSuper starts a triangulation inside a triangle far larger than the
// sites bound. Its vertices are removed from the result.
func (d *Delaunay) initSuper(sites []Vertex) *Delaunay {
	b := Points(sites).Bound()
	dm := math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
	if dm == 0 {
		dm = 1
	}
	mx, my := (b.Min[0]+b.Max[0])/2, (b.Min[1]+b.Max[1])/2

	d.vertices = []Vertex{
		V(mx-20*dm, my-dm),
		V(mx, my+20*dm),
		V(mx+20*dm, my-dm),
	}
	d.aux = 3
	d.nodes = append(d.nodes[:0], d.newNode(0, 1, 2))
	return d
}

func (d *Delaunay) newNode(a, b, c int) node {
	p0, p1, p2 := d.vertices[a], d.vertices[b], d.vertices[c]
	n := node{ids: [3]int{a, b, c}}

	cc := Triangle{P0: p0, P1: p1, P2: p2}.Circumcenter()
	dx, dy := p0.X-cc.X, p0.Y-cc.Y
	n.circle = circle{x: cc.X, y: cc.Y, radius: dx*dx + dy*dy}
	return n
}

// Insert adds the points one at a time, retriangulating the cavity of the
// triangles whose circumcircle contains the point.
func (d *Delaunay) Insert(points []Vertex) *Delaunay {
	var polygon []edge

	for _, p := range points {
		id := len(d.vertices)
		d.vertices = append(d.vertices, p)

		var edges []edge
		temps := d.nodes[:0:0]
		for _, n := range d.nodes {
			dx, dy := n.circle.x-p.X, n.circle.y-p.Y
			if dx*dx+dy*dy < n.circle.radius {
				edges = append(edges,
					edge{n.ids[0], n.ids[1]},
					edge{n.ids[1], n.ids[2]},
					edge{n.ids[2], n.ids[0]},
				)
			} else {
				temps = append(temps, n)
			}
		}

		polygon = polygon[:0]
	edgesLoop:
		for _, e := range edges {
			for j := range polygon {
				if e.isEq(polygon[j]) {
					polygon = append(polygon[:j], polygon[j+1:]...)
					continue edgesLoop
				}
			}
			polygon = append(polygon, e)
		}

		for _, e := range polygon {
			temps = append(temps, d.newNode(e[0], e[1], id))
		}
		d.nodes = temps
	}
	return d
}

// GetTriangles returns the counter clockwise triangles, leaving out the
// ones touching the enclosing super triangle.
func (d *Delaunay) GetTriangles() []Triangle {
	tris := make([]Triangle, 0, len(d.nodes))
	for _, n := range d.nodes {
		if n.ids[0] < d.aux || n.ids[1] < d.aux || n.ids[2] < d.aux {
			continue
		}
		tris = append(tris, NewTriangle(d.vertices[n.ids[0]], d.vertices[n.ids[1]], d.vertices[n.ids[2]]))
	}
	return tris
}

// Triangulate returns the Delaunay triangles of the sites.
// Fewer than three sites give no triangle.
func Triangulate(sites []Vertex) []Triangle {
	if len(sites) < 3 {
		return nil
	}
	return NewDelaunay().initSuper(sites).Insert(sites).GetTriangles()
}

// Rings converts triangles to the closed rings expected by BuildMesh.
func Rings(tris []Triangle) [][]Vertex {
	rings := make([][]Vertex, len(tris))
	for i, t := range tris {
		rings[i] = []Vertex{t.P0, t.P1, t.P2, t.P0}
	}
	return rings
}
