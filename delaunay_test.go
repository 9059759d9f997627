package trimesh

import (
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
)

func TestTriangulate(t *testing.T) {
	if tris := Triangulate([]Vertex{V(0, 0), V(1, 1)}); tris != nil {
		t.Errorf("expected no triangle, got %v", tris)
	}

	rnd := rand.New(rand.NewSource(3))
	sites := make([]Vertex, 60)
	for i := range sites {
		sites[i] = V(rnd.Float64()*100, rnd.Float64()*100)
	}
	for _, set := range [][]Vertex{sitesA, sitesB, sites} {
		tris := Triangulate(set)
		if len(tris) == 0 {
			t.Fatal("expected triangles")
		}
		for _, tri := range tris {
			if tri.signedArea2() <= 0 {
				t.Errorf("triangle %v is not counter clockwise", tri)
			}
			c := tri.Circumcenter()
			r := c.Dist(tri.P0)
			for _, s := range set {
				if c.Dist(s) < r*(1-1e-9) {
					t.Errorf("site %v inside the circumcircle of %v", s, tri)
				}
			}
		}
	}
}

func TestDelaunayInit(t *testing.T) {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}
	tris := NewDelaunay().Init(b).Insert([]Vertex{V(5, 5), V(2, 7)}).GetTriangles()
	// Euler: 2 per interior point plus the two of the frame.
	if len(tris) != 6 {
		t.Fatalf("expected 6 triangles, got %d", len(tris))
	}
	area := 0.0
	for _, tri := range tris {
		area += tri.Area()
	}
	if area < 100-1e-9 || area > 100+1e-9 {
		t.Errorf("expected the frame to be covered, got area %v", area)
	}

	m, err := BuildMesh(Rings(tris))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(); err != nil {
		t.Error(err)
	}
	if len(m.Vertices()) != 6 {
		t.Errorf("expected 6 vertices, got %d", len(m.Vertices()))
	}
}
