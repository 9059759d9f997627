package trimesh

import (
	"context"
	"math/rand"
	"testing"
)

func randomTriMarkers(n int) []TriMarker {
	rnd := rand.New(rand.NewSource(42))
	tris := make([]TriMarker, n)
	for i := range tris {
		v := func() Vertex { return V(rnd.Float64()*100, rnd.Float64()*100) }
		tris[i] = NewTriMarker(v(), v(), v(), rnd.Float64()*10, rnd.Float64()*10, rnd.Float64()*10)
	}
	return tris
}

func BenchmarkProcessTriangle(b *testing.B) {
	tris := randomTriMarkers(1024)
	levels := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ProcessTriangle(tris[i%len(tris)], levels); err != nil {
			b.Fatalf("Failed splitting triangle: %v", err)
		}
	}
}

func BenchmarkContour(b *testing.B) {
	tris := randomTriMarkers(4096)
	levels := []float64{2.5, 5, 7.5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Contour(context.Background(), tris, levels, WithWorkers(4)); err != nil {
			b.Fatalf("Failed contouring: %v", err)
		}
	}
}

func BenchmarkBuildMesh(b *testing.B) {
	rnd := rand.New(rand.NewSource(42))
	sites := make([]Vertex, 2000)
	for i := range sites {
		sites[i] = V(rnd.Float64()*1000, rnd.Float64()*1000)
	}
	rings := Rings(Triangulate(sites))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildMesh(rings); err != nil {
			b.Fatalf("Failed building mesh: %v", err)
		}
	}
}

func BenchmarkVoronoi(b *testing.B) {
	rnd := rand.New(rand.NewSource(42))
	sites := make([]Vertex, 500)
	for i := range sites {
		sites[i] = V(rnd.Float64()*1000, rnd.Float64()*1000)
	}
	m, err := BuildMesh(Rings(Triangulate(sites)))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewVoronoi(m).Generate(DimensionPolygons); err != nil {
			b.Fatalf("Failed generating cells: %v", err)
		}
	}
}
