package trimesh

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

func countPieces(bands map[int][]TriMarker) int {
	n := 0
	for _, pieces := range bands {
		n += len(pieces)
	}
	return n
}

func totalArea(bands map[int][]TriMarker) float64 {
	var a float64
	for _, pieces := range bands {
		for _, p := range pieces {
			a += p.Area()
		}
	}
	return a
}

func assertMarkers(t *testing.T, got TriMarker, want [3]float64) {
	t.Helper()
	if got.Markers() != want {
		t.Errorf("expected markers %v, got %v", want, got.Markers())
	}
}

// sameTriMarker compares planar coordinates and markers. Vertices
// built with V carry a NaN elevation, so == never holds.
func sameTriMarker(a, b TriMarker) bool {
	av, bv := a.Vertices(), b.Vertices()
	for i := range av {
		if !av[i].equal2D(bv[i], 0) {
			return false
		}
	}
	return a.Markers() == b.Markers()
}

func assertBands(t *testing.T, src TriMarker, levels []float64, bands map[int][]TriMarker) {
	t.Helper()
	if a, want := totalArea(bands), src.Area(); math.Abs(a-want) > 1e-9*math.Max(1, want) {
		t.Errorf("area not conserved: expected %g, got %g", want, a)
	}
	for k, pieces := range bands {
		begin, end := BandInterval(levels, k)
		for _, p := range pieces {
			if !inBand(p, begin, end) {
				t.Errorf("piece %v with markers %v lies outside band %d [%g, %g)", p.Triangle, p.Markers(), k, begin, end)
			}
			if p.signedArea2() < -1e-12*math.Max(1, src.Area()) {
				t.Errorf("piece %v is clockwise", p.Triangle)
			}
		}
	}
}

func TestProcessTriangleLargeValues(t *testing.T) {
	tri := NewTriMarker(V(7, 2), V(13, 4), V(5, 7), 2885245, 2765123, 12711064)
	levels := []float64{31622, 100000, 316227, 1000000, 3162277, 1e7, 31622776, 1e20}

	bands, err := ProcessTriangle(tri, levels)
	if err != nil {
		t.Fatalf("process triangle: %v", err)
	}
	if n := countPieces(bands); n != 5 {
		t.Errorf("expected 5 pieces, got %d", n)
	}
	assertBands(t, tri, levels, bands)
}

func TestProcessTriangleVertexOnLevel(t *testing.T) {
	tri := NewTriMarker(V(-6.04, -0.56), V(-5.7, -4.15), V(0.3, 1.41), 3, 4, 4.4)
	levels := []float64{4, 5}

	bands, err := ProcessTriangle(tri, levels)
	if err != nil {
		t.Fatalf("process triangle: %v", err)
	}
	if n := countPieces(bands); n != 2 {
		t.Fatalf("expected 2 pieces, got %d", n)
	}
	if len(bands[0]) != 1 || len(bands[1]) != 1 {
		t.Fatalf("expected one piece in bands 0 and 1, got %v", SortedBands(bands))
	}
	assertMarkers(t, bands[0][0], [3]float64{4, 3, 4})
	assertMarkers(t, bands[1][0], [3]float64{4, 4.4, 4})
	assertBands(t, tri, levels, bands)
}

func TestProcessTriangleThreeLevels(t *testing.T) {
	tri := NewTriMarker(V(-9.19, 3.7), V(0.3, 1.41), V(-5.7, -4.15), 3, 4.4, 1)
	levels := []float64{3, 4, 5}

	bands, err := ProcessTriangle(tri, levels)
	if err != nil {
		t.Fatalf("process triangle: %v", err)
	}
	if n := countPieces(bands); n != 4 {
		t.Errorf("expected 4 pieces, got %d", n)
	}
	assertBands(t, tri, levels, bands)
}

func TestProcessTriangleCases(t *testing.T) {
	tests := []struct {
		name    string
		markers [3]float64
		levels  []float64
		want    map[int][][3]float64
	}{
		{
			name:    "side to side",
			markers: [3]float64{0, 0, 1},
			levels:  []float64{0.5, math.MaxFloat64},
			want: map[int][][3]float64{
				0: {{0.5, 0, 0.5}, {0.5, 0, 0}},
				1: {{0.5, 0.5, 1}},
			},
		},
		{
			name:    "vertex to side first vertex",
			markers: [3]float64{0.5, 0, 1},
			levels:  []float64{0.5, math.MaxFloat64},
			want:    map[int][][3]float64{0: {{0.5, 0, 0.5}}, 1: {{0.5, 1, 0.5}}},
		},
		{
			name:    "vertex to side second vertex",
			markers: [3]float64{0, 0.5, 1},
			levels:  []float64{0.5, math.MaxFloat64},
			want:    map[int][][3]float64{0: {{0.5, 0, 0.5}}, 1: {{0.5, 1, 0.5}}},
		},
		{
			name:    "vertex to side third vertex",
			markers: [3]float64{0, 1, 0.5},
			levels:  []float64{0.5, math.MaxFloat64},
			want:    map[int][][3]float64{0: {{0.5, 0, 0.5}}, 1: {{0.5, 1, 0.5}}},
		},
		{
			name:    "vertex to side reversed",
			markers: [3]float64{1, 0, 0.5},
			levels:  []float64{0.5, math.MaxFloat64},
			want:    map[int][][3]float64{0: {{0.5, 0, 0.5}}, 1: {{0.5, 1, 0.5}}},
		},
		{
			name:    "max marker on level",
			markers: [3]float64{1, 0, 0.5},
			levels:  []float64{1, math.MaxFloat64},
			want:    map[int][][3]float64{0: {{0.5, 0, 1}}},
		},
		{
			name:    "above first level",
			markers: [3]float64{1, 0, 0.5},
			levels:  []float64{-0.5, math.MaxFloat64},
			want:    map[int][][3]float64{1: {{0.5, 0, 1}}},
		},
		{
			name:    "below single level",
			markers: [3]float64{1, 0, 0.5},
			levels:  []float64{5},
			want:    map[int][][3]float64{0: {{0.5, 0, 1}}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := tc.markers
			tri := NewTriMarker(V(1, 1), V(1, 7), V(4, 4), m[0], m[1], m[2])
			bands, err := ProcessTriangle(tri, tc.levels)
			if err != nil {
				t.Fatalf("process triangle: %v", err)
			}
			if len(bands) != len(tc.want) {
				t.Fatalf("expected bands %v, got %v", len(tc.want), SortedBands(bands))
			}
			for k, want := range tc.want {
				got := bands[k]
				if len(got) != len(want) {
					t.Fatalf("band %d: expected %d pieces, got %d", k, len(want), len(got))
				}
				for i := range want {
					assertMarkers(t, got[i], want[i])
				}
			}
			assertBands(t, tri, tc.levels, bands)
		})
	}
}

func TestSplitIntervalTwoPieces(t *testing.T) {
	tri := NewTriMarker(V(1, 1), V(1, 7), V(4, 4), 2, 1, 1)
	outside, inside, ok, err := SplitInterval(1.5, 2, tri)
	if err != nil {
		t.Fatalf("split interval: %v", err)
	}
	if !ok {
		t.Fatal("the triangle intersects [1.5, 2)")
	}
	if len(outside) != 2 || len(inside) != 1 {
		t.Fatalf("expected 2 outside and 1 inside pieces, got %d and %d", len(outside), len(inside))
	}
	assertMarkers(t, outside[0], [3]float64{1.5, 1.5, 1})
	assertMarkers(t, outside[1], [3]float64{1.5, 1, 1})
	assertMarkers(t, inside[0], [3]float64{1.5, 2, 1.5})
}

func TestSplitIntervalReject(t *testing.T) {
	tri := NewTriMarker(V(0, 0), V(1, 0), V(0, 1), 1, 2, 3)
	for _, iv := range [][2]float64{{4, 5}, {-2, 0.5}, {3, 4}} {
		outside, inside, ok, err := SplitInterval(iv[0], iv[1], tri)
		if err != nil {
			t.Fatalf("split interval %v: %v", iv, err)
		}
		if ok || len(outside) != 0 || len(inside) != 0 {
			t.Errorf("interval %v should not intersect markers %v", iv, tri.Markers())
		}
	}

	_, inside, ok, err := SplitInterval(1, 3, tri)
	if err != nil || !ok {
		t.Fatalf("split interval [1, 3): ok=%v err=%v", ok, err)
	}
	if len(inside) != 1 || !sameTriMarker(inside[0], tri) {
		t.Errorf("markers touching both thresholds keep the triangle whole, got %d pieces", len(inside))
	}

	outside, inside, ok, err := SplitInterval(1, 2.5, tri)
	if err != nil || !ok {
		t.Fatalf("split interval [1, 2.5): ok=%v err=%v", ok, err)
	}
	if len(outside) != 1 || len(inside) != 2 {
		t.Errorf("expected 1 outside and 2 inside pieces, got %d and %d", len(outside), len(inside))
	}
}

func TestSplitIntervalUnhandled(t *testing.T) {
	tri := NewTriMarker(V(0, 0), V(1, 0), V(0, 1), 1, 2, 3)
	for _, iv := range [][2]float64{{math.NaN(), 2}, {2, 2}, {3, 1}} {
		_, _, _, err := SplitInterval(iv[0], iv[1], tri)
		if !errors.Is(err, ErrTopology) {
			t.Errorf("interval %v: expected a topology error, got %v", iv, err)
		}
	}
	nan := NewTriMarker(V(0, 0), V(1, 0), V(0, 1), 1, math.NaN(), 3)
	_, _, _, err := SplitInterval(0, 2, nan)
	var te *TopologyError
	if !errors.As(err, &te) {
		t.Fatalf("expected a *TopologyError, got %v", err)
	}
	if te.Begin != 0 || te.End != 2 || te.Flags == "" {
		t.Errorf("topology error should describe the failing split, got %+v", te)
	}
}

func TestProcessTriangleScenario(t *testing.T) {
	tri := NewTriMarker(V(0, 0), V(10, 0), V(0, 10), 0, 5, 10)
	levels := []float64{2.5, 7.5}

	bands, err := ProcessTriangle(tri, levels)
	if err != nil {
		t.Fatalf("process triangle: %v", err)
	}
	if got := SortedBands(bands); !slices.Equal(got, []int{0, 1, 2}) {
		t.Fatalf("expected bands 0, 1 and 2, got %v", got)
	}
	hasVertex := func(pieces []TriMarker, v Vertex) bool {
		for _, p := range pieces {
			for _, pv := range p.Vertices() {
				if pv.equal2D(v, 0) {
					return true
				}
			}
		}
		return false
	}
	if !hasVertex(bands[0], V(0, 0)) {
		t.Error("the vertex with marker 0 should be in band 0")
	}
	if !hasVertex(bands[2], V(0, 10)) {
		t.Error("the vertex with marker 10 should be in band 2")
	}
	if len(bands[0]) != 1 || len(bands[1]) != 4 || len(bands[2]) != 2 {
		t.Errorf("expected 1, 4 and 2 pieces, got %d, %d and %d", len(bands[0]), len(bands[1]), len(bands[2]))
	}
	for _, p := range bands[1] {
		for _, m := range p.Markers() {
			if m < 2.5 || m > 7.5 {
				t.Errorf("middle band marker %g outside [2.5, 7.5]", m)
			}
		}
	}
	assertBands(t, tri, levels, bands)
}

func TestProcessTriangleSingleBand(t *testing.T) {
	tri := NewTriMarker(V(0, 0), V(3, 0), V(0, 3), -4, 2, 9)
	bands, err := ProcessTriangle(tri, nil)
	if err != nil {
		t.Fatalf("process triangle: %v", err)
	}
	if len(bands) != 1 || len(bands[0]) != 1 || !sameTriMarker(bands[0][0], tri) {
		t.Errorf("without levels the triangle should be returned untouched, got %v", bands)
	}
}

func TestProcessTriangleInvalidInput(t *testing.T) {
	tri := NewTriMarker(V(0, 0), V(3, 0), V(0, 3), 0, 1, 2)
	for _, levels := range [][]float64{{2, 1}, {1, 1}, {math.Inf(1)}, {0, math.NaN()}} {
		if _, err := ProcessTriangle(tri, levels); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("levels %v: expected invalid input, got %v", levels, err)
		}
	}
	bad := NewTriMarker(V(0, 0), V(3, 0), V(0, 3), 0, math.Inf(1), 2)
	if _, err := ProcessTriangle(bad, []float64{1}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("infinite marker: expected invalid input, got %v", err)
	}
}

func randomTriangles(r *rand.Rand, n int) []TriMarker {
	tris := make([]TriMarker, 0, n)
	for i := 0; i < n; i++ {
		p := func() Vertex { return V(r.Float64()*20-10, r.Float64()*20-10) }
		m := func() float64 {
			if r.Intn(2) == 0 {
				return float64(r.Intn(7) - 3)
			}
			return r.Float64()*10 - 5
		}
		tris = append(tris, NewTriMarker(p(), p(), p(), m(), m(), m()))
	}
	return tris
}

func TestProcessTriangleRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	levels := []float64{-3, -1.5, 0, 1, 2.25, 3}
	for _, tri := range randomTriangles(r, 2000) {
		bands, err := ProcessTriangle(tri, levels)
		if err != nil {
			t.Fatalf("process triangle %v markers %v: %v", tri.Triangle, tri.Markers(), err)
		}
		assertBands(t, tri, levels, bands)
	}
}

func TestContourParallel(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	tris := randomTriangles(r, 500)
	levels := []float64{-2, 0, 2}

	serial, err := Contour(context.Background(), tris, levels)
	if err != nil {
		t.Fatalf("serial contour: %v", err)
	}
	parallel, err := Contour(context.Background(), tris, levels, WithWorkers(8))
	if err != nil {
		t.Fatalf("parallel contour: %v", err)
	}
	if !slices.Equal(SortedBands(serial), SortedBands(parallel)) {
		t.Fatalf("band sets differ: %v and %v", SortedBands(serial), SortedBands(parallel))
	}
	for k := range serial {
		if !slices.EqualFunc(serial[k], parallel[k], sameTriMarker) {
			t.Errorf("band %d differs between serial and parallel runs", k)
		}
	}
}

func TestContourErrors(t *testing.T) {
	tris := []TriMarker{
		NewTriMarker(V(0, 0), V(1, 0), V(0, 1), 0, 1, 2),
		NewTriMarker(V(0, 0), V(1, 0), V(0, 1), 0, math.NaN(), 2),
	}
	_, err := Contour(context.Background(), tris, []float64{1}, WithWorkers(2))
	var ie *InvalidInputError
	if !errors.As(err, &ie) || ie.Index != 1 {
		t.Errorf("expected an invalid input error on triangle 1, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Contour(ctx, tris[:1], []float64{1}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func FuzzProcessTriangle(f *testing.F) {
	f.Add(1.0, 1.0, 1.0, 7.0, 4.0, 4.0, 0.0, 0.0, 1.0, 0.5, 2.0, 3.0)
	f.Add(0.0, 0.0, 10.0, 0.0, 0.0, 10.0, 0.0, 5.0, 10.0, 2.5, 7.5, 9.0)
	f.Add(-6.04, -0.56, -5.7, -4.15, 0.3, 1.41, 3.0, 4.0, 4.4, 4.0, 5.0, 6.0)
	f.Add(0.0, 0.0, 2.0, 1.0, 1.0, 3.0, 1.0, 2.0, 3.0, 1.5, 2.5, 2.0)

	f.Fuzz(func(t *testing.T, x0, y0, x1, y1, x2, y2, m0, m1, m2, l0, l1, l2 float64) {
		for _, v := range []float64{x0, y0, x1, y1, x2, y2, m0, m1, m2, l0, l1, l2} {
			if math.IsNaN(v) || math.Abs(v) > 1e6 {
				t.Skip()
			}
		}
		levels := []float64{l0, l1, l2}
		slices.Sort(levels)
		levels = slices.Compact(levels)

		tri := NewTriMarker(V(x0, y0), V(x1, y1), V(x2, y2), m0, m1, m2)
		bands, err := ProcessTriangle(tri, levels)
		if err != nil {
			t.Fatalf("process triangle %v markers %v levels %v: %v", tri.Triangle, tri.Markers(), levels, err)
		}
		assertBands(t, tri, levels, bands)
	})
}
