package trimesh

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestBandsFeatureCollection(t *testing.T) {
	tri := NewTriMarker(V(0, 0), V(10, 0), V(0, 10), 0, 5, 10)
	levels := []float64{2.5, 7.5}
	bands, err := ProcessTriangle(tri, levels)
	if err != nil {
		t.Fatal(err)
	}
	fc := BandsFeatureCollection(bands, levels)
	if len(fc.Features) != 7 {
		t.Fatalf("expected 7 features, got %d", len(fc.Features))
	}

	prev := -1
	for _, f := range fc.Features {
		k := f.Properties["band"].(int)
		if k < prev {
			t.Errorf("features are not ordered by band: %d after %d", k, prev)
		}
		prev = k
		_, hasBegin := f.Properties["begin"]
		_, hasEnd := f.Properties["end"]
		if hasBegin != (k > 0) || hasEnd != (k < 2) {
			t.Errorf("band %d: unexpected bounds %v", k, f.Properties)
		}
		if _, ok := f.Geometry.(orb.Polygon); !ok {
			t.Errorf("expected a polygon, got %T", f.Geometry)
		}
	}

	// Infinite bounds are left out, the collection must encode.
	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatal(err)
	}
	back, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Features) != len(fc.Features) {
		t.Errorf("expected %d features after decoding, got %d", len(fc.Features), len(back.Features))
	}
}

func TestGeometryFeatureCollection(t *testing.T) {
	m := siteMesh(t, sitesA)
	v := NewVoronoi(m)
	for dim, n := range map[OutputDimension]int{
		DimensionPoints:   19,
		DimensionLines:    24,
		DimensionPolygons: 7,
	} {
		g, err := v.Generate(dim)
		if err != nil {
			t.Fatal(err)
		}
		fc := GeometryFeatureCollection(g)
		if len(fc.Features) != n {
			t.Errorf("%s: expected %d features, got %d", dim, n, len(fc.Features))
		}
		for i, f := range fc.Features {
			if f.Properties["id"] != i {
				t.Errorf("%s: feature %d numbered %v", dim, i, f.Properties["id"])
			}
		}
	}
	if fc := GeometryFeatureCollection(nil); len(fc.Features) != 0 {
		t.Errorf("expected no feature, got %d", len(fc.Features))
	}
	if fc := GeometryFeatureCollection(orb.Point{1, 2}); len(fc.Features) != 1 {
		t.Errorf("expected one feature, got %d", len(fc.Features))
	}
}
