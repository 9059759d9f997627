package trimesh

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// BandsFeatureCollection converts a band result set into one feature per
// triangle, ordered by band. Every feature carries its band index and the
// finite bounds of the band.
func BandsFeatureCollection(bands map[int][]TriMarker, levels []float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, k := range SortedBands(bands) {
		begin, end := BandInterval(levels, k)
		for _, t := range bands[k] {
			f := geojson.NewFeature(t.Polygon())
			f.Properties["band"] = k
			if !math.IsInf(begin, 0) {
				f.Properties["begin"] = begin
			}
			if !math.IsInf(end, 0) {
				f.Properties["end"] = end
			}
			f.Properties["markers"] = []float64{t.M0, t.M1, t.M2}
			fc.Append(f)
		}
	}
	return fc
}

// GeometryFeatureCollection converts a Voronoi result into one feature per
// point, line or polygon, numbered in output order.
func GeometryFeatureCollection(g orb.Geometry) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	add := func(g orb.Geometry) {
		f := geojson.NewFeature(g)
		f.Properties["id"] = len(fc.Features)
		fc.Append(f)
	}
	switch g := g.(type) {
	case orb.MultiPoint:
		for _, p := range g {
			add(p)
		}
	case orb.MultiLineString:
		for _, ls := range g {
			add(ls)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			add(p)
		}
	case orb.Collection:
		for _, item := range g {
			add(item)
		}
	case nil:
	default:
		add(g)
	}
	return fc
}
