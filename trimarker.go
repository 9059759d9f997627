package trimesh

import "math"

// TriMarker is a counter clockwise triangle with one scalar marker per
// vertex. It is a value: every transformation builds a new TriMarker.
type TriMarker struct {
	Triangle
	M0, M1, M2 float64
}

// NewTriMarker returns a counter clockwise triangle. When the input is
// clockwise the first and last vertex are swapped together with their markers.
func NewTriMarker(p0, p1, p2 Vertex, m0, m1, m2 float64) TriMarker {
	if isClockwise(p0, p1, p2) {
		p0, p2 = p2, p0
		m0, m2 = m2, m0
	}
	return TriMarker{
		Triangle: Triangle{P0: p0, P1: p1, P2: p2},
		M0:       m0,
		M1:       m1,
		M2:       m2,
	}
}

// Marker returns the marker of the i-th vertex.
func (t TriMarker) Marker(i int) float64 {
	switch i {
	case 0:
		return t.M0
	case 1:
		return t.M1
	default:
		return t.M2
	}
}

// Markers returns the three markers in ring order.
func (t TriMarker) Markers() [3]float64 {
	return [3]float64{t.M0, t.M1, t.M2}
}

// MinMarker returns the smallest marker.
func (t TriMarker) MinMarker() float64 {
	return t.MinMarkerExcept(-1)
}

// MaxMarker returns the biggest marker.
func (t TriMarker) MaxMarker() float64 {
	return t.MaxMarkerExcept(-1)
}

// MinMarkerExcept returns the smallest marker ignoring vertex i.
func (t TriMarker) MinMarkerExcept(i int) float64 {
	m := math.Inf(1)
	for k, v := range t.Markers() {
		if k != i {
			m = math.Min(m, v)
		}
	}
	return m
}

// MaxMarkerExcept returns the biggest marker ignoring vertex i.
func (t TriMarker) MaxMarkerExcept(i int) float64 {
	m := math.Inf(-1)
	for k, v := range t.Markers() {
		if k != i {
			m = math.Max(m, v)
		}
	}
	return m
}

// finiteMarkers reports whether no marker is NaN or infinite.
func (t TriMarker) finiteMarkers() bool {
	for _, m := range t.Markers() {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return false
		}
	}
	return true
}
