package trimesh

import (
	"fmt"
	"math"
)

// isoTolerance is the relative distance under which a marker is
// considered to lie on a threshold.
const isoTolerance = 1e-15

type caseKind int

const (
	caseUnhandled caseKind = iota
	caseOutside
	caseInside
	// one or more vertices lie on a threshold but no edge is crossed
	caseSingleVertex
	caseSideToSide
	caseVertexToSide
	caseBothInside
)

var caseNames = [...]string{
	caseUnhandled:    "unhandled",
	caseOutside:      "outside",
	caseInside:       "inside",
	caseSingleVertex: "single vertex",
	caseSideToSide:   "side to side",
	caseVertexToSide: "vertex to side",
	caseBothInside:   "both inside",
}

func (k caseKind) String() string {
	if k < 0 || int(k) >= len(caseNames) {
		return fmt.Sprintf("caseKind(%d)", int(k))
	}
	return caseNames[k]
}

// isoEqual reports whether the marker lies on the threshold.
func isoEqual(m, iso float64) bool {
	if m == iso {
		return true
	}
	if math.IsInf(iso, 0) {
		return false
	}
	return math.Abs(m-iso) <= isoTolerance*math.Abs(iso)
}

// sideOf returns -1, 0 or 1 when the marker is below, on or above iso.
func sideOf(m, iso float64) int {
	switch {
	case isoEqual(m, iso):
		return 0
	case m < iso:
		return -1
	default:
		return 1
	}
}

// crossing records how the three markers of a triangle relate to one threshold.
// Edge s goes from vertex s to vertex (s+1)%3.
type crossing struct {
	iso    float64
	sides  [3]int
	on     [3]int
	nOn    int
	edges  [2]int
	points [2]Vertex
	nEdges int
	// invalid is set when more than two edges are crossed
	invalid bool
}

func newCrossing(t TriMarker, iso float64) crossing {
	c := crossing{iso: iso}
	for i, m := range t.Markers() {
		c.sides[i] = sideOf(m, iso)
		if c.sides[i] == 0 {
			c.on[c.nOn] = i
			c.nOn++
		}
	}
	for s := 0; s < 3; s++ {
		a, b := s, (s+1)%3
		if c.sides[a]*c.sides[b] >= 0 {
			continue
		}
		if c.nEdges == 2 {
			c.invalid = true
			break
		}
		c.edges[c.nEdges] = s
		c.points[c.nEdges] = splitPoint(t, a, b, iso)
		c.nEdges++
	}
	return c
}

// splitPoint interpolates the position of iso along the edge a-b,
// starting from the end with the lower marker.
func splitPoint(t TriMarker, a, b int, iso float64) Vertex {
	lo, hi := a, b
	if t.Marker(lo) > t.Marker(hi) {
		lo, hi = hi, lo
	}
	mlo, mhi := t.Marker(lo), t.Marker(hi)
	return t.Vertex(lo).lerp(t.Vertex(hi), (iso-mlo)/(mhi-mlo))
}

func (c *crossing) cuts() bool {
	return c.nEdges > 0
}

func (c *crossing) below() (int, bool) {
	for i, s := range c.sides {
		if s < 0 {
			return i, true
		}
	}
	return 0, false
}

func (c *crossing) above() (int, bool) {
	for i, s := range c.sides {
		if s > 0 {
			return i, true
		}
	}
	return 0, false
}

func (c *crossing) String() string {
	return fmt.Sprintf("iso=%g sides=%v edges=%v", c.iso, c.sides, c.edges[:c.nEdges])
}

// classification is the outcome of classify for one triangle and one interval.
type classification struct {
	kind       caseKind
	begin, end crossing
	// atBegin tells which threshold cuts a side to side or vertex to side case
	atBegin bool
}

func (c *classification) cutting() *crossing {
	if c.atBegin {
		return &c.begin
	}
	return &c.end
}

// classify computes the split case of the triangle against [begin, end).
func classify(t TriMarker, begin, end float64) classification {
	var c classification
	if math.IsNaN(begin) || math.IsNaN(end) || begin >= end {
		return c
	}
	for _, m := range t.Markers() {
		if math.IsNaN(m) {
			return c
		}
	}
	if begin > t.MaxMarker() || end < t.MinMarker() {
		c.kind = caseOutside
		return c
	}
	c.begin = newCrossing(t, begin)
	c.end = newCrossing(t, end)
	if c.begin.invalid || c.end.invalid {
		return c
	}

	switch {
	case c.begin.cuts() && c.end.cuts():
		c.kind = caseBothInside
		return c
	case c.begin.cuts():
		c.atBegin = true
	case c.end.cuts():
	case c.begin.nOn > 0 || c.end.nOn > 0:
		c.kind = caseSingleVertex
		return c
	case c.within():
		c.kind = caseInside
		return c
	default:
		c.kind = caseOutside
		return c
	}

	switch cut := c.cutting(); {
	case cut.nEdges == 2:
		c.kind = caseSideToSide
	case cut.nEdges == 1 && cut.nOn == 1:
		c.kind = caseVertexToSide
	}
	return c
}

// within reports a triangle lying entirely in [begin, end) without being cut:
// no vertex below begin, no vertex above end and at least one vertex
// strictly below end.
func (c *classification) within() bool {
	strictlyBelowEnd := false
	for i := 0; i < 3; i++ {
		if c.begin.sides[i] < 0 || c.end.sides[i] > 0 {
			return false
		}
		if c.end.sides[i] < 0 {
			strictlyBelowEnd = true
		}
	}
	return strictlyBelowEnd
}

func (c *classification) flags() string {
	return fmt.Sprintf("case=%s begin{%s} end{%s}", c.kind, &c.begin, &c.end)
}
