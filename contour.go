package trimesh

import (
	"math"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// SplitInterval cuts the triangle by the interval [begin, end).
// The pieces lying in the interval are returned as inside, the remaining
// pieces as outside. ok is false when no part of the triangle belongs
// to the interval; both slices are then empty.
func SplitInterval(begin, end float64, t TriMarker) (outside, inside []TriMarker, ok bool, err error) {
	c := classify(t, begin, end)
	switch c.kind {
	case caseOutside:
		return nil, nil, false, nil
	case caseInside:
		inside = []TriMarker{t}
	case caseSingleVertex:
		if !c.within() {
			return nil, nil, false, nil
		}
		inside = []TriMarker{t}
	case caseSideToSide, caseVertexToSide:
		var below, above []TriMarker
		if c.kind == caseSideToSide {
			below, above = splitSides(t, c.cutting())
		} else {
			below, above = splitVertexSide(t, c.cutting())
		}
		if c.atBegin {
			outside, inside = below, above
		} else {
			outside, inside = above, below
		}
	case caseBothInside:
		outside, inside, err = splitBoth(begin, end, t)
		if err != nil {
			return nil, nil, false, err
		}
	default:
		return nil, nil, false, &TopologyError{
			Op:       "split interval",
			Triangle: t,
			Begin:    begin,
			End:      end,
			Flags:    c.flags(),
		}
	}

	for _, p := range inside {
		if !inBand(p, begin, end) {
			return nil, nil, false, &TopologyError{
				Op:       "split interval: piece out of band",
				Triangle: p,
				Begin:    begin,
				End:      end,
				Flags:    c.flags(),
			}
		}
	}
	return outside, inside, true, nil
}

// splitBoth handles an interval whose two thresholds cross the triangle:
// the part above begin is split again by end. Parts of the first split
// that do not reach below end are returned as outside.
func splitBoth(begin, end float64, t TriMarker) (outside, inside []TriMarker, err error) {
	outside, upper, ok, err := SplitInterval(begin, math.Inf(1), t)
	if err != nil || !ok {
		return nil, nil, err
	}
	for _, p := range upper {
		out, in, ok, err := SplitInterval(math.Inf(-1), end, p)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			outside = append(outside, p)
			continue
		}
		outside = append(outside, out...)
		inside = append(inside, in...)
	}
	return outside, inside, nil
}

// splitSides cuts the triangle along the segment joining its two crossed
// edges. The vertex shared by both edges gets a triangle of its own, the
// two other vertices share the remaining quadrilateral.
func splitSides(t TriMarker, c *crossing) (below, above []TriMarker) {
	var (
		shared   int
		alone    TriMarker
		twins    [2]TriMarker
		iso      = c.iso
		p0, p1   = c.points[0], c.points[1]
		vertex   = t.Vertex
		marker   = t.Marker
		sec, thd int
	)
	switch [2]int{c.edges[0], c.edges[1]} {
	case [2]int{0, 2}:
		shared, sec, thd = 0, 1, 2
		alone = NewTriMarker(p0, p1, vertex(shared), iso, iso, marker(shared))
		twins[0] = NewTriMarker(p0, vertex(thd), p1, iso, marker(thd), iso)
		twins[1] = NewTriMarker(p0, vertex(sec), vertex(thd), iso, marker(sec), marker(thd))
	case [2]int{0, 1}:
		shared, sec, thd = 1, 2, 0
		alone = NewTriMarker(p0, vertex(shared), p1, iso, marker(shared), iso)
		twins[0] = NewTriMarker(p0, p1, vertex(thd), iso, iso, marker(thd))
		twins[1] = NewTriMarker(p1, vertex(sec), vertex(thd), iso, marker(sec), marker(thd))
	default: // edges 1 and 2
		shared, sec, thd = 2, 0, 1
		alone = NewTriMarker(p0, vertex(shared), p1, iso, marker(shared), iso)
		twins[0] = NewTriMarker(p0, p1, vertex(sec), iso, iso, marker(sec))
		twins[1] = NewTriMarker(p0, vertex(sec), vertex(thd), iso, marker(sec), marker(thd))
	}
	if c.sides[shared] < 0 {
		return []TriMarker{alone}, twins[:]
	}
	return twins[:], []TriMarker{alone}
}

// splitVertexSide cuts the triangle along the line joining the vertex lying
// on the threshold and the crossing point of the opposite edge.
func splitVertexSide(t TriMarker, c *crossing) (below, above []TriMarker) {
	v := c.on[0]
	lo, _ := c.below()
	hi, _ := c.above()
	p, iso := c.points[0], c.iso
	below = []TriMarker{NewTriMarker(t.Vertex(v), t.Vertex(lo), p, iso, t.Marker(lo), iso)}
	above = []TriMarker{NewTriMarker(t.Vertex(v), t.Vertex(hi), p, iso, t.Marker(hi), iso)}
	return below, above
}

// inBand reports whether every marker of the piece lies in [begin, end],
// thresholds included within the iso tolerance.
func inBand(t TriMarker, begin, end float64) bool {
	for _, m := range t.Markers() {
		if sideOf(m, begin) < 0 || sideOf(m, end) > 0 {
			return false
		}
	}
	return true
}

// BandInterval returns the bounds of band k for the given levels.
// Band 0 starts at -Inf and band len(levels) ends at +Inf.
func BandInterval(levels []float64, k int) (begin, end float64) {
	begin, end = math.Inf(-1), math.Inf(1)
	if k > 0 {
		begin = levels[k-1]
	}
	if k < len(levels) {
		end = levels[k]
	}
	return begin, end
}

// ProcessTriangle splits the triangle into pieces lying each in a single
// band of the iso levels. The result maps band indexes, from 0 to
// len(levels), to their pieces. Levels must be finite and strictly increasing.
func ProcessTriangle(t TriMarker, levels []float64) (map[int][]TriMarker, error) {
	if err := validateLevels(levels); err != nil {
		return nil, err
	}
	if !t.finiteMarkers() {
		return nil, invalidInput(-1, "non finite marker in %v", t.Markers())
	}
	return processTriangle(t, levels)
}

func processTriangle(t TriMarker, levels []float64) (map[int][]TriMarker, error) {
	bands := make(map[int][]TriMarker)
	stack := []TriMarker{t}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Bands ending below the smallest marker are rejected anyway.
		k, found := slices.BinarySearch(levels, cur.MinMarker())
		if found {
			k++
		}
		matched := false
		for band := max(k-1, 0); band <= len(levels); band++ {
			begin, end := BandInterval(levels, band)
			outside, inside, ok, err := SplitInterval(begin, end, cur)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if len(inside) == 0 {
				return nil, &TopologyError{Op: "process triangle: empty split", Triangle: cur, Begin: begin, End: end}
			}
			bands[band] = append(bands[band], inside...)
			stack = append(stack, outside...)
			matched = true
			break
		}
		if !matched {
			return nil, &TopologyError{
				Op:       "process triangle: no band",
				Triangle: cur,
				Begin:    math.Inf(-1),
				End:      math.Inf(1),
			}
		}
	}
	if ce := Logger().Check(zap.DebugLevel, "triangle processed"); ce != nil {
		m := t.Markers()
		ce.Write(zap.Int("bands", len(bands)), zap.Float64s("markers", m[:]))
	}
	return bands, nil
}

func validateLevels(levels []float64) error {
	for i, l := range levels {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return invalidInput(i, "level %g is not finite", l)
		}
		if i > 0 && levels[i-1] >= l {
			return invalidInput(i, "levels must be strictly increasing, got %g after %g", l, levels[i-1])
		}
	}
	return nil
}
