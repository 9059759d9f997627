package trimesh

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// nodeSnapper merges node coordinates lying within tol of an already
// registered node.
type nodeSnapper struct {
	tol  float64
	tree *quadtree.Quadtree
	buf  []orb.Pointer
}

func newNodeSnapper(b orb.Bound, tol float64) *nodeSnapper {
	return &nodeSnapper{tol: tol, tree: quadtree.New(b.Pad(tol + 1))}
}

func (s *nodeSnapper) snap(p orb.Point) orb.Point {
	s.buf = s.tree.InBound(s.buf[:0], orb.Bound{Min: p, Max: p}.Pad(s.tol))
	best, bestDist := p, math.Inf(1)
	for _, item := range s.buf {
		q := item.Point()
		if d := planar.Distance(p, q); d <= s.tol && d < bestDist {
			best, bestDist = q, d
		}
	}
	if math.IsInf(bestDist, 1) {
		if err := s.tree.Add(p); err != nil {
			// Outside of the bound: the point is kept but never snapped to.
			Logger().Debug("node not indexed", zap.Float64("x", p[0]), zap.Float64("y", p[1]), zap.Error(err))
		}
	}
	return best
}

// nodedSegment is the R-tree entry of one segment of an input line.
type nodedSegment struct {
	line, index int
	a, b        orb.Point
	rect        rtreego.Rect
}

func (s *nodedSegment) Bounds() rtreego.Rect {
	return s.rect
}

// cut is a split position along a line: segment index and ratio in [0, 1).
type cut struct {
	index int
	t     float64
}

func (c cut) less(o cut) bool {
	return c.index < o.index || (c.index == o.index && c.t < o.t)
}

// nodeLines splits the lines at every point where they touch or cross
// another line, within tol, and at the extra nodes lying on them. Closed
// rings are only split at such points. Pieces shorter than tol are dropped,
// duplicated pieces are kept once.
func nodeLines(lines []orb.LineString, tol float64, nodes ...orb.Point) []orb.LineString {
	var (
		bound orb.Bound
		segs  []*nodedSegment
		first = true
	)
	for li, ls := range lines {
		for i := 0; i+1 < len(ls); i++ {
			a, b := ls[i], ls[i+1]
			sb := orb.Bound{Min: a, Max: a}.Extend(b)
			if first {
				bound, first = sb, false
			} else {
				bound = bound.Union(sb)
			}
			segs = append(segs, &nodedSegment{line: li, index: i, a: a, b: b, rect: boundRect(sb, tol)})
		}
	}
	if len(segs) == 0 {
		return nil
	}
	for _, p := range nodes {
		bound = bound.Extend(p)
	}

	objs := make([]rtreego.Spatial, len(segs))
	for i, s := range segs {
		objs[i] = s
	}
	tree := rtreego.NewTree(2, 25, 50, objs...)

	cuts := make([][]cut, len(lines))
	for _, s := range segs {
		for _, item := range tree.SearchIntersect(s.rect) {
			o := item.(*nodedSegment)
			if o == s || (o.line == s.line && adjacent(lines[s.line], s.index, o.index)) {
				continue
			}
			for _, t := range segmentCuts(s.a, s.b, o.a, o.b, tol) {
				c := cut{index: s.index, t: t}
				if t >= 1 {
					c = cut{index: s.index + 1}
				}
				cuts[s.line] = append(cuts[s.line], c)
			}
		}
	}
	for _, p := range nodes {
		for _, item := range tree.SearchIntersect(boundRect(orb.Bound{Min: p, Max: p}, tol)) {
			s := item.(*nodedSegment)
			ts := segmentCuts(s.a, s.b, p, p, tol)
			if len(ts) == 0 {
				continue
			}
			c := cut{index: s.index, t: ts[0]}
			if ts[0] >= 1 {
				c = cut{index: s.index + 1}
			}
			cuts[s.line] = append(cuts[s.line], c)
		}
	}

	snapper := newNodeSnapper(bound, tol)
	seen := make(map[string]bool)
	var out []orb.LineString
	for li, ls := range lines {
		for _, piece := range splitLine(ls, cuts[li]) {
			if len(piece) < 2 {
				continue
			}
			piece[0] = snapper.snap(piece[0])
			piece[len(piece)-1] = snapper.snap(piece[len(piece)-1])
			if planar.Length(piece) <= tol {
				continue
			}
			key := lineKey(piece)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, piece)
		}
	}
	return out
}

// adjacent reports whether two segments of the line share a vertex.
func adjacent(ls orb.LineString, i, j int) bool {
	if i-j == 1 || j-i == 1 {
		return true
	}
	last := len(ls) - 2
	closed := len(ls) > 3 && ls[0] == ls[len(ls)-1]
	return closed && ((i == 0 && j == last) || (j == 0 && i == last))
}

// segmentCuts returns the ratios along a-b where c-d touches or crosses it.
func segmentCuts(a, b, c, d orb.Point, tol float64) []float64 {
	var res []float64
	dx, dy := b[0]-a[0], b[1]-a[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return nil
	}
	l := math.Sqrt(l2)
	ptol := tol / l

	// Endpoints of the other segment lying on this one.
	for _, p := range [2]orb.Point{c, d} {
		t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l2
		if t < -ptol || t > 1+ptol {
			continue
		}
		t = math.Min(math.Max(t, 0), 1)
		q := orb.Point{a[0] + dx*t, a[1] + dy*t}
		if planar.Distance(p, q) <= tol {
			res = append(res, t)
		}
	}

	// Proper crossing.
	ex, ey := d[0]-c[0], d[1]-c[1]
	den := dx*ey - dy*ex
	if den != 0 {
		t := ((c[0]-a[0])*ey - (c[1]-a[1])*ex) / den
		u := ((c[0]-a[0])*dy - (c[1]-a[1])*dx) / den
		if t > 0 && t < 1 && u >= 0 && u <= 1 {
			res = append(res, t)
		}
	}
	return res
}

// splitLine cuts the line at the given positions.
func splitLine(ls orb.LineString, cuts []cut) []orb.LineString {
	last := len(ls) - 1
	inner := cuts[:0:0]
	startCut := false
	for _, c := range cuts {
		if (c.index == 0 && c.t == 0) || c.index >= last {
			startCut = true
			continue
		}
		inner = append(inner, c)
	}
	closed := len(ls) > 3 && ls[0] == ls[last]
	if len(inner) == 0 {
		return []orb.LineString{slices.Clone(ls)}
	}
	sort.Slice(inner, func(i, j int) bool { return inner[i].less(inner[j]) })

	at := func(c cut) orb.Point {
		a, b := ls[c.index], ls[c.index+1]
		return orb.Point{a[0] + (b[0]-a[0])*c.t, a[1] + (b[1]-a[1])*c.t}
	}

	var (
		pieces []orb.LineString
		cur    = orb.LineString{ls[0]}
		prev   = cut{}
	)
	for _, c := range inner {
		if c == prev {
			continue
		}
		for k := prev.index + 1; k <= c.index; k++ {
			cur = append(cur, ls[k])
		}
		p := at(c)
		if c.t > 0 {
			cur = append(cur, p)
		}
		pieces = append(pieces, cur)
		cur = orb.LineString{p}
		prev = c
	}
	for k := prev.index + 1; k <= last; k++ {
		cur = append(cur, ls[k])
	}
	pieces = append(pieces, cur)

	if closed && !startCut {
		// The ring start is not a node: join the last piece with the first.
		head := pieces[0]
		tail := pieces[len(pieces)-1]
		pieces[0] = append(tail, head[1:]...)
		pieces = pieces[:len(pieces)-1]
	}
	for i := range pieces {
		pieces[i] = dedupe(pieces[i])
	}
	return pieces
}

// dedupe removes consecutive duplicated points.
func dedupe(ls orb.LineString) orb.LineString {
	out := ls[:0]
	for i, p := range ls {
		if i == 0 || p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// lineKey identifies a piece regardless of its direction.
func lineKey(ls orb.LineString) string {
	r := ls
	if r[len(r)-1][0] < r[0][0] || (r[len(r)-1][0] == r[0][0] && r[len(r)-1][1] < r[0][1]) {
		r = slices.Clone(ls)
		r.Reverse()
	}
	b := make([]byte, 0, len(r)*16)
	for _, p := range r {
		b = appendFloat(b, p[0])
		b = appendFloat(b, p[1])
	}
	return string(b)
}

func appendFloat(b []byte, f float64) []byte {
	u := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		b = append(b, byte(u>>(8*i)))
	}
	return b
}

// halfEdge is one direction of a noded piece.
type halfEdge struct {
	edge  int
	from  int
	to    int
	angle float64
	face  int
}

// planarGraph is the graph of noded pieces used to extract faces.
type planarGraph struct {
	nodes   []orb.Point
	lines   []orb.LineString
	removed []bool
	half    []halfEdge
	// out lists the outgoing half edges of every node sorted by angle
	out [][]int
}

func newPlanarGraph(lines []orb.LineString) *planarGraph {
	g := &planarGraph{}
	ids := make(map[orb.Point]int)
	node := func(p orb.Point) int {
		id, ok := ids[p]
		if !ok {
			id = len(g.nodes)
			ids[p] = id
			g.nodes = append(g.nodes, p)
		}
		return id
	}
	for _, ls := range lines {
		if len(ls) < 2 {
			continue
		}
		e := len(g.lines)
		g.lines = append(g.lines, ls)
		u, v := node(ls[0]), node(ls[len(ls)-1])
		n := len(ls)
		g.half = append(g.half,
			halfEdge{edge: e, from: u, to: v, angle: angle(ls[0], ls[1]), face: -1},
			halfEdge{edge: e, from: v, to: u, angle: angle(ls[n-1], ls[n-2]), face: -1},
		)
	}
	g.removed = make([]bool, len(g.lines))
	return g
}

func angle(from, to orb.Point) float64 {
	return math.Atan2(to[1]-from[1], to[0]-from[0])
}

// link sorts the outgoing half edges of every node, skipping removed edges.
func (g *planarGraph) link() {
	g.out = make([][]int, len(g.nodes))
	for h, he := range g.half {
		if !g.removed[he.edge] {
			g.out[he.from] = append(g.out[he.from], h)
		}
	}
	for _, hs := range g.out {
		sort.Slice(hs, func(i, j int) bool { return g.half[hs[i]].angle < g.half[hs[j]].angle })
	}
}

// pruneDangles removes edges ending at a node of degree one until none is left.
func (g *planarGraph) pruneDangles() {
	for {
		g.link()
		pruned := false
		for _, hs := range g.out {
			if len(hs) == 1 {
				g.removed[g.half[hs[0]].edge] = true
				pruned = true
			}
		}
		if !pruned {
			return
		}
	}
}

// faces traces every face, keeping it on the left of its half edges.
func (g *planarGraph) faces() [][]int {
	for h := range g.half {
		g.half[h].face = -1
	}
	var faces [][]int
	for h := range g.half {
		if g.removed[g.half[h].edge] || g.half[h].face != -1 {
			continue
		}
		id := len(faces)
		var face []int
		for cur := h; g.half[cur].face == -1; cur = g.next(cur) {
			g.half[cur].face = id
			face = append(face, cur)
		}
		faces = append(faces, face)
	}
	return faces
}

// next returns the half edge following h on its face: at the end node of h,
// the first outgoing half edge clockwise from the way back.
func (g *planarGraph) next(h int) int {
	back := h ^ 1
	hs := g.out[g.half[h].to]
	k := slices.Index(hs, back)
	return hs[(k-1+len(hs))%len(hs)]
}

// removeCutEdges drops the edges having the same face on both sides.
func (g *planarGraph) removeCutEdges() bool {
	found := false
	for h := 0; h < len(g.half); h += 2 {
		if g.removed[g.half[h].edge] {
			continue
		}
		if g.half[h].face == g.half[h+1].face {
			g.removed[g.half[h].edge] = true
			found = true
		}
	}
	return found
}

func (g *planarGraph) ring(face []int) orb.Ring {
	var r orb.Ring
	for _, h := range face {
		ls := g.lines[g.half[h].edge]
		if h%2 == 1 {
			ls = slices.Clone(ls)
			ls.Reverse()
		}
		r = append(r, ls[:len(ls)-1]...)
	}
	return append(r, r[0])
}

// components labels every node with its connected component.
func (g *planarGraph) components() []int {
	comp := make([]int, len(g.nodes))
	for i := range comp {
		comp[i] = -1
	}
	n := 0
	for start := range g.nodes {
		if comp[start] != -1 {
			continue
		}
		stack := []int{start}
		comp[start] = n
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, h := range g.out[u] {
				if v := g.half[h].to; comp[v] == -1 {
					comp[v] = n
					stack = append(stack, v)
				}
			}
		}
		n++
	}
	return comp
}

// polygonize builds the polygons enclosed by the noded lines. Dangling and
// cut edges are ignored. The exterior ring of a component lying inside a
// face of another component becomes a hole of that face.
func polygonize(lines []orb.LineString) orb.MultiPolygon {
	g := newPlanarGraph(lines)
	var faces [][]int
	for pass := 0; ; pass++ {
		g.pruneDangles()
		faces = g.faces()
		if !g.removeCutEdges() {
			break
		}
		Logger().Debug("polygonize: cut edges removed", zap.Int("pass", pass))
	}
	comp := g.components()

	type shell struct {
		polygon orb.Polygon
		area    float64
		comp    int
	}
	var (
		shells []shell
		holes  []orb.Ring
		hcomp  []int
	)
	for _, f := range faces {
		r := g.ring(f)
		if len(r) < 4 {
			continue
		}
		c := comp[g.half[f[0]].from]
		switch r.Orientation() {
		case orb.CCW:
			shells = append(shells, shell{polygon: orb.Polygon{r}, area: planar.Area(r), comp: c})
		case orb.CW:
			holes = append(holes, r)
			hcomp = append(hcomp, c)
		}
	}

	for i, h := range holes {
		best := -1
		for k, s := range shells {
			if s.comp == hcomp[i] || !planar.RingContains(s.polygon[0], h[0]) {
				continue
			}
			if best == -1 || s.area < shells[best].area {
				best = k
			}
		}
		if best != -1 {
			shells[best].polygon = append(shells[best].polygon, h)
		}
	}

	mp := make(orb.MultiPolygon, 0, len(shells))
	for _, s := range shells {
		mp = append(mp, s.polygon)
	}
	return mp
}
