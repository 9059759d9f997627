package trimesh

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
	"github.com/pkg/errors"
)

// indexedVertex is the quadtree payload of the vertex index.
type indexedVertex struct {
	id int
	v  Vertex
}

func (iv indexedVertex) Point() orb.Point {
	return iv.v.Point()
}

// vertexIndex assigns dense ids to coordinates, merging the ones closer
// than eps, and records for every id the triangles sharing it.
type vertexIndex struct {
	eps      float64
	tree     *quadtree.Quadtree
	vertices []Vertex
	sharing  [][]int
	buf      []orb.Pointer
}

func newVertexIndex(bound orb.Bound, eps float64) *vertexIndex {
	return &vertexIndex{
		eps:  eps,
		tree: quadtree.New(bound.Pad(eps + 1)),
	}
}

// nearest returns the id of the closest indexed vertex lying within eps.
func (ix *vertexIndex) nearest(v Vertex) (int, bool) {
	p := v.Point()
	query := orb.Bound{Min: p, Max: p}.Pad(ix.eps)
	ix.buf = ix.tree.InBound(ix.buf[:0], query)

	best, bestDist := -1, 0.0
	for _, item := range ix.buf {
		iv := item.(indexedVertex)
		d := iv.v.Dist(v)
		if d > ix.eps {
			continue
		}
		if best == -1 || d < bestDist || (d == bestDist && iv.id < best) {
			best, bestDist = iv.id, d
		}
	}
	return best, best != -1
}

// add returns the id of v, creating it when no vertex lies within eps,
// and records the triangle as sharing it.
func (ix *vertexIndex) add(v Vertex, triangle int) (int, error) {
	id, ok := ix.nearest(v)
	if !ok {
		id = len(ix.vertices)
		if err := ix.tree.Add(indexedVertex{id: id, v: v}); err != nil {
			return 0, errors.Wrapf(err, "index vertex %v", v)
		}
		ix.vertices = append(ix.vertices, v)
		ix.sharing = append(ix.sharing, nil)
	}
	// Triangles are added in increasing order, the lists stay sorted.
	if s := ix.sharing[id]; len(s) == 0 || s[len(s)-1] != triangle {
		ix.sharing[id] = append(s, triangle)
	}
	return id, nil
}

// common returns the triangles other than self sharing both vertices.
func (ix *vertexIndex) common(self, a, b int) []int {
	sa, sb := ix.sharing[a], ix.sharing[b]
	var res []int
	for i, j := 0, 0; i < len(sa) && j < len(sb); {
		switch {
		case sa[i] < sb[j]:
			i++
		case sa[i] > sb[j]:
			j++
		default:
			if sa[i] != self {
				res = append(res, sa[i])
			}
			i++
			j++
		}
	}
	return res
}
