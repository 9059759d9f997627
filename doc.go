/*
Package trimesh splits scalar fields sampled on triangles into iso bands and
derives Voronoi diagrams from triangle meshes.

The command line utility triangulates an image from the points sampled on
its edges and renders either the luminance bands, the Voronoi diagram or the
triangulation. Check the supported options by typing:

	$ trimesh --help

Example splitting a triangle into the bands of two thresholds:

	package main

	import (
		"fmt"

		"github.com/esimov/trimesh"
	)

	func main() {
		t := trimesh.NewTriMarker(
			trimesh.V(0, 0), trimesh.V(10, 0), trimesh.V(0, 10),
			0, 5, 10,
		)
		bands, err := trimesh.ProcessTriangle(t, []float64{2.5, 7.5})
		if err != nil {
			fmt.Printf("Error on contouring: %s", err.Error())
			return
		}
		for _, k := range trimesh.SortedBands(bands) {
			fmt.Println(k, len(bands[k]))
		}
	}

Example generating the Voronoi cells of a set of sites, clipped to a bound:

	package main

	import (
		"fmt"

		"github.com/esimov/trimesh"
		"github.com/paulmach/orb"
	)

	func main() {
		sites := []trimesh.Vertex{
			trimesh.V(2, 2), trimesh.V(6, 3), trimesh.V(4, 7),
			trimesh.V(2, 8), trimesh.V(1, 6), trimesh.V(3, 5),
		}
		m, err := trimesh.BuildMesh(trimesh.Rings(trimesh.Triangulate(sites)))
		if err != nil {
			fmt.Printf("Error on mesh building: %s", err.Error())
			return
		}
		env := orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{6, 8}}
		cells, err := trimesh.NewVoronoi(m, trimesh.WithEnvelope(env)).Generate(trimesh.DimensionPolygons)
		if err != nil {
			fmt.Printf("Error on Voronoi generation: %s", err.Error())
			return
		}
		fmt.Println(len(cells.(orb.MultiPolygon)))
	}
*/
package trimesh
