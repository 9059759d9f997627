package trimesh

import (
	"image"
	"math/rand"
)

// pointRate is the share of the edge pixels kept as sites.
const pointRate = 0.875

// EdgePoints samples sites among the pixels whose 3x3 mean edge value
// exceeds the threshold. Pixels on the image border are skipped, the
// frame corners are added by the triangulation.
func EdgePoints(img *image.NRGBA, threshold, maxPoints int, rnd *rand.Rand) []Vertex {
	width, height := img.Bounds().Dx(), img.Bounds().Dy()

	var candidates []Vertex
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			sum := 0
			for row := -1; row <= 1; row++ {
				step := (y + row) * width
				for col := -1; col <= 1; col++ {
					sum += int(img.Pix[(x+col+step)<<2])
				}
			}
			if sum/9 > threshold {
				candidates = append(candidates, V(float64(x), float64(y)))
			}
		}
	}

	limit := Min(int(float64(len(candidates))*pointRate), maxPoints)
	if limit <= 0 {
		return nil
	}
	// Sample without replacement so that no site is inserted twice.
	rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates[:limit]
}
