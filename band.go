package trimesh

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// Contour splits every triangle of the dataset into iso bands.
// Triangles are processed concurrently when WithWorkers is set; the
// pieces of each band keep the input order of their source triangles.
func Contour(ctx context.Context, triangles []TriMarker, levels []float64, opts ...ContourOption) (map[int][]TriMarker, error) {
	o := newOptions(opts)
	if err := validateLevels(levels); err != nil {
		return nil, err
	}

	results := make([]map[int][]TriMarker, len(triangles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i := range triangles {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t := triangles[i]
			if !t.finiteMarkers() {
				return invalidInput(i, "non finite marker in %v", t.Markers())
			}
			bands, err := processTriangle(t, levels)
			if err != nil {
				return errors.Wrapf(err, "triangle %d", i)
			}
			results[i] = bands
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := make(map[int][]TriMarker)
	for _, bands := range results {
		for k, pieces := range bands {
			merged[k] = append(merged[k], pieces...)
		}
	}
	o.logger.Debug("contour done",
		zap.Int("triangles", len(triangles)),
		zap.Int("bands", len(merged)),
		zap.Int("workers", o.workers),
	)
	return merged, nil
}

// SortedBands returns the band indexes present in the result in ascending order.
func SortedBands(bands map[int][]TriMarker) []int {
	keys := maps.Keys(bands)
	slices.Sort(keys)
	return keys
}
