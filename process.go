package trimesh

import (
	"context"
	"fmt"
	"image"
	"io"
	"math/rand"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Mode selects what the processor derives from the triangulated image.
type Mode int

const (
	// ModeContour splits the triangles into luminance bands.
	ModeContour Mode = iota
	// ModeVoronoi builds the Voronoi diagram of the sampled sites.
	ModeVoronoi
	// ModeMesh keeps the triangulation.
	ModeMesh
)

var modeNames = [...]string{"contour", "voronoi", "mesh"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode returns the mode named s.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return 0, errors.Errorf("unknown mode %q, expected one of %s", s, strings.Join(modeNames[:], ", "))
}

// DefaultLevels split the luminance range into eight bands.
var DefaultLevels = []float64{32, 64, 96, 128, 160, 192, 224}

// Processor holds the options of the image pipeline.
type Processor struct {
	BlurRadius      int
	SobelThreshold  int
	PointsThreshold int
	MaxPoints       int
	MaxSize         int
	Levels          []float64
	Mode            Mode
	Dimension       OutputDimension
	Envelope        bool
	Workers         int
	Seed            int64
	Logger          *zap.Logger
}

// Result is the outcome of one processed image.
type Result struct {
	Mode      Mode
	Dimension OutputDimension
	// Image is the blurred grayscale source, sampled for the elevations.
	Image     *image.NRGBA
	Source    *image.NRGBA
	Points    []Vertex
	Triangles []Triangle
	Mesh      *Mesh
	Levels    []float64
	Bands     map[int][]TriMarker
	Diagram   orb.Geometry
}

// Process decodes the image, samples sites on its edges, triangulates them
// with the luminance as elevation and derives the output of the mode.
func (p *Processor) Process(ctx context.Context, r io.Reader) (*Result, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	return p.ProcessImage(ctx, src)
}

// ProcessImage runs the pipeline on a decoded image.
func (p *Processor) ProcessImage(ctx context.Context, src image.Image) (*Result, error) {
	var err error
	logger := p.Logger
	if logger == nil {
		logger = Logger()
	}
	img := Downscale(ImgToNRGBA(src), p.MaxSize)
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	if width < 3 || height < 3 {
		return nil, invalidInput(-1, "image of %dx%d pixels is too small", width, height)
	}

	gray := Blur(Grayscale(img), p.BlurRadius)
	edges := Sobel(gray, float64(p.SobelThreshold))
	points := EdgePoints(edges, p.PointsThreshold, p.MaxPoints, rand.New(rand.NewSource(p.Seed)))

	frame := orb.Bound{Max: orb.Point{float64(width - 1), float64(height - 1)}}
	tris := NewDelaunay().Init(frame).Insert(points).GetTriangles()
	for i, t := range tris {
		tris[i] = Triangle{
			P0: lift(gray, t.P0),
			P1: lift(gray, t.P1),
			P2: lift(gray, t.P2),
		}
	}

	res := &Result{
		Mode:      p.Mode,
		Dimension: p.Dimension,
		Image:     gray,
		Source:    img,
		Points:    points,
		Triangles: tris,
	}
	logger.Debug("image triangulated",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("points", len(points)),
		zap.Int("triangles", len(tris)),
	)

	switch p.Mode {
	case ModeContour:
		res.Levels = p.Levels
		if len(res.Levels) == 0 {
			res.Levels = DefaultLevels
		}
		markers := make([]TriMarker, len(tris))
		for i, t := range tris {
			markers[i] = NewTriMarker(t.P0, t.P1, t.P2, t.P0.Z, t.P1.Z, t.P2.Z)
		}
		res.Bands, err = Contour(ctx, markers, res.Levels, WithWorkers(p.Workers), WithLogger(logger))
		if err != nil {
			return nil, errors.Wrap(err, "contour")
		}
	case ModeVoronoi, ModeMesh:
		res.Mesh, err = BuildMesh(Rings(tris), WithLogger(logger))
		if err != nil {
			return nil, errors.Wrap(err, "build mesh")
		}
		if p.Mode == ModeMesh {
			break
		}
		var opts []VoronoiOption
		if p.Envelope {
			opts = append(opts, WithEnvelope(frame))
		}
		opts = append(opts, WithLogger(logger))
		res.Diagram, err = NewVoronoi(res.Mesh, opts...).Generate(p.Dimension)
		if err != nil {
			return nil, errors.Wrap(err, "voronoi")
		}
	default:
		return nil, errors.Errorf("unsupported mode %s", p.Mode)
	}
	return res, nil
}

// lift sets the vertex elevation to the image luminance.
func lift(gray *image.NRGBA, v Vertex) Vertex {
	return V3(v.X, v.Y, Luminance(gray, v.X, v.Y))
}

// FeatureCollection exports the result of the mode as GeoJSON.
func (r *Result) FeatureCollection() *geojson.FeatureCollection {
	switch r.Mode {
	case ModeContour:
		return BandsFeatureCollection(r.Bands, r.Levels)
	case ModeVoronoi:
		return GeometryFeatureCollection(r.Diagram)
	}
	mp := make(orb.MultiPolygon, len(r.Triangles))
	for i, t := range r.Triangles {
		mp[i] = t.Polygon()
	}
	return GeometryFeatureCollection(mp)
}
