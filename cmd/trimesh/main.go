package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/esimov/trimesh"
	"github.com/esimov/trimesh/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// Flags
	source          = flag.String("in", "", "Source image, file, directory or URL")
	destination     = flag.String("out", "", "Destination PNG file or directory")
	mode            = flag.String("mode", "contour", "Output mode: contour, voronoi or mesh")
	levels          = flag.String("levels", "", "Comma separated luminance thresholds of the contour bands")
	dimension       = flag.Int("dim", 2, "Voronoi output dimension: 0 points, 1 lines, 2 polygons")
	envelope        = flag.Bool("envelope", false, "Clip the Voronoi diagram to the image frame")
	blurRadius      = flag.Int("blur", 2, "Blur radius")
	sobelThreshold  = flag.Int("sobel", 10, "Sobel filter threshold")
	pointsThreshold = flag.Int("points", 20, "Points threshold")
	maxPoints       = flag.Int("max", 2500, "Maximum number of points")
	maxSize         = flag.Int("size", 0, "Downscale the image to this size on its longest side")
	lineWidth       = flag.Float64("width", 1, "Line width")
	noise           = flag.Int("noise", 0, "Noise factor")
	workers         = flag.Int("workers", 4, "Number of concurrent contouring workers")
	seed            = flag.Int64("seed", 1, "Seed of the point sampling")
	geojsonOut      = flag.String("geojson", "", "Write the geometries as GeoJSON to this file or directory")
	verbose         = flag.Bool("verbose", false, "Verbose logging")
)

func main() {
	flag.Parse()

	if len(*source) == 0 || len(*destination) == 0 {
		log.Fatal("Usage: trimesh -in input.jpg -out out.png [-mode contour|voronoi|mesh]")
	}
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Unable to create logger: %v", err)
		}
		defer logger.Sync()
		trimesh.SetLogger(logger)
	}

	m, err := trimesh.ParseMode(*mode)
	if err != nil {
		log.Fatal(err)
	}
	lv, err := parseLevels(*levels)
	if err != nil {
		log.Fatal(err)
	}

	p := &trimesh.Processor{
		BlurRadius:      *blurRadius,
		SobelThreshold:  *sobelThreshold,
		PointsThreshold: *pointsThreshold,
		MaxPoints:       *maxPoints,
		MaxSize:         *maxSize,
		Levels:          lv,
		Mode:            m,
		Dimension:       trimesh.OutputDimension(*dimension),
		Envelope:        *envelope,
		Workers:         *workers,
		Seed:            *seed,
	}
	r := &trimesh.Renderer{LineWidth: *lineWidth, Noise: *noise}

	toProcess, err := collect(*source, *destination)
	if err != nil {
		log.Fatal(err)
	}

	color := utils.IsTerminal(os.Stdout)
	ctx := context.Background()
	failed := false
	for _, job := range toProcess {
		var s *utils.Spinner
		if utils.IsTerminal(os.Stderr) {
			s = utils.NewSpinner(os.Stderr, color)
			s.Start(fmt.Sprintf("Processing %s in %s mode...", filepath.Base(job.in), m))
		}
		start := time.Now()
		res, err := run(ctx, p, r, job)
		if s != nil {
			s.Stop()
		}

		if err != nil {
			failed = true
			fmt.Fprintln(os.Stderr, utils.Colorize(color, utils.ErrorColor,
				fmt.Sprintf("Error processing %s: %v", job.in, err)))
			continue
		}
		fmt.Printf("Generated in: %s\n", utils.Colorize(color, utils.SuccessColor, utils.FormatTime(time.Since(start))))
		fmt.Printf("Total number of %s triangles generated out of %s points\n",
			utils.Colorize(color, utils.SuccessColor, strconv.Itoa(len(res.Triangles))),
			utils.Colorize(color, utils.SuccessColor, strconv.Itoa(len(res.Points))))
		fmt.Printf("Saved as: %s %s\n\n", filepath.Base(job.out), utils.Colorize(color, utils.SuccessColor, "✓"))
	}
	if failed {
		os.Exit(1)
	}
}

type job struct {
	in, out, geojson string
}

// collect maps every source image to its destination files.
func collect(src, dst string) ([]job, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return []job{{in: src, out: dst, geojson: *geojsonOut}}, nil
	}
	fs, err := os.Stat(src)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open source")
	}
	if !fs.IsDir() {
		return []job{{in: src, out: dst, geojson: *geojsonOut}}, nil
	}

	if ds, err := os.Stat(dst); err != nil || !ds.IsDir() {
		return nil, errors.Errorf("please specify an existing directory as destination: %s", dst)
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read dir")
	}

	var jobs []job
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".jpg" && ext != ".jpeg" && ext != ".png") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		j := job{
			in:  filepath.Join(src, e.Name()),
			out: filepath.Join(dst, name+".png"),
		}
		if *geojsonOut != "" {
			j.geojson = filepath.Join(*geojsonOut, name+".geojson")
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func run(ctx context.Context, p *trimesh.Processor, r *trimesh.Renderer, j job) (*trimesh.Result, error) {
	var in io.ReadCloser
	if strings.HasPrefix(j.in, "http://") || strings.HasPrefix(j.in, "https://") {
		f, err := utils.DownloadImage(ctx, j.in)
		if err != nil {
			return nil, err
		}
		defer os.Remove(f.Name())
		in = f
	} else {
		f, err := os.Open(j.in)
		if err != nil {
			return nil, errors.Wrap(err, "unable to open source file")
		}
		in = f
	}
	defer in.Close()

	res, err := p.Process(ctx, in)
	if err != nil {
		return nil, err
	}

	out, err := os.Create(j.out)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create output")
	}
	defer out.Close()
	if err := r.Encode(out, res); err != nil {
		return nil, err
	}

	if j.geojson != "" {
		data, err := json.Marshal(res.FeatureCollection())
		if err != nil {
			return nil, errors.Wrap(err, "encode geojson")
		}
		if err := os.WriteFile(j.geojson, data, 0o644); err != nil {
			return nil, errors.Wrap(err, "write geojson")
		}
	}
	return res, nil
}

func parseLevels(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var lv []float64
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid level %q", f)
		}
		lv = append(lv, v)
	}
	return lv, nil
}
