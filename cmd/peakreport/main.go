// Command peakreport prints the dashboard datasets for a peaks fixture without
// a running backend: category counts, elevation bands, the elevation series,
// map overlay sizes, and optionally the peaks nearest to one peak.
//
// Usage:
//
//	go run ./cmd/peakreport \
//	  -peaks testdata/peaks.json \
//	  -categories testdata/categories.json \
//	  -near p1 -radius 25000
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/couchcryptid/peak-catalog/internal/domain"
)

type options struct {
	peaksPath      string
	categoriesPath string
	category       string
	minElevation   float64
	policy         string
	near           string
	radius         float64
	max            int
}

func main() {
	var opts options
	flag.StringVar(&opts.peaksPath, "peaks", "", "path to a JSON array of peaks")
	flag.StringVar(&opts.categoriesPath, "categories", "", "path to a JSON array of categories")
	flag.StringVar(&opts.category, "category", "", "category id, __all__ or __none__ (comma separated for several)")
	flag.Float64Var(&opts.minElevation, "min-elevation", math.Inf(-1), "minimum elevation in meters")
	flag.StringVar(&opts.policy, "policy", "first", "overlay policy: first or every")
	flag.StringVar(&opts.near, "near", "", "peak id to list neighbors for")
	flag.Float64Var(&opts.radius, "radius", domain.DefaultNearbyRadiusMeters, "neighbor search radius in meters")
	flag.IntVar(&opts.max, "max", domain.DefaultNearbyMax, "maximum neighbors")
	flag.Parse()

	if opts.peaksPath == "" || opts.categoriesPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(os.Stdout, opts); err != nil {
		fmt.Fprintln(os.Stderr, "peakreport:", err)
		os.Exit(1)
	}
}

func run(w io.Writer, opts options) error {
	var peaks []domain.Peak
	if err := readJSON(opts.peaksPath, &peaks); err != nil {
		return err
	}
	var categories []domain.Category
	if err := readJSON(opts.categoriesPath, &categories); err != nil {
		return err
	}

	var criterion []string
	if opts.category != "" {
		criterion = strings.Split(opts.category, ",")
	}
	filtered := domain.Filter(peaks, domain.FilterOptions{
		Category:     domain.ParseCategoryCriterion(criterion),
		MinElevation: opts.minElevation,
	})

	fmt.Fprintf(w, "Peaks: %d of %d after filtering\n", len(filtered), len(peaks))

	printChart(w, "Peaks per category", domain.PeaksPerCategory(filtered, categories))
	printChart(w, "Elevation bands", domain.ElevationHistogram(filtered))
	printChart(w, "Elevation series", domain.ElevationSeries(filtered, domain.IncludeMissingAsZero))

	fmt.Fprintln(w, "\n=== Map overlays ===")
	for _, o := range domain.AssignOverlays(filtered, categories, domain.ParseOverlayPolicy(opts.policy)) {
		fmt.Fprintf(w, "%-20s %d\n", o.Name, len(o.Markers))
	}

	if opts.near == "" {
		return nil
	}
	origin, ok := domain.FindPeak(peaks, opts.near)
	if !ok {
		return fmt.Errorf("peak %q not found", opts.near)
	}
	fmt.Fprintf(w, "\n=== Within %.0f m of %s ===\n", opts.radius, origin.Name)
	for _, n := range domain.Nearest(peaks, origin, opts.radius, opts.max) {
		fmt.Fprintf(w, "%-20s %8.2f km\n", n.Peak.Name, n.DistanceMeters/1000)
	}
	return nil
}

func printChart(w io.Writer, title string, c domain.ChartData) {
	fmt.Fprintf(w, "\n=== %s ===\n", title)
	if len(c.Datasets) == 0 {
		return
	}
	for i, label := range c.Labels {
		fmt.Fprintf(w, "%-20s %g\n", label, c.Datasets[0].Values[i])
	}
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
