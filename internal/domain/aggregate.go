package domain

import (
	"math"
	"sort"
)

// Dataset is one numeric series of a chart.
type Dataset struct {
	Name   string    `json:"name,omitempty"`
	Values []float64 `json:"values"`
}

// ChartData is a labeled chart. Every dataset has one value per label.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// EmptyChart returns chart data with no labels and one empty dataset.
func EmptyChart(name string) ChartData {
	return ChartData{Labels: []string{}, Datasets: []Dataset{{Name: name, Values: []float64{}}}}
}

// ElevationBand is a half-open elevation range [Min, Max).
type ElevationBand struct {
	Name string
	Min  float64
	Max  float64
}

// Contains reports whether meters falls inside the band.
func (b ElevationBand) Contains(meters float64) bool {
	return meters >= b.Min && meters < b.Max
}

// elevationBands lists the fixed chart bands in display order. They are
// contiguous, so every finite elevation lands in exactly one band.
var elevationBands = []ElevationBand{
	{Name: "< 500m", Min: math.Inf(-1), Max: 500},
	{Name: "500–999m", Min: 500, Max: 1000},
	{Name: "1000–1499m", Min: 1000, Max: 1500},
	{Name: "1500–1999m", Min: 1500, Max: 2000},
	{Name: "2000m+", Min: 2000, Max: math.Inf(1)},
}

// Bands returns a copy of the elevation bands.
func Bands() []ElevationBand {
	return append([]ElevationBand{}, elevationBands...)
}

// PeaksPerCategory counts, for each category in list order, the peaks that
// reference it. Categories no peak references count as 0.
func PeaksPerCategory(peaks []Peak, categories []Category) ChartData {
	labels := make([]string, len(categories))
	values := make([]float64, len(categories))
	for i, c := range categories {
		labels[i] = c.Name
		n := 0
		for _, p := range peaks {
			if p.Categories.Contains(c.ID) {
				n++
			}
		}
		values[i] = float64(n)
	}
	return ChartData{Labels: labels, Datasets: []Dataset{{Name: "Peaks", Values: values}}}
}

// ElevationHistogram counts peaks per elevation band. Peaks without a
// numeric elevation are not counted anywhere.
func ElevationHistogram(peaks []Peak) ChartData {
	labels := make([]string, len(elevationBands))
	values := make([]float64, len(elevationBands))
	for i, b := range elevationBands {
		labels[i] = b.Name
	}
	for _, p := range peaks {
		if !p.Elevation.Numeric() {
			continue
		}
		for i, b := range elevationBands {
			if b.Contains(p.Elevation.Meters) {
				values[i]++
				break
			}
		}
	}
	return ChartData{Labels: labels, Datasets: []Dataset{{Name: "Peaks", Values: values}}}
}

// SeriesPolicy decides what the elevation series does with peaks that have
// no numeric elevation.
type SeriesPolicy int

const (
	// IncludeMissingAsZero plots missing elevations at 0.
	IncludeMissingAsZero SeriesPolicy = iota
	// ExcludeMissing leaves those peaks out of the series.
	ExcludeMissing
)

// ElevationSeries sorts peaks ascending by elevation and returns their names
// and elevations as parallel series. Equal elevations keep input order.
func ElevationSeries(peaks []Peak, policy SeriesPolicy) ChartData {
	sorted := make([]Peak, 0, len(peaks))
	for _, p := range peaks {
		if policy == ExcludeMissing && !p.Elevation.Numeric() {
			continue
		}
		sorted = append(sorted, p)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Elevation.OrZero() < sorted[j].Elevation.OrZero()
	})

	labels := make([]string, len(sorted))
	values := make([]float64, len(sorted))
	for i, p := range sorted {
		labels[i] = p.Name
		values[i] = p.Elevation.OrZero()
	}
	return ChartData{Labels: labels, Datasets: []Dataset{{Name: "Elevation (m)", Values: values}}}
}

// CategoryIDAtIndex maps a bar index of the PeaksPerCategory chart back to
// the category identifier. It reports false for indexes that are not finite,
// not whole, or out of range.
func CategoryIDAtIndex(categories []Category, index float64) (string, bool) {
	if math.IsNaN(index) || math.IsInf(index, 0) || index != math.Trunc(index) {
		return "", false
	}
	if index < 0 || index >= float64(len(categories)) {
		return "", false
	}
	return categories[int(index)].ID, true
}
