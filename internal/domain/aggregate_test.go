package domain

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeaksPerCategory(t *testing.T) {
	t.Run("scenario counts", func(t *testing.T) {
		peaks := []Peak{
			testPeak("p1", "A", 300, testAlpsID),
			testPeak("p2", "B", 1200, testAlpsID),
			testPeak("p3", "C", 900, testIrelandID),
		}

		chart := PeaksPerCategory(peaks, testCategories())

		expected := ChartData{
			Labels:   []string{"Alps", "Ireland"},
			Datasets: []Dataset{{Name: "Peaks", Values: []float64{2, 1}}},
		}
		if diff := cmp.Diff(expected, chart); diff != "" {
			t.Errorf("PeaksPerCategory mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unreferenced categories count zero", func(t *testing.T) {
		chart := PeaksPerCategory([]Peak{testPeak("p1", "A", 1)}, testCategories())
		assert.Equal(t, []float64{0, 0}, chart.Datasets[0].Values)
	})

	t.Run("peak in several categories counts in each", func(t *testing.T) {
		peaks := []Peak{
			testPeak("p1", "A", 1, testAlpsID),
			testPeak("p2", "B", 1, testAlpsID, testIrelandID),
		}
		chart := PeaksPerCategory(peaks, testCategories())
		assert.Equal(t, []float64{2, 1}, chart.Datasets[0].Values)
	})

	t.Run("labels and values stay parallel", func(t *testing.T) {
		for _, n := range []int{0, 1, 7} {
			cats := make([]Category, n)
			chart := PeaksPerCategory(nil, cats)
			assert.Len(t, chart.Labels, n)
			assert.Len(t, chart.Datasets[0].Values, n)
		}
	})
}

func TestElevationHistogram(t *testing.T) {
	t.Run("scenario pie", func(t *testing.T) {
		peaks := []Peak{
			testPeak("p1", "A", 400, testAlpsID),
			testPeak("p2", "B", 1100, testAlpsID),
			testPeak("p3", "C", 2100, testIrelandID),
			testPeak("p4", "D", 800),
		}

		chart := ElevationHistogram(peaks)

		assert.Equal(t, []string{"< 500m", "500–999m", "1000–1499m", "1500–1999m", "2000m+"}, chart.Labels)
		assert.Equal(t, []float64{1, 1, 1, 0, 1}, chart.Datasets[0].Values)
	})

	t.Run("boundaries", func(t *testing.T) {
		tests := []struct {
			meters float64
			band   int
		}{
			{-100, 0},
			{499, 0},
			{499.5, 0},
			{500, 1},
			{999.99, 1},
			{1000, 2},
			{1499, 2},
			{1500, 3},
			{1999.5, 3},
			{2000, 4},
			{8848, 4},
		}
		for _, tt := range tests {
			chart := ElevationHistogram([]Peak{testPeak("p", "P", tt.meters)})
			values := chart.Datasets[0].Values
			require.Len(t, values, 5)
			assert.Equal(t, 1.0, values[tt.band], "elevation %v", tt.meters)
			assert.Equal(t, 1.0, sum(values), "elevation %v counted once", tt.meters)
		}
	})

	t.Run("non-numeric elevation excluded", func(t *testing.T) {
		peaks := []Peak{
			testPeak("p1", "A", 100),
			{ID: "p2", Name: "B"},
			{ID: "p3", Name: "C", Elevation: Elevation{Meters: math.NaN(), Valid: true}},
		}
		chart := ElevationHistogram(peaks)
		assert.Len(t, chart.Labels, 5)
		assert.Equal(t, 1.0, sum(chart.Datasets[0].Values))
	})

	t.Run("empty input still has five bands", func(t *testing.T) {
		chart := ElevationHistogram(nil)
		assert.Equal(t, []float64{0, 0, 0, 0, 0}, chart.Datasets[0].Values)
	})
}

func TestElevationSeries(t *testing.T) {
	peaks := []Peak{
		testPeak("p1", "Tall", 2000),
		{ID: "p2", Name: "Unknown"},
		testPeak("p3", "Short", 300),
		testPeak("p4", "Also tall", 2000),
	}

	t.Run("missing as zero", func(t *testing.T) {
		chart := ElevationSeries(peaks, IncludeMissingAsZero)
		assert.Equal(t, []string{"Unknown", "Short", "Tall", "Also tall"}, chart.Labels)
		assert.Equal(t, []float64{0, 300, 2000, 2000}, chart.Datasets[0].Values)
		assert.Equal(t, "Elevation (m)", chart.Datasets[0].Name)
	})

	t.Run("exclude missing", func(t *testing.T) {
		chart := ElevationSeries(peaks, ExcludeMissing)
		assert.Equal(t, []string{"Short", "Tall", "Also tall"}, chart.Labels)
		assert.Equal(t, []float64{300, 2000, 2000}, chart.Datasets[0].Values)
	})

	t.Run("input order untouched", func(t *testing.T) {
		_ = ElevationSeries(peaks, IncludeMissingAsZero)
		assert.Equal(t, "p1", peaks[0].ID)
	})
}

func TestCategoryIDAtIndex(t *testing.T) {
	cats := testCategories()

	tests := []struct {
		name   string
		index  float64
		wantID string
		wantOK bool
	}{
		{"first", 0, testAlpsID, true},
		{"last", 1, testIrelandID, true},
		{"out of range", 5, "", false},
		{"negative", -1, "", false},
		{"fractional", 0.5, "", false},
		{"NaN", math.NaN(), "", false},
		{"infinity", math.Inf(1), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := CategoryIDAtIndex(cats, tt.index)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
