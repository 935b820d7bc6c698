package domain

import (
	"math"
	"sort"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

const (
	// DefaultNearbyRadiusMeters is the search radius used when none is given.
	DefaultNearbyRadiusMeters = 10000.0
	// DefaultNearbyMax caps the number of neighbors when no limit is given.
	DefaultNearbyMax = 50
)

// LatLng is a WGS-84 coordinate pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Neighbor is a peak together with its exact distance from a search origin.
type Neighbor struct {
	Peak           Peak    `json:"peak"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// DistanceMeters returns the haversine distance between a and b. The inner
// term is clamped to 1 so near-antipodal points cannot push asin out of domain.
func DistanceMeters(a, b LatLng) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)

	s := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLng/2), 2)

	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(s)))
}

// Nearest returns up to maxResults peaks within radiusMeters of origin,
// closest first. The origin itself is matched by identifier and skipped.
// Peaks whose distance is not finite (bad coordinates) are dropped.
func Nearest(all []Peak, origin Peak, radiusMeters float64, maxResults int) []Neighbor {
	if maxResults <= 0 {
		return []Neighbor{}
	}
	from := origin.Position()

	candidates := make([]Neighbor, 0)
	for _, p := range all {
		if p.ID == origin.ID {
			continue
		}
		d := DistanceMeters(from, p.Position())
		if math.IsNaN(d) || math.IsInf(d, 0) || d > radiusMeters {
			continue
		}
		candidates = append(candidates, Neighbor{Peak: p, DistanceMeters: d})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DistanceMeters < candidates[j].DistanceMeters
	})

	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	return candidates
}

// FindPeak returns the peak with the given identifier.
func FindPeak(peaks []Peak, id string) (Peak, bool) {
	for _, p := range peaks {
		if p.ID == id {
			return p, true
		}
	}
	return Peak{}, false
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
