package domain

import "math"

// UncategorizedOverlay is the overlay for peaks without a resolvable category.
const UncategorizedOverlay = "Uncategorized"

// OverlayPolicy decides how many overlays a peak is placed in.
type OverlayPolicy int

const (
	// OverlayFirstCategory places a peak only in the overlay of its first category.
	OverlayFirstCategory OverlayPolicy = iota
	// OverlayEveryCategory places a peak in the overlay of each of its categories.
	OverlayEveryCategory
)

// ParseOverlayPolicy maps "first" or "every" to a policy; anything else is first.
func ParseOverlayPolicy(s string) OverlayPolicy {
	if s == "every" {
		return OverlayEveryCategory
	}
	return OverlayFirstCategory
}

// Marker is a map pin for one peak.
type Marker struct {
	PeakID string `json:"peakId"`
	Lat    Coord  `json:"lat"`
	Lng    Coord  `json:"lng"`
	Popup  string `json:"popup"`
}

// Overlay is a named, toggleable group of markers.
type Overlay struct {
	Name       string   `json:"name"`
	CategoryID string   `json:"categoryId,omitempty"`
	Markers    []Marker `json:"markers"`
}

// AssignOverlays groups peaks into one overlay per category, in category
// order, followed by the Uncategorized overlay. Overlays are returned even
// when empty so the map can offer every toggle.
func AssignOverlays(peaks []Peak, categories []Category, policy OverlayPolicy) []Overlay {
	overlays := make([]Overlay, 0, len(categories)+1)
	slot := make(map[string]int, len(categories))
	for _, c := range categories {
		if _, dup := slot[c.ID]; dup {
			continue
		}
		slot[c.ID] = len(overlays)
		overlays = append(overlays, Overlay{Name: c.Name, CategoryID: c.ID, Markers: []Marker{}})
	}
	uncategorized := len(overlays)
	overlays = append(overlays, Overlay{Name: UncategorizedOverlay, Markers: []Marker{}})

	for _, p := range peaks {
		m := MarkerFor(p, categories)
		targets := overlayTargets(p, slot, policy)
		if len(targets) == 0 {
			targets = []int{uncategorized}
		}
		for _, i := range targets {
			overlays[i].Markers = append(overlays[i].Markers, m)
		}
	}
	return overlays
}

func overlayTargets(p Peak, slot map[string]int, policy OverlayPolicy) []int {
	ids := CategoryIDs(p)
	if len(ids) == 0 {
		return nil
	}
	if policy == OverlayFirstCategory {
		if i, ok := slot[ids[0]]; ok {
			return []int{i}
		}
		return nil
	}

	seen := make(map[int]bool, len(ids))
	var targets []int
	for _, id := range ids {
		if i, ok := slot[id]; ok && !seen[i] {
			seen[i] = true
			targets = append(targets, i)
		}
	}
	return targets
}

// MarkerFor builds the marker for p with the detailed popup.
func MarkerFor(p Peak, categories []Category) Marker {
	return Marker{
		PeakID: p.ID,
		Lat:    p.Lat,
		Lng:    p.Lng,
		Popup:  PopupDetail(p, categories),
	}
}

const (
	focusZoom    = 11
	fitPaddingPx = 40
)

// Viewport tells the map widget where to look.
type Viewport struct {
	Center  *LatLng  `json:"center,omitempty"`
	Zoom    int      `json:"zoom,omitempty"`
	Bounds  []LatLng `json:"bounds,omitempty"`
	Padding int      `json:"padding,omitempty"`
}

// ViewportFor focuses on selected when given, otherwise fits the bounding box
// of every peak with usable coordinates. With neither it returns an empty
// viewport.
func ViewportFor(peaks []Peak, selected *Peak) Viewport {
	if selected != nil && selected.Lat.Finite() && selected.Lng.Finite() {
		c := selected.Position()
		return Viewport{Center: &c, Zoom: focusZoom}
	}

	points := make([]LatLng, 0, len(peaks))
	for _, p := range peaks {
		if p.Lat.Finite() && p.Lng.Finite() {
			points = append(points, p.Position())
		}
	}
	sw, ne, ok := BoundingBox(points)
	if !ok {
		return Viewport{}
	}
	return Viewport{Bounds: []LatLng{sw, ne}, Padding: fitPaddingPx}
}

// BoundingBox returns the south-west and north-east corners of points.
func BoundingBox(points []LatLng) (LatLng, LatLng, bool) {
	if len(points) == 0 {
		return LatLng{}, LatLng{}, false
	}
	sw := LatLng{Lat: math.Inf(1), Lng: math.Inf(1)}
	ne := LatLng{Lat: math.Inf(-1), Lng: math.Inf(-1)}
	for _, p := range points {
		sw.Lat = math.Min(sw.Lat, p.Lat)
		sw.Lng = math.Min(sw.Lng, p.Lng)
		ne.Lat = math.Max(ne.Lat, p.Lat)
		ne.Lng = math.Max(ne.Lng, p.Lng)
	}
	return sw, ne, true
}
