package domain

import (
	"bytes"
	"encoding/json"
	"math"
)

// Category is a named grouping that peaks can reference by identifier.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// StoredImage is an image hosted by the image provider.
type StoredImage struct {
	URL      string `json:"url" validate:"required"`
	PublicID string `json:"publicId,omitempty"`
}

// Peak is a mountain peak as returned by the backend. Fields that arrive in an
// unexpected shape decode to their "missing" state instead of failing the
// whole record.
type Peak struct {
	ID          string        `json:"_id,omitempty"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Elevation   Elevation     `json:"elevation"`
	Lat         Coord         `json:"lat"`
	Lng         Coord         `json:"lng"`
	UserID      string        `json:"userid,omitempty"`
	Categories  CategoryRefs  `json:"categories"`
	Images      []StoredImage `json:"images"`
}

// UnmarshalJSON decodes a backend peak. Coordinates start out as NaN so an
// absent lat or lng key is treated like a non-numeric one.
func (p *Peak) UnmarshalJSON(data []byte) error {
	type plain Peak
	v := plain{Lat: Coord(math.NaN()), Lng: Coord(math.NaN())}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Peak(v)
	return nil
}

// Position returns the peak's coordinates.
func (p Peak) Position() LatLng {
	return LatLng{Lat: float64(p.Lat), Lng: float64(p.Lng)}
}

// Elevation is a height in meters that may be absent or non-numeric in
// backend data. Only JSON numbers decode as valid.
type Elevation struct {
	Meters float64
	Valid  bool
}

// Meters returns a valid elevation.
func Meters(v float64) Elevation {
	return Elevation{Meters: v, Valid: true}
}

// Numeric reports whether the elevation holds a finite number.
func (e Elevation) Numeric() bool {
	return e.Valid && !math.IsNaN(e.Meters) && !math.IsInf(e.Meters, 0)
}

// OrZero returns the elevation, or 0 when it is not numeric.
func (e Elevation) OrZero() float64 {
	if !e.Numeric() {
		return 0
	}
	return e.Meters
}

func (e *Elevation) UnmarshalJSON(data []byte) error {
	*e = Elevation{}
	var v float64
	if isJSONNumber(data) && json.Unmarshal(data, &v) == nil {
		*e = Meters(v)
	}
	return nil
}

func (e Elevation) MarshalJSON() ([]byte, error) {
	if !e.Numeric() {
		return []byte("null"), nil
	}
	return json.Marshal(e.Meters)
}

// Coord is a latitude or longitude in degrees. Missing or non-numeric input
// decodes to NaN so distance calculations drop the peak instead of placing
// it at 0,0.
type Coord float64

func (c *Coord) UnmarshalJSON(data []byte) error {
	var v float64
	if isJSONNumber(data) && json.Unmarshal(data, &v) == nil {
		*c = Coord(v)
		return nil
	}
	*c = Coord(math.NaN())
	return nil
}

func (c Coord) MarshalJSON() ([]byte, error) {
	v := float64(c)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// Finite reports whether the coordinate is a usable number.
func (c Coord) Finite() bool {
	v := float64(c)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isJSONNumber(data []byte) bool {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return false
	}
	b := data[0]
	return b == '-' || (b >= '0' && b <= '9')
}
