package domain

// PeakPayload is the body sent to the backend when creating or updating a peak.
type PeakPayload struct {
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description"`
	Elevation   float64       `json:"elevation"`
	Lat         float64       `json:"lat" validate:"latitude"`
	Lng         float64       `json:"lng" validate:"longitude"`
	Categories  []string      `json:"categories" validate:"dive,required"`
	Images      []StoredImage `json:"images" validate:"dive"`
}

// ToPayload normalizes a peak for the backend: categories become identifiers,
// missing numbers become 0, and nil collections become empty lists.
func ToPayload(p Peak) PeakPayload {
	images := p.Images
	if images == nil {
		images = []StoredImage{}
	}
	return PeakPayload{
		Name:        p.Name,
		Description: p.Description,
		Elevation:   p.Elevation.OrZero(),
		Lat:         finiteOrZero(p.Lat),
		Lng:         finiteOrZero(p.Lng),
		Categories:  CategoryIDs(p),
		Images:      images,
	}
}

func finiteOrZero(c Coord) float64 {
	if !c.Finite() {
		return 0
	}
	return float64(c)
}
