package domain

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// PopupOverview renders the short map popup: name and elevation.
func PopupOverview(p Peak) string {
	return fmt.Sprintf("<strong>%s</strong><br/>%s", html.EscapeString(displayName(p)), elevationLabel(p.Elevation))
}

// PopupDetail renders the focused popup with resolved category names and the
// description when one is present.
func PopupDetail(p Peak, categories []Category) string {
	var b strings.Builder
	b.WriteString("<strong>")
	b.WriteString(html.EscapeString(displayName(p)))
	b.WriteString("</strong><br/>")
	b.WriteString(elevationLabel(p.Elevation))

	if names := CategoryNames(p, categories); len(names) > 0 {
		b.WriteString("<br/><small>")
		b.WriteString(html.EscapeString(strings.Join(names, ", ")))
		b.WriteString("</small>")
	}
	if strings.TrimSpace(p.Description) != "" {
		b.WriteString("<br/><span>")
		b.WriteString(html.EscapeString(p.Description))
		b.WriteString("</span>")
	}
	return b.String()
}

// PopupNearby renders a neighbor popup with the distance in kilometers.
func PopupNearby(p Peak, distanceMeters float64) string {
	return fmt.Sprintf("%s<br/>%s km away", PopupOverview(p), strconv.FormatFloat(distanceMeters/1000, 'f', 2, 64))
}

// ElevationText formats an elevation for display, e.g. "1200 m". Missing
// elevations render as an empty string.
func ElevationText(e Elevation) string {
	if !e.Numeric() {
		return ""
	}
	return strconv.FormatFloat(e.Meters, 'f', -1, 64) + " m"
}

func elevationLabel(e Elevation) string {
	return html.EscapeString(ElevationText(e))
}

func displayName(p Peak) string {
	if strings.TrimSpace(p.Name) == "" {
		return "Peak"
	}
	return p.Name
}
