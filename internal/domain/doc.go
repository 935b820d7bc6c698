// Package domain models the peak catalog and the pure transformations the
// presentation layer renders: filtering, chart datasets, proximity search,
// popups, and map overlays.
//
// # Backend Data Conventions
//
// Peaks come from an external REST backend and are not trusted to be well
// formed. Decoding never rejects a peak for a bad field; instead:
//
//	categories  either ["c1","c2"] or [{"_id":"c1","name":"Alps"}, ...].
//	            Absent, null, mixed or otherwise malformed values mean
//	            "no categories". See [CategoryRefs] and [CategoryIDs].
//	elevation   meters; only JSON numbers count. Anything else is
//	            "non-numeric" (see [Elevation.Numeric]).
//	lat, lng    degrees; non-numbers decode to NaN so distance searches
//	            drop the peak (see [Coord]).
//
// # Non-numeric Elevation
//
// The handling differs by operation and is deliberate:
//
//	Filter              passes the minimum-elevation check (fail-open)
//	ElevationHistogram  excluded from every band
//	ElevationSeries     plotted at 0 unless ExcludeMissing is requested
//	Popups              rendered as an empty elevation
//
// # Elevation Bands
//
//	< 500m | 500–999m | 1000–1499m | 1500–1999m | 2000m+
//
// Bands are half-open, so 999.5 falls in 500–999m and 1999.9 in 1500–1999m.
//
// # Markup
//
// Popup strings are HTML fragments. Every backend-supplied string (peak
// name, description, category names) is escaped before it is embedded.
package domain
