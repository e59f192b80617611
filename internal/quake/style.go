// Package quake turns earthquake and plate boundary GeoJSON into styled map
// layers: magnitude colours and radii, circle markers with popups, the
// boundary line layer and the magnitude legend.
package quake

import "github.com/paulmach/orb/geojson"

// Marker and boundary styling shared with the browser.
const (
	HighlightColor = "black"
	BoundaryColor  = "orange"
	BoundaryWeight = 2.0

	// RadiusPerMagnitude is the circle radius in metres per unit of magnitude.
	RadiusPerMagnitude = 25000.0

	markerFillOpacity = 1.0
	markerWeight      = 0.5
)

// ColorFor maps a magnitude to one of six fixed colours. Bucket boundaries
// are exclusive: a magnitude of exactly 5 is still "lightcoral".
func ColorFor(mag float64) string {
	switch {
	case mag > 5:
		return "orangered"
	case mag > 4:
		return "lightcoral"
	case mag > 3:
		return "darkorange"
	case mag > 2:
		return "goldenrod"
	case mag > 1:
		return "yellow"
	default:
		return "greenyellow"
	}
}

// Bucket returns the legend bucket (0-5) a magnitude is coloured by.
func Bucket(mag float64) int {
	switch {
	case mag > 5:
		return 5
	case mag > 4:
		return 4
	case mag > 3:
		return 3
	case mag > 2:
		return 2
	case mag > 1:
		return 1
	default:
		return 0
	}
}

// Radius scales a magnitude to a ground radius in metres. There is no clamp:
// zero and negative magnitudes give degenerate circles.
func Radius(mag float64) float64 {
	return mag * RadiusPerMagnitude
}

// RadiusFor returns the circle radius for an earthquake feature.
func RadiusFor(f *geojson.Feature) float64 {
	mag, _ := Magnitude(f)
	return Radius(mag)
}

// Magnitude reads properties.mag. The second result is false when the
// property is missing or not a number, in which case the magnitude is 0.
func Magnitude(f *geojson.Feature) (float64, bool) {
	if f == nil || f.Properties == nil {
		return 0, false
	}
	mag, ok := f.Properties["mag"].(float64)
	return mag, ok
}
