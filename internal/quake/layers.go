package quake

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MarkerStyle is the Leaflet path style of a circle marker.
type MarkerStyle struct {
	FillColor   string  `json:"fillColor" doc:"Fill colour (CSS)" example:"goldenrod"`
	FillOpacity float64 `json:"fillOpacity" doc:"Fill opacity (0-1)" example:"1"`
	Stroke      bool    `json:"stroke" doc:"Whether the outline is drawn"`
	Weight      float64 `json:"weight" doc:"Outline width in pixels" example:"0.5"`
}

// Marker is one earthquake drawn as a ground-sized circle.
type Marker struct {
	ID             string      `json:"id" doc:"Feature identifier" example:"us7000abcd"`
	Lat            float64     `json:"lat" doc:"Latitude"`
	Lon            float64     `json:"lon" doc:"Longitude"`
	Place          string      `json:"place" doc:"Place description"`
	Magnitude      float64     `json:"magnitude" doc:"Magnitude (0 when unknown)"`
	MagnitudeKnown bool        `json:"magnitudeKnown" doc:"False when the feed had no numeric magnitude"`
	Time           time.Time   `json:"time,omitzero" doc:"Event time"`
	Radius         float64     `json:"radius" doc:"Circle radius in metres"`
	Style          MarkerStyle `json:"style" doc:"Resting style"`
	Popup          string      `json:"popup" doc:"Popup HTML"`
	Located        bool        `json:"located" doc:"False when the feature has no geometry; such markers are not drawn"`
	Hover          MarkerHover `json:"hover" doc:"Styles applied on pointer enter and leave"`
}

// LineLayer is the plate boundary overlay. The feed is drawn as-is.
type LineLayer struct {
	Color    string  `json:"color" doc:"Line colour (CSS)" example:"orange"`
	Weight   float64 `json:"weight" doc:"Line width in pixels" example:"2"`
	Features int     `json:"features" doc:"Number of boundary features"`
	Data     any     `json:"data" doc:"Boundary GeoJSON FeatureCollection"`
}

var popupTmpl = template.Must(template.New("popup").Parse(
	`<h6><strong>{{.Place}}</strong></h6><hr>` +
		`<p><strong>Magnitude:</strong> {{.Magnitude}}</p>` +
		`<p><strong>Time:</strong> {{.Time}}{{with .Ago}} ({{.}}){{end}}</p>`))

type popupData struct {
	Place     string
	Magnitude string
	Time      string
	Ago       string
}

// timeLayout mirrors the way browsers print a Date.
const timeLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

// Builder converts feeds into drawable layers. The clock drives the
// relative "x hours ago" text in popups.
type Builder struct {
	Clock    clockwork.Clock
	Location *time.Location
}

// NewBuilder returns a Builder on the real clock in UTC.
func NewBuilder() *Builder {
	return &Builder{Clock: clockwork.NewRealClock(), Location: time.UTC}
}

// Markers builds exactly one marker per feature, in feed order.
func (b *Builder) Markers(fc *geojson.FeatureCollection) ([]Marker, error) {
	if fc == nil {
		return []Marker{}, nil
	}
	markers := make([]Marker, 0, len(fc.Features))
	for i, f := range fc.Features {
		m, err := b.Marker(i, f)
		if err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return markers, nil
}

// Marker builds the circle marker for a single feature.
func (b *Builder) Marker(index int, f *geojson.Feature) (Marker, error) {
	mag, known := Magnitude(f)
	m := Marker{
		ID:             featureID(index, f),
		Magnitude:      mag,
		MagnitudeKnown: known,
		Radius:         RadiusFor(f),
		Style:          restingStyle(mag),
	}
	if f.Geometry != nil {
		p := center(f.Geometry)
		m.Lat, m.Lon = p.Lat(), p.Lon()
		m.Located = true
	}
	m.Hover = HoverStates(m)
	if place, ok := f.Properties["place"].(string); ok {
		m.Place = place
	}
	if ms, ok := f.Properties["time"].(float64); ok {
		m.Time = time.UnixMilli(int64(ms))
	}

	popup, err := b.popup(m)
	if err != nil {
		return Marker{}, fmt.Errorf("popup for %s: %w", m.ID, err)
	}
	m.Popup = popup
	return m, nil
}

func (b *Builder) popup(m Marker) (string, error) {
	data := popupData{Place: m.Place, Magnitude: "unknown", Time: "unknown"}
	if m.MagnitudeKnown {
		data.Magnitude = strconv.FormatFloat(m.Magnitude, 'f', -1, 64)
	}
	if !m.Time.IsZero() {
		loc := b.Location
		if loc == nil {
			loc = time.UTC
		}
		data.Time = m.Time.In(loc).Format(timeLayout)
		if b.Clock != nil {
			data.Ago = humanize.RelTime(m.Time, b.Clock.Now(), "ago", "from now")
		}
	}

	var buf bytes.Buffer
	if err := popupTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Boundaries wraps the plate boundary feed in a single line layer.
func (b *Builder) Boundaries(fc *geojson.FeatureCollection) LineLayer {
	layer := LineLayer{Color: BoundaryColor, Weight: BoundaryWeight}
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}
	layer.Features = len(fc.Features)
	layer.Data = fc
	return layer
}

func restingStyle(mag float64) MarkerStyle {
	return MarkerStyle{
		FillColor:   ColorFor(mag),
		FillOpacity: markerFillOpacity,
		Stroke:      true,
		Weight:      markerWeight,
	}
}

func featureID(index int, f *geojson.Feature) string {
	switch id := f.ID.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
	default:
		return fmt.Sprint(id)
	}
	return "quake-" + strconv.Itoa(index)
}

// center returns the point itself, or the bound centre for other geometries.
func center(g orb.Geometry) orb.Point {
	if p, ok := g.(orb.Point); ok {
		return p
	}
	return g.Bound().Center()
}
