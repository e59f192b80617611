// Package view composes fetched feeds into the map view description the
// viewer page mounts: base layers, overlays, controls and legend.
package view

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-quake/internal/feed"
	"github.com/joeblew999/plat-quake/internal/quake"
)

// Fixed view parameters.
const (
	ContainerID    = "map"
	DefaultZoom    = 3
	LegendPosition = "bottomright"

	OverlayFaultLines  = "Fault Lines"
	OverlayEarthquakes = "Earthquakes"
)

// DefaultCenter is the initial map centre as [lat, lon].
var DefaultCenter = [2]float64{37.09, -95.71}

// Overlays groups the independently toggleable layers.
type Overlays struct {
	FaultLines  quake.LineLayer `json:"faultLines" doc:"Plate boundary line layer"`
	Earthquakes []quake.Marker  `json:"earthquakes" doc:"Earthquake circle markers"`
}

// LayerControl configures the base/overlay toggle control.
type LayerControl struct {
	BaseLayers []string `json:"baseLayers" doc:"Base layer names, mutually exclusive"`
	Overlays   []string `json:"overlays" doc:"Overlay names, independently toggleable"`
	Collapsed  bool     `json:"collapsed" doc:"Whether the control starts collapsed"`
}

// Legend is the magnitude legend control.
type Legend struct {
	Position string            `json:"position" doc:"Screen corner" example:"bottomright"`
	Rows     []quake.LegendRow `json:"rows" doc:"One row per magnitude bucket"`
}

// View is everything the page needs to mount the interactive map.
type View struct {
	ID             string         `json:"id" doc:"View identifier"`
	GeneratedAt    time.Time      `json:"generatedAt" doc:"When the view was composed"`
	Container      string         `json:"container" doc:"DOM element id the map mounts into" example:"map"`
	Center         [2]float64     `json:"center" doc:"Initial centre [lat, lon]"`
	Zoom           int            `json:"zoom" doc:"Initial zoom level" example:"3"`
	BaseLayers     []TileLayer    `json:"baseLayers" doc:"Base tile layers"`
	Overlays       Overlays       `json:"overlays" doc:"Overlay layers"`
	DefaultVisible []string       `json:"defaultVisible" doc:"Layers shown on load"`
	LayerControl   LayerControl   `json:"layerControl" doc:"Layer toggle control"`
	Legend         Legend         `json:"legend" doc:"Legend control"`
	HighlightColor string         `json:"highlightColor" doc:"Fill colour of a hovered marker" example:"black"`
	Bounds         *[2][2]float64 `json:"bounds,omitempty" doc:"Extent of all markers [[south, west], [north, east]]"`
}

// Options carries the caller-supplied parts of a view.
type Options struct {
	AccessToken string
	Attribution string
	Builder     *quake.Builder
}

// Compose builds a view from both fetched feeds. It has no side effects;
// the same pair and options always describe the same map.
func Compose(pair feed.Pair, opts Options) (*View, error) {
	b := opts.Builder
	if b == nil {
		b = quake.NewBuilder()
	}

	markers, err := b.Markers(pair.Quakes)
	if err != nil {
		return nil, fmt.Errorf("build markers: %w", err)
	}
	boundaries := b.Boundaries(pair.Plates)

	base := BaseLayers(opts.AccessToken, opts.Attribution)
	baseNames := make([]string, len(base))
	for i, l := range base {
		baseNames[i] = l.Name
	}
	overlayNames := []string{OverlayFaultLines, OverlayEarthquakes}

	now := time.Now()
	if b.Clock != nil {
		now = b.Clock.Now()
	}

	return &View{
		ID:             uuid.Must(uuid.NewV7()).String(),
		GeneratedAt:    now.UTC(),
		Container:      ContainerID,
		Center:         DefaultCenter,
		Zoom:           DefaultZoom,
		BaseLayers:     base,
		Overlays:       Overlays{FaultLines: boundaries, Earthquakes: markers},
		DefaultVisible: []string{baseNames[0], OverlayFaultLines, OverlayEarthquakes},
		LayerControl: LayerControl{
			BaseLayers: baseNames,
			Overlays:   overlayNames,
			Collapsed:  false,
		},
		Legend:         Legend{Position: LegendPosition, Rows: quake.Legend()},
		HighlightColor: quake.HighlightColor,
		Bounds:         markerBounds(markers),
	}, nil
}

func markerBounds(markers []quake.Marker) *[2][2]float64 {
	var bound orb.Bound
	found := false
	for _, m := range markers {
		if !m.Located {
			continue
		}
		p := orb.Point{m.Lon, m.Lat}
		if !found {
			bound = orb.Bound{Min: p, Max: p}
			found = true
			continue
		}
		bound = bound.Extend(p)
	}
	if !found {
		return nil
	}
	return &[2][2]float64{
		{bound.Bottom(), bound.Left()},
		{bound.Top(), bound.Right()},
	}
}
