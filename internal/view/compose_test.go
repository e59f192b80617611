package view

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-quake/internal/feed"
	"github.com/joeblew999/plat-quake/internal/quake"
)

func testPair() feed.Pair {
	quakes := geojson.NewFeatureCollection()
	for i, mag := range []float64{0.4, 2.5, 5.9} {
		f := geojson.NewFeature(orb.Point{-120 + float64(i)*10, 30 + float64(i)})
		f.ID = i
		f.Properties["mag"] = mag
		f.Properties["place"] = "somewhere"
		f.Properties["time"] = float64(1760000000000)
		quakes.Append(f)
	}

	plates := geojson.NewFeatureCollection()
	plates.Append(geojson.NewFeature(orb.LineString{{-130, 30}, {-125, 40}}))
	plates.Append(geojson.NewFeature(orb.LineString{{140, 35}, {145, 40}}))
	return feed.Pair{Quakes: quakes, Plates: plates}
}

func testOptions() Options {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC))
	return Options{
		AccessToken: "pk.test",
		Builder:     &quake.Builder{Clock: clock, Location: time.UTC},
	}
}

func TestCompose(t *testing.T) {
	v, err := Compose(testPair(), testOptions())
	require.NoError(t, err)

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC), v.GeneratedAt)
	assert.Equal(t, "map", v.Container)
	assert.Equal(t, [2]float64{37.09, -95.71}, v.Center)
	assert.Equal(t, 3, v.Zoom)
	assert.Equal(t, "black", v.HighlightColor)

	assert.Len(t, v.Overlays.Earthquakes, 3)
	assert.Equal(t, 2, v.Overlays.FaultLines.Features)
	assert.Equal(t, "orange", v.Overlays.FaultLines.Color)

	assert.Equal(t, []string{"Satellite", "Grayscale", "Outdoors"}, v.LayerControl.BaseLayers)
	assert.Equal(t, []string{"Fault Lines", "Earthquakes"}, v.LayerControl.Overlays)
	assert.False(t, v.LayerControl.Collapsed)
	assert.Equal(t, []string{"Satellite", "Fault Lines", "Earthquakes"}, v.DefaultVisible)

	assert.Equal(t, "bottomright", v.Legend.Position)
	assert.Len(t, v.Legend.Rows, 6)

	require.NotNil(t, v.Bounds)
	assert.Equal(t, [2][2]float64{{30, -120}, {32, -100}}, *v.Bounds)
}

func TestComposeBaseLayers(t *testing.T) {
	v, err := Compose(testPair(), testOptions())
	require.NoError(t, err)

	ids := []string{}
	for _, l := range v.BaseLayers {
		ids = append(ids, l.ID)
		assert.Equal(t, "pk.test", l.AccessToken)
		assert.Equal(t, 18, l.MaxZoom)
		assert.Equal(t, DefaultAttribution, l.Attribution)
		assert.Contains(t, l.URLTemplate, "{accessToken}")
	}
	assert.Equal(t, []string{"mapbox.streets-satellite", "mapbox.light", "mapbox.outdoors"}, ids)
}

func TestComposeEmptyFeeds(t *testing.T) {
	v, err := Compose(feed.Pair{Quakes: geojson.NewFeatureCollection(), Plates: geojson.NewFeatureCollection()}, testOptions())
	require.NoError(t, err)
	assert.Empty(t, v.Overlays.Earthquakes)
	assert.Zero(t, v.Overlays.FaultLines.Features)
	assert.Nil(t, v.Bounds)
}

func TestComposeJSON(t *testing.T) {
	v, err := Compose(testPair(), testOptions())
	require.NoError(t, err)

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	overlays := decoded["overlays"].(map[string]any)
	faultLines := overlays["faultLines"].(map[string]any)
	lineData := faultLines["data"].(map[string]any)
	assert.Equal(t, "FeatureCollection", lineData["type"])
	assert.Len(t, overlays["earthquakes"], 3)
}

func TestSanitizeAttribution(t *testing.T) {
	in := `Tiles <a href="https://example.com" onclick="steal()">Example</a><script>alert(1)</script>`
	out := SanitizeAttribution(in)
	assert.Contains(t, out, `<a href="https://example.com"`)
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "<script>")

	layers := BaseLayers("", in)
	assert.Equal(t, out, layers[0].Attribution)
}

func TestComposeHoverStates(t *testing.T) {
	v, err := Compose(testPair(), testOptions())
	require.NoError(t, err)

	for _, m := range v.Overlays.Earthquakes {
		assert.Equal(t, quake.HoverState{MarkerID: m.ID, FillColor: v.HighlightColor, PopupOpen: true}, m.Hover.Enter)
		assert.Equal(t, quake.HoverState{MarkerID: m.ID, FillColor: m.Style.FillColor, PopupOpen: false}, m.Hover.Leave)
	}
	assert.Equal(t, "orangered", v.Overlays.Earthquakes[2].Hover.Leave.FillColor)

	data, err := json.Marshal(v.Overlays.Earthquakes[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hover":{"enter":{"markerId":"0","fillColor":"black","popupOpen":true}`)
}

func TestComposeNullGeometryOutsideBounds(t *testing.T) {
	pair := testPair()
	f := &geojson.Feature{Type: "Feature", Properties: geojson.Properties{"mag": 3.3}}
	pair.Quakes.Append(f)

	v, err := Compose(pair, testOptions())
	require.NoError(t, err)

	require.Len(t, v.Overlays.Earthquakes, 4)
	assert.False(t, v.Overlays.Earthquakes[3].Located)
	require.NotNil(t, v.Bounds)
	assert.Equal(t, [2][2]float64{{30, -120}, {32, -100}}, *v.Bounds)
}
