package view

import "github.com/microcosm-cc/bluemonday"

// Tile endpoint shared by all base layers; {id} selects the style.
const tileURLTemplate = "https://api.tiles.mapbox.com/v4/{id}/{z}/{x}/{y}.png?access_token={accessToken}"

// DefaultAttribution is the credit line shown on every base layer.
const DefaultAttribution = `Map data &copy; <a href="https://www.openstreetmap.org/">OpenStreetMap</a> contributors, ` +
	`<a href="https://creativecommons.org/licenses/by-sa/2.0/">CC-BY-SA</a>, ` +
	`Imagery © <a href="https://www.mapbox.com/">Mapbox</a>`

const maxTileZoom = 18

// TileLayer is a base map tile layer.
type TileLayer struct {
	Name        string `json:"name" doc:"Name shown in the layer control" example:"Satellite"`
	URLTemplate string `json:"urlTemplate" doc:"Leaflet tile URL template"`
	ID          string `json:"id" doc:"Tile style identifier" example:"mapbox.streets-satellite"`
	Attribution string `json:"attribution" doc:"Attribution HTML"`
	MaxZoom     int    `json:"maxZoom" doc:"Maximum zoom level" example:"18"`
	AccessToken string `json:"accessToken" doc:"Tile provider access token"`
}

var baseLayerIDs = []struct{ name, id string }{
	{"Satellite", "mapbox.streets-satellite"},
	{"Grayscale", "mapbox.light"},
	{"Outdoors", "mapbox.outdoors"},
}

// attributionPolicy only lets links and basic inline markup through.
var attributionPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.AllowElements("b", "strong", "em", "i", "span")
	p.RequireNoFollowOnLinks(false)
	return p
}()

// SanitizeAttribution strips anything but links and inline markup.
func SanitizeAttribution(html string) string {
	return attributionPolicy.Sanitize(html)
}

// BaseLayers returns the three mutually exclusive base layers, Satellite first.
func BaseLayers(accessToken, attribution string) []TileLayer {
	if attribution == "" {
		attribution = DefaultAttribution
	} else {
		attribution = SanitizeAttribution(attribution)
	}

	layers := make([]TileLayer, len(baseLayerIDs))
	for i, b := range baseLayerIDs {
		layers[i] = TileLayer{
			Name:        b.name,
			URLTemplate: tileURLTemplate,
			ID:          b.id,
			Attribution: attribution,
			MaxZoom:     maxTileZoom,
			AccessToken: accessToken,
		}
	}
	return layers
}
