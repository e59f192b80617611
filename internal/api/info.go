package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	quakesURL string
	platesURL string
	dbOK      bool
	tokenSet  bool
}

func NewInfoHandler(quakesURL, platesURL string, dbOK, tokenSet bool) *InfoHandler {
	return &InfoHandler{quakesURL: quakesURL, platesURL: platesURL, dbOK: dbOK, tokenSet: tokenSet}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name        string   `json:"name" doc:"Service name"`
	Version     string   `json:"version" doc:"Service version"`
	QuakesURL   string   `json:"quakes_url" doc:"Earthquake feed"`
	PlatesURL   string   `json:"plates_url" doc:"Plate boundary feed"`
	DB          bool     `json:"db" doc:"Whether the analytics database is available"`
	AccessToken bool     `json:"access_token" doc:"Whether a tile access token is configured"`
	Features    []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:        "plat-quake",
		Version:     "0.1.0",
		QuakesURL:   h.quakesURL,
		PlatesURL:   h.platesURL,
		DB:          h.dbOK,
		AccessToken: h.tokenSet,
		Features:    []string{"geojson", "leaflet", "datastar", "duckdb"},
	}}, nil
}
