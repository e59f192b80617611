// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-quake/internal/db"
	"github.com/joeblew999/plat-quake/internal/quake"
	"github.com/joeblew999/plat-quake/internal/service"
	"github.com/joeblew999/plat-quake/internal/view"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	View  *service.ViewService
	Store *db.Store
}

// Types

type ViewOutput struct {
	Body *view.View
}

type LegendBody struct {
	Position string            `json:"position" doc:"Screen corner the legend is anchored to" example:"bottomright"`
	Rows     []quake.LegendRow `json:"rows" doc:"One row per magnitude bucket"`
}

type StyleInput struct {
	Mag float64 `query:"mag" required:"true" doc:"Magnitude" example:"4.5"`
}

type StyleBody struct {
	Magnitude      float64 `json:"magnitude" doc:"Requested magnitude"`
	Color          string  `json:"color" doc:"Resting fill colour" example:"lightcoral"`
	HighlightColor string  `json:"highlightColor" doc:"Fill colour while hovered" example:"black"`
	Radius         float64 `json:"radius" doc:"Circle radius in metres" example:"112500"`
	Bucket         int     `json:"bucket" doc:"Legend bucket" example:"4"`
}

type StatsBody struct {
	Buckets []db.BucketCount `json:"buckets" doc:"Events per legend bucket in the last loaded view"`
	Total   int64            `json:"total" doc:"Events in the last loaded view"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterView registers the map view route.
func (h *APIHandler) RegisterView(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-view",
		Method:      "GET",
		Path:        "/api/v1/view",
		Summary:     "Load and compose the map view",
		Description: "Fetches the earthquake and plate boundary feeds and returns the composed view. " +
			"If either feed fails nothing is composed and 502 is returned.",
		Tags: []string{"view"},
	}, h.GetView)
}

// RegisterStyle registers legend and style lookup routes.
func (h *APIHandler) RegisterStyle(api huma.API) {
	huma.Get(api, "/api/v1/legend", h.GetLegend, huma.OperationTags("style"))
	huma.Get(api, "/api/v1/style", h.GetStyle, huma.OperationTags("style"))
}

// RegisterStats registers the bucket statistics route.
func (h *APIHandler) RegisterStats(api huma.API) {
	huma.Get(api, "/api/v1/stats", h.GetStats, huma.OperationTags("stats"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetView(ctx context.Context, input *struct{}) (*ViewOutput, error) {
	if h.svc == nil || h.svc.View == nil {
		return nil, huma.Error503ServiceUnavailable("view service not available")
	}
	v, err := h.svc.View.Load(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, huma.Error503ServiceUnavailable("request cancelled", err)
		}
		return nil, huma.Error502BadGateway("feed unavailable: " + err.Error())
	}
	return &ViewOutput{Body: v}, nil
}

func (h *APIHandler) GetLegend(ctx context.Context, input *struct{}) (*struct{ Body LegendBody }, error) {
	return &struct{ Body LegendBody }{Body: LegendBody{
		Position: view.LegendPosition,
		Rows:     quake.Legend(),
	}}, nil
}

func (h *APIHandler) GetStyle(ctx context.Context, input *StyleInput) (*struct{ Body StyleBody }, error) {
	return &struct{ Body StyleBody }{Body: StyleBody{
		Magnitude:      input.Mag,
		Color:          quake.ColorFor(input.Mag),
		HighlightColor: quake.HighlightColor,
		Radius:         quake.Radius(input.Mag),
		Bucket:         quake.Bucket(input.Mag),
	}}, nil
}

func (h *APIHandler) GetStats(ctx context.Context, input *struct{}) (*struct{ Body StatsBody }, error) {
	if h.svc == nil || h.svc.Store == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}
	buckets, err := h.svc.Store.BucketCounts(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to count events", err)
	}
	var total int64
	for _, b := range buckets {
		total += b.Count
	}
	return &struct{ Body StatsBody }{Body: StatsBody{Buckets: buckets, Total: total}}, nil
}
