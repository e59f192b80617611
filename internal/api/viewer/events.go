// Package viewer contains Datastar SSE handlers for the map page.
package viewer

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-quake/internal/humastar"
	"github.com/joeblew999/plat-quake/internal/observability"
	"github.com/joeblew999/plat-quake/internal/service"
	"github.com/joeblew999/plat-quake/internal/templates"
)

// StatusSelector is the element the status fragment is patched into.
const StatusSelector = "#status"

// EventsHandler streams view load outcomes to the map page.
type EventsHandler struct {
	humastar.Handler
	views   *service.ViewService
	metrics *observability.Metrics
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(views *service.ViewService, renderer *templates.Renderer, metrics *observability.Metrics) *EventsHandler {
	return &EventsHandler{
		Handler: humastar.Handler{Renderer: renderer},
		views:   views,
		metrics: metrics,
	}
}

func (h *EventsHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/viewer/events", h.Events,
		huma.OperationTags("viewer"),
	)
}

func (h *EventsHandler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		bus := h.views.Bus()
		ch := bus.Subscribe()
		defer bus.Unsubscribe(ch)

		h.metrics.ViewSubscribers.Inc()
		defer h.metrics.ViewSubscribers.Dec()

		if ev, ok := h.views.LastEvent(); ok {
			if err := h.send(sse, ev); err != nil {
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := h.send(sse, ev); err != nil {
					return
				}
			}
		}
	}), nil
}

func (h *EventsHandler) send(sse humastar.SSE, ev service.Event) error {
	if err := sse.Patch(h.Fragment("status.html", ev), StatusSelector); err != nil {
		return err
	}
	if ev.Kind == service.ViewFailed {
		return sse.Error(ev.Error)
	}
	return sse.Signals(map[string]any{
		"viewId":  ev.ViewID,
		"markers": ev.Markers,
		"error":   "",
	})
}
