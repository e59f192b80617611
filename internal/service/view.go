// Package service contains the view loading flow: fetch both feeds, compose
// the map, record it and announce the outcome.
package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/joeblew999/plat-quake/internal/feed"
	"github.com/joeblew999/plat-quake/internal/observability"
	"github.com/joeblew999/plat-quake/internal/quake"
	"github.com/joeblew999/plat-quake/internal/view"
)

// Fetcher reads both feeds of a load.
type Fetcher interface {
	FetchPair(ctx context.Context, quakes, plates feed.Source) (feed.Pair, error)
}

// Recorder keeps the markers of the latest view for statistics.
type Recorder interface {
	Replace(ctx context.Context, markers []quake.Marker) error
}

// ViewConfig holds the static inputs of every load.
type ViewConfig struct {
	QuakesURL   string
	PlatesURL   string
	AccessToken string
	Attribution string
}

// ViewService runs the fetch → compose flow. Every Load reads both feeds
// afresh; nothing is cached between loads.
type ViewService struct {
	cfg      ViewConfig
	fetcher  Fetcher
	recorder Recorder
	builder  *quake.Builder
	bus      *EventBus
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu   sync.RWMutex
	last *Event
}

// NewViewService wires a view service. recorder may be nil.
func NewViewService(cfg ViewConfig, fetcher Fetcher, recorder Recorder, builder *quake.Builder,
	bus *EventBus, logger *slog.Logger, metrics *observability.Metrics) *ViewService {
	clock := builder.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ViewService{
		cfg:      cfg,
		fetcher:  fetcher,
		recorder: recorder,
		builder:  builder,
		bus:      bus,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Load fetches both feeds and composes the view. If either fetch fails no
// view is composed and the error is returned as-is.
func (s *ViewService) Load(ctx context.Context) (*view.View, error) {
	start := s.clock.Now()
	defer func() {
		s.metrics.ViewLoadDuration.Observe(s.clock.Since(start).Seconds())
	}()

	pair, err := s.fetcher.FetchPair(ctx, feed.Quakes(s.cfg.QuakesURL), feed.Plates(s.cfg.PlatesURL))
	if err != nil {
		s.fail(err)
		return nil, err
	}

	v, err := view.Compose(pair, view.Options{
		AccessToken: s.cfg.AccessToken,
		Attribution: s.cfg.Attribution,
		Builder:     s.builder,
	})
	if err != nil {
		s.fail(err)
		return nil, err
	}

	if s.recorder != nil {
		if err := s.recorder.Replace(ctx, v.Overlays.Earthquakes); err != nil {
			s.logger.Warn("recording markers failed", "view", v.ID, "error", err)
		}
	}
	s.observeBuckets(v.Overlays.Earthquakes)

	s.metrics.ViewLoads.WithLabelValues("success").Inc()
	s.logger.Info("view loaded",
		"view", v.ID,
		"markers", len(v.Overlays.Earthquakes),
		"boundaries", v.Overlays.FaultLines.Features,
	)
	s.publish(Event{
		Kind:       ViewLoaded,
		ViewID:     v.ID,
		Markers:    len(v.Overlays.Earthquakes),
		Boundaries: v.Overlays.FaultLines.Features,
		At:         s.clock.Now(),
	})
	return v, nil
}

// LastEvent returns the outcome of the most recent load, if any.
func (s *ViewService) LastEvent() (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Event{}, false
	}
	return *s.last, true
}

// Bus returns the event bus loads are announced on.
func (s *ViewService) Bus() *EventBus {
	return s.bus
}

func (s *ViewService) fail(err error) {
	s.metrics.ViewLoads.WithLabelValues("error").Inc()
	s.logger.Error("view load failed", "error", err)
	s.publish(Event{Kind: ViewFailed, Error: err.Error(), At: s.clock.Now()})
}

func (s *ViewService) publish(e Event) {
	s.mu.Lock()
	s.last = &e
	s.mu.Unlock()
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

func (s *ViewService) observeBuckets(markers []quake.Marker) {
	counts := make([]int, len(quake.LegendBuckets))
	for _, m := range markers {
		counts[quake.Bucket(m.Magnitude)]++
	}
	for i, b := range quake.LegendBuckets {
		s.metrics.MarkersByBucket.WithLabelValues(strconv.Itoa(b)).Set(float64(counts[i]))
	}
}
