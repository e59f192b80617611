package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-quake/internal/feed"
	"github.com/joeblew999/plat-quake/internal/observability"
	"github.com/joeblew999/plat-quake/internal/quake"
)

type stubFetcher struct {
	pair   feed.Pair
	err    error
	called []feed.Source
}

func (f *stubFetcher) FetchPair(_ context.Context, quakes, plates feed.Source) (feed.Pair, error) {
	f.called = append(f.called, quakes, plates)
	return f.pair, f.err
}

type stubRecorder struct {
	markers []quake.Marker
	calls   int
}

func (r *stubRecorder) Replace(_ context.Context, markers []quake.Marker) error {
	r.calls++
	r.markers = markers
	return nil
}

func pair() feed.Pair {
	quakes := geojson.NewFeatureCollection()
	for _, mag := range []float64{1.5, 4.2} {
		f := geojson.NewFeature(orb.Point{10, 20})
		f.Properties["mag"] = mag
		quakes.Append(f)
	}
	plates := geojson.NewFeatureCollection()
	plates.Append(geojson.NewFeature(orb.LineString{{0, 0}, {1, 1}}))
	return feed.Pair{Quakes: quakes, Plates: plates}
}

func newTestService(f Fetcher, r Recorder) (*ViewService, *EventBus, *observability.Metrics) {
	bus := NewEventBus()
	metrics := observability.NewUnregisteredMetrics()
	builder := &quake.Builder{Clock: clockwork.NewFakeClockAt(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)), Location: time.UTC}
	cfg := ViewConfig{QuakesURL: "http://feeds/quakes", PlatesURL: "http://feeds/plates", AccessToken: "tok"}
	return NewViewService(cfg, f, r, builder, bus, observability.Discard(), metrics), bus, metrics
}

func TestLoad(t *testing.T) {
	f := &stubFetcher{pair: pair()}
	r := &stubRecorder{}
	svc, bus, metrics := newTestService(f, r)
	events := bus.Subscribe()
	defer bus.Unsubscribe(events)

	v, err := svc.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []feed.Source{feed.Quakes("http://feeds/quakes"), feed.Plates("http://feeds/plates")}, f.called)
	assert.Len(t, v.Overlays.Earthquakes, 2)
	assert.Equal(t, 1, r.calls)
	assert.Len(t, r.markers, 2)

	ev := <-events
	assert.Equal(t, ViewLoaded, ev.Kind)
	assert.Equal(t, v.ID, ev.ViewID)
	assert.Equal(t, 2, ev.Markers)
	assert.Equal(t, 1, ev.Boundaries)

	last, ok := svc.LastEvent()
	require.True(t, ok)
	assert.Equal(t, ev, last)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ViewLoads.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MarkersByBucket.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MarkersByBucket.WithLabelValues("4")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.MarkersByBucket.WithLabelValues("5")))
}

func TestLoadFetchFailure(t *testing.T) {
	boom := errors.New("plates: request: connection refused")
	r := &stubRecorder{}
	svc, bus, metrics := newTestService(&stubFetcher{err: boom}, r)
	events := bus.Subscribe()
	defer bus.Unsubscribe(events)

	v, err := svc.Load(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Nil(t, v)
	assert.Zero(t, r.calls)

	ev := <-events
	assert.Equal(t, ViewFailed, ev.Kind)
	assert.Empty(t, ev.ViewID)
	assert.Contains(t, ev.Error, "connection refused")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ViewLoads.WithLabelValues("error")))
}

func TestLoadWithoutRecorder(t *testing.T) {
	svc, _, _ := newTestService(&stubFetcher{pair: pair()}, nil)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)
}

func TestLastEventBeforeLoad(t *testing.T) {
	svc, _, _ := newTestService(&stubFetcher{}, nil)
	_, ok := svc.LastEvent()
	assert.False(t, ok)
}
