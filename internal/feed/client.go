// Package feed reads the remote GeoJSON documents the map is drawn from.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/joeblew999/plat-quake/internal/observability"
)

// Default feed locations.
const (
	DefaultQuakesURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson"
	DefaultPlatesURL = "https://raw.githubusercontent.com/fraxen/tectonicplates/master/GeoJSON/PB2002_boundaries.json"
)

// ErrStatus is returned when a feed answers with a non-200 status.
var ErrStatus = errors.New("unexpected feed status")

// Source names a remote GeoJSON document.
type Source struct {
	Name string
	URL  string
}

// Quakes returns the earthquake source for url.
func Quakes(url string) Source { return Source{Name: "quakes", URL: url} }

// Plates returns the plate boundary source for url.
func Plates(url string) Source { return Source{Name: "plates", URL: url} }

// Pair holds both documents of one load. It is only ever returned complete.
type Pair struct {
	Quakes *geojson.FeatureCollection
	Plates *geojson.FeatureCollection
}

// Client fetches GeoJSON feature collections over HTTP.
type Client struct {
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a feed client. A zero timeout means requests only end
// when the server answers or ctx is cancelled.
func NewClient(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		clock:      clockwork.NewRealClock(),
		logger:     logger,
		metrics:    metrics,
	}
}

// FetchPair reads the earthquake and plate boundary feeds concurrently and
// waits for both. If either read fails the other is cancelled and no data is
// returned. There is no retry.
func (c *Client) FetchPair(ctx context.Context, quakes, plates Source) (Pair, error) {
	var pair Pair
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fc, err := c.FetchCollection(gctx, quakes)
		if err != nil {
			return err
		}
		pair.Quakes = fc
		return nil
	})
	g.Go(func() error {
		fc, err := c.FetchCollection(gctx, plates)
		if err != nil {
			return err
		}
		pair.Plates = fc
		return nil
	})

	if err := g.Wait(); err != nil {
		return Pair{}, err
	}
	return pair, nil
}

// FetchCollection reads a single GeoJSON FeatureCollection.
func (c *Client) FetchCollection(ctx context.Context, src Source) (*geojson.FeatureCollection, error) {
	start := c.clock.Now()
	fc, err := c.fetch(ctx, src)
	c.metrics.FeedFetchDuration.WithLabelValues(src.Name).Observe(c.clock.Since(start).Seconds())

	if err != nil {
		c.metrics.FeedFetches.WithLabelValues(src.Name, "error").Inc()
		c.logger.Error("feed fetch failed", "feed", src.Name, "url", src.URL, "error", err)
		return nil, err
	}

	c.metrics.FeedFetches.WithLabelValues(src.Name, "success").Inc()
	c.metrics.FeedFeatures.WithLabelValues(src.Name).Set(float64(len(fc.Features)))
	c.logger.Debug("feed fetched", "feed", src.Name, "features", len(fc.Features))
	return fc, nil
}

func (c *Client) fetch(ctx context.Context, src Source) (*geojson.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", src.Name, err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request: %w", src.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snip, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("%s: %w %d: %s", src.Name, ErrStatus, resp.StatusCode, snip)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", src.Name, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%s: decode geojson: %w", src.Name, err)
	}
	return fc, nil
}
