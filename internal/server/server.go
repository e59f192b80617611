// Package server wires the feed client, view service, analytics store and
// HTTP routes into one handler.
package server

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joeblew999/plat-quake/internal/api"
	"github.com/joeblew999/plat-quake/internal/api/viewer"
	"github.com/joeblew999/plat-quake/internal/db"
	"github.com/joeblew999/plat-quake/internal/feed"
	"github.com/joeblew999/plat-quake/internal/observability"
	"github.com/joeblew999/plat-quake/internal/quake"
	"github.com/joeblew999/plat-quake/internal/service"
	"github.com/joeblew999/plat-quake/internal/templates"
	"github.com/joeblew999/plat-quake/internal/view"
	"github.com/joeblew999/plat-quake/web"
)

// Config holds the server configuration.
type Config struct {
	Host         string
	Port         string
	WebDir       string // Optional web/ directory; the embedded copy is used when empty
	QuakesURL    string
	PlatesURL    string
	AccessToken  string
	Attribution  string
	TimeZone     string
	FetchTimeout time.Duration // 0 means no timeout
}

// Server is the quake map HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	store    *db.Store
	views    *service.ViewService
	renderer *templates.Renderer
	webFS    fs.FS
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a new quake map server.
func New(cfg Config, logger *slog.Logger, metrics *observability.Metrics) (*Server, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time zone %q: %w", cfg.TimeZone, err)
	}

	webFS := fs.FS(web.FS)
	if cfg.WebDir != "" {
		webFS = os.DirFS(cfg.WebDir)
	}
	renderer, err := templates.New(webFS)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-quake API", "1.0.0")
	humaConfig.Info.Description = "Recent earthquakes and tectonic plate boundaries, styled by magnitude."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		renderer: renderer,
		webFS:    webFS,
		logger:   logger,
		metrics:  metrics,
	}

	// The analytics store is optional; the map works without it.
	var recorder service.Recorder
	if store, err := db.Open(); err != nil {
		logger.Warn("analytics store unavailable", "error", err)
	} else {
		s.store = store
		recorder = store
	}

	builder := quake.NewBuilder()
	builder.Location = loc
	s.views = service.NewViewService(service.ViewConfig{
		QuakesURL:   cfg.QuakesURL,
		PlatesURL:   cfg.PlatesURL,
		AccessToken: cfg.AccessToken,
		Attribution: cfg.Attribution,
	}, feed.NewClient(cfg.FetchTimeout, logger, metrics), recorder, builder, service.NewEventBus(), logger, metrics)

	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Views returns the view service, for one-shot loads outside HTTP.
func (s *Server) Views() *service.ViewService {
	return s.views
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(&api.Services{View: s.views, Store: s.store}))
	api.NewInfoHandler(s.config.QuakesURL, s.config.PlatesURL, s.store != nil, s.config.AccessToken != "").RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.store).RegisterRoutes(s.humaAPI)

	// Datastar status stream for the map page
	viewer.NewEventsHandler(s.views, s.renderer, s.metrics).RegisterRoutes(s.humaAPI)

	s.mux.Handle("GET /metrics", promhttp.Handler())

	static, err := fs.Sub(s.webFS, "static")
	if err == nil {
		s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	}

	// Page routes
	s.mux.HandleFunc("GET /viewer", s.handleViewer)
	s.mux.HandleFunc("GET /{$}", s.handleViewer)
}

type pageData struct {
	Title     string
	Container string
	ViewURL   string
	EventsURL string
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	// Templates on disk are re-read on each page load.
	if s.config.WebDir != "" {
		if err := s.renderer.Reload(); err != nil {
			s.logger.Error("reload templates", "error", err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.renderer.Execute(w, "viewer.html", pageData{
		Title:     "Earthquakes and plate boundaries",
		Container: view.ContainerID,
		ViewURL:   "/api/v1/view",
		EventsURL: "/api/v1/viewer/events",
	})
	if err != nil {
		s.logger.Error("render viewer", "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
