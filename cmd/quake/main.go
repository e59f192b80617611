package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	_ "time/tzdata"

	"github.com/joeblew999/plat-quake/internal/feed"
	"github.com/joeblew999/plat-quake/internal/observability"
	"github.com/joeblew999/plat-quake/internal/server"
)

// Options defines all CLI flags and env vars for the quake server.
// Flags: --host, --port, --web-dir, --quakes-url, --plates-url, ...
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_WEB_DIR, SERVICE_QUAKES_URL, ...
type Options struct {
	Host         string `doc:"Host to bind to" default:"0.0.0.0"`
	Port         int    `doc:"Port to listen on" short:"p" default:"8086"`
	WebDir       string `doc:"Serve templates and static files from this web/ directory instead of the embedded copy"`
	QuakesURL    string `doc:"Earthquake GeoJSON feed (default: USGS past week, all magnitudes)"`
	PlatesURL    string `doc:"Plate boundary GeoJSON feed (default: PB2002 boundaries)"`
	AccessToken  string `doc:"Tile service access token"`
	Attribution  string `doc:"Tile attribution HTML (sanitised)"`
	TimeZone     string `doc:"Time zone for popup times" default:"UTC"`
	FetchTimeout int    `doc:"Per-feed fetch timeout in seconds, 0 for none" default:"0"`
	LogLevel     string `doc:"Log level (debug, info, warn, error)" default:"info"`
	LogFormat    string `doc:"Log format (json, text)" default:"json"`
}

func newServer(opts *Options, logger *slog.Logger, metrics *observability.Metrics) (*server.Server, error) {
	if opts.QuakesURL == "" {
		opts.QuakesURL = feed.DefaultQuakesURL
	}
	if opts.PlatesURL == "" {
		opts.PlatesURL = feed.DefaultPlatesURL
	}
	return server.New(server.Config{
		Host:         opts.Host,
		Port:         fmt.Sprintf("%d", opts.Port),
		WebDir:       opts.WebDir,
		QuakesURL:    opts.QuakesURL,
		PlatesURL:    opts.PlatesURL,
		AccessToken:  opts.AccessToken,
		Attribution:  opts.Attribution,
		TimeZone:     opts.TimeZone,
		FetchTimeout: time.Duration(opts.FetchTimeout) * time.Second,
	}, logger, metrics)
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func printOut(v any, useYAML bool) {
	var output []byte
	var err error
	if useYAML {
		output, err = yaml.Marshal(v)
	} else {
		output, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		fatal("Error marshaling output", err)
	}
	fmt.Println(string(output))
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		var httpServer *http.Server
		var srv *server.Server

		hooks.OnStart(func() {
			logger := observability.NewLogger(os.Stderr, opts.LogLevel, opts.LogFormat)
			slog.SetDefault(logger)

			var err error
			srv, err = newServer(opts, logger, observability.NewMetrics())
			if err != nil {
				fatal("Server setup", err)
			}

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-quake server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Quakes:  %s\n", opts.QuakesURL)
			fmt.Printf("  Plates:  %s\n", opts.PlatesURL)
			fmt.Println()
			fmt.Printf("  Map:     %s/viewer\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Printf("  Metrics: %s/metrics\n", baseURL)
			fmt.Println()

			httpServer = &http.Server{
				Addr:              addr,
				Handler:           srv,
				ReadHeaderTimeout: 10 * time.Second,
			}
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("server error", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			if httpServer == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				slog.Error("shutdown", "error", err)
			}
			if srv != nil {
				srv.Close()
			}
		})
	})

	cli.Root().Use = "quake"
	cli.Root().Short = "Map of recent earthquakes and tectonic plate boundaries"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv, err := newServer(opts, observability.Discard(), observability.NewUnregisteredMetrics())
			if err != nil {
				fatal("Server setup", err)
			}
			defer srv.Close()

			useYAML, _ := cmd.Flags().GetBool("yaml")
			printOut(srv.OpenAPI(), useYAML)
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// view subcommand: fetch both feeds once and print the composed view
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Fetch both feeds once and print the composed map view",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			logger := observability.NewLogger(os.Stderr, opts.LogLevel, opts.LogFormat)
			srv, err := newServer(opts, logger, observability.NewUnregisteredMetrics())
			if err != nil {
				fatal("Server setup", err)
			}
			defer srv.Close()

			v, err := srv.Views().Load(cmd.Context())
			if err != nil {
				srv.Close()
				fatal("Map unavailable", err)
			}

			useYAML, _ := cmd.Flags().GetBool("yaml")
			printOut(v, useYAML)
		}),
	}
	viewCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(viewCmd)

	cli.Run()
}
