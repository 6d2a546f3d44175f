package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagarc03/helloapi"
	"github.com/sagarc03/helloapi/config"
	"github.com/sagarc03/helloapi/controllers"
	"github.com/sagarc03/helloapi/database"
	helloapihttp "github.com/sagarc03/helloapi/http"
	"github.com/sagarc03/helloapi/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the helloapi HTTP server.

The request pipeline is chosen by the environment:
  development: DetailedErrorPage, Routing, Dispatch
  production:  GenericErrorHandler, TransportSecurityHeader, Routing, Dispatch`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (default: 5000, env: HELLOAPI_SERVER_PORT)")
	serveCmd.Flags().String("error-mode", "", "production error handling: reexecute or redirect (env: HELLOAPI_ERRORS_MODE)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}
	env := cfg.Environment()

	if cfg.Telemetry.Enabled {
		shutdownTracer, tracerErr := telemetry.InitTracer(cfg.Telemetry.ServiceName, slog.Default())
		if tracerErr != nil {
			return fmt.Errorf("init tracer: %w", tracerErr)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				slog.Error("tracer shutdown error", "err", err)
			}
		}()
	}

	var (
		incidents *helloapi.IncidentService
		pingers   []controllers.Pinger
	)
	if cfg.Database.Enabled() {
		db, dbErr := database.Open(ctx, cfg.Database)
		if dbErr != nil {
			return fmt.Errorf("open database: %w", dbErr)
		}
		defer func() { _ = db.Close() }()

		slog.Info("connected to database", "type", cfg.Database.Type)
		incidents = helloapi.NewIncidentService(db.GetRepo(), env)
		pingers = append(pingers, db)
	}

	pipeline, err := newPipeline(cfg, incidents, pingers...)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := newServer(addr, cfg.Server, pipeline)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
	}()

	slog.Info("starting server",
		"addr", addr,
		"env", env,
		"stages", pipeline.Stages(),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// newPipeline registers the controllers and builds the request pipeline for
// the configured environment. incidents may be nil.
func newPipeline(cfg *config.Config, incidents *helloapi.IncidentService, pingers ...controllers.Pinger) (*helloapihttp.Pipeline, error) {
	routes, err := helloapihttp.RegisterControllers(
		controllers.NewHomeController(),
		controllers.NewHelloController(),
		controllers.NewHealthController(pingers...),
	)
	if err != nil {
		return nil, fmt.Errorf("register controllers: %w", err)
	}

	opts := cfg.PipelineOptions()
	opts.Logger = slog.Default()
	if incidents != nil {
		opts.Incidents = incidents
	}

	return helloapihttp.BuildPipeline(cfg.Environment(), routes, opts), nil
}

func newServer(addr string, cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
