package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"erpinsight/internal/config"
	"erpinsight/internal/enrich"
	"erpinsight/internal/infrastructure"
	custommw "erpinsight/internal/middleware"
	"erpinsight/internal/orchestrator"
	"erpinsight/internal/services"
	handlers "erpinsight/internal/transport/http"
	ws "erpinsight/internal/websocket"
	"erpinsight/pkg/contracts/domain"
)

const Version = "1.0.0"

// Application is the dependency container for the server binary.
type Application struct {
	Config   *config.Config
	Logger   *slog.Logger
	Router   *chi.Mux
	Server   *http.Server
	Hub      *ws.Hub
	Store    *services.FileStore
	Uploads  *services.UploadService
	Analysis *services.AnalysisService
	Registry *prometheus.Registry
}

// hubBroadcaster adapts the websocket hub to the pipeline's progress
// interface so the hub never imports pipeline types.
type hubBroadcaster struct {
	hub *ws.Hub
}

func (b hubBroadcaster) RunPhase(runID string, phase orchestrator.Phase) {
	b.hub.RunPhase(runID, string(phase))
}

func (b hubBroadcaster) TableSkipped(runID string, skipped domain.SkippedTable) {
	b.hub.TableSkipped(runID, skipped)
}

var _ orchestrator.Broadcaster = hubBroadcaster{}

// NewApplication loads configuration and wires every component.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	logger.Info("application starting", "version", Version)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := orchestrator.NewMetrics(registry)

	hub := ws.NewHub(logger)
	orch := orchestrator.New(logger, metrics, hubBroadcaster{hub: hub})

	store := services.NewFileStore(cfg.Upload.MaxFiles)
	uploads := services.NewUploadService(store, cfg.Upload, logger)
	enricher := enrich.NewClient(enrich.Config{
		BaseURL: cfg.Enrichment.BaseURL,
		APIKey:  cfg.Enrichment.APIKey,
		Model:   cfg.Enrichment.Model,
		Timeout: cfg.Enrichment.Timeout,
	}, logger)
	analysis := services.NewAnalysisService(store, orch, enricher, logger)
	analysis.StockWindows = cfg.Analysis

	app := &Application{
		Config:   cfg,
		Logger:   logger,
		Hub:      hub,
		Store:    store,
		Uploads:  uploads,
		Analysis: analysis,
		Registry: registry,
	}
	app.Router = app.setupRouter()
	app.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        app.Router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}
	return app, nil
}

func (a *Application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))

	if a.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		}))
	}
	if a.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger)
		r.Use(limiter.Handler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Group(func(r chi.Router) {
			r.Use(custommw.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			r.Get("/health", handlers.NewHealthHandler(Version).Health)
			r.Mount("/upload", handlers.NewUploadHandler(a.Uploads, a.Store, a.Logger).Routes())

			samplesHandler := handlers.NewSamplesHandler(a.Logger)
			r.Mount("/samples", samplesHandler.SampleRoutes())
			r.Mount("/templates", samplesHandler.TemplateRoutes())
		})

		// Analysis runs longer than the standard request timeout.
		r.Group(func(r chi.Router) {
			r.Use(custommw.Timeout(a.Config.Server.AnalysisTimeout, a.Logger))
			r.Mount("/analyze", handlers.NewAnalysisHandler(a.Analysis, a.Logger).Routes())
		})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	r.Get("/ws", handlers.NewWSHandler(a.Hub, a.Logger).Serve)

	return r
}

// Start brings up the websocket hub and the HTTP listener.
func (a *Application) Start(ctx context.Context) error {
	a.Hub.Start()
	a.Logger.InfoContext(ctx, "http server listening", "addr", a.Server.Addr)
	if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and tears the hub down.
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.Hub.Stop()
	a.Logger.InfoContext(ctx, "application stopped")
	return nil
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *Application) Run() error {
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Start(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		a.Logger.Info("shutdown signal received", "signal", sig.String())
		return a.Stop(ctx)
	}
}
