package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthbadge/internal/api"
	"healthbadge/internal/client"
	"healthbadge/internal/config"
	"healthbadge/internal/logger"
	"healthbadge/internal/observability"
	"healthbadge/internal/ratelimit"
	"healthbadge/internal/version"
	"healthbadge/internal/view"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file")
	writeConfig = flag.String("write-example-config", "", "Write an example configuration file to this path and exit")
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()

	info := version.GetInfo()
	if *showVersion {
		fmt.Println(info.String())
		return
	}
	if *writeConfig != "" {
		if err := config.SaveExample(*writeConfig); err != nil {
			slog.Error("Failed to write example configuration", "error", err)
			os.Exit(1)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	log, closer, err := logger.Setup(cfg.Logging, info)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	// Initialize observability (OpenTelemetry)
	otelProvider, err := observability.Setup(cfg, info)
	if err != nil {
		slog.Error("Failed to initialize observability", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown observability", "error", err)
		}
	}()

	// When the origin is this server the badge page's fetch is served by the
	// router in-process, so each visitor meets the rate limiter as themselves.
	var router http.Handler
	clientOpts := []client.Option{client.WithTimeout(cfg.Client.Timeout)}
	if cfg.Client.TargetsServer(cfg.Server) {
		clientOpts = append(clientOpts, client.WithHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			router.ServeHTTP(w, r)
		})))
	}
	healthClient := client.New(cfg.Client.Origin, clientOpts...)
	var fetcher client.Fetcher = healthClient
	if cfg.Metrics.Enabled || cfg.Observability.Tracing.Enabled {
		instrumented, err := observability.NewInstrumentedFetcher(healthClient)
		if err != nil {
			slog.Error("Failed to create instrumented client", "error", err)
			os.Exit(1)
		}
		fetcher = instrumented
	}

	tmpl, err := view.ParseTemplates()
	if err != nil {
		slog.Error("Failed to parse view templates", "error", err)
		os.Exit(1)
	}

	handlers := api.NewHandlers(fetcher, cfg.App,
		api.WithTemplates(tmpl),
		api.WithRenderTimeout(cfg.UI.RenderTimeout),
		api.WithBuildInfo(info),
	)

	// Setup routes with middleware
	routeOpts := []api.RouteOption{}
	if cfg.Observability.Tracing.Enabled {
		routeOpts = append(routeOpts, api.WithOTelMiddleware(cfg.Observability.ServiceName))
	}

	// Initialize rate limiter if enabled
	if cfg.Security.RateLimit.Enabled {
		rlCfg := cfg.Security.RateLimit
		resolver, err := ratelimit.NewIPResolver(rlCfg.TrustedProxies)
		if err != nil {
			slog.Error("Failed to parse trusted proxies", "error", err)
			os.Exit(1)
		}
		limiter := ratelimit.NewMemoryLimiter(rlCfg.RequestsPerMinute, rlCfg.BurstSize, rlCfg.CleanupInterval)
		defer limiter.Close()

		routeOpts = append(routeOpts, api.WithRateLimiter(ratelimit.Middleware(limiter, ratelimit.WithIPResolver(resolver))))
	}

	router = api.SetupRoutes(handlers, routeOpts...)

	// Start metrics server if enabled
	var metricsServer *observability.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = observability.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, otelProvider)
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Starting server",
			"addr", server.Addr,
			"environment", cfg.App.Environment,
			"app_version", cfg.App.Version,
			"client_base_url", healthClient.BaseURL(),
			"client_in_process", cfg.Client.TargetsServer(cfg.Server),
			"instance_id", info.InstanceID)

		var err error
		if cfg.Server.TLSEnabled {
			slog.Info("Starting HTTPS server with TLS")
			err = server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			slog.Info("Starting HTTP server")
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("Metrics server forced to shutdown", "error", err)
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server shutdown complete")
}
