package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtdesk/causelist/internal/api"
	"github.com/courtdesk/causelist/internal/cache"
	"github.com/courtdesk/causelist/internal/client"
	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/controller"
	grpcserver "github.com/courtdesk/causelist/internal/grpc"
	"github.com/courtdesk/causelist/internal/metrics"
	"github.com/courtdesk/causelist/internal/services"
	"github.com/courtdesk/causelist/internal/source"
	"github.com/courtdesk/causelist/internal/web"
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

type zerologCacheLogger struct {
	logger zerolog.Logger
}

func (l *zerologCacheLogger) Error(msg string, err error) {
	l.logger.Error().Err(err).Msg(msg)
}

func duration(name, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger := config.GetLogger()
		logger.Warn().Str("setting", name).Str("value", value).Dur("default", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}

// selfURL is the API base URL when the forms talk to this process.
func selfURL(cfg *config.Config) string {
	host := cfg.Server.Address
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprint(cfg.Server.Port)))
}

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Str("source", cfg.Source).
		Str("output_dir", cfg.OutputDir).
		Str("cache_provider", cfg.Cache.Provider).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Msg("Application started with configuration")

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to initialise Sentry")
	}
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listCache, err := cache.New(cfg.Cache.Provider, cache.ProviderConfig{
		Size:          cfg.Cache.Size,
		TTL:           duration("cache.ttl", cfg.Cache.TTL, time.Hour),
		Logger:        &zerologCacheLogger{logger: logger},
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		Group:         "source",
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create cache")
	}
	defer listCache.Close()

	src, err := source.New(cfg, listCache)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create cause-list source")
	}

	store, err := services.NewFileStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.OutputDir).Msg("Failed to prepare output folder")
	}

	janitor, err := services.NewJanitor(store, cfg.Retention.Schedule, duration("retention.max_age", cfg.Retention.MaxAge, 7*24*time.Hour))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create retention janitor")
	}
	janitor.RunOnce()
	janitor.Start()
	defer janitor.Stop()

	doc, err := api.LoadOpenAPI(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load OpenAPI document")
	}

	router, err := api.NewRouter(&api.Handler{
		Source:    src,
		Generator: services.NewCauseListGenerator(src, store, cfg.Source == "" || cfg.Source == "demo"),
		Lookup:    services.NewCaseLookup(src, nil),
		Store:     store,
		OpenAPI:   doc,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create router")
	}

	apiCfg := *cfg
	if apiCfg.APIBaseURL == "" {
		apiCfg.APIBaseURL = selfURL(cfg)
	}
	sessions := web.NewSessions(cfg.Session.Size, duration("session.ttl", cfg.Session.TTL, 12*time.Hour), func() *controller.Controller {
		return controller.New(client.NewClient(&apiCfg))
	})
	web.NewUI(sessions).Register(router)

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	if cfg.GRPC.Enabled {
		grpcServer, healthServer := grpcserver.NewGRPCServer()
		monitor := grpcserver.NewMonitor(healthServer, func(ctx context.Context) error {
			_, err := src.States(ctx)
			return err
		}, 30*time.Second)
		go monitor.Run(ctx)

		grpcAddress := net.JoinHostPort(cfg.Server.Address, fmt.Sprint(cfg.GRPC.Port))
		listener, err := net.Listen("tcp", grpcAddress)
		if err != nil {
			logger.Fatal().Err(err).Str("address", grpcAddress).Msg("Failed to create gRPC listener")
		}
		go func() {
			logger.Info().Str("address", grpcAddress).Msg("Starting gRPC health server")
			if err := grpcServer.Serve(listener); err != nil {
				logger.Error().Err(err).Msg("Failed to serve gRPC")
			}
		}()
		defer grpcServer.GracefulStop()
	}

	address := net.JoinHostPort(cfg.Server.Address, fmt.Sprint(cfg.Server.Port))
	httpServer := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		}
	}()

	logger.Info().Str("address", address).Msg("Starting HTTP server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to serve HTTP")
	}

	logger.Info().Msg("Server stopped gracefully")
}
