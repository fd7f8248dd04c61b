package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally/v4"
	promreporter "github.com/uber-go/tally/v4/prometheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"filmdex/internal/db"
	"filmdex/movie/internal/controller/movie"
	httphandler "filmdex/movie/internal/handler/http"
	moviemongo "filmdex/movie/internal/repository/mongo"
	"filmdex/movie/internal/reconciler"
	"filmdex/movie/internal/search/meili"
	"filmdex/pkg/discovery"
	"filmdex/pkg/discovery/consul"
	"filmdex/pkg/tracing"
)

const serviceName = "movie"

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var configPath string
	flag.StringVar(&configPath, "config", "configs/movie.yaml", "Path to the service configuration")
	flag.Parse()

	f, err := os.Open(configPath)
	if err != nil {
		logger.Fatal("Failed to open configuration", zap.Error(err))
	}
	var cfg config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		logger.Fatal("Failed to parse configuration", zap.Error(err))
	}
	f.Close()

	port := cfg.API.Port
	logger.Info("Starting the movie service", zap.Int("port", port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Service registration / health heartbeat ---
	registry, err := consul.NewRegistry(cfg.ServiceDiscovery.Consul.Address)
	if err != nil {
		logger.Fatal("Failed to init movie service registry", zap.Error(err))
	}
	instanceID := discovery.GenerateInstanceID(serviceName)
	if err := registry.Register(ctx, instanceID, serviceName, fmt.Sprintf("localhost:%d", port)); err != nil {
		logger.Fatal("Failed to register service", zap.Error(err))
	}
	defer registry.Deregister(ctx, instanceID, serviceName)
	go func() {
		for {
			if err := registry.ReportHealthyState(instanceID, serviceName); err != nil {
				logger.Warn("Failed to report healthy state", zap.Error(err))
			}
			time.Sleep(1 * time.Second)
		}
	}()

	// --- Jaeger tracing ---
	tracer, closer, err := tracing.NewTracer(serviceName, cfg.Jaeger.Host, cfg.Jaeger.Port, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Jaeger tracer", zap.Error(err))
	}
	defer closer.Close()
	opentracing.SetGlobalTracer(tracer)

	// --- Stores ---
	client, err := db.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())
	if err := db.Ping(ctx, client); err != nil {
		logger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	database := client.Database(cfg.Mongo.Database)
	movieRepo := moviemongo.NewMovieRepository(database)
	likeRepo := moviemongo.NewLikeRepository(database)

	index := meili.New(cfg.Search.Host, cfg.Search.APIKey, cfg.Search.Index)
	if err := index.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to prepare search index", zap.Error(err))
	}

	// --- Metrics ---
	reporter := promreporter.NewReporter(promreporter.Options{})
	scope, scopeCloser := tally.NewRootScope(tally.ScopeOptions{
		Prefix:         serviceName,
		CachedReporter: reporter,
		Separator:      promreporter.DefaultSeparator,
	}, time.Second)
	defer scopeCloser.Close()

	// --- Controller and reconciler ---
	ctrl := movie.New(movieRepo, index, logger)
	rec := reconciler.New(movieRepo, likeRepo, index, logger, scope.SubScope("reconciler"), reconciler.Config{
		Interval:  time.Duration(cfg.Reconciler.IntervalSeconds) * time.Second,
		BatchSize: cfg.Reconciler.BatchSize,
		Workers:   cfg.Reconciler.Workers,
	})
	rec.Start(ctx)
	defer rec.Stop()

	// --- HTTP server ---
	mux := http.NewServeMux()
	httphandler.New(ctrl, logger).Register(mux)
	mux.Handle("GET /metrics", reporter.HTTPHandler())
	srv := &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", port),
		Handler: mux,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sigChan
		logger.Info("Received signal, attempting graceful shutdown", zap.Any("signal", s))
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Failed to serve HTTP", zap.Error(err))
	}
	logger.Info("Gracefully stopped the HTTP server")
}
