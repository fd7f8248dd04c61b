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
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"filmdex/account/internal/controller/account"
	httphandler "filmdex/account/internal/handler/http"
	accountmongo "filmdex/account/internal/repository/mongo"
	"filmdex/account/internal/token"
	"filmdex/internal/db"
	"filmdex/pkg/discovery"
	"filmdex/pkg/discovery/consul"
	"filmdex/pkg/tracing"
)

const serviceName = "account"

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var configPath string
	flag.StringVar(&configPath, "config", "configs/account.yaml", "Path to the service configuration")
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
	logger.Info("Starting the account service", zap.Int("port", port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry, err := consul.NewRegistry(cfg.ServiceDiscovery.Consul.Address)
	if err != nil {
		logger.Fatal("Failed to init account service registry", zap.Error(err))
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

	tracer, closer, err := tracing.NewTracer(serviceName, cfg.Jaeger.Host, cfg.Jaeger.Port, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Jaeger tracer", zap.Error(err))
	}
	defer closer.Close()
	opentracing.SetGlobalTracer(tracer)

	client, err := db.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())
	repo := accountmongo.NewUserRepository(client.Database(cfg.Mongo.Database))

	secret := []byte(cfg.Token.Secret)
	issuer := token.NewIssuer(func() []byte { return secret }, time.Duration(cfg.Token.TTLMinutes)*time.Minute)
	ctrl := account.New(repo, logger)

	mux := http.NewServeMux()
	httphandler.New(ctrl, issuer, logger).Register(mux)
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
