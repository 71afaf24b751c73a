package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/cutline/app"
	"github.com/Black-And-White-Club/cutline/app/observability"
	"github.com/Black-And-White-Club/cutline/config"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	obs, err := observability.New(ctx, observability.Config{
		ServiceName:     cfg.Observability.ServiceName,
		Environment:     cfg.Observability.Environment,
		Version:         version,
		LogLevel:        cfg.Observability.LogLevel,
		LogFormat:       cfg.Observability.LogFormat,
		MetricsEnabled:  cfg.Observability.MetricsEnabled,
		OTLPEndpoint:    cfg.Observability.OTLPEndpoint,
		OTLPInsecure:    cfg.Observability.OTLPInsecure,
		TraceSampleRate: cfg.Observability.TraceSampleRate,
	}, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to initialize observability: %v", err)
	}

	application, err := app.NewApp(ctx, cfg, obs)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	if err := application.Start(ctx); err != nil {
		obs.Logger.Error("Application exited with error", "error", err)
		os.Exit(1)
	}
}
