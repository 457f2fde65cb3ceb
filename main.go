package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"cyberguard/config"
	qhttp "cyberguard/http"
	"cyberguard/inference"
	"cyberguard/logger"
	"cyberguard/monitoring"
)

func main() {
	configPath := flag.String("config", envOr("CYBERGUARD_CONFIG", "config.yaml"), "path to config file")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if os.IsNotExist(err) {
		log.Printf("config %s not found, using defaults", *configPath)
		cfg, err = config.Default(), nil
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Logger
	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// 3. Model, loaded once; a bad artifact degrades the service instead of exiting
	svc := inference.Open(cfg.ML.ModelType, cfg.ML.ModelPath, zlog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub, err := monitoring.NewHub(cfg.Feed.Replay, zlog)
	if err != nil {
		zlog.Fatal("failed to create verdict feed", zap.Error(err))
	}
	go hub.Run(ctx)

	// 4. Start HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
		RateLimit:      cfg.Http.RateLimit,
		RateBurst:      cfg.Http.RateBurst,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}, svc, hub, zlog)
	go func() {
		if err := server.Start(); err != nil {
			zlog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	if err := server.Stop(); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	cancel()

	zlog.Info("exiting")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
