package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/aura-dashboard/backend/internal/api"
	"github.com/aura-dashboard/backend/internal/metrics"
	"github.com/aura-dashboard/backend/internal/service"
	"github.com/aura-dashboard/backend/pkg/config"
	appLogger "github.com/aura-dashboard/backend/pkg/logger"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Aura comparison API server")

	metrics.Init()

	ctx := context.Background()
	svc, err := service.New(ctx, cfg, nil)
	if err != nil {
		appLogger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer svc.Close()

	server := api.NewServer(api.Deps{
		Config:       cfg,
		Orchestrator: svc.Orchestrator,
		Store:        svc.Store,
		Exporter:     svc.Exporter,
		IDs:          svc.IDs,
		RequestLog:   cfg.Server.Development,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := server.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := server.Shutdown(); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
