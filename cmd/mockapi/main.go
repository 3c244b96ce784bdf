package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gilberthb/Umunsi-sub002/internal/app"
	"github.com/Gilberthb/Umunsi-sub002/internal/config"
	"github.com/Gilberthb/Umunsi-sub002/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New("mockapi", cfg.LogLevel)
	log.Info("starting development CMS API",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.MockAPIHTTPPort),
		slog.Bool("seed", cfg.MockAPISeed),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server, err := app.NewServer(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	log.Info("development CMS API stopped")
	return nil
}
