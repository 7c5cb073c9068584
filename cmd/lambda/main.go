package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"

	"mobsf-sidecar/internal/app"
	"mobsf-sidecar/internal/config"
	"mobsf-sidecar/internal/logging"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := app.LoadSecrets(ctx, cfg); err != nil {
		logger.Error("failed to load secrets", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	// Metrics are recorded but not scraped inside a function runtime.
	h, err := app.NewHandler(cfg, logger, prometheus.NewRegistry())
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
