// Command seed resets the product catalog to the starter storefront data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/peachwood/api/internal/di"
	"github.com/peachwood/api/internal/platform/config"
	"github.com/peachwood/api/internal/platform/observability"
	"github.com/peachwood/api/internal/seed"
)

func main() {
	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("seed")

	cfg, err := config.Load()
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Fatal("invalid configuration", zap.Strings("fields", invalid.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := di.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build dependencies", zap.Error(err))
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("dependency close error", zap.Error(err))
		}
	}()

	logger.Info("starting catalog seed", zap.String("project", cfg.Firestore.ProjectID))
	result, err := seed.Run(ctx, container.Services.Catalog, container.Repositories.Products)
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}

	logger.Info("cleared existing products", zap.Int("removed", result.Removed))
	for i, line := range result.Created {
		logger.Info("seeded product", zap.Int("index", i+1), zap.String("product", line))
	}
	logger.Info("catalog seed completed", zap.Int("count", len(result.Created)))
}
