// Command seed populates the configured record store with sample services
// and reviews.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/journalist-service/server/internal/app"
	"github.com/journalist-service/server/internal/config"
	"github.com/journalist-service/server/internal/seed"
	"github.com/journalist-service/server/pkg/logger"
)

func main() {
	reviews := flag.Int("reviews", 4, "reviews per service")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("journalist-seed", cfg.LogLevel)

	if err := run(cfg, *reviews, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, reviewsPerService int, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() { _ = store.Close(context.Background()) }()

	_, err = seed.Run(ctx, store, seed.Options{ReviewsPerService: reviewsPerService}, log)
	return err
}
