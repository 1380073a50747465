package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"doisporum/offerscraper/config"
	"doisporum/offerscraper/internal/scraper"
	"doisporum/offerscraper/logger"
	"doisporum/offerscraper/services/cache"
	"doisporum/offerscraper/services/publisher"
	"doisporum/offerscraper/services/repository"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("seed_url", cfg.SeedURL).
		Int("max_items", cfg.MaxItems).
		Int("max_concurrency", cfg.MaxConcurrency).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services := initializeServices(ctx, &cfg)
	defer services.Cleanup()

	coordinator := scraper.NewCoordinator(cfg, services.Cache, services.Repository, services.Publisher)

	// Run the pipeline in a goroutine
	runDone := make(chan error, 1)
	go func() {
		runDone <- coordinator.Run(ctx)
	}()

	// Wait for shutdown signal or pipeline completion
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-runDone
	case err := <-runDone:
		if err != nil {
			log.Fatal().Err(err).Msg("Scrape failed")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Cache      cache.CacheService
	Publisher  publisher.Publisher
	Repository *repository.FileRepository
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices initializes the optional cache and publisher plus the
// file repository.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{
		Repository: repository.NewFileRepository(),
	}

	if cfg.MemcacheAddr != "" {
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Using Memcache block list at %s", cfg.MemcacheAddr)
	}

	if cfg.RedisAddr != "" {
		services.Publisher = publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		logger.Info("Publishing offers to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return services
}
