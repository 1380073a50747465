package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	apperr "doisporum/offerscraper/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Crawl configuration
	SeedURL        string
	MaxItems       int
	RateLimit      time.Duration
	MaxConcurrency int
	RequestTimeout time.Duration
	UserAgent      string
	BlockTime      time.Duration

	// Output paths
	CSVPath   string
	JSONLPath string

	// Memcache configuration (host block list)
	MemcacheAddr string

	// Redis configuration (optional offer stream)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	maxItems, _ := strconv.Atoi(getEnv("MAX_ITEMS", "120"))
	rateLimitMs, _ := strconv.Atoi(getEnv("RATE_LIMIT_MS", "800"))
	maxConcurrency, _ := strconv.Atoi(getEnv("MAX_CONCURRENCY", "6"))
	timeoutSeconds, _ := strconv.Atoi(getEnv("REQUEST_TIMEOUT_SECONDS", "20"))
	blockSeconds, _ := strconv.Atoi(getEnv("BLOCK_SECONDS", "60"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))

	return Config{
		SeedURL:              getEnv("SEED_URL", "https://doisporum.net/"),
		MaxItems:             maxItems,
		RateLimit:            time.Duration(rateLimitMs) * time.Millisecond,
		MaxConcurrency:       maxConcurrency,
		RequestTimeout:       time.Duration(timeoutSeconds) * time.Second,
		UserAgent:            getEnv("USER_AGENT", "Mozilla/5.0 (compatible; OfferScraper/1.0; +contato@doisporum.net)"),
		BlockTime:            time.Duration(blockSeconds) * time.Second,
		CSVPath:              getEnv("CSV_PATH", "doisporum_ofertas.csv"),
		JSONLPath:            getEnv("JSONL_PATH", "doisporum_ofertas.jsonl"),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "offers"),
		RedisStreamMaxLength: streamMaxLen,
		Environment:          getEnv("SCRAPER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	seed, err := url.Parse(c.SeedURL)
	if err != nil || seed.Host == "" || (seed.Scheme != "http" && seed.Scheme != "https") {
		return apperr.NewConfiguration("SEED_URL must be an absolute http(s) URL", err)
	}
	if c.MaxItems <= 0 {
		return apperr.NewConfiguration("MAX_ITEMS must be positive", nil)
	}
	if c.MaxConcurrency <= 0 {
		return apperr.NewConfiguration("MAX_CONCURRENCY must be positive", nil)
	}
	if c.RateLimit < 0 {
		return apperr.NewConfiguration("RATE_LIMIT_MS must not be negative", nil)
	}
	if c.RequestTimeout <= 0 {
		return apperr.NewConfiguration("REQUEST_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.CSVPath == "" || c.JSONLPath == "" {
		return apperr.NewConfiguration("output paths must not be empty", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
