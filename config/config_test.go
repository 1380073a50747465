package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "https://doisporum.net/", config.SeedURL)
	assert.Equal(t, 120, config.MaxItems)
	assert.Equal(t, 800*time.Millisecond, config.RateLimit)
	assert.Equal(t, 6, config.MaxConcurrency)
	assert.Equal(t, 20*time.Second, config.RequestTimeout)
	assert.Equal(t, 60*time.Second, config.BlockTime)
	assert.Equal(t, "doisporum_ofertas.csv", config.CSVPath)
	assert.Equal(t, "doisporum_ofertas.jsonl", config.JSONLPath)
	assert.Equal(t, "", config.RedisAddr)
	assert.Equal(t, "offers", config.RedisStream)
	assert.Equal(t, 500, config.RedisStreamMaxLength)

	// Test with environment variables
	t.Setenv("SEED_URL", "https://example.com/home")
	t.Setenv("MAX_ITEMS", "10")
	t.Setenv("RATE_LIMIT_MS", "250")
	t.Setenv("MAX_CONCURRENCY", "2")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("REDIS_DB", "1")

	config = LoadConfig()
	assert.Equal(t, "https://example.com/home", config.SeedURL)
	assert.Equal(t, 10, config.MaxItems)
	assert.Equal(t, 250*time.Millisecond, config.RateLimit)
	assert.Equal(t, 2, config.MaxConcurrency)
	assert.Equal(t, 5*time.Second, config.RequestTimeout)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 1, config.RedisDB)
}

func TestValidate(t *testing.T) {
	valid := LoadConfig()
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.SeedURL = "not a url"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.SeedURL = "ftp://example.com/"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.MaxItems = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.MaxConcurrency = -1
	assert.Error(t, bad.Validate())

	bad = valid
	bad.RequestTimeout = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.CSVPath = ""
	assert.Error(t, bad.Validate())
}
