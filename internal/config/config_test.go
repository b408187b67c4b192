package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigClampsValues(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    cfg := LoadRateLimitConfig()

    assert.Equal(t, 1, cfg.Capacity)
    assert.Equal(t, 1, cfg.RefillTokens)
    assert.Equal(t, 2*time.Second, cfg.RefillInterval)
    assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfigDefaults(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    t.Setenv("CACHE_TTL", "not-a-duration")

    cfg := LoadCacheConfig()

    assert.True(t, cfg.Enabled)
    assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
    assert.Equal(t, time.Minute, cfg.TTL)
    assert.Equal(t, "rooms-cache", cfg.Prefix)
}

func TestLoadRedisConfigPrefersHostPort(t *testing.T) {
    t.Setenv("REDIS_ADDR", "cache:6000")
    t.Setenv("REDIS_HOST", "redis")
    t.Setenv("REDIS_PORT", "6380")
    t.Setenv("REDIS_TLS", "1")

    cfg := LoadRedisConfig()

    assert.Equal(t, "redis:6380", cfg.Addr)
    assert.True(t, cfg.TLS)
}

func TestLoadEventsConfigFallsBackToAMQPURL(t *testing.T) {
    t.Setenv("RABBITMQ_URL", "")
    t.Setenv("AMQP_URL", "amqp://u:p@mq:5672/")

    cfg := LoadEventsConfig()

    assert.False(t, cfg.Enabled)
    assert.Equal(t, "amqp://u:p@mq:5672/", cfg.URL)
    assert.Equal(t, "booking.status_changed", cfg.Queue)
}
