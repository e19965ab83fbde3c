package config

import (
	"testing"
	"time"

	"chat-messages/internal/redis"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "chatmessages", cfg.Database.MongoCollection)
	assert.Equal(t, 10*time.Second, cfg.Database.Timeout)
	assert.Equal(t, "chat.messages", cfg.Redis.EventsChannel)
	limits := redis.DefaultRateLimitConfig()
	assert.Equal(t, limits.MessageLimit, cfg.Redis.RateLimitMessages)
	assert.Equal(t, limits.MessageWindow, cfg.Redis.RateLimitWindow)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", DriverMemory)
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("DB_TIMEOUT_SECONDS", "3")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("RATE_LIMIT_MESSAGES", "0")

	cfg := LoadConfig()

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.MongoURI)
	assert.Equal(t, 3*time.Second, cfg.Database.Timeout)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Zero(t, cfg.Redis.RateLimitMessages)
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	assert.Equal(t, 7, getEnvAsInt("REDIS_DB", 7))
}

func TestLoadTestConfig(t *testing.T) {
	t.Setenv("TEST_MONGO_URI", "mongodb://test:27017")

	cfg := LoadTestConfig()

	assert.Equal(t, "mongodb://test:27017", cfg.MongoURI)
	assert.Equal(t, "chat_test", cfg.MongoDatabase)
}
