package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("APP_ENV")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SERVER_PORT")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "userOrders", cfg.Orders.CacheKey)
	assert.InDelta(t, 0.10, cfg.Orders.TaxRate, 0.0001)
	assert.Zero(t, cfg.Orders.ShippingFee)
	assert.Equal(t, 4*time.Minute, cfg.Lifecycle.ShippedDelay)
	assert.Equal(t, 5*time.Minute, cfg.Lifecycle.InTransitDelay)
	assert.Equal(t, 5*time.Minute, cfg.Lifecycle.DeliveredDelay)
	assert.Equal(t, "revoke", cfg.Lifecycle.CancelPolicy)
	assert.Equal(t, "order.tracking", cfg.Events.KafkaTopic)
	assert.Empty(t, cfg.Events.KafkaBrokers)
	assert.Empty(t, cfg.Events.WebhookURL)
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("ORDER_TAX_RATE", "0.2")
	t.Setenv("ORDER_SHIPPING_FEE", "5.5")
	t.Setenv("LIFECYCLE_SHIPPED_DELAY", "10s")
	t.Setenv("LIFECYCLE_CANCEL_POLICY", "last_write_wins")
	t.Setenv("EVENTS_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("EVENTS_WEBHOOK_URL", "https://hooks.example.com/orders")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URL)
	assert.InDelta(t, 0.2, cfg.Orders.TaxRate, 0.0001)
	assert.InDelta(t, 5.5, cfg.Orders.ShippingFee, 0.0001)
	assert.Equal(t, 10*time.Second, cfg.Lifecycle.ShippedDelay)
	assert.Equal(t, "last_write_wins", cfg.Lifecycle.CancelPolicy)
	assert.Equal(t, "kafka-1:9092,kafka-2:9092", cfg.Events.KafkaBrokers)
	assert.Equal(t, "https://hooks.example.com/orders", cfg.Events.WebhookURL)
}

// TestLoad_File verifies that values are loaded from a .env file.
func TestLoad_File(t *testing.T) {
	os.Unsetenv("APP_ENV")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("REDIS_URL")

	content := []byte(`
APP_ENV=staging
LOG_LEVEL=warn
SERVER_PORT=7070
REDIS_URL=redis://staging:6379/0
LIFECYCLE_DELIVERED_DELAY=90s
`)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/.env", content, 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.ServerPort)
	assert.Equal(t, "redis://staging:6379/0", cfg.Redis.URL)
	assert.Equal(t, 90*time.Second, cfg.Lifecycle.DeliveredDelay)
}

// TestLoad_ValidationFailure verifies that missing required fields return an error.
func TestLoad_ValidationFailure(t *testing.T) {
	os.Unsetenv("REDIS_URL")

	cfg, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "missing required configuration: REDIS_URL")
}
