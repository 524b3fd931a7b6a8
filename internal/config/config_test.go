package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStorefront_Defaults(t *testing.T) {
	cfg, err := LoadStorefront()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "GOLDADMIN", cfg.PromoCode)
	assert.Equal(t, "http://localhost:8090/reviews", cfg.ReviewsURL)
	assert.Equal(t, "http://localhost:8090/logs", cfg.LogsURL)
	assert.Equal(t, 5*time.Second, cfg.LogPollInterval)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Empty(t, cfg.CatalogDBPath)
}

func TestLoadStorefront_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("GOLDSHOP_PROMO_CODE", "secret")
	t.Setenv("GOLDSHOP_LOG_POLL_INTERVAL", "250ms")

	cfg, err := LoadStorefront()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, "secret", cfg.PromoCode)
	assert.Equal(t, 250*time.Millisecond, cfg.LogPollInterval)
}

func TestLoadStorefront_InvalidInterval(t *testing.T) {
	t.Setenv("GOLDSHOP_LOG_POLL_INTERVAL", "0s")
	_, err := LoadStorefront()
	assert.Error(t, err)

	t.Setenv("GOLDSHOP_LOG_POLL_INTERVAL", "soon")
	_, err = LoadStorefront()
	assert.Error(t, err)
}

func TestLoadStoreAPI(t *testing.T) {
	t.Setenv("DB_PORT", "6543")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := LoadStoreAPI()
	require.NoError(t, err)
	assert.Equal(t, "8090", cfg.HTTPPort)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, "goldshop", cfg.DBName)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}
