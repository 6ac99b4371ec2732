package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":  "postgres://localhost:5432/storefront",
		"REDIS_URL":     "redis://localhost:6379/0",
		"AUTH_JWKS_URL": "https://id.example.com/.well-known/jwks.json",
	})
	require.NoError(t, err)
	require.Equal(t, 200, cfg.TaxRateBps)
	require.Equal(t, time.Hour, cfg.InsightsCacheTTL)
	require.Equal(t, 2, cfg.InsightsRatePerMin)
	require.Equal(t, ":8080", cfg.HTTPAddr())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL":  "",
		"REDIS_URL":     "redis://localhost:6379/0",
		"AUTH_JWKS_URL": "https://id.example.com/.well-known/jwks.json",
	})
	require.Error(t, err)
}

func TestLoadRejectsTaxRateOutOfRange(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL":  "postgres://localhost:5432/storefront",
		"REDIS_URL":     "redis://localhost:6379/0",
		"AUTH_JWKS_URL": "https://id.example.com/.well-known/jwks.json",
		"TAX_RATE_BPS":  "20000",
	})
	require.Error(t, err)
}
