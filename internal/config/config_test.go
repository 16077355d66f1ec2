package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Paystack.SecretKey = "sk_test_x"
	cfg.Mailer.URL = "http://localhost:9090/send"
	return cfg
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, SessionBackendPostgres, cfg.Session.Backend)
	assert.Equal(t, 10, cfg.Session.IdleTimeoutMinutes)
	assert.Equal(t, int64(200), cfg.Marketplace.ServiceFee)
	assert.Equal(t, "live", cfg.Marketplace.ListingInitialStatus)
	assert.Equal(t, 3, cfg.Marketplace.LeaveGraceDays)
	assert.Equal(t, "https://api.paystack.co", cfg.Paystack.BaseURL)
	assert.Equal(t, 5, cfg.Marketplace.RenewLookaheadDays)
	assert.Equal(t, "0 9 * * *", cfg.Marketplace.SweepSchedule)
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	cfg := validConfig()
	cfg.Session.Backend = "etcd"
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Session.Backend = SessionBackendRedis
	assert.Error(t, Normalize(cfg), "redis backend requires an address")

	cfg = validConfig()
	cfg.Marketplace.ListingInitialStatus = "archived"
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Paystack.SecretKey = ""
	assert.Error(t, Normalize(cfg))
}
