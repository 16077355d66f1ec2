// Package config loads the bot's application configuration: the reusable
// core sections plus the marketplace-specific ones.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/crewshare/crewbot/core/config"
	coredatabase "github.com/crewshare/crewbot/core/database"
	"github.com/crewshare/crewbot/internal/domain"
)

// Session backends.
const (
	SessionBackendPostgres = "postgres"
	SessionBackendRedis    = "redis"
	SessionBackendMemory   = "memory"
)

// SessionConfig selects where conversation state is kept.
type SessionConfig struct {
	Backend       string `yaml:"backend" envconfig:"SESSION_BACKEND"`
	RedisAddr     string `yaml:"redis_addr" envconfig:"SESSION_REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" envconfig:"SESSION_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" envconfig:"SESSION_REDIS_DB"`
	// FallbackMemory allows degrading to the in-process store when the
	// durable backend errors. Off by default so outages stay visible.
	FallbackMemory     bool `yaml:"fallback_memory" envconfig:"SESSION_FALLBACK_MEMORY"`
	IdleTimeoutMinutes int  `yaml:"idle_timeout_minutes" envconfig:"SESSION_IDLE_TIMEOUT_MINUTES"`
}

// PaystackConfig holds payment gateway settings.
type PaystackConfig struct {
	BaseURL     string `yaml:"base_url" envconfig:"PAYSTACK_BASE_URL"`
	SecretKey   string `yaml:"secret_key" envconfig:"PAYSTACK_SECRET_KEY"`
	CallbackURL string `yaml:"callback_url" envconfig:"PAYSTACK_CALLBACK_URL"`
}

// MailerConfig holds the verification mail relay settings.
type MailerConfig struct {
	URL string `yaml:"url" envconfig:"MAILER_URL"`
}

// MarketplaceConfig holds the business policy knobs.
type MarketplaceConfig struct {
	// ServiceFee in naira, added on top of every plan price at checkout.
	ServiceFee int64 `yaml:"service_fee" envconfig:"MARKETPLACE_SERVICE_FEE"`
	PageSize   int   `yaml:"page_size" envconfig:"MARKETPLACE_PAGE_SIZE"`
	// LeaveGraceDays is how long a leave request waits before the sweep frees the slot.
	LeaveGraceDays int `yaml:"leave_grace_days" envconfig:"MARKETPLACE_LEAVE_GRACE_DAYS"`
	// RenewLookaheadDays is how close to expiry a membership must be to offer renewal.
	RenewLookaheadDays int `yaml:"renew_lookahead_days" envconfig:"MARKETPLACE_RENEW_LOOKAHEAD_DAYS"`
	// ListingInitialStatus is either "live" or "pending" (pending requires /approve).
	ListingInitialStatus string `yaml:"listing_initial_status" envconfig:"MARKETPLACE_LISTING_INITIAL_STATUS"`
	CatalogPath          string `yaml:"catalog_path" envconfig:"MARKETPLACE_CATALOG_PATH"`
	// SweepSchedule is a cron spec for the daily leave-request sweep.
	SweepSchedule string `yaml:"sweep_schedule" envconfig:"MARKETPLACE_SWEEP_SCHEDULE"`
}

// Config aggregates core and marketplace configuration.
type Config struct {
	Core        coreconfig.Config   `yaml:",inline"`
	Database    coredatabase.Config `yaml:"database"`
	Session     SessionConfig       `yaml:"session"`
	Paystack    PaystackConfig      `yaml:"paystack"`
	Mailer      MailerConfig        `yaml:"mailer"`
	Marketplace MarketplaceConfig   `yaml:"marketplace"`
}

// CoreConfig satisfies the runner's config carrier.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Core }

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates marketplace sections and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	if backend == "" {
		backend = SessionBackendPostgres
	}
	switch backend {
	case SessionBackendPostgres, SessionBackendMemory:
	case SessionBackendRedis:
		if strings.TrimSpace(cfg.Session.RedisAddr) == "" {
			return fmt.Errorf("session.redis_addr is required when session.backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: postgres, redis, memory", cfg.Session.Backend)
	}
	cfg.Session.Backend = backend
	if cfg.Session.IdleTimeoutMinutes <= 0 {
		cfg.Session.IdleTimeoutMinutes = 10
	}

	if strings.TrimSpace(cfg.Paystack.SecretKey) == "" {
		return fmt.Errorf("paystack.secret_key is required")
	}
	if strings.TrimSpace(cfg.Paystack.BaseURL) == "" {
		cfg.Paystack.BaseURL = "https://api.paystack.co"
	}
	cfg.Paystack.BaseURL = strings.TrimRight(cfg.Paystack.BaseURL, "/")

	if strings.TrimSpace(cfg.Mailer.URL) == "" {
		return fmt.Errorf("mailer.url is required")
	}

	m := &cfg.Marketplace
	if m.ServiceFee < 0 {
		return fmt.Errorf("marketplace.service_fee must be >= 0")
	}
	if m.ServiceFee == 0 {
		m.ServiceFee = 200
	}
	if m.PageSize <= 0 {
		m.PageSize = 5
	}
	if m.LeaveGraceDays <= 0 {
		m.LeaveGraceDays = 3
	}
	if m.RenewLookaheadDays <= 0 {
		m.RenewLookaheadDays = 5
	}
	status := strings.ToLower(strings.TrimSpace(m.ListingInitialStatus))
	if status == "" {
		status = string(domain.ListingLive)
	}
	switch domain.ListingStatus(status) {
	case domain.ListingLive, domain.ListingPending:
	default:
		return fmt.Errorf("invalid marketplace.listing_initial_status %q; allowed: live, pending", m.ListingInitialStatus)
	}
	m.ListingInitialStatus = status
	if strings.TrimSpace(m.CatalogPath) == "" {
		m.CatalogPath = "catalog.yaml"
	}
	if strings.TrimSpace(m.SweepSchedule) == "" {
		m.SweepSchedule = "0 9 * * *"
	}
	return nil
}
