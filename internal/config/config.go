package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/visitorid/pkg/identity"
)

var (
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	ErrUnknownStore  = errors.New("unknown identity store")
	ErrLoadingEnv    = errors.New("failed to load env file")
)

// Identity store backends selectable through VISITORID_STORE.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
	StoreRedis  = "redis"
)

// Config is the runtime configuration of the visitorid binary.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Endpoint string        `env:"VISITORID_ENDPOINT"`
	VendorID string        `env:"VISITORID_VENDOR_ID"`
	Timeout  time.Duration `env:"VISITORID_TIMEOUT" envDefault:"10s"`

	Store      string        `env:"VISITORID_STORE" envDefault:"memory"`
	BadgerPath string        `env:"VISITORID_BADGER_PATH" envDefault:".visitorid"`
	TTL        time.Duration `env:"VISITORID_TTL" envDefault:"8760h"`
	// Origin scopes stored keys when several storefronts share a backend.
	Origin string `env:"VISITORID_ORIGIN"`

	CookieSecrets []string `env:"COOKIE_SECRETS" envSeparator:","`
	CollectorAddr string   `env:"COLLECTOR_ADDR" envDefault:":8085"`

	Redis identity.RedisConfig
}

// Load reads .env files into the process environment and parses Config.
// Without arguments a missing ./.env is ignored; named files must exist.
// Variables already set in the environment win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, errors.Join(ErrLoadingEnv, err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	if !slices.Contains([]string{StoreMemory, StoreBadger, StoreRedis}, c.Store) {
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store)
	}
	return nil
}

// OpenStore builds the configured identity store. The returned close
// function releases the backend and is never nil.
func OpenStore(ctx context.Context, cfg Config, log *slog.Logger) (identity.Store, func() error, error) {
	var (
		store   identity.Store
		closeFn = func() error { return nil }
	)

	switch cfg.Store {
	case StoreMemory:
		store = identity.NewMemoryStore()
	case StoreBadger:
		db, err := identity.OpenBadger(identity.BadgerConfig{Path: cfg.BadgerPath, Logger: log})
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = db, db.Close
	case StoreRedis:
		client, err := identity.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = identity.NewRedisStore(client), client.Close
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Store)
	}

	if cfg.Origin != "" {
		store = identity.WithPrefix(store, cfg.Origin)
	}
	return store, closeFn, nil
}
