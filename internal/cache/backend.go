package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Backend is a key-value store with per-entry expiry. Implementations must
// be safe for concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Config selects and configures a cache backend.
type Config struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // redis, postgres, sqlite, disabled
	URL    string `yaml:"url" mapstructure:"url"`
}

// disabledBackend is the no-op variant used when no cache is configured.
// Every read is a miss, every write succeeds without storing anything.
type disabledBackend struct{}

func (disabledBackend) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (disabledBackend) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (disabledBackend) Close() error { return nil }

// Disabled returns the no-op backend.
func Disabled() Backend {
	return disabledBackend{}
}

// Open builds a backend from config. Initialization failure is not an
// error condition for the application: the result degrades to the disabled
// backend with a logged warning.
func Open(ctx context.Context, cfg Config) Backend {
	var (
		b   Backend
		err error
	)
	switch cfg.Driver {
	case "redis":
		b, err = newRedis(ctx, cfg.URL)
	case "postgres":
		b, err = newPostgres(ctx, cfg.URL)
	case "sqlite":
		b, err = newSQLite(cfg.URL)
	case "", "disabled":
		return Disabled()
	default:
		zap.L().Warn("cache: unknown driver, running without cache", zap.String("driver", cfg.Driver))
		return Disabled()
	}
	if err != nil {
		zap.L().Warn("cache: backend init failed, running without cache",
			zap.String("driver", cfg.Driver),
			zap.Error(err),
		)
		return Disabled()
	}
	zap.L().Info("cache: backend ready", zap.String("driver", cfg.Driver))
	return b
}
