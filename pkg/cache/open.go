package cache

import (
	"context"

	"github.com/lzdw/lzdraw/pkg/config"
	"github.com/lzdw/lzdraw/pkg/errors"
)

// Open creates the backend selected by cfg.
func Open(ctx context.Context, cfg config.Cache) (Cache, error) {
	switch cfg.Kind() {
	case config.CacheNone:
		return NewNullCache(), nil
	case config.CacheFile:
		c, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open cache dir")
		}
		return c, nil
	case config.CacheRedis:
		c, err := NewRedisCache(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.Prefix,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUpstream, err, "connect to redis at %s", cfg.RedisAddr)
		}
		return c, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.Backend)
	}
}
