package store

import (
	"context"

	"github.com/lzdw/lzdraw/pkg/config"
	"github.com/lzdw/lzdraw/pkg/errors"
)

// Open creates the backend selected by cfg.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	switch cfg.Kind() {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreFile:
		return NewFileStore(cfg.Dir)
	case config.StoreMongo:
		return NewMongoStore(ctx, MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
}
