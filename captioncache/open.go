package captioncache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"captionsearch/config"
)

// Open builds the Store selected by cfg.CacheBackend. The redis client is only
// used for the redis backend and may be nil otherwise.
func Open(ctx context.Context, cfg config.Config, client *redis.Client) (Store, error) {
	switch cfg.CacheBackend {
	case "redis", "":
		if client == nil {
			return nil, fmt.Errorf("redis cache backend requires a redis client")
		}
		return NewRedisStore(client), nil
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "postgres":
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
