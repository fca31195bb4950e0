package cache

import (
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Backend string // "memory" or "redis"
}

// NewStore selects the Store implementation for the configured backend.
// redisClient may be nil when the backend is "memory".
func NewStore(cfg Config, redisClient *redis.Client) Store {
	switch cfg.Backend {
	case "redis":
		return NewRedisStore(redisClient)
	default:
		return NewMemoryStore()
	}
}
