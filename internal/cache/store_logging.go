package cache

import (
	"context"
	"strings"
	"time"

	"hof-narrator/pkg/logging/logging"

	"go.uber.org/zap"
)

// LoggingStore wraps a Store with structured logging. Every backend
// interaction gets a record; cache faults are never user-visible, so the log
// is the only place they surface.
type LoggingStore struct {
	inner Store
}

func NewLoggingStore(inner Store) Store {
	return &LoggingStore{inner: inner}
}

func (s *LoggingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := s.inner.Get(ctx, key)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
	}

	fields := append(keyFields(key),
		zap.String("cache_result", result),
		zap.Duration("latency", time.Since(start)),
	)
	if err != nil {
		logging.L(ctx).Warn("cache_get", append(fields, zap.Error(err))...)
	} else {
		logging.L(ctx).Debug("cache_get", fields...)
	}

	return value, ok, err
}

func (s *LoggingStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.inner.Set(ctx, key, value)

	fields := append(keyFields(key),
		zap.Int("bytes", len(value)),
		zap.Duration("latency", time.Since(start)),
	)
	if err != nil {
		logging.L(ctx).Warn("cache_set", append(fields, zap.Error(err))...)
	} else {
		logging.L(ctx).Debug("cache_set", fields...)
	}

	return err
}

func (s *LoggingStore) Append(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.inner.Append(ctx, key, value)

	fields := append(keyFields(key),
		zap.Int("bytes", len(value)),
		zap.Duration("latency", time.Since(start)),
	)
	if err != nil {
		logging.L(ctx).Warn("cache_append", append(fields, zap.Error(err))...)
	} else {
		logging.L(ctx).Debug("cache_append", fields...)
	}

	return err
}

func (s *LoggingStore) GetList(ctx context.Context, key string) ([][]byte, error) {
	start := time.Now()
	list, err := s.inner.GetList(ctx, key)

	fields := append(keyFields(key),
		zap.Int("entries", len(list)),
		zap.Duration("latency", time.Since(start)),
	)
	if err != nil {
		logging.L(ctx).Warn("cache_get_list", append(fields, zap.Error(err))...)
	} else {
		logging.L(ctx).Debug("cache_get_list", fields...)
	}

	return list, err
}

func (s *LoggingStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// keyFields splits the namespace off a composite key for log fields.
func keyFields(key string) []zap.Field {
	namespace, rest, ok := strings.Cut(key, ":")
	if !ok {
		return []zap.Field{zap.String("cache_key", key)}
	}
	return []zap.Field{
		zap.String("namespace", namespace),
		zap.String("cache_key", rest),
	}
}
