package session

import (
	"context"
	"log/slog"

	"github.com/crewshare/crewbot/core/logger"
)

// FallbackStore degrades to an in-memory store when the durable backend
// errors. Every degradation is logged loudly; this wrapper is only wired
// when the operator opts in, so outages are a choice, not a surprise.
type FallbackStore struct {
	durable Store
	mem     *MemoryStore
}

// NewFallbackStore wraps durable with an in-memory escape hatch.
func NewFallbackStore(durable Store) *FallbackStore {
	return &FallbackStore{durable: durable, mem: NewMemoryStore()}
}

// Get implements Store.
func (f *FallbackStore) Get(ctx context.Context, key string) (*Session, error) {
	s, err := f.durable.Get(ctx, key)
	if err == nil {
		return s, nil
	}
	logger.Warn(ctx, "session", "session.fallback",
		slog.String("op", "get"), slog.String("key", key), slog.String("error", err.Error()))
	return f.mem.Get(ctx, key)
}

// Set implements Store.
func (f *FallbackStore) Set(ctx context.Context, key string, s *Session) error {
	if err := f.durable.Set(ctx, key, s); err != nil {
		logger.Warn(ctx, "session", "session.fallback",
			slog.String("op", "set"), slog.String("key", key), slog.String("error", err.Error()))
		return f.mem.Set(ctx, key, s)
	}
	// Drop any stale shadow copy once the durable store recovers.
	_ = f.mem.Delete(ctx, key)
	return nil
}

// Delete implements Store.
func (f *FallbackStore) Delete(ctx context.Context, key string) error {
	_ = f.mem.Delete(ctx, key)
	if err := f.durable.Delete(ctx, key); err != nil {
		logger.Warn(ctx, "session", "session.fallback",
			slog.String("op", "delete"), slog.String("key", key), slog.String("error", err.Error()))
		return err
	}
	return nil
}
