package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/crewshare/crewbot/core/logger"
)

// Manager loads and saves sessions for chat/user pairs and enforces the
// inactivity timeout: an in-flow session older than the idle window is
// reset before handlers see it.
type Manager struct {
	store Store
	idle  time.Duration
	now   func() time.Time
}

// NewManager wraps store with the given idle timeout.
func NewManager(store Store, idle time.Duration) *Manager {
	return &Manager{store: store, idle: idle, now: time.Now}
}

// Load fetches the session for the pair. The second return reports whether
// an in-progress flow was discarded due to inactivity, so callers can tell
// the user their wizard timed out. Store errors yield a fresh session; a
// marketplace chat must not go dark because state reads fail.
func (m *Manager) Load(ctx context.Context, chatID, userID int64) (*Session, bool) {
	key := Key(chatID, userID)
	s, err := m.store.Get(ctx, key)
	if err != nil {
		logger.Error(ctx, "session", "session.load_failed",
			slog.String("key", key), slog.String("error", err.Error()))
		return New(), false
	}
	if s == nil {
		return New(), false
	}
	if s.InFlow() && m.idle > 0 && m.now().Sub(s.UpdatedAt) > m.idle {
		logger.Info(ctx, "session", "session.idle_reset",
			slog.String("key", key), slog.String("step", string(s.Step)))
		s.Reset()
		if err := m.store.Set(ctx, key, s); err != nil {
			logger.Error(ctx, "session", "session.save_failed",
				slog.String("key", key), slog.String("error", err.Error()))
		}
		return s, true
	}
	return s, false
}

// Save stamps and persists the session.
func (m *Manager) Save(ctx context.Context, chatID, userID int64, s *Session) error {
	s.UpdatedAt = m.now()
	key := Key(chatID, userID)
	if err := m.store.Set(ctx, key, s); err != nil {
		logger.Error(ctx, "session", "session.save_failed",
			slog.String("key", key), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Clear removes the pair's session entirely.
func (m *Manager) Clear(ctx context.Context, chatID, userID int64) error {
	return m.store.Delete(ctx, Key(chatID, userID))
}
