package session

import "context"

// Store persists sessions by key. Get returns (nil, nil) for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (*Session, error)
	Set(ctx context.Context, key string, s *Session) error
	Delete(ctx context.Context, key string) error
}
