package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreIsolatesStoredState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := New()
	s.Step = StepRegisterName
	s.EnsureRegister().FullName = "Ada Lovelace"
	require.NoError(t, store.Set(ctx, "1:1", s))

	// Mutating the original must not leak into the stored copy.
	s.Register.FullName = "changed"

	got, err := store.Get(ctx, "1:1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada Lovelace", got.Register.FullName)
	assert.Equal(t, StepRegisterName, got.Step)
}

func TestMemoryStoreMissingKey(t *testing.T) {
	got, err := NewMemoryStore().Get(context.Background(), "9:9")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestManagerIdleReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, 10*time.Minute)

	base := time.Now()
	m.now = func() time.Time { return base }

	s := New()
	s.Step = StepListingSlots
	s.EnsureListing().Category = "Music"
	require.NoError(t, m.Save(ctx, 5, 7, s))

	// Within the window the flow survives.
	got, expired := m.Load(ctx, 5, 7)
	assert.False(t, expired)
	assert.Equal(t, StepListingSlots, got.Step)

	// Past the window the flow is discarded and the caller is told.
	m.now = func() time.Time { return base.Add(11 * time.Minute) }
	got, expired = m.Load(ctx, 5, 7)
	assert.True(t, expired)
	assert.Equal(t, StepIdle, got.Step)
	assert.Nil(t, got.Listing)
}

func TestManagerIdleSessionNeverExpires(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), 10*time.Minute)

	base := time.Now()
	m.now = func() time.Time { return base }
	s := New()
	s.EnsureBrowse().Category = "Video"
	require.NoError(t, m.Save(ctx, 1, 2, s))

	m.now = func() time.Time { return base.Add(24 * time.Hour) }
	got, expired := m.Load(ctx, 1, 2)
	assert.False(t, expired, "idle sessions carry no flow to discard")
	assert.Equal(t, "Video", got.Browse.Category)
}

type failingStore struct{ err error }

func (f *failingStore) Get(context.Context, string) (*Session, error)  { return nil, f.err }
func (f *failingStore) Set(context.Context, string, *Session) error   { return f.err }
func (f *failingStore) Delete(context.Context, string) error          { return f.err }

func TestManagerSurvivesStoreErrors(t *testing.T) {
	m := NewManager(&failingStore{err: errors.New("down")}, time.Minute)
	got, expired := m.Load(context.Background(), 1, 1)
	require.NotNil(t, got)
	assert.False(t, expired)
	assert.Equal(t, StepIdle, got.Step)
}

func TestFallbackStoreShadowsDurableOutage(t *testing.T) {
	ctx := context.Background()
	fb := NewFallbackStore(&failingStore{err: errors.New("connection refused")})

	s := New()
	s.Step = StepRegisterEmail
	require.NoError(t, fb.Set(ctx, "3:3", s))

	got, err := fb.Get(ctx, "3:3")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, StepRegisterEmail, got.Step)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "100:200", Key(100, 200))
}
