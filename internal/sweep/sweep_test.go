package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewshare/crewbot/internal/domain"
)

type fakeLeaves struct {
	due       []domain.LeaveRequest
	completed []int64
}

func (f *fakeLeaves) DuePending(_ context.Context, now time.Time) ([]domain.LeaveRequest, error) {
	var out []domain.LeaveRequest
	for _, r := range f.due {
		if r.Due(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLeaves) Complete(_ context.Context, id int64) error {
	f.completed = append(f.completed, id)
	return nil
}

type fakeFreer struct {
	removed map[string][]string
	failOn  string
}

func (f *fakeFreer) RemoveMember(_ context.Context, code, email string) error {
	if code == f.failOn {
		return errors.New("listing gone")
	}
	if f.removed == nil {
		f.removed = make(map[string][]string)
	}
	f.removed[code] = append(f.removed[code], email)
	return nil
}

func TestRunOnceCompletesDueRequests(t *testing.T) {
	now := time.Now()
	leaves := &fakeLeaves{due: []domain.LeaveRequest{
		{ID: 1, ListingCode: "AAAAAA", Email: "a@x.com", Status: domain.LeavePending, ExpiresAt: now.Add(-time.Hour)},
		{ID: 2, ListingCode: "BBBBBB", Email: "b@x.com", Status: domain.LeavePending, ExpiresAt: now.Add(time.Hour)},
	}}
	freer := &fakeFreer{}

	s := NewSweeper(leaves, freer)
	s.now = func() time.Time { return now }

	completed, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, completed)
	assert.Equal(t, []int64{1}, leaves.completed, "only the expired request is touched")
	assert.Equal(t, []string{"a@x.com"}, freer.removed["AAAAAA"])
	assert.Empty(t, freer.removed["BBBBBB"])
}

func TestRunOnceIsolatesItemFailures(t *testing.T) {
	now := time.Now()
	leaves := &fakeLeaves{due: []domain.LeaveRequest{
		{ID: 1, ListingCode: "BROKEN", Email: "a@x.com", Status: domain.LeavePending, ExpiresAt: now.Add(-time.Hour)},
		{ID: 2, ListingCode: "CCCCCC", Email: "b@x.com", Status: domain.LeavePending, ExpiresAt: now.Add(-time.Minute)},
	}}
	freer := &fakeFreer{failOn: "BROKEN"}

	s := NewSweeper(leaves, freer)
	s.now = func() time.Time { return now }

	completed, err := s.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, completed, "the healthy item still completes")
	assert.Equal(t, []int64{2}, leaves.completed)
	assert.Empty(t, leaves.completedFor(1))
}

func (f *fakeLeaves) completedFor(id int64) []int64 {
	var out []int64
	for _, c := range f.completed {
		if c == id {
			out = append(out, c)
		}
	}
	return out
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler("not a cron spec", NewSweeper(&fakeLeaves{}, &fakeFreer{}))
	assert.Error(t, err)
}
