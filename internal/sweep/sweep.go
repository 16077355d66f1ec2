// Package sweep runs the scheduled maintenance pass that completes leave
// requests whose grace period has elapsed.
package sweep

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crewshare/crewbot/core/logger"
	"github.com/crewshare/crewbot/internal/domain"
)

// LeaveSource yields due leave requests and records their completion.
type LeaveSource interface {
	DuePending(ctx context.Context, now time.Time) ([]domain.LeaveRequest, error)
	Complete(ctx context.Context, id int64) error
}

// SlotFreer releases the slot a departing member held.
type SlotFreer interface {
	RemoveMember(ctx context.Context, code, email string) error
}

// Sweeper completes due leave requests one by one. A failing item is
// logged and skipped so the rest of the batch still runs.
type Sweeper struct {
	leaves   LeaveSource
	listings SlotFreer
	now      func() time.Time
}

// NewSweeper wires a sweeper over the leave and listing repositories.
func NewSweeper(leaves LeaveSource, listings SlotFreer) *Sweeper {
	return &Sweeper{leaves: leaves, listings: listings, now: time.Now}
}

// RunOnce processes every due request. It returns the number completed and
// the joined per-item errors, for observability rather than flow control.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.leaves.DuePending(ctx, now)
	if err != nil {
		logger.Error(ctx, "sweep", "sweep.scan_failed", slog.String("error", err.Error()))
		return 0, err
	}
	logger.Info(ctx, "sweep", "sweep.started", slog.Int("due", len(due)))

	var errs []error
	completed := 0
	for _, req := range due {
		if err := s.completeOne(ctx, req); err != nil {
			logger.Error(ctx, "sweep", "sweep.item_failed",
				slog.Int64("request_id", req.ID), slog.String("code", req.ListingCode),
				slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}
		completed++
	}

	logger.Info(ctx, "sweep", "sweep.finished",
		slog.Int("completed", completed), slog.Int("failed", len(errs)))
	return completed, errors.Join(errs...)
}

func (s *Sweeper) completeOne(ctx context.Context, req domain.LeaveRequest) error {
	if err := s.listings.RemoveMember(ctx, req.ListingCode, req.Email); err != nil {
		return err
	}
	return s.leaves.Complete(ctx, req.ID)
}

// Scheduler drives the sweeper on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers the sweep under the given cron spec. Panics in a
// run are recovered by the cron chain.
func NewScheduler(spec string, sweeper *Sweeper) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		_, _ = sweeper.RunOnce(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: c}, nil
}

// Start launches the cron loop.
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info(context.Background(), "sweep", "sweep.scheduler_started")
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info(context.Background(), "sweep", "sweep.scheduler_stopped")
}
