package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/crewshare/crewbot/core/logger"
	"github.com/crewshare/crewbot/internal/domain"
)

// RequestLeave files a leave request with the configured grace period.
// The member keeps the slot until the maintenance sweep completes it.
func (s *Service) RequestLeave(ctx context.Context, user *domain.User, code string) (*domain.LeaveRequest, error) {
	listing, err := s.listings.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !listing.HasMember(user.Email) {
		return nil, ErrNotMember
	}

	req := &domain.LeaveRequest{
		UserID:      user.ID,
		ListingCode: code,
		Email:       user.Email,
		ExpiresAt:   s.now().Add(time.Duration(s.policy.LeaveGraceDays) * 24 * time.Hour),
	}
	if err := s.leaves.Create(ctx, req); err != nil {
		return nil, err
	}
	logger.Info(ctx, "service.leave", "leave_requested",
		slog.Int64("user_id", user.ID), slog.String("code", code),
		slog.Time("expires_at", req.ExpiresAt))
	return req, nil
}

// CancelLeave withdraws the user's pending leave request for a listing.
func (s *Service) CancelLeave(ctx context.Context, user *domain.User, code string) error {
	req, err := s.leaves.Pending(ctx, user.ID, code)
	if err != nil {
		return err
	}
	if err := s.leaves.Cancel(ctx, req.ID); err != nil {
		return err
	}
	logger.Info(ctx, "service.leave", "leave_cancelled",
		slog.Int64("user_id", user.ID), slog.String("code", code))
	return nil
}

// PendingLeave returns the user's pending leave request for a listing, or
// store.ErrNotFound when none exists.
func (s *Service) PendingLeave(ctx context.Context, user *domain.User, code string) (*domain.LeaveRequest, error) {
	return s.leaves.Pending(ctx, user.ID, code)
}
