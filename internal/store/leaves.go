package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/crewshare/crewbot/internal/domain"
)

// Leaves is the leave-request repository. A partial unique index keeps at
// most one pending request per user and listing.
type Leaves struct {
	db *sqlx.DB
}

// NewLeaves wraps the shared database handle.
func NewLeaves(db *sqlx.DB) *Leaves {
	return &Leaves{db: db}
}

// Create records a pending leave request expiring after the grace period.
func (l *Leaves) Create(ctx context.Context, req *domain.LeaveRequest) error {
	err := l.db.QueryRowxContext(ctx, `
		INSERT INTO leave_requests (user_id, listing_code, email, status, expires_at)
		VALUES ($1, $2, $3, 'pending', $4)
		RETURNING id, created_at`,
		req.UserID, req.ListingCode, req.Email, req.ExpiresAt,
	).Scan(&req.ID, &req.CreatedAt)
	if isUniqueViolation(err) {
		return ErrLeavePending
	}
	if err != nil {
		return fmt.Errorf("store: create leave request: %w", err)
	}
	req.Status = domain.LeavePending
	return nil
}

// Pending returns the user's pending request for a listing, if any.
func (l *Leaves) Pending(ctx context.Context, userID int64, listingCode string) (*domain.LeaveRequest, error) {
	var req domain.LeaveRequest
	err := l.db.GetContext(ctx, &req, `
		SELECT * FROM leave_requests
		WHERE user_id = $1 AND listing_code = $2 AND status = 'pending'`,
		userID, listingCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: pending leave: %w", err)
	}
	return &req, nil
}

// Cancel withdraws a pending request. Completed or already-cancelled
// requests are left untouched.
func (l *Leaves) Cancel(ctx context.Context, id int64) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE leave_requests SET status = 'cancelled' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("store: cancel leave: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DuePending returns pending requests whose grace period elapsed by now.
func (l *Leaves) DuePending(ctx context.Context, now time.Time) ([]domain.LeaveRequest, error) {
	var reqs []domain.LeaveRequest
	err := l.db.SelectContext(ctx, &reqs, `
		SELECT * FROM leave_requests
		WHERE status = 'pending' AND expires_at <= $1
		ORDER BY expires_at ASC`, now)
	if err != nil {
		return nil, fmt.Errorf("store: due pending leaves: %w", err)
	}
	return reqs, nil
}

// Complete marks a request finished after its member slot was freed.
func (l *Leaves) Complete(ctx context.Context, id int64) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE leave_requests SET status = 'completed' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("store: complete leave: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
