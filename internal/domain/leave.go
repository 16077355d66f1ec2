package domain

import "time"

// LeaveStatus enumerates leave request lifecycle states.
type LeaveStatus string

const (
	// LeavePending waits out the grace period and may still be cancelled.
	LeavePending LeaveStatus = "pending"
	// LeaveCompleted was finalized by the maintenance sweep.
	LeaveCompleted LeaveStatus = "completed"
	// LeaveCancelled was withdrawn by the member before the grace period ended.
	LeaveCancelled LeaveStatus = "cancelled"
)

// LeaveRequest is a deferred membership removal intent.
// The member keeps the slot until ExpiresAt passes and the sweep completes the request.
type LeaveRequest struct {
	ID          int64       `db:"id"`
	UserID      int64       `db:"user_id"`
	ListingCode string      `db:"listing_code"`
	Email       string      `db:"email"`
	Status      LeaveStatus `db:"status"`
	ExpiresAt   time.Time   `db:"expires_at"`
	CreatedAt   time.Time   `db:"created_at"`
}

// Due reports whether the grace period has elapsed at the given instant.
func (r *LeaveRequest) Due(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
