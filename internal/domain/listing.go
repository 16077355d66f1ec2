package domain

import (
	"time"

	"github.com/lib/pq"
)

// ListingStatus enumerates listing lifecycle states.
type ListingStatus string

const (
	// ListingPending awaits admin approval before it is joinable.
	ListingPending ListingStatus = "pending"
	// ListingLive is visible in discovery and joinable while slots remain.
	ListingLive ListingStatus = "live"
	// ListingPendingUnlist was withdrawn by its owner and awaits removal.
	ListingPendingUnlist ListingStatus = "pending_unlist"
)

// ShareMethod describes how the owner shares access with the crew.
type ShareMethod string

const (
	// ShareLogin shares account email and password directly.
	ShareLogin ShareMethod = "login"
	// ShareOTP shares a phone number; members request one-time codes from the owner.
	ShareOTP ShareMethod = "otp"
)

// Listing is a subscription slot-set offered for sharing.
type Listing struct {
	ID             int64          `db:"id"`
	Code           string         `db:"code"`
	OwnerID        int64          `db:"owner_id"`
	Category       string         `db:"category"`
	Subcategory    string         `db:"subcategory"`
	Plan           string         `db:"plan"`
	Amount         int64          `db:"amount"`
	TotalSlots     int            `db:"total_slots"`
	RemainingSlots int            `db:"remaining_slots"`
	DurationMonths int            `db:"duration_months"`
	ShareMethod    ShareMethod    `db:"share_method"`
	CredEmail      string         `db:"cred_email"`
	CredPassword   string         `db:"cred_password"`
	CredPhone      string         `db:"cred_phone"`
	Status         ListingStatus  `db:"status"`
	Members        pq.StringArray `db:"members"`
	CreatedAt      time.Time      `db:"created_at"`
}

// ExpiresAt returns the end of the listing's paid period.
func (l *Listing) ExpiresAt() time.Time {
	return l.CreatedAt.AddDate(0, l.DurationMonths, 0)
}

// HasMember reports whether the given email already joined the crew.
func (l *Listing) HasMember(email string) bool {
	for _, m := range l.Members {
		if m == email {
			return true
		}
	}
	return false
}

// Joinable reports whether the listing accepts new members.
func (l *Listing) Joinable() bool {
	return l.Status == ListingLive && l.RemainingSlots > 0
}
