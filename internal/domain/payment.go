package domain

import "time"

// PaymentPurpose distinguishes what a verified payment bought.
type PaymentPurpose string

const (
	// PaymentJoin is a first-time join of a listing.
	PaymentJoin PaymentPurpose = "join"
	// PaymentRenew extends an existing membership.
	PaymentRenew PaymentPurpose = "renew"
)

// Payment is an append-only record of a verified payment.
type Payment struct {
	ID          int64          `db:"id"`
	UserID      int64          `db:"user_id"`
	ListingCode string         `db:"listing_code"`
	Reference   string         `db:"reference"`
	Amount      int64          `db:"amount"`
	Purpose     PaymentPurpose `db:"purpose"`
	CreatedAt   time.Time      `db:"created_at"`
}