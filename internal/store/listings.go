package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crewshare/crewbot/internal/domain"
)

// Browse sort keys.
const (
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortVerified = "verified"
)

// Listings is the listing repository.
type Listings struct {
	db *sqlx.DB
}

// NewListings wraps the shared database handle.
func NewListings(db *sqlx.DB) *Listings {
	return &Listings{db: db}
}

// Create inserts a listing under its pre-generated short code.
// A code collision returns ErrCodeTaken so the caller can regenerate.
func (l *Listings) Create(ctx context.Context, listing *domain.Listing) error {
	err := l.db.QueryRowxContext(ctx, `
		INSERT INTO listings (
			code, owner_id, category, subcategory, plan, amount,
			total_slots, remaining_slots, duration_months, share_method,
			cred_email, cred_password, cred_phone, status, members
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING id, created_at`,
		listing.Code, listing.OwnerID, listing.Category, listing.Subcategory,
		listing.Plan, listing.Amount, listing.TotalSlots, listing.RemainingSlots,
		listing.DurationMonths, listing.ShareMethod, listing.CredEmail,
		listing.CredPassword, listing.CredPhone, listing.Status, listing.Members,
	).Scan(&listing.ID, &listing.CreatedAt)
	if isUniqueViolation(err) {
		return ErrCodeTaken
	}
	if err != nil {
		return fmt.Errorf("store: create listing: %w", err)
	}
	return nil
}

// ByCode fetches a listing by short code.
func (l *Listings) ByCode(ctx context.Context, code string) (*domain.Listing, error) {
	var listing domain.Listing
	err := l.db.GetContext(ctx, &listing, `SELECT * FROM listings WHERE code = $1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: listing by code: %w", err)
	}
	return &listing, nil
}

// Browse returns a page of joinable listings for a category/subcategory,
// plus the total count for pagination.
func (l *Listings) Browse(ctx context.Context, category, subcategory, sortKey string, limit, offset int) ([]domain.Listing, int, error) {
	order := "l.created_at DESC"
	switch sortKey {
	case SortOldest:
		order = "l.created_at ASC"
	case SortVerified:
		order = "u.verified DESC, l.created_at DESC"
	}

	var total int
	err := l.db.GetContext(ctx, &total, `
		SELECT count(*) FROM listings
		WHERE category = $1 AND subcategory = $2 AND status = 'live' AND remaining_slots > 0`,
		category, subcategory)
	if err != nil {
		return nil, 0, fmt.Errorf("store: browse count: %w", err)
	}

	var listings []domain.Listing
	query := fmt.Sprintf(`
		SELECT l.* FROM listings l
		JOIN users u ON u.id = l.owner_id
		WHERE l.category = $1 AND l.subcategory = $2 AND l.status = 'live' AND l.remaining_slots > 0
		ORDER BY %s
		LIMIT $3 OFFSET $4`, order)
	if err := l.db.SelectContext(ctx, &listings, query, category, subcategory, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("store: browse: %w", err)
	}
	return listings, total, nil
}

// AddMember atomically takes one slot for the given email. The guard clause
// makes the last-slot race safe: concurrent joiners contend on one row and
// only the update that still sees remaining_slots > 0 commits.
func (l *Listings) AddMember(ctx context.Context, code, email string) (*domain.Listing, error) {
	var listing domain.Listing
	err := l.db.QueryRowxContext(ctx, `
		UPDATE listings
		SET remaining_slots = remaining_slots - 1,
		    members = array_append(members, $2)
		WHERE code = $1
		  AND status = 'live'
		  AND remaining_slots > 0
		  AND NOT ($2 = ANY(members))
		RETURNING *`, code, email).StructScan(&listing)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a vanished listing from a lost slot race.
		if _, lookupErr := l.ByCode(ctx, code); errors.Is(lookupErr, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrNoSlots
	}
	if err != nil {
		return nil, fmt.Errorf("store: add member: %w", err)
	}
	return &listing, nil
}

// RemoveMember frees the slot held by the given email. Remaining is clamped
// at the listing's total.
func (l *Listings) RemoveMember(ctx context.Context, code, email string) error {
	res, err := l.db.ExecContext(ctx, `
		UPDATE listings
		SET remaining_slots = LEAST(remaining_slots + 1, total_slots),
		    members = array_remove(members, $2)
		WHERE code = $1 AND $2 = ANY(members)`, code, email)
	if err != nil {
		return fmt.Errorf("store: remove member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSlots sets a new slot total for an owner's listing and recomputes
// remaining as newTotal minus current members, clamped at zero. Validation
// that newTotal covers the member count happens above the store.
func (l *Listings) UpdateSlots(ctx context.Context, code string, ownerID int64, newTotal int) (*domain.Listing, error) {
	var listing domain.Listing
	err := l.db.QueryRowxContext(ctx, `
		UPDATE listings
		SET total_slots = $3,
		    remaining_slots = GREATEST($3 - COALESCE(array_length(members, 1), 0), 0)
		WHERE code = $1 AND owner_id = $2
		RETURNING *`, code, ownerID, newTotal).StructScan(&listing)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: update slots: %w", err)
	}
	return &listing, nil
}

// SetStatus moves an owner's listing into the given status.
func (l *Listings) SetStatus(ctx context.Context, code string, ownerID int64, status domain.ListingStatus) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE listings SET status = $3 WHERE code = $1 AND owner_id = $2`,
		code, ownerID, status)
	if err != nil {
		return fmt.Errorf("store: set status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Approve flips a pending listing live. Used by the admin /approve command.
func (l *Listings) Approve(ctx context.Context, code string) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE listings SET status = 'live' WHERE code = $1 AND status = 'pending'`, code)
	if err != nil {
		return fmt.Errorf("store: approve: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ByOwner returns all of an owner's listings, newest first.
func (l *Listings) ByOwner(ctx context.Context, ownerID int64) ([]domain.Listing, error) {
	var listings []domain.Listing
	err := l.db.SelectContext(ctx, &listings,
		`SELECT * FROM listings WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("store: listings by owner: %w", err)
	}
	return listings, nil
}

// ByMember returns the listings the given email has joined, newest first.
func (l *Listings) ByMember(ctx context.Context, email string) ([]domain.Listing, error) {
	var listings []domain.Listing
	err := l.db.SelectContext(ctx, &listings,
		`SELECT * FROM listings WHERE $1 = ANY(members) ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("store: listings by member: %w", err)
	}
	return listings, nil
}
