package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crewshare/crewbot/internal/domain"
)

// Payments is the append-only payment ledger plus the owner balance
// accumulator.
type Payments struct {
	db *sqlx.DB
}

// NewPayments wraps the shared database handle.
func NewPayments(db *sqlx.DB) *Payments {
	return &Payments{db: db}
}

// Record appends a verified payment. The unique reference column is the
// database-level idempotence backstop behind the session-level one.
func (p *Payments) Record(ctx context.Context, pay *domain.Payment) error {
	err := p.db.QueryRowxContext(ctx, `
		INSERT INTO payments (user_id, listing_code, reference, amount, purpose)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		pay.UserID, pay.ListingCode, pay.Reference, pay.Amount, pay.Purpose,
	).Scan(&pay.ID, &pay.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateReference
	}
	if err != nil {
		return fmt.Errorf("store: record payment: %w", err)
	}
	return nil
}

// Credit adds amount to an owner's balance, creating the row on first
// credit.
func (p *Payments) Credit(ctx context.Context, ownerID, amount int64) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO balances (user_id, balance, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET balance = balances.balance + excluded.balance, updated_at = now()`,
		ownerID, amount)
	if err != nil {
		return fmt.Errorf("store: credit balance: %w", err)
	}
	return nil
}

// Balance returns an owner's accumulated balance; zero when never credited.
func (p *Payments) Balance(ctx context.Context, ownerID int64) (int64, error) {
	var amount int64
	err := p.db.GetContext(ctx, &amount,
		`SELECT balance FROM balances WHERE user_id = $1`, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: balance: %w", err)
	}
	return amount, nil
}
