// Package store implements the Postgres repositories behind the
// marketplace: users, listings, leave requests, payments, and balances.
package store

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrNoSlots means a join lost the race for the last remaining slot
	// or the listing is no longer live.
	ErrNoSlots = errors.New("store: no slots available")
	// ErrDuplicateEmail means the email is already registered.
	ErrDuplicateEmail = errors.New("store: email already registered")
	// ErrCodeTaken means the generated listing code collided.
	ErrCodeTaken = errors.New("store: listing code taken")
	// ErrDuplicateReference means the payment reference was already recorded.
	ErrDuplicateReference = errors.New("store: payment reference already recorded")
	// ErrLeavePending means the member already has a pending leave request.
	ErrLeavePending = errors.New("store: leave request already pending")
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
