package service

import "errors"

var (
	// ErrAlreadyMember means the user's email already holds a slot.
	ErrAlreadyMember = errors.New("service: already a member")
	// ErrOwnListing means an owner tried to join their own listing.
	ErrOwnListing = errors.New("service: cannot join own listing")
	// ErrNotMember means the user's email holds no slot on the listing.
	ErrNotMember = errors.New("service: not a member")
	// ErrNotOwner means the listing belongs to someone else.
	ErrNotOwner = errors.New("service: not the listing owner")
	// ErrSlotsBelowMembers means a slot update would evict current members.
	ErrSlotsBelowMembers = errors.New("service: new slot count below member count")
	// ErrRenewalNotDue means the membership is not close enough to expiry.
	ErrRenewalNotDue = errors.New("service: renewal not due yet")
	// ErrCodeExhausted means short-code generation kept colliding.
	ErrCodeExhausted = errors.New("service: could not allocate a unique listing code")
	// ErrUnknownPlan means the catalog has no such category/subcategory/plan.
	ErrUnknownPlan = errors.New("service: unknown catalog plan")
)
