package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crewshare/crewbot/core/logger"
	"github.com/crewshare/crewbot/internal/clients/paystack"
	"github.com/crewshare/crewbot/internal/domain"
	"github.com/crewshare/crewbot/internal/store"
)

// Checkout is a started payment awaiting user verification.
type Checkout struct {
	Reference        string
	AuthorizationURL string
	ListingCode      string
	Amount           int64
	Purpose          domain.PaymentPurpose
}

// PaymentOutcome is the result of verifying a reference. Listing is set
// only when the verify reached success and the side effect ran.
type PaymentOutcome struct {
	Status  paystack.Status
	Listing *domain.Listing
}

// StartJoin validates joinability and opens a gateway checkout for the
// listing's full amount under a fresh client-generated reference.
func (s *Service) StartJoin(ctx context.Context, user *domain.User, code string) (*Checkout, error) {
	listing, err := s.listings.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID == user.ID {
		return nil, ErrOwnListing
	}
	if listing.HasMember(user.Email) {
		return nil, ErrAlreadyMember
	}
	if !listing.Joinable() {
		return nil, store.ErrNoSlots
	}
	return s.openCheckout(ctx, user, listing, domain.PaymentJoin)
}

// RenewalDue reports whether a membership may renew at the given instant:
// expiry is within the lookahead window or already past.
func (s *Service) RenewalDue(listing *domain.Listing, now time.Time) bool {
	threshold := listing.ExpiresAt().AddDate(0, 0, -s.policy.RenewLookaheadDays)
	return !now.Before(threshold)
}

// StartRenewal opens a checkout extending an existing membership.
func (s *Service) StartRenewal(ctx context.Context, user *domain.User, code string) (*Checkout, error) {
	listing, err := s.listings.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !listing.HasMember(user.Email) {
		return nil, ErrNotMember
	}
	if !s.RenewalDue(listing, s.now()) {
		return nil, ErrRenewalNotDue
	}
	return s.openCheckout(ctx, user, listing, domain.PaymentRenew)
}

func (s *Service) openCheckout(ctx context.Context, user *domain.User, listing *domain.Listing, purpose domain.PaymentPurpose) (*Checkout, error) {
	reference := uuid.NewString()
	res, err := s.gateway.Initialize(ctx, user.Email, listing.Amount, reference)
	if err != nil {
		return nil, fmt.Errorf("initialize payment: %w", err)
	}
	logger.Info(ctx, "service.payment", "checkout_opened",
		slog.String("reference", reference), slog.String("code", listing.Code),
		slog.String("purpose", string(purpose)), slog.Int64("amount", listing.Amount))
	return &Checkout{
		Reference:        reference,
		AuthorizationURL: res.AuthorizationURL,
		ListingCode:      listing.Code,
		Amount:           listing.Amount,
		Purpose:          purpose,
	}, nil
}

// ConfirmPayment verifies the reference with the gateway and, on success,
// runs the side effect exactly once: take the slot (joins), record the
// payment, credit the owner the amount minus the service fee, and DM the
// owner. Non-success statuses are returned for the caller to re-prompt.
func (s *Service) ConfirmPayment(ctx context.Context, user *domain.User, checkout Checkout) (*PaymentOutcome, error) {
	status, err := s.gateway.Verify(ctx, checkout.Reference)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if status != paystack.StatusSuccess {
		return &PaymentOutcome{Status: status}, nil
	}

	var listing *domain.Listing
	switch checkout.Purpose {
	case domain.PaymentRenew:
		listing, err = s.listings.ByCode(ctx, checkout.ListingCode)
		if err != nil {
			return nil, err
		}
		if !listing.HasMember(user.Email) {
			return nil, ErrNotMember
		}
	default:
		listing, err = s.listings.AddMember(ctx, checkout.ListingCode, user.Email)
		if err != nil {
			// Payment went through but the last slot is gone; surfaced to
			// the user as unavailable, refunds handled out of band.
			return nil, err
		}
	}

	pay := &domain.Payment{
		UserID:      user.ID,
		ListingCode: listing.Code,
		Reference:   checkout.Reference,
		Amount:      checkout.Amount,
		Purpose:     checkout.Purpose,
	}
	if err := s.payments.Record(ctx, pay); err != nil {
		if errors.Is(err, store.ErrDuplicateReference) {
			// Reference already settled; do not credit twice.
			logger.Warn(ctx, "service.payment", "duplicate_reference",
				slog.String("reference", checkout.Reference))
			return &PaymentOutcome{Status: status, Listing: listing}, nil
		}
		return nil, err
	}

	ownerCut := checkout.Amount - s.policy.ServiceFee
	if ownerCut < 0 {
		ownerCut = 0
	}
	if err := s.payments.Credit(ctx, listing.OwnerID, ownerCut); err != nil {
		logger.Error(ctx, "service.payment", "credit_failed",
			slog.Int64("owner_id", listing.OwnerID), slog.String("error", err.Error()))
	}

	logger.Info(ctx, "service.payment", "payment_settled",
		slog.String("reference", checkout.Reference), slog.String("code", listing.Code),
		slog.String("purpose", string(checkout.Purpose)), slog.Int64("amount", checkout.Amount))

	if owner, err := s.users.ByID(ctx, listing.OwnerID); err == nil {
		verb := "joined"
		if checkout.Purpose == domain.PaymentRenew {
			verb = "renewed their slot on"
		}
		s.notifyUser(ctx, owner.TelegramID, fmt.Sprintf(
			"%s %s your %s listing %s.", user.FullName, verb, listing.Plan, listing.Code))
	}
	return &PaymentOutcome{Status: status, Listing: listing}, nil
}
