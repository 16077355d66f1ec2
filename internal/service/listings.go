package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crewshare/crewbot/core/logger"
	"github.com/crewshare/crewbot/internal/domain"
	"github.com/crewshare/crewbot/internal/store"
)

const maxCodeAttempts = 5

// ListingDraft is the wizard's validated output.
type ListingDraft struct {
	Category       string
	Subcategory    string
	Plan           string
	Slots          int
	ShareMethod    domain.ShareMethod
	CredEmail      string
	CredPassword   string
	CredPhone      string
	DurationMonths int
}

// PricePlan resolves a catalog plan and returns (price, checkout amount).
// The checkout amount is the price plus the fixed service fee.
func (s *Service) PricePlan(category, subcategory, plan string) (int64, int64, error) {
	p, ok := s.catalog.FindPlan(category, subcategory, plan)
	if !ok {
		return 0, 0, ErrUnknownPlan
	}
	return p.Price, p.Price + s.policy.ServiceFee, nil
}

// CreateListing persists the wizard's draft under a fresh short code.
// Code generation is retried on collision a bounded number of times.
func (s *Service) CreateListing(ctx context.Context, owner *domain.User, draft ListingDraft) (*domain.Listing, error) {
	_, amount, err := s.PricePlan(draft.Category, draft.Subcategory, draft.Plan)
	if err != nil {
		return nil, err
	}

	listing := &domain.Listing{
		OwnerID:        owner.ID,
		Category:       draft.Category,
		Subcategory:    draft.Subcategory,
		Plan:           draft.Plan,
		Amount:         amount,
		TotalSlots:     draft.Slots,
		RemainingSlots: draft.Slots,
		DurationMonths: draft.DurationMonths,
		ShareMethod:    draft.ShareMethod,
		CredEmail:      draft.CredEmail,
		CredPassword:   draft.CredPassword,
		CredPhone:      draft.CredPhone,
		Status:         domain.ListingStatus(s.policy.ListingInitialStatus),
		Members:        []string{},
	}

	for attempt := 1; ; attempt++ {
		listing.Code = s.newShortCode()
		err := s.listings.Create(ctx, listing)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrCodeTaken) {
			return nil, err
		}
		logger.Warn(ctx, "service.listing", "code_collision",
			slog.String("code", listing.Code), slog.Int("attempt", attempt))
		if attempt >= maxCodeAttempts {
			return nil, ErrCodeExhausted
		}
	}

	logger.Info(ctx, "service.listing", "listing_created",
		slog.String("code", listing.Code), slog.Int64("owner_id", owner.ID),
		slog.String("plan", listing.Plan), slog.String("status", string(listing.Status)))

	s.notifyAdmins(ctx, fmt.Sprintf(
		"New listing %s: %s / %s / %s, %d slots, %d months, by %s.",
		listing.Code, listing.Category, listing.Subcategory, listing.Plan,
		listing.TotalSlots, listing.DurationMonths, owner.FullName))
	return listing, nil
}

// Browse returns one page of joinable listings and the total match count.
func (s *Service) Browse(ctx context.Context, category, subcategory, sortKey string, page int) ([]domain.Listing, int, error) {
	if page < 0 {
		page = 0
	}
	size := s.policy.PageSize
	return s.listings.Browse(ctx, category, subcategory, sortKey, size, page*size)
}

// Listing fetches one listing by short code.
func (s *Service) Listing(ctx context.Context, code string) (*domain.Listing, error) {
	return s.listings.ByCode(ctx, code)
}

// ApproveListing flips a pending listing live (admin only, enforced by the
// transport layer).
func (s *Service) ApproveListing(ctx context.Context, code string) error {
	if err := s.listings.Approve(ctx, code); err != nil {
		return err
	}
	logger.Info(ctx, "service.listing", "listing_approved", slog.String("code", code))
	return nil
}

// UnlistListing marks an owner's listing for removal. The record stays for
// existing members until an operator retires it.
func (s *Service) UnlistListing(ctx context.Context, owner *domain.User, code string) error {
	listing, err := s.listings.ByCode(ctx, code)
	if err != nil {
		return err
	}
	if listing.OwnerID != owner.ID {
		return ErrNotOwner
	}
	if err := s.listings.SetStatus(ctx, code, owner.ID, domain.ListingPendingUnlist); err != nil {
		return err
	}
	logger.Info(ctx, "service.listing", "listing_unlisted",
		slog.String("code", code), slog.Int64("owner_id", owner.ID))
	s.notifyAdmins(ctx, fmt.Sprintf("Listing %s was unlisted by %s and awaits removal.", code, owner.FullName))
	return nil
}

// UpdateListingSlots changes a listing's capacity. The new total must cover
// the members already holding slots; remaining is recomputed from the
// member count so no occupied slot is ever forfeited.
func (s *Service) UpdateListingSlots(ctx context.Context, owner *domain.User, code string, newTotal int) (*domain.Listing, error) {
	listing, err := s.listings.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != owner.ID {
		return nil, ErrNotOwner
	}
	if newTotal < len(listing.Members) {
		return nil, ErrSlotsBelowMembers
	}
	updated, err := s.listings.UpdateSlots(ctx, code, owner.ID, newTotal)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "service.listing", "slots_updated",
		slog.String("code", code), slog.Int("total", updated.TotalSlots),
		slog.Int("remaining", updated.RemainingSlots))
	return updated, nil
}

// MyListings returns the user's own listings.
func (s *Service) MyListings(ctx context.Context, owner *domain.User) ([]domain.Listing, error) {
	return s.listings.ByOwner(ctx, owner.ID)
}

// MyMemberships returns the listings the user's email has joined.
func (s *Service) MyMemberships(ctx context.Context, user *domain.User) ([]domain.Listing, error) {
	return s.listings.ByMember(ctx, user.Email)
}
