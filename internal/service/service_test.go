package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewshare/crewbot/internal/catalog"
	"github.com/crewshare/crewbot/internal/clients/paystack"
	"github.com/crewshare/crewbot/internal/config"
	"github.com/crewshare/crewbot/internal/domain"
	"github.com/crewshare/crewbot/internal/store"
)

const testCatalog = `
categories:
  - name: Music
    subcategories:
      - name: Spotify
        plans:
          - name: Spotify Family
            price: 750
`

type harness struct {
	svc      *Service
	users    *fakeUsers
	listings *fakeListings
	leaves   *fakeLeaves
	payments *fakePayments
	gateway  *fakeGateway
	mailer   *fakeMailer
	notifier *fakeNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)

	h := &harness{
		users:    newFakeUsers(),
		listings: newFakeListings(),
		leaves:   newFakeLeaves(),
		payments: newFakePayments(),
		gateway:  &fakeGateway{verifyRes: paystack.StatusSuccess},
		mailer:   &fakeMailer{},
		notifier: newFakeNotifier(),
	}
	h.svc = New(Deps{
		Users:    h.users,
		Listings: h.listings,
		Leaves:   h.leaves,
		Payments: h.payments,
		Gateway:  h.gateway,
		Mailer:   h.mailer,
		Notifier: h.notifier,
		Catalog:  cat,
		Policy: config.MarketplaceConfig{
			ServiceFee:           200,
			PageSize:             5,
			LeaveGraceDays:       3,
			RenewLookaheadDays:   5,
			ListingInitialStatus: "live",
		},
		AdminIDs: []int64{9000},
	})
	return h
}

func (h *harness) registeredUser(t *testing.T, tgID int64, name, email string) *domain.User {
	t.Helper()
	u, err := h.svc.CompleteRegistration(context.Background(), tgID, name, email)
	require.NoError(t, err)
	return u
}

func (h *harness) liveListing(t *testing.T, owner *domain.User, slots int) *domain.Listing {
	t.Helper()
	l, err := h.svc.CreateListing(context.Background(), owner, ListingDraft{
		Category: "Music", Subcategory: "Spotify", Plan: "Spotify Family",
		Slots: slots, ShareMethod: domain.ShareLogin,
		CredEmail: "fam@example.com", CredPassword: "hunter2", DurationMonths: 6,
	})
	require.NoError(t, err)
	return l
}

func TestStartVerificationRejectsDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")

	_, err := h.svc.StartVerification(ctx, "Someone Else", "ADA@example.com")
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestStartVerificationMailsSixDigitCode(t *testing.T) {
	h := newHarness(t)
	code, err := h.svc.StartVerification(context.Background(), "Ada Lovelace", "ada@example.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	require.Len(t, h.mailer.codes, 1)
	assert.Equal(t, code, h.mailer.codes[0])
}

func TestStartVerificationMailerFailure(t *testing.T) {
	h := newHarness(t)
	h.mailer.err = errors.New("relay down")
	_, err := h.svc.StartVerification(context.Background(), "Ada Lovelace", "ada@example.com")
	assert.Error(t, err)
}

func TestCreateListingPricesWithServiceFee(t *testing.T) {
	h := newHarness(t)
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")
	l := h.liveListing(t, owner, 4)

	assert.Equal(t, int64(950), l.Amount, "750 plan + 200 fee")
	assert.Len(t, l.Code, 6)
	assert.Equal(t, domain.ListingLive, l.Status)
	assert.Equal(t, 4, l.RemainingSlots)
	assert.NotEmpty(t, h.notifier.messages[9000], "admins are notified of new listings")
}

func TestCreateListingUnknownPlan(t *testing.T) {
	h := newHarness(t)
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")
	_, err := h.svc.CreateListing(context.Background(), owner, ListingDraft{
		Category: "Music", Subcategory: "Spotify", Plan: "spotify family",
		Slots: 2, ShareMethod: domain.ShareLogin, DurationMonths: 3,
	})
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestCreateListingRetriesCodeCollisions(t *testing.T) {
	h := newHarness(t)
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")

	// First two generated codes collide, the third lands.
	calls := 0
	h.svc.randInt = func(n int) int {
		calls++
		if calls <= 12 { // two full 6-char codes
			return 0
		}
		return (calls - 13) % n
	}
	h.listings.takenCodes["AAAAAA"] = true

	l := h.liveListing(t, owner, 2)
	assert.NotEqual(t, "AAAAAA", l.Code)
}

func TestCreateListingCodeExhaustion(t *testing.T) {
	h := newHarness(t)
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")

	h.svc.randInt = func(int) int { return 0 }
	h.listings.takenCodes["AAAAAA"] = true

	_, err := h.svc.CreateListing(context.Background(), owner, ListingDraft{
		Category: "Music", Subcategory: "Spotify", Plan: "Spotify Family",
		Slots: 2, ShareMethod: domain.ShareLogin, DurationMonths: 3,
	})
	assert.ErrorIs(t, err, ErrCodeExhausted)
}

func TestStartJoinGuards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")
	joiner := h.registeredUser(t, 2, "Grace Hopper", "grace@example.com")
	l := h.liveListing(t, owner, 1)

	_, err := h.svc.StartJoin(ctx, owner, l.Code)
	assert.ErrorIs(t, err, ErrOwnListing)

	_, err = h.svc.StartJoin(ctx, joiner, "NOPE99")
	assert.ErrorIs(t, err, store.ErrNotFound)

	checkout, err := h.svc.StartJoin(ctx, joiner, l.Code)
	require.NoError(t, err)
	assert.Equal(t, int64(950), checkout.Amount)
	assert.NotEmpty(t, checkout.Reference)
	assert.Contains(t, checkout.AuthorizationURL, checkout.Reference)
}

func TestConfirmPaymentSuccessRunsJoinSideEffect(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")
	joiner := h.registeredUser(t, 2, "Grace Hopper", "grace@example.com")
	l := h.liveListing(t, owner, 2)

	checkout, err := h.svc.StartJoin(ctx, joiner, l.Code)
	require.NoError(t, err)

	outcome, err := h.svc.ConfirmPayment(ctx, joiner, *checkout)
	require.NoError(t, err)
	assert.Equal(t, paystack.StatusSuccess, outcome.Status)
	assert.Equal(t, 1, outcome.Listing.RemainingSlots)
	assert.True(t, outcome.Listing.HasMember("grace@example.com"))

	require.Len(t, h.payments.recorded, 1)
	assert.Equal(t, checkout.Reference, h.payments.recorded[0].Reference)
	assert.Equal(t, int64(750), h.payments.balances[owner.ID], "owner is credited amount minus fee")
	assert.NotEmpty(t, h.notifier.messages[owner.TelegramID], "owner gets a DM")
}

func TestConfirmPaymentNonSuccessHasNoSideEffect(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")
	joiner := h.registeredUser(t, 2, "Grace Hopper", "grace@example.com")
	l := h.liveListing(t, owner, 2)

	checkout, err := h.svc.StartJoin(ctx, joiner, l.Code)
	require.NoError(t, err)

	for _, status := range []paystack.Status{paystack.StatusPending, paystack.StatusFailed, paystack.StatusOngoing} {
		h.gateway.verifyRes = status
		outcome, err := h.svc.ConfirmPayment(ctx, joiner, *checkout)
		require.NoError(t, err)
		assert.Equal(t, status, outcome.Status)
		assert.Nil(t, outcome.Listing)
	}
	assert.Empty(t, h.payments.recorded)
	got, _ := h.listings.ByCode(ctx, l.Code)
	assert.Equal(t, 2, got.RemainingSlots)
}

func TestConfirmPaymentDuplicateReferenceCreditsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")
	renewer := h.registeredUser(t, 2, "Alan Turing", "alan@example.com")
	l := h.liveListing(t, owner, 3)

	// Seed a membership for the renewal path, which is naturally re-runnable.
	_, err := h.listings.AddMember(ctx, l.Code, renewer.Email)
	require.NoError(t, err)

	checkout := Checkout{
		Reference: "ref-dup", ListingCode: l.Code,
		Amount: 950, Purpose: domain.PaymentRenew,
	}
	_, err = h.svc.ConfirmPayment(ctx, renewer, checkout)
	require.NoError(t, err)
	_, err = h.svc.ConfirmPayment(ctx, renewer, checkout)
	require.NoError(t, err)

	assert.Len(t, h.payments.recorded, 1)
	assert.Equal(t, int64(750), h.payments.balances[owner.ID])
}

func TestConfirmPaymentLastSlotRaceLost(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")
	winner := h.registeredUser(t, 2, "Grace Hopper", "grace@example.com")
	loser := h.registeredUser(t, 3, "Alan Turing", "alan@example.com")
	l := h.liveListing(t, owner, 1)

	cw, err := h.svc.StartJoin(ctx, winner, l.Code)
	require.NoError(t, err)
	cl, err := h.svc.StartJoin(ctx, loser, l.Code)
	require.NoError(t, err)

	_, err = h.svc.ConfirmPayment(ctx, winner, *cw)
	require.NoError(t, err)

	_, err = h.svc.ConfirmPayment(ctx, loser, *cl)
	assert.ErrorIs(t, err, store.ErrNoSlots)
	assert.Len(t, h.payments.recorded, 1, "loser's payment is not recorded against the listing")
}

func TestRenewalDueWindow(t *testing.T) {
	h := newHarness(t)
	now := time.Now()
	l := &domain.Listing{CreatedAt: now.AddDate(0, -6, 0), DurationMonths: 6}
	assert.True(t, h.svc.RenewalDue(l, now), "expired membership is due")

	l = &domain.Listing{CreatedAt: now, DurationMonths: 6}
	assert.False(t, h.svc.RenewalDue(l, now), "fresh membership is not due")

	l = &domain.Listing{CreatedAt: now.AddDate(0, -6, 3), DurationMonths: 6}
	assert.True(t, h.svc.RenewalDue(l, now), "inside the lookahead window is due")
}

func TestStartRenewalRequiresMembershipAndDueness(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")
	member := h.registeredUser(t, 2, "Grace Hopper", "grace@example.com")
	outsider := h.registeredUser(t, 3, "Alan Turing", "alan@example.com")
	l := h.liveListing(t, owner, 2)
	_, err := h.listings.AddMember(ctx, l.Code, member.Email)
	require.NoError(t, err)

	_, err = h.svc.StartRenewal(ctx, outsider, l.Code)
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = h.svc.StartRenewal(ctx, member, l.Code)
	assert.ErrorIs(t, err, ErrRenewalNotDue)

	h.svc.now = func() time.Time { return time.Now().AddDate(0, 6, 0) }
	checkout, err := h.svc.StartRenewal(ctx, member, l.Code)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRenew, checkout.Purpose)
}

func TestUpdateListingSlots(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")
	stranger := h.registeredUser(t, 2, "Grace Hopper", "grace@example.com")
	l := h.liveListing(t, owner, 4)
	_, err := h.listings.AddMember(ctx, l.Code, "m1@example.com")
	require.NoError(t, err)
	_, err = h.listings.AddMember(ctx, l.Code, "m2@example.com")
	require.NoError(t, err)

	_, err = h.svc.UpdateListingSlots(ctx, stranger, l.Code, 6)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = h.svc.UpdateListingSlots(ctx, owner, l.Code, 1)
	assert.ErrorIs(t, err, ErrSlotsBelowMembers, "cannot shrink below current members")

	updated, err := h.svc.UpdateListingSlots(ctx, owner, l.Code, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.TotalSlots)
	assert.Equal(t, 4, updated.RemainingSlots, "remaining = newTotal - members")
}

func TestUnlistListing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")
	stranger := h.registeredUser(t, 2, "Grace Hopper", "grace@example.com")
	l := h.liveListing(t, owner, 2)

	assert.ErrorIs(t, h.svc.UnlistListing(ctx, stranger, l.Code), ErrNotOwner)

	require.NoError(t, h.svc.UnlistListing(ctx, owner, l.Code))
	got, _ := h.listings.ByCode(ctx, l.Code)
	assert.Equal(t, domain.ListingPendingUnlist, got.Status)
	assert.NotEmpty(t, h.notifier.messages[9000])
}

func TestLeaveLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")
	member := h.registeredUser(t, 2, "Grace Hopper", "grace@example.com")
	l := h.liveListing(t, owner, 2)
	_, err := h.listings.AddMember(ctx, l.Code, member.Email)
	require.NoError(t, err)

	base := time.Now()
	h.svc.now = func() time.Time { return base }

	_, err = h.svc.RequestLeave(ctx, owner, l.Code)
	assert.ErrorIs(t, err, ErrNotMember)

	req, err := h.svc.RequestLeave(ctx, member, l.Code)
	require.NoError(t, err)
	assert.Equal(t, base.Add(72*time.Hour), req.ExpiresAt, "3-day grace period")

	_, err = h.svc.RequestLeave(ctx, member, l.Code)
	assert.ErrorIs(t, err, store.ErrLeavePending)

	require.NoError(t, h.svc.CancelLeave(ctx, member, l.Code))
	_, err = h.svc.PendingLeave(ctx, member, l.Code)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestApproveListing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.svc.policy.ListingInitialStatus = "pending"
	owner := h.registeredUser(t, 1, "Ada Lovelace", "ada@example.com")
	l := h.liveListing(t, owner, 2)
	require.Equal(t, domain.ListingPending, l.Status)

	require.NoError(t, h.svc.ApproveListing(ctx, l.Code))
	got, _ := h.listings.ByCode(ctx, l.Code)
	assert.Equal(t, domain.ListingLive, got.Status)
}
