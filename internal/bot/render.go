package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/crewshare/crewbot/core/telegram/format"
	"github.com/crewshare/crewbot/internal/domain"
)

func esc(s string) string { return format.EscapeMarkdown(s) }

func naira(n int64) string { return fmt.Sprintf("₦%d", n) }

func fmtDate(t time.Time) string { return t.Format("2 Jan 2006") }

func shareLabel(m domain.ShareMethod) string {
	if m == domain.ShareOTP {
		return "one-time codes from the owner"
	}
	return "shared login"
}

func statusLabel(s domain.ListingStatus) string {
	switch s {
	case domain.ListingLive:
		return "live"
	case domain.ListingPending:
		return "awaiting approval"
	case domain.ListingPendingUnlist:
		return "being removed"
	}
	return string(s)
}

// listingCard renders the browse/detail view of a listing.
func listingCard(l *domain.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* — %s / %s\n", esc(l.Plan), esc(l.Category), esc(l.Subcategory))
	fmt.Fprintf(&b, "Code: `%s`\n", l.Code)
	fmt.Fprintf(&b, "Price: %s per month\n", naira(l.Amount))
	fmt.Fprintf(&b, "Slots left: %d of %d\n", l.RemainingSlots, l.TotalSlots)
	fmt.Fprintf(&b, "Duration: %d month(s)\n", l.DurationMonths)
	fmt.Fprintf(&b, "Access: %s", shareLabel(l.ShareMethod))
	return b.String()
}

// ownerCard renders the owner's view: status and occupancy included.
func ownerCard(l *domain.Listing) string {
	var b strings.Builder
	b.WriteString(listingCard(l))
	fmt.Fprintf(&b, "\nStatus: %s\n", statusLabel(l.Status))
	fmt.Fprintf(&b, "Members: %d\n", len(l.Members))
	fmt.Fprintf(&b, "Expires: %s", fmtDate(l.ExpiresAt()))
	return b.String()
}

// memberCard renders the member's view of a joined listing.
func memberCard(l *domain.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* — %s / %s\n", esc(l.Plan), esc(l.Category), esc(l.Subcategory))
	fmt.Fprintf(&b, "Code: `%s`\n", l.Code)
	fmt.Fprintf(&b, "Expires: %s", fmtDate(l.ExpiresAt()))
	return b.String()
}

// accessDetails renders the credentials revealed to a member after joining.
func accessDetails(l *domain.Listing) string {
	if l.ShareMethod == domain.ShareOTP {
		return fmt.Sprintf("Request login codes from the owner at %s.", esc(l.CredPhone))
	}
	return fmt.Sprintf("Sign in with:\nEmail: `%s`\nPassword: `%s`", l.CredEmail, l.CredPassword)
}

func listingButtonLabel(l *domain.Listing) string {
	return fmt.Sprintf("%s · %s · %d left", l.Plan, naira(l.Amount), l.RemainingSlots)
}
