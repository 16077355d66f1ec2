// Package service orchestrates the marketplace flows on top of the store
// repositories and the external collaborators.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/crewshare/crewbot/core/logger"
	"github.com/crewshare/crewbot/internal/catalog"
	"github.com/crewshare/crewbot/internal/config"
)

// Service bundles the marketplace use cases.
type Service struct {
	users    UserRepo
	listings ListingRepo
	leaves   LeaveRepo
	payments PaymentRepo
	gateway  Gateway
	mailer   Mailer
	notifier Notifier
	catalog  *catalog.Catalog
	policy   config.MarketplaceConfig
	adminIDs []int64

	now     func() time.Time
	randInt func(n int) int
}

// Deps carries the service's collaborators.
type Deps struct {
	Users    UserRepo
	Listings ListingRepo
	Leaves   LeaveRepo
	Payments PaymentRepo
	Gateway  Gateway
	Mailer   Mailer
	Notifier Notifier
	Catalog  *catalog.Catalog
	Policy   config.MarketplaceConfig
	AdminIDs []int64
}

// New wires a service from its dependencies.
func New(d Deps) *Service {
	return &Service{
		users:    d.Users,
		listings: d.Listings,
		leaves:   d.Leaves,
		payments: d.Payments,
		gateway:  d.Gateway,
		mailer:   d.Mailer,
		notifier: d.Notifier,
		catalog:  d.Catalog,
		policy:   d.Policy,
		adminIDs: d.AdminIDs,
		now:      time.Now,
		randInt:  rand.IntN,
	}
}

// Catalog exposes the plan table to the bot's menus.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Policy exposes the marketplace knobs to the bot's renderers.
func (s *Service) Policy() config.MarketplaceConfig { return s.policy }

// shortCodeAlphabet avoids visually ambiguous characters.
const shortCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func (s *Service) newShortCode() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = shortCodeAlphabet[s.randInt(len(shortCodeAlphabet))]
	}
	return string(b)
}

func (s *Service) newVerificationCode() string {
	return fmt.Sprintf("%06d", s.randInt(1000000))
}

// notifyAdmins fans a message out to all configured admin chats.
// Delivery failures are logged and swallowed; admin DMs never block a flow.
func (s *Service) notifyAdmins(ctx context.Context, text string) {
	if s.notifier == nil {
		return
	}
	for _, id := range s.adminIDs {
		if err := s.notifier.Notify(ctx, id, text); err != nil {
			logger.Warn(ctx, "service", "admin_notify_failed",
				slog.Int64("chat_id", id), slog.String("error", err.Error()))
		}
	}
}

func (s *Service) notifyUser(ctx context.Context, chatID int64, text string) {
	if s.notifier == nil || chatID == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, chatID, text); err != nil {
		logger.Warn(ctx, "service", "user_notify_failed",
			slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}
