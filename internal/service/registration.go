package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/crewshare/crewbot/core/logger"
	"github.com/crewshare/crewbot/internal/domain"
	"github.com/crewshare/crewbot/internal/store"
)

// Account resolves the registered account behind a Telegram identity.
// Returns store.ErrNotFound for unregistered users.
func (s *Service) Account(ctx context.Context, telegramID int64) (*domain.User, error) {
	return s.users.ByTelegramID(ctx, telegramID)
}

// StartVerification checks email availability, generates a 6-digit code,
// and mails it. The caller keeps the code in the session until the user
// echoes it back.
func (s *Service) StartVerification(ctx context.Context, fullName, email string) (string, error) {
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return "", err
	}
	if taken {
		return "", store.ErrDuplicateEmail
	}

	code := s.newVerificationCode()
	if err := s.mailer.SendVerification(ctx, fullName, email, code); err != nil {
		return "", fmt.Errorf("send verification: %w", err)
	}
	logger.Info(ctx, "service.register", "verification_started", slog.String("email", email))
	return code, nil
}

// CompleteRegistration creates the verified account once the code matched.
func (s *Service) CompleteRegistration(ctx context.Context, telegramID int64, fullName, email string) (*domain.User, error) {
	user := &domain.User{
		TelegramID: telegramID,
		FullName:   strings.TrimSpace(fullName),
		Email:      strings.ToLower(strings.TrimSpace(email)),
		Verified:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Info(ctx, "service.register", "user_registered",
		slog.Int64("user_id", user.ID), slog.Int64("telegram_id", telegramID))
	return user, nil
}

// UpdateProfile replaces a registered user's name and verified email.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, fullName, email string) error {
	if err := s.users.UpdateProfile(ctx, userID, strings.TrimSpace(fullName), email); err != nil {
		return err
	}
	logger.Info(ctx, "service.register", "profile_updated", slog.Int64("user_id", userID))
	return nil
}

// OwnerBalance returns the user's accumulated earnings.
func (s *Service) OwnerBalance(ctx context.Context, userID int64) (int64, error) {
	return s.payments.Balance(ctx, userID)
}
