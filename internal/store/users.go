package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/crewshare/crewbot/internal/domain"
)

// Users is the user account repository.
type Users struct {
	db *sqlx.DB
}

// NewUsers wraps the shared database handle.
func NewUsers(db *sqlx.DB) *Users {
	return &Users{db: db}
}

// Create inserts a verified account. Emails are unique case-insensitively.
func (u *Users) Create(ctx context.Context, user *domain.User) error {
	err := u.db.QueryRowxContext(ctx, `
		INSERT INTO users (telegram_id, full_name, email, is_admin, verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		user.TelegramID, user.FullName, strings.ToLower(user.Email), user.IsAdmin, user.Verified,
	).Scan(&user.ID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("store: create user: %w", err)
	}
	return nil
}

// ByTelegramID looks an account up by its Telegram identity.
func (u *Users) ByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var user domain.User
	err := u.db.GetContext(ctx, &user, `SELECT * FROM users WHERE telegram_id = $1`, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: user by telegram id: %w", err)
	}
	return &user, nil
}

// ByID looks an account up by primary key.
func (u *Users) ByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := u.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: user by id: %w", err)
	}
	return &user, nil
}

// EmailTaken reports whether the email is already registered.
func (u *Users) EmailTaken(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := u.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, strings.ToLower(email))
	if err != nil {
		return false, fmt.Errorf("store: email taken: %w", err)
	}
	return exists, nil
}

// UpdateProfile replaces the account's name and email.
func (u *Users) UpdateProfile(ctx context.Context, id int64, fullName, email string) error {
	res, err := u.db.ExecContext(ctx,
		`UPDATE users SET full_name = $2, email = $3 WHERE id = $1`,
		id, fullName, strings.ToLower(email))
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("store: update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
