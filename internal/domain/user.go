package domain

import "time"

// User is a registered marketplace participant tied to a Telegram account.
type User struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	FullName   string    `db:"full_name"`
	Email      string    `db:"email"`
	IsAdmin    bool      `db:"is_admin"`
	Verified   bool      `db:"verified"`
	CreatedAt  time.Time `db:"created_at"`
}
