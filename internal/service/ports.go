package service

import (
	"context"
	"time"

	"github.com/crewshare/crewbot/internal/clients/paystack"
	"github.com/crewshare/crewbot/internal/domain"
)

// UserRepo is the user persistence port.
type UserRepo interface {
	Create(ctx context.Context, user *domain.User) error
	ByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	ByID(ctx context.Context, id int64) (*domain.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, fullName, email string) error
}

// ListingRepo is the listing persistence port.
type ListingRepo interface {
	Create(ctx context.Context, listing *domain.Listing) error
	ByCode(ctx context.Context, code string) (*domain.Listing, error)
	Browse(ctx context.Context, category, subcategory, sortKey string, limit, offset int) ([]domain.Listing, int, error)
	AddMember(ctx context.Context, code, email string) (*domain.Listing, error)
	RemoveMember(ctx context.Context, code, email string) error
	UpdateSlots(ctx context.Context, code string, ownerID int64, newTotal int) (*domain.Listing, error)
	SetStatus(ctx context.Context, code string, ownerID int64, status domain.ListingStatus) error
	Approve(ctx context.Context, code string) error
	ByOwner(ctx context.Context, ownerID int64) ([]domain.Listing, error)
	ByMember(ctx context.Context, email string) ([]domain.Listing, error)
}

// LeaveRepo is the leave-request persistence port.
type LeaveRepo interface {
	Create(ctx context.Context, req *domain.LeaveRequest) error
	Pending(ctx context.Context, userID int64, listingCode string) (*domain.LeaveRequest, error)
	Cancel(ctx context.Context, id int64) error
	DuePending(ctx context.Context, now time.Time) ([]domain.LeaveRequest, error)
	Complete(ctx context.Context, id int64) error
}

// PaymentRepo is the payment ledger and balance port.
type PaymentRepo interface {
	Record(ctx context.Context, pay *domain.Payment) error
	Credit(ctx context.Context, ownerID, amount int64) error
	Balance(ctx context.Context, ownerID int64) (int64, error)
}

// Gateway is the payment gateway port.
type Gateway interface {
	Initialize(ctx context.Context, email string, amountNaira int64, reference string) (*paystack.InitResult, error)
	Verify(ctx context.Context, reference string) (paystack.Status, error)
}

// Mailer is the verification mail port.
type Mailer interface {
	SendVerification(ctx context.Context, name, email, code string) error
}

// Notifier delivers best-effort DMs (admin alerts, owner notifications).
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}
