// Package session keeps per-user conversation state for the step-driven
// flows. State is a typed union keyed by the current step, serialized as
// JSON so durable backends can store it opaquely.
package session

import (
	"fmt"
	"time"

	"github.com/crewshare/crewbot/internal/domain"
)

// Step identifies which flow step the next text message belongs to.
type Step string

const (
	StepIdle Step = "idle"

	StepRegisterName  Step = "register_name"
	StepRegisterEmail Step = "register_email"
	StepRegisterCode  Step = "register_code"

	StepEditName  Step = "edit_name"
	StepEditEmail Step = "edit_email"

	StepListingCategory     Step = "listing_category"
	StepListingSubcategory  Step = "listing_subcategory"
	StepListingPlan         Step = "listing_plan"
	StepListingSlots        Step = "listing_slots"
	StepListingShare        Step = "listing_share"
	StepListingCredEmail    Step = "listing_cred_email"
	StepListingCredPassword Step = "listing_cred_password"
	StepListingCredPhone    Step = "listing_cred_phone"
	StepListingDuration     Step = "listing_duration"
	StepListingConfirm      Step = "listing_confirm"

	StepUpdateSlots Step = "update_slots"
)

// RegisterData carries registration flow state. EditOnly marks a profile
// edit of an existing account rather than a first-time signup.
type RegisterData struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Code     string `json:"code,omitempty"`
	EditOnly bool   `json:"edit_only,omitempty"`
}

// ListingDraft accumulates the listing wizard's answers.
type ListingDraft struct {
	Category       string             `json:"category,omitempty"`
	Subcategory    string             `json:"subcategory,omitempty"`
	Plan           string             `json:"plan,omitempty"`
	Price          int64              `json:"price,omitempty"`
	Amount         int64              `json:"amount,omitempty"`
	Slots          int                `json:"slots,omitempty"`
	ShareMethod    domain.ShareMethod `json:"share_method,omitempty"`
	CredEmail      string             `json:"cred_email,omitempty"`
	CredPassword   string             `json:"cred_password,omitempty"`
	CredPhone      string             `json:"cred_phone,omitempty"`
	DurationMonths int                `json:"duration_months,omitempty"`
}

// BrowseState remembers where the user is in discovery.
type BrowseState struct {
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	Sort        string `json:"sort,omitempty"`
	Page        int    `json:"page,omitempty"`
}

// PaymentState tracks an in-flight checkout. Reference is cleared once the
// payment is verified so a second verify tap becomes a no-op.
type PaymentState struct {
	Reference   string                `json:"reference,omitempty"`
	ListingCode string                `json:"listing_code,omitempty"`
	Purpose     domain.PaymentPurpose `json:"purpose,omitempty"`
	Amount      int64                 `json:"amount,omitempty"`
}

// ManageState remembers which listing a management action targets.
type ManageState struct {
	ListingCode string `json:"listing_code,omitempty"`
}

// Session is the full per-user conversation state.
type Session struct {
	Step      Step          `json:"step"`
	Register  *RegisterData `json:"register,omitempty"`
	Listing   *ListingDraft `json:"listing,omitempty"`
	Browse    *BrowseState  `json:"browse,omitempty"`
	Payment   *PaymentState `json:"payment,omitempty"`
	Manage    *ManageState  `json:"manage,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// New returns an idle session.
func New() *Session {
	return &Session{Step: StepIdle}
}

// Reset drops all flow state and returns the session to idle.
func (s *Session) Reset() {
	s.Step = StepIdle
	s.Register = nil
	s.Listing = nil
	s.Browse = nil
	s.Payment = nil
	s.Manage = nil
}

// InFlow reports whether a step-driven conversation is in progress.
func (s *Session) InFlow() bool {
	return s.Step != StepIdle && s.Step != ""
}

// EnsureRegister returns the register payload, allocating it if needed.
func (s *Session) EnsureRegister() *RegisterData {
	if s.Register == nil {
		s.Register = &RegisterData{}
	}
	return s.Register
}

// EnsureListing returns the listing draft, allocating it if needed.
func (s *Session) EnsureListing() *ListingDraft {
	if s.Listing == nil {
		s.Listing = &ListingDraft{}
	}
	return s.Listing
}

// EnsureBrowse returns the browse state, allocating it if needed.
func (s *Session) EnsureBrowse() *BrowseState {
	if s.Browse == nil {
		s.Browse = &BrowseState{}
	}
	return s.Browse
}

// Key builds the store key for a chat/user pair.
func Key(chatID, userID int64) string {
	return fmt.Sprintf("%d:%d", chatID, userID)
}
