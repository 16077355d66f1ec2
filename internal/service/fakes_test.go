package service

import (
	"context"
	"strings"
	"time"

	"github.com/crewshare/crewbot/internal/clients/paystack"
	"github.com/crewshare/crewbot/internal/domain"
	"github.com/crewshare/crewbot/internal/store"
)

type fakeUsers struct {
	byID   map[int64]*domain.User
	nextID int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[int64]*domain.User), nextID: 1}
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	for _, existing := range f.byID {
		if existing.Email == strings.ToLower(u.Email) {
			return store.ErrDuplicateEmail
		}
	}
	u.ID = f.nextID
	f.nextID++
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) ByTelegramID(_ context.Context, tgID int64) (*domain.User, error) {
	for _, u := range f.byID {
		if u.TelegramID == tgID {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) ByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) EmailTaken(_ context.Context, email string) (bool, error) {
	for _, u := range f.byID {
		if u.Email == strings.ToLower(email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id int64, name, email string) error {
	u, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.FullName = name
	u.Email = strings.ToLower(email)
	return nil
}

type fakeListings struct {
	byCode     map[string]*domain.Listing
	nextID     int64
	takenCodes map[string]bool // force ErrCodeTaken for these codes
}

func newFakeListings() *fakeListings {
	return &fakeListings{byCode: make(map[string]*domain.Listing), nextID: 1, takenCodes: make(map[string]bool)}
}

func (f *fakeListings) Create(_ context.Context, l *domain.Listing) error {
	if f.takenCodes[l.Code] {
		return store.ErrCodeTaken
	}
	if _, ok := f.byCode[l.Code]; ok {
		return store.ErrCodeTaken
	}
	l.ID = f.nextID
	f.nextID++
	l.CreatedAt = time.Now()
	cp := *l
	f.byCode[l.Code] = &cp
	return nil
}

func (f *fakeListings) ByCode(_ context.Context, code string) (*domain.Listing, error) {
	l, ok := f.byCode[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListings) Browse(_ context.Context, category, subcategory, _ string, limit, offset int) ([]domain.Listing, int, error) {
	var all []domain.Listing
	for _, l := range f.byCode {
		if l.Category == category && l.Subcategory == subcategory && l.Joinable() {
			all = append(all, *l)
		}
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeListings) AddMember(_ context.Context, code, email string) (*domain.Listing, error) {
	l, ok := f.byCode[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	if l.Status != domain.ListingLive || l.RemainingSlots <= 0 || l.HasMember(email) {
		return nil, store.ErrNoSlots
	}
	l.RemainingSlots--
	l.Members = append(l.Members, email)
	cp := *l
	return &cp, nil
}

func (f *fakeListings) RemoveMember(_ context.Context, code, email string) error {
	l, ok := f.byCode[code]
	if !ok || !l.HasMember(email) {
		return store.ErrNotFound
	}
	var members []string
	for _, m := range l.Members {
		if m != email {
			members = append(members, m)
		}
	}
	l.Members = members
	if l.RemainingSlots < l.TotalSlots {
		l.RemainingSlots++
	}
	return nil
}

func (f *fakeListings) UpdateSlots(_ context.Context, code string, ownerID int64, newTotal int) (*domain.Listing, error) {
	l, ok := f.byCode[code]
	if !ok || l.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	l.TotalSlots = newTotal
	l.RemainingSlots = newTotal - len(l.Members)
	if l.RemainingSlots < 0 {
		l.RemainingSlots = 0
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListings) SetStatus(_ context.Context, code string, ownerID int64, status domain.ListingStatus) error {
	l, ok := f.byCode[code]
	if !ok || l.OwnerID != ownerID {
		return store.ErrNotFound
	}
	l.Status = status
	return nil
}

func (f *fakeListings) Approve(_ context.Context, code string) error {
	l, ok := f.byCode[code]
	if !ok || l.Status != domain.ListingPending {
		return store.ErrNotFound
	}
	l.Status = domain.ListingLive
	return nil
}

func (f *fakeListings) ByOwner(_ context.Context, ownerID int64) ([]domain.Listing, error) {
	var out []domain.Listing
	for _, l := range f.byCode {
		if l.OwnerID == ownerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeListings) ByMember(_ context.Context, email string) ([]domain.Listing, error) {
	var out []domain.Listing
	for _, l := range f.byCode {
		if l.HasMember(email) {
			out = append(out, *l)
		}
	}
	return out, nil
}

type fakeLeaves struct {
	byID   map[int64]*domain.LeaveRequest
	nextID int64
}

func newFakeLeaves() *fakeLeaves {
	return &fakeLeaves{byID: make(map[int64]*domain.LeaveRequest), nextID: 1}
}

func (f *fakeLeaves) Create(_ context.Context, req *domain.LeaveRequest) error {
	for _, r := range f.byID {
		if r.UserID == req.UserID && r.ListingCode == req.ListingCode && r.Status == domain.LeavePending {
			return store.ErrLeavePending
		}
	}
	req.ID = f.nextID
	f.nextID++
	req.Status = domain.LeavePending
	req.CreatedAt = time.Now()
	cp := *req
	f.byID[req.ID] = &cp
	return nil
}

func (f *fakeLeaves) Pending(_ context.Context, userID int64, code string) (*domain.LeaveRequest, error) {
	for _, r := range f.byID {
		if r.UserID == userID && r.ListingCode == code && r.Status == domain.LeavePending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeLeaves) Cancel(_ context.Context, id int64) error {
	r, ok := f.byID[id]
	if !ok || r.Status != domain.LeavePending {
		return store.ErrNotFound
	}
	r.Status = domain.LeaveCancelled
	return nil
}

func (f *fakeLeaves) DuePending(_ context.Context, now time.Time) ([]domain.LeaveRequest, error) {
	var out []domain.LeaveRequest
	for _, r := range f.byID {
		if r.Status == domain.LeavePending && r.Due(now) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeLeaves) Complete(_ context.Context, id int64) error {
	r, ok := f.byID[id]
	if !ok || r.Status != domain.LeavePending {
		return store.ErrNotFound
	}
	r.Status = domain.LeaveCompleted
	return nil
}

type fakePayments struct {
	recorded []domain.Payment
	balances map[int64]int64
}

func newFakePayments() *fakePayments {
	return &fakePayments{balances: make(map[int64]int64)}
}

func (f *fakePayments) Record(_ context.Context, pay *domain.Payment) error {
	for _, p := range f.recorded {
		if p.Reference == pay.Reference {
			return store.ErrDuplicateReference
		}
	}
	pay.ID = int64(len(f.recorded) + 1)
	pay.CreatedAt = time.Now()
	f.recorded = append(f.recorded, *pay)
	return nil
}

func (f *fakePayments) Credit(_ context.Context, ownerID, amount int64) error {
	f.balances[ownerID] += amount
	return nil
}

func (f *fakePayments) Balance(_ context.Context, ownerID int64) (int64, error) {
	return f.balances[ownerID], nil
}

type fakeGateway struct {
	initErr   error
	verifyRes paystack.Status
	verifyErr error
	initCalls int
}

func (f *fakeGateway) Initialize(_ context.Context, _ string, _ int64, reference string) (*paystack.InitResult, error) {
	f.initCalls++
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &paystack.InitResult{AuthorizationURL: "https://pay.example/" + reference, Reference: reference}, nil
}

func (f *fakeGateway) Verify(context.Context, string) (paystack.Status, error) {
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return f.verifyRes, nil
}

type fakeMailer struct {
	err   error
	sent  []string
	codes []string
}

func (f *fakeMailer) SendVerification(_ context.Context, _ string, email, code string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	f.codes = append(f.codes, code)
	return nil
}

type fakeNotifier struct {
	messages map[int64][]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{messages: make(map[int64][]string)}
}

func (f *fakeNotifier) Notify(_ context.Context, chatID int64, text string) error {
	f.messages[chatID] = append(f.messages[chatID], text)
	return nil
}
