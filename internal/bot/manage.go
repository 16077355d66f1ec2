package bot

import (
	"errors"
	"fmt"
	"strings"

	tghelpers "github.com/crewshare/crewbot/core/telegram/helpers"
	"github.com/crewshare/crewbot/core/telegram/keyboard"
	"github.com/crewshare/crewbot/internal/domain"
	"github.com/crewshare/crewbot/internal/service"
	"github.com/crewshare/crewbot/internal/session"
	"github.com/crewshare/crewbot/internal/store"

	tele "gopkg.in/telebot.v4"
)

func (a *App) showMyListings(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	listings, err := a.svc.MyListings(ctx, user)
	if err != nil {
		return a.replyOops(c, err)
	}
	if len(listings) == 0 {
		markup := keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{{Text: "➕ List a subscription", Unique: cbMenu, Data: "add"}},
			[]keyboard.InlineBtn{{Text: "⬅️ Main menu", Unique: cbMenu, Data: "main"}},
		)
		return tghelpers.EditOrSendMD(c, "You haven't listed anything yet.", markup)
	}

	var rows [][]keyboard.InlineBtn
	for i := range listings {
		l := &listings[i]
		label := fmt.Sprintf("%s · %s · %d/%d taken", l.Plan, statusLabel(l.Status), len(l.Members), l.TotalSlots)
		rows = append(rows, []keyboard.InlineBtn{{Text: label, Unique: cbMyListing, Data: l.Code}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "⬅️ Main menu", Unique: cbMenu, Data: "main"}})
	return tghelpers.EditOrSendMD(c, "*Your listings*", keyboard.InlineButtonsRows(rows...))
}

func (a *App) cbMyListing(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	code := payload(c)
	ctx := tghelpers.BuildContext(c)
	listing, err := a.svc.Listing(ctx, code)
	if errors.Is(err, store.ErrNotFound) || (err == nil && listing.OwnerID != user.ID) {
		return tghelpers.EditOrSendMD(c, "That listing isn't yours to manage.", mainMenuMarkup())
	}
	if err != nil {
		return a.replyOops(c, err)
	}

	var rows [][]keyboard.InlineBtn
	if listing.Status != domain.ListingPendingUnlist {
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "🔢 Change slots", Unique: cbUpdateSlots, Data: listing.Code},
			{Text: "🗑 Unlist", Unique: cbUnlist, Data: listing.Code},
		})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "⬅️ My listings", Unique: cbMenu, Data: "mine"}})
	return tghelpers.EditOrSendMD(c, ownerCard(listing), keyboard.InlineButtonsRows(rows...))
}

func (a *App) cbUnlist(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	err = a.svc.UnlistListing(ctx, user, payload(c))
	switch {
	case errors.Is(err, service.ErrNotOwner), errors.Is(err, store.ErrNotFound):
		return tghelpers.EditOrSendMD(c, "That listing isn't yours to manage.", mainMenuMarkup())
	case err != nil:
		return a.replyOops(c, err)
	}
	return tghelpers.EditOrSendMD(c,
		"Your listing is marked for removal. Current members keep access for now.", mainMenuMarkup())
}

func (a *App) cbUpdateSlots(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	s := a.loadSession(c)
	s.Reset()
	s.Step = session.StepUpdateSlots
	s.Manage = &session.ManageState{ListingCode: payload(c)}
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.EditOrSendMD(c, "What should the new total slot count be?")
}

func (a *App) stepUpdateSlots(c tele.Context, s *session.Session, text string) error {
	if s.Manage == nil || s.Manage.ListingCode == "" {
		return a.handleUnknownText(c)
	}
	n, ok := parseSlots(text)
	if !ok {
		return tghelpers.SendMD(c, msgBadSlots)
	}

	user, err := a.currentUser(c)
	if err != nil {
		return a.replyOops(c, err)
	}
	ctx := tghelpers.BuildContext(c)
	listing, err := a.svc.UpdateListingSlots(ctx, user, s.Manage.ListingCode, n)
	switch {
	case errors.Is(err, service.ErrSlotsBelowMembers):
		return tghelpers.SendMD(c,
			"You can't shrink below the members already in. Send a larger number.")
	case errors.Is(err, service.ErrNotOwner), errors.Is(err, store.ErrNotFound):
		if resetErr := a.resetSession(c, s); resetErr != nil {
			return a.replyOops(c, resetErr)
		}
		return tghelpers.SendMD(c, "That listing isn't yours to manage.", mainMenuMarkup())
	case err != nil:
		return a.replyOops(c, err)
	}

	if err := a.resetSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	text = fmt.Sprintf("Updated: %d slot(s) total, %d still open.", listing.TotalSlots, listing.RemainingSlots)
	return tghelpers.SendMD(c, text, mainMenuMarkup())
}

func (a *App) showMyMemberships(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	listings, err := a.svc.MyMemberships(ctx, user)
	if err != nil {
		return a.replyOops(c, err)
	}
	if len(listings) == 0 {
		markup := keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{{Text: "🔎 Browse listings", Unique: cbMenu, Data: "browse"}},
			[]keyboard.InlineBtn{{Text: "⬅️ Main menu", Unique: cbMenu, Data: "main"}},
		)
		return tghelpers.EditOrSendMD(c, "You haven't joined any listings yet.", markup)
	}

	var rows [][]keyboard.InlineBtn
	for i := range listings {
		l := &listings[i]
		label := fmt.Sprintf("%s · until %s", l.Plan, fmtDate(l.ExpiresAt()))
		rows = append(rows, []keyboard.InlineBtn{{Text: label, Unique: cbMembership, Data: l.Code}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "⬅️ Main menu", Unique: cbMenu, Data: "main"}})
	return tghelpers.EditOrSendMD(c, "*Your memberships*", keyboard.InlineButtonsRows(rows...))
}

func (a *App) cbMembership(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	code := payload(c)
	ctx := tghelpers.BuildContext(c)
	listing, err := a.svc.Listing(ctx, code)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !listing.HasMember(user.Email)) {
		return tghelpers.EditOrSendMD(c, "You're not a member of that listing.", mainMenuMarkup())
	}
	if err != nil {
		return a.replyOops(c, err)
	}

	var rows [][]keyboard.InlineBtn
	rows = append(rows, []keyboard.InlineBtn{{Text: "🔁 Renew", Unique: cbRenew, Data: code}})

	if _, err := a.svc.PendingLeave(ctx, user, code); err == nil {
		rows = append(rows, []keyboard.InlineBtn{{Text: "↩️ Cancel leave request", Unique: cbCancelLeave, Data: code}})
	} else {
		rows = append(rows, []keyboard.InlineBtn{{Text: "🚪 Leave", Unique: cbLeave, Data: code}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "⬅️ My memberships", Unique: cbMenu, Data: "member"}})
	return tghelpers.EditOrSendMD(c, memberCard(listing), keyboard.InlineButtonsRows(rows...))
}

func (a *App) cbRenew(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	code := payload(c)
	ctx := tghelpers.BuildContext(c)
	checkout, err := a.svc.StartRenewal(ctx, user, code)
	switch {
	case errors.Is(err, service.ErrRenewalNotDue):
		listing, lookupErr := a.svc.Listing(ctx, code)
		if lookupErr != nil {
			return a.replyOops(c, lookupErr)
		}
		text := fmt.Sprintf("Nothing to renew yet — your membership runs until %s.", fmtDate(listing.ExpiresAt()))
		return tghelpers.EditOrSendMD(c, text, mainMenuMarkup())
	case errors.Is(err, service.ErrNotMember), errors.Is(err, store.ErrNotFound):
		return tghelpers.EditOrSendMD(c, "You're not a member of that listing.", mainMenuMarkup())
	case err != nil:
		return a.replyOops(c, err)
	}
	return a.promptCheckout(c, checkout)
}

func (a *App) cbLeave(c tele.Context) error {
	code := payload(c)
	grace := a.svc.Policy().LeaveGraceDays
	text := fmt.Sprintf(
		"Leave this listing? Your access ends %d day(s) after the request, and you can change your mind until then.", grace)
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "✅ Yes, leave", Unique: cbLeaveYes, Data: code},
			{Text: "⬅️ Back", Unique: cbMembership, Data: code},
		},
	)
	return tghelpers.EditOrSendMD(c, text, markup)
}

func (a *App) cbLeaveYes(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	req, err := a.svc.RequestLeave(ctx, user, payload(c))
	switch {
	case errors.Is(err, store.ErrLeavePending):
		return tghelpers.EditOrSendMD(c, "You already have a leave request pending.", mainMenuMarkup())
	case errors.Is(err, service.ErrNotMember), errors.Is(err, store.ErrNotFound):
		return tghelpers.EditOrSendMD(c, "You're not a member of that listing.", mainMenuMarkup())
	case err != nil:
		return a.replyOops(c, err)
	}
	text := fmt.Sprintf("Leave request filed. Your slot frees up on %s unless you cancel.", fmtDate(req.ExpiresAt))
	return tghelpers.EditOrSendMD(c, text, mainMenuMarkup())
}

func (a *App) cbCancelLeave(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	err = a.svc.CancelLeave(ctx, user, payload(c))
	if errors.Is(err, store.ErrNotFound) {
		return tghelpers.EditOrSendMD(c, "No pending leave request to cancel.", mainMenuMarkup())
	}
	if err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.EditOrSendMD(c, "Leave request cancelled — you're staying. ✅", mainMenuMarkup())
}

func (a *App) handleApprove(c tele.Context) error {
	code := strings.ToUpper(strings.TrimSpace(c.Message().Payload))
	if code == "" {
		return tghelpers.SendMD(c, "Usage: /approve <listing code>")
	}
	ctx := tghelpers.BuildContext(c)
	err := a.svc.ApproveListing(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return tghelpers.SendMD(c, fmt.Sprintf("No pending listing with code `%s`.", code))
	}
	if err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.SendMD(c, fmt.Sprintf("Listing `%s` is now live. ✅", code))
}
