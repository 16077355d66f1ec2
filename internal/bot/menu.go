package bot

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/crewshare/crewbot/core/logger"
	tghelpers "github.com/crewshare/crewbot/core/telegram/helpers"
	"github.com/crewshare/crewbot/core/telegram/keyboard"
	"github.com/crewshare/crewbot/internal/domain"
	"github.com/crewshare/crewbot/internal/store"

	tele "gopkg.in/telebot.v4"
)

const (
	msgWelcome = "Welcome to the crew marketplace! Share subscription slots " +
		"you own, or join someone else's at a fraction of the price."
	msgMainMenu       = "What would you like to do?"
	msgSessionExpired = "That took a while, so I closed your previous flow. Back to the main menu."
	msgUnknownText    = "I didn't catch that. Pick an option below, or /help."
	msgOops           = "Something went wrong on our side. Please try again."
	msgHelp           = "List a subscription you own and share its slots, or browse " +
		"live listings and join one. Payments are handled securely; owners get " +
		"credited per member. Use /cancel anytime to abort a flow."
)

func mainMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "➕ List a subscription", Unique: cbMenu, Data: "add"},
			{Text: "🔎 Browse listings", Unique: cbMenu, Data: "browse"},
		},
		[]keyboard.InlineBtn{
			{Text: "📋 My listings", Unique: cbMenu, Data: "mine"},
			{Text: "👥 My memberships", Unique: cbMenu, Data: "member"},
		},
		[]keyboard.InlineBtn{
			{Text: "👤 Profile", Unique: cbMenu, Data: "profile"},
			{Text: "💰 Balance", Unique: cbMenu, Data: "balance"},
		},
	)
}

func (a *App) sendMainMenu(c tele.Context) error {
	return tghelpers.SendMD(c, msgMainMenu, mainMenuMarkup())
}

// currentUser resolves the sender's account; store.ErrNotFound means the
// sender has not registered yet.
func (a *App) currentUser(c tele.Context) (*domain.User, error) {
	ctx := tghelpers.BuildContext(c)
	return a.svc.Account(ctx, c.Sender().ID)
}

// gatedUser resolves the account or diverts the sender into registration.
// A nil user with nil error means the redirect happened.
func (a *App) gatedUser(c tele.Context) (*domain.User, error) {
	user, err := a.currentUser(c)
	if errors.Is(err, store.ErrNotFound) {
		return nil, a.beginRegistration(c)
	}
	if err != nil {
		return nil, a.replyOops(c, err)
	}
	return user, nil
}

func (a *App) replyOops(c tele.Context, err error) error {
	ctx := tghelpers.BuildContext(c)
	logger.Error(ctx, "tg", "handler.failed", slog.String("error", err.Error()))
	return tghelpers.SendMD(c, msgOops, mainMenuMarkup())
}

func (a *App) handleStart(c tele.Context) error {
	s := a.loadSession(c)
	if err := a.resetSession(c, s); err != nil {
		return a.replyOops(c, err)
	}

	_, err := a.currentUser(c)
	if errors.Is(err, store.ErrNotFound) {
		if err := tghelpers.SendMD(c, msgWelcome); err != nil {
			return err
		}
		return a.beginRegistration(c)
	}
	if err != nil {
		return a.replyOops(c, err)
	}
	if err := tghelpers.SendMD(c, msgWelcome); err != nil {
		return err
	}
	return a.sendMainMenu(c)
}

func (a *App) handleCancel(c tele.Context) error {
	s := a.loadSession(c)
	if err := a.resetSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.SendMD(c, "Cancelled.", mainMenuMarkup())
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendMD(c, msgHelp, mainMenuMarkup())
}

func (a *App) handleUnknownText(c tele.Context) error {
	if expired, _ := c.Get(sessionExpiredKey).(bool); expired {
		return tghelpers.SendMD(c, msgSessionExpired, mainMenuMarkup())
	}
	return tghelpers.SendMD(c, msgUnknownText, mainMenuMarkup())
}

func (a *App) handleMenuCallback(c tele.Context) error {
	switch payload(c) {
	case "add":
		return a.startListingWizard(c)
	case "browse":
		return a.startBrowse(c)
	case "mine":
		return a.showMyListings(c)
	case "member":
		return a.showMyMemberships(c)
	case "profile":
		return a.showProfile(c)
	case "balance":
		return a.showBalance(c)
	default:
		return a.sendMainMenu(c)
	}
}

func (a *App) showProfile(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	text := fmt.Sprintf("*Your profile*\nName: %s\nEmail: `%s`", esc(user.FullName), user.Email)
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "✏️ Change name", Unique: cbEditName, Data: "edit"},
			{Text: "✏️ Change email", Unique: cbEditEmail, Data: "edit"},
		},
		[]keyboard.InlineBtn{{Text: "⬅️ Main menu", Unique: cbMenu, Data: "main"}},
	)
	return tghelpers.EditOrSendMD(c, text, markup)
}

func (a *App) showBalance(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	balance, err := a.svc.OwnerBalance(ctx, user.ID)
	if err != nil {
		return a.replyOops(c, err)
	}
	text := fmt.Sprintf("*Your balance*\nEarned so far: %s", naira(balance))
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "⬅️ Main menu", Unique: cbMenu, Data: "main"}},
	)
	return tghelpers.EditOrSendMD(c, text, markup)
}
