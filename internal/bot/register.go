package bot

import (
	"errors"
	"fmt"
	"strings"

	tghelpers "github.com/crewshare/crewbot/core/telegram/helpers"
	"github.com/crewshare/crewbot/internal/session"
	"github.com/crewshare/crewbot/internal/store"

	tele "gopkg.in/telebot.v4"
)

const (
	msgAskFullName = "Let's get you registered. What's your full name?"
	msgBadFullName = "Please send your full name, first and last (e.g. *Ada Lovelace*)."
	msgAskEmail    = "Thanks! Now, what's your email address? We'll send a verification code there."
	msgBadEmail    = "That doesn't look like an email address. Try again (e.g. *you@example.com*)."
	msgEmailTaken  = "That email is already registered. Please use a different one."
	msgMailFailed  = "We couldn't send the verification email right now. Please try registering again later."
	msgAskCode     = "We've emailed you a 6-digit code. Please type it here."
	msgBadCode     = "That code doesn't match. Check your inbox and try again."
	msgRegistered  = "You're all set! Welcome aboard. 🎉"
)

// beginRegistration puts the sender at the start of the signup flow.
func (a *App) beginRegistration(c tele.Context) error {
	s := a.loadSession(c)
	s.Reset()
	s.Step = session.StepRegisterName
	s.EnsureRegister()
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.SendMD(c, msgAskFullName)
}

func (a *App) stepRegisterName(c tele.Context, s *session.Session, text string) error {
	if !validFullName(text) {
		return tghelpers.SendMD(c, msgBadFullName)
	}
	reg := s.EnsureRegister()
	reg.FullName = strings.TrimSpace(text)
	s.Step = session.StepRegisterEmail
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.SendMD(c, msgAskEmail)
}

func (a *App) stepRegisterEmail(c tele.Context, s *session.Session, text string) error {
	if !validEmail(text) {
		return tghelpers.SendMD(c, msgBadEmail)
	}
	email := strings.ToLower(strings.TrimSpace(text))
	reg := s.EnsureRegister()

	ctx := tghelpers.BuildContext(c)
	code, err := a.svc.StartVerification(ctx, reg.FullName, email)
	if errors.Is(err, store.ErrDuplicateEmail) {
		return tghelpers.SendMD(c, msgEmailTaken)
	}
	if err != nil {
		// Mailer outage: abort the flow rather than leave the user stuck.
		if resetErr := a.resetSession(c, s); resetErr != nil {
			return a.replyOops(c, resetErr)
		}
		return tghelpers.SendMD(c, msgMailFailed, mainMenuMarkup())
	}

	reg.Email = email
	reg.Code = code
	s.Step = session.StepRegisterCode
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.SendMD(c, msgAskCode)
}

func (a *App) stepRegisterCode(c tele.Context, s *session.Session, text string) error {
	reg := s.EnsureRegister()
	if strings.TrimSpace(text) != reg.Code || reg.Code == "" {
		return tghelpers.SendMD(c, msgBadCode)
	}

	ctx := tghelpers.BuildContext(c)

	if reg.EditOnly {
		user, err := a.currentUser(c)
		if err != nil {
			return a.replyOops(c, err)
		}
		if err := a.svc.UpdateProfile(ctx, user.ID, reg.FullName, reg.Email); err != nil {
			if errors.Is(err, store.ErrDuplicateEmail) {
				s.Step = session.StepEditEmail
				if saveErr := a.saveSession(c, s); saveErr != nil {
					return a.replyOops(c, saveErr)
				}
				return tghelpers.SendMD(c, msgEmailTaken)
			}
			return a.replyOops(c, err)
		}
		if err := a.resetSession(c, s); err != nil {
			return a.replyOops(c, err)
		}
		return tghelpers.SendMD(c, "Email updated. ✅", mainMenuMarkup())
	}

	_, err := a.svc.CompleteRegistration(ctx, c.Sender().ID, reg.FullName, reg.Email)
	if errors.Is(err, store.ErrDuplicateEmail) {
		s.Step = session.StepRegisterEmail
		if saveErr := a.saveSession(c, s); saveErr != nil {
			return a.replyOops(c, saveErr)
		}
		return tghelpers.SendMD(c, msgEmailTaken)
	}
	if err != nil {
		return a.replyOops(c, err)
	}
	if err := a.resetSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	if err := tghelpers.SendMD(c, msgRegistered); err != nil {
		return err
	}
	return a.sendMainMenu(c)
}

// Profile edits reuse the registration validators; a changed email goes
// back through code verification.

func (a *App) cbEditName(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	s := a.loadSession(c)
	s.Reset()
	s.Step = session.StepEditName
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.SendMD(c, "What should your name be?")
}

func (a *App) cbEditEmail(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	s := a.loadSession(c)
	s.Reset()
	s.Step = session.StepEditEmail
	reg := s.EnsureRegister()
	reg.EditOnly = true
	reg.FullName = user.FullName
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.SendMD(c, "What's your new email address? We'll verify it with a code.")
}

func (a *App) stepEditName(c tele.Context, s *session.Session, text string) error {
	if !validFullName(text) {
		return tghelpers.SendMD(c, msgBadFullName)
	}
	user, err := a.currentUser(c)
	if err != nil {
		return a.replyOops(c, err)
	}
	ctx := tghelpers.BuildContext(c)
	if err := a.svc.UpdateProfile(ctx, user.ID, text, user.Email); err != nil {
		return a.replyOops(c, err)
	}
	if err := a.resetSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.SendMD(c, fmt.Sprintf("Done, %s. ✅", esc(strings.TrimSpace(text))), mainMenuMarkup())
}

func (a *App) stepEditEmail(c tele.Context, s *session.Session, text string) error {
	if !validEmail(text) {
		return tghelpers.SendMD(c, msgBadEmail)
	}
	email := strings.ToLower(strings.TrimSpace(text))
	reg := s.EnsureRegister()

	ctx := tghelpers.BuildContext(c)
	code, err := a.svc.StartVerification(ctx, reg.FullName, email)
	if errors.Is(err, store.ErrDuplicateEmail) {
		return tghelpers.SendMD(c, msgEmailTaken)
	}
	if err != nil {
		if resetErr := a.resetSession(c, s); resetErr != nil {
			return a.replyOops(c, resetErr)
		}
		return tghelpers.SendMD(c, msgMailFailed, mainMenuMarkup())
	}

	reg.Email = email
	reg.Code = code
	reg.EditOnly = true
	s.Step = session.StepRegisterCode
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.SendMD(c, msgAskCode)
}
