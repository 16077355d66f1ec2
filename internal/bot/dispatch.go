package bot

import (
	"strings"

	"github.com/crewshare/crewbot/core/telegram/callbacks"
	tghelpers "github.com/crewshare/crewbot/core/telegram/helpers"
	"github.com/crewshare/crewbot/internal/session"

	tele "gopkg.in/telebot.v4"
)

// payload shortens callback payload extraction in handlers.
func payload(c tele.Context) string {
	return callbacks.CallbackPayload(c)
}

// sessionExpiredKey marks the current update so the text fallback can
// explain the idle reset instead of treating the message as noise.
const sessionExpiredKey = "session_expired"

type stepHandler func(c tele.Context, s *session.Session, text string) error

func (a *App) buildSteps() {
	a.steps = map[session.Step]stepHandler{
		session.StepRegisterName:  a.stepRegisterName,
		session.StepRegisterEmail: a.stepRegisterEmail,
		session.StepRegisterCode:  a.stepRegisterCode,
		session.StepEditName:      a.stepEditName,
		session.StepEditEmail:     a.stepEditEmail,

		session.StepListingCategory:     a.stepButtonsOnly,
		session.StepListingSubcategory:  a.stepButtonsOnly,
		session.StepListingPlan:         a.stepButtonsOnly,
		session.StepListingShare:        a.stepButtonsOnly,
		session.StepListingConfirm:      a.stepButtonsOnly,
		session.StepListingSlots:        a.stepListingSlots,
		session.StepListingCredEmail:    a.stepListingCredEmail,
		session.StepListingCredPassword: a.stepListingCredPassword,
		session.StepListingCredPhone:    a.stepListingCredPhone,
		session.StepListingDuration:     a.stepListingDuration,

		session.StepUpdateSlots: a.stepUpdateSlots,
	}
}

// InProgress implements router.FSM. An idle-reset session reports false so
// the message falls through to command routing; the fallback then explains
// the timeout.
func (a *App) InProgress(c tele.Context) bool {
	ctx := tghelpers.BuildContext(c)
	s, expired := a.sessions.Load(ctx, c.Chat().ID, c.Sender().ID)
	if expired {
		c.Set(sessionExpiredKey, true)
		return false
	}
	return s.InFlow()
}

// HandleStep implements router.FSM: it routes the text to the handler for
// the session's current step.
func (a *App) HandleStep(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	s, _ := a.sessions.Load(ctx, c.Chat().ID, c.Sender().ID)

	handler, ok := a.steps[s.Step]
	if !ok {
		// Unknown step means stale persisted state; recover to the menu.
		s.Reset()
		_ = a.sessions.Save(ctx, c.Chat().ID, c.Sender().ID, s)
		return a.sendMainMenu(c)
	}
	return handler(c, s, strings.TrimSpace(c.Text()))
}

// stepButtonsOnly covers wizard phases driven by inline buttons.
func (a *App) stepButtonsOnly(c tele.Context, _ *session.Session, _ string) error {
	return tghelpers.SendMD(c, "Please use the buttons above, or /cancel to start over.")
}

func (a *App) saveSession(c tele.Context, s *session.Session) error {
	ctx := tghelpers.BuildContext(c)
	return a.sessions.Save(ctx, c.Chat().ID, c.Sender().ID, s)
}

func (a *App) loadSession(c tele.Context) *session.Session {
	ctx := tghelpers.BuildContext(c)
	s, _ := a.sessions.Load(ctx, c.Chat().ID, c.Sender().ID)
	return s
}

func (a *App) resetSession(c tele.Context, s *session.Session) error {
	s.Reset()
	return a.saveSession(c, s)
}
