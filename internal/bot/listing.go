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

	tele "gopkg.in/telebot.v4"
)

const (
	msgStaleStep    = "That step is no longer active. Use /start for the main menu."
	msgAskSlots     = "How many slots do you want to share? Send a number."
	msgBadSlots     = "Please send a positive whole number of slots."
	msgAskDuration  = "For how many months is this listing valid? (1–12)"
	msgBadDuration  = "Please send a number of months between 1 and 12."
	msgAskCredEmail = "What's the account email members will sign in with?"
	msgAskCredPass  = "And the account password?"
	msgAskCredPhone = "What phone number should members request login codes from? " +
		"Use international format, e.g. *+2348012345678*."
	msgBadCredPhone = "Please send the number as a plus sign followed by digits, e.g. *+2348012345678*."
	msgWizCancelled = "Listing discarded."
)

func wizardCancelRow() []keyboard.InlineBtn {
	return []keyboard.InlineBtn{{Text: "❌ Cancel", Unique: cbWizardCancel, Data: "cancel"}}
}

func (a *App) startListingWizard(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	s := a.loadSession(c)
	s.Reset()
	s.Step = session.StepListingCategory
	s.EnsureListing()
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return a.sendCategoryPicker(c, "What kind of subscription are you sharing?")
}

func (a *App) sendCategoryPicker(c tele.Context, prompt string) error {
	var rows [][]keyboard.InlineBtn
	for _, name := range a.svc.Catalog().CategoryNames() {
		rows = append(rows, []keyboard.InlineBtn{{Text: name, Unique: cbAddCategory, Data: name}})
	}
	rows = append(rows, wizardCancelRow())
	return tghelpers.EditOrSendMD(c, prompt, keyboard.InlineButtonsRows(rows...))
}

func (a *App) cbAddCategory(c tele.Context) error {
	s := a.loadSession(c)
	if s.Step != session.StepListingCategory || s.Listing == nil {
		return tghelpers.EditOrSendMD(c, msgStaleStep)
	}

	category := payload(c)
	subs, ok := a.svc.Catalog().SubcategoryNames(category)
	if !ok || len(subs) == 0 {
		return a.sendCategoryPicker(c, "Please pick one of these categories:")
	}

	s.Listing.Category = category
	s.Step = session.StepListingSubcategory
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}

	var rows [][]keyboard.InlineBtn
	for _, name := range subs {
		rows = append(rows, []keyboard.InlineBtn{{Text: name, Unique: cbAddSubcategory, Data: name}})
	}
	rows = append(rows, wizardCancelRow())
	return tghelpers.EditOrSendMD(c, fmt.Sprintf("%s it is. Which service?", esc(category)),
		keyboard.InlineButtonsRows(rows...))
}

func (a *App) cbAddSubcategory(c tele.Context) error {
	s := a.loadSession(c)
	if s.Step != session.StepListingSubcategory || s.Listing == nil || s.Listing.Category == "" {
		return tghelpers.EditOrSendMD(c, msgStaleStep)
	}

	sub := payload(c)
	plans, ok := a.svc.Catalog().Plans(s.Listing.Category, sub)
	if !ok || len(plans) == 0 {
		// No plans under this pick; send the user back to categories.
		s.Listing.Category = ""
		s.Step = session.StepListingCategory
		if err := a.saveSession(c, s); err != nil {
			return a.replyOops(c, err)
		}
		return a.sendCategoryPicker(c, "No plans there yet. Pick another category:")
	}

	s.Listing.Subcategory = sub
	s.Step = session.StepListingPlan
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}

	var rows [][]keyboard.InlineBtn
	for _, p := range plans {
		label := fmt.Sprintf("%s · %s/mo", p.Name, naira(p.Price))
		rows = append(rows, []keyboard.InlineBtn{{Text: label, Unique: cbAddPlan, Data: p.Name}})
	}
	rows = append(rows, wizardCancelRow())
	return tghelpers.EditOrSendMD(c, "Which plan?", keyboard.InlineButtonsRows(rows...))
}

func (a *App) cbAddPlan(c tele.Context) error {
	s := a.loadSession(c)
	if s.Step != session.StepListingPlan || s.Listing == nil || s.Listing.Subcategory == "" {
		return tghelpers.EditOrSendMD(c, msgStaleStep)
	}

	plan := payload(c)
	price, amount, err := a.svc.PricePlan(s.Listing.Category, s.Listing.Subcategory, plan)
	if errors.Is(err, service.ErrUnknownPlan) {
		return tghelpers.EditOrSendMD(c, msgStaleStep)
	}
	if err != nil {
		return a.replyOops(c, err)
	}

	s.Listing.Plan = plan
	s.Listing.Price = price
	s.Listing.Amount = amount
	s.Step = session.StepListingSlots
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.EditOrSendMD(c, msgAskSlots)
}

func (a *App) stepListingSlots(c tele.Context, s *session.Session, text string) error {
	n, ok := parseSlots(text)
	if !ok {
		return tghelpers.SendMD(c, msgBadSlots)
	}
	s.EnsureListing().Slots = n
	s.Step = session.StepListingShare
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "🔑 Shared login", Unique: cbShareMethod, Data: string(domain.ShareLogin)},
			{Text: "📲 One-time codes", Unique: cbShareMethod, Data: string(domain.ShareOTP)},
		},
		wizardCancelRow(),
	)
	return tghelpers.SendMD(c, "How will members get access?", markup)
}

func (a *App) cbShareMethod(c tele.Context) error {
	s := a.loadSession(c)
	if s.Step != session.StepListingShare || s.Listing == nil {
		return tghelpers.EditOrSendMD(c, msgStaleStep)
	}

	switch domain.ShareMethod(payload(c)) {
	case domain.ShareLogin:
		s.Listing.ShareMethod = domain.ShareLogin
		s.Step = session.StepListingCredEmail
		if err := a.saveSession(c, s); err != nil {
			return a.replyOops(c, err)
		}
		return tghelpers.EditOrSendMD(c, msgAskCredEmail)
	case domain.ShareOTP:
		s.Listing.ShareMethod = domain.ShareOTP
		s.Step = session.StepListingCredPhone
		if err := a.saveSession(c, s); err != nil {
			return a.replyOops(c, err)
		}
		return tghelpers.EditOrSendMD(c, msgAskCredPhone)
	default:
		return tghelpers.EditOrSendMD(c, msgStaleStep)
	}
}

func (a *App) stepListingCredEmail(c tele.Context, s *session.Session, text string) error {
	if !validEmail(text) {
		return tghelpers.SendMD(c, msgBadEmail)
	}
	s.EnsureListing().CredEmail = strings.TrimSpace(text)
	s.Step = session.StepListingCredPassword
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.SendMD(c, msgAskCredPass)
}

func (a *App) stepListingCredPassword(c tele.Context, s *session.Session, text string) error {
	if text == "" {
		return tghelpers.SendMD(c, msgAskCredPass)
	}
	s.EnsureListing().CredPassword = text
	s.Step = session.StepListingDuration
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.SendMD(c, msgAskDuration)
}

func (a *App) stepListingCredPhone(c tele.Context, s *session.Session, text string) error {
	if !validPhone(text) {
		return tghelpers.SendMD(c, msgBadCredPhone)
	}
	s.EnsureListing().CredPhone = strings.TrimSpace(text)
	s.Step = session.StepListingDuration
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.SendMD(c, msgAskDuration)
}

func (a *App) stepListingDuration(c tele.Context, s *session.Session, text string) error {
	n, ok := parseDuration(text)
	if !ok {
		return tghelpers.SendMD(c, msgBadDuration)
	}
	draft := s.EnsureListing()
	draft.DurationMonths = n
	s.Step = session.StepListingConfirm
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}

	var b strings.Builder
	b.WriteString("*Ready to publish?*\n")
	fmt.Fprintf(&b, "%s — %s / %s\n", esc(draft.Plan), esc(draft.Category), esc(draft.Subcategory))
	fmt.Fprintf(&b, "Price per member: %s (incl. service fee)\n", naira(draft.Amount))
	fmt.Fprintf(&b, "Slots: %d\n", draft.Slots)
	fmt.Fprintf(&b, "Duration: %d month(s)\n", draft.DurationMonths)
	fmt.Fprintf(&b, "Access: %s", shareLabel(draft.ShareMethod))

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "✅ Publish", Unique: cbAddConfirm, Data: "yes"}},
		wizardCancelRow(),
	)
	return tghelpers.SendMD(c, b.String(), markup)
}

func (a *App) cbAddConfirm(c tele.Context) error {
	s := a.loadSession(c)
	if s.Step != session.StepListingConfirm || s.Listing == nil {
		return tghelpers.EditOrSendMD(c, msgStaleStep)
	}
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}

	draft := s.Listing
	ctx := tghelpers.BuildContext(c)
	listing, err := a.svc.CreateListing(ctx, user, service.ListingDraft{
		Category:       draft.Category,
		Subcategory:    draft.Subcategory,
		Plan:           draft.Plan,
		Slots:          draft.Slots,
		ShareMethod:    draft.ShareMethod,
		CredEmail:      draft.CredEmail,
		CredPassword:   draft.CredPassword,
		CredPhone:      draft.CredPhone,
		DurationMonths: draft.DurationMonths,
	})
	if errors.Is(err, service.ErrCodeExhausted) {
		return tghelpers.EditOrSendMD(c, "We couldn't allocate a code for your listing. Please try again in a moment.", mainMenuMarkup())
	}
	if err != nil {
		return a.replyOops(c, err)
	}
	if err := a.resetSession(c, s); err != nil {
		return a.replyOops(c, err)
	}

	text := fmt.Sprintf("Your listing is up! Code: `%s`", listing.Code)
	if listing.Status == domain.ListingPending {
		text = fmt.Sprintf("Your listing was submitted for approval. Code: `%s`", listing.Code)
	}
	return tghelpers.EditOrSendMD(c, text, mainMenuMarkup())
}

func (a *App) cbWizardCancel(c tele.Context) error {
	s := a.loadSession(c)
	if err := a.resetSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.EditOrSendMD(c, msgWizCancelled, mainMenuMarkup())
}
