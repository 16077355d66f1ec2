package bot

import (
	"errors"
	"fmt"

	tghelpers "github.com/crewshare/crewbot/core/telegram/helpers"
	"github.com/crewshare/crewbot/internal/clients/paystack"
	"github.com/crewshare/crewbot/internal/domain"
	"github.com/crewshare/crewbot/internal/service"
	"github.com/crewshare/crewbot/internal/session"
	"github.com/crewshare/crewbot/internal/store"

	tele "gopkg.in/telebot.v4"
)

const (
	msgNoSlots       = "Sorry, that listing is no longer available."
	msgNothingToPay  = "There's no payment in progress."
	msgPayCancelled  = "Payment cancelled."
	msgVerifyFailed  = "We couldn't check your payment just now. Tap *I've paid* again in a moment."
	msgPaymentJoined = "Payment confirmed — you're in! 🎉\n\n%s"
	msgPaymentRenew  = "Payment confirmed — your membership is extended. ✅"
)

// checkoutMarkup pairs the hosted payment page link with verify/cancel.
func checkoutMarkup(authURL string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	payBtn := markup.URL("💳 Pay now", authURL)
	verifyBtn := markup.Data("✅ I've paid", cbPayVerify, "check")
	cancelBtn := markup.Data("❌ Cancel", cbPayCancel, "cancel")
	markup.Inline(markup.Row(payBtn), markup.Row(verifyBtn, cancelBtn))
	return markup
}

func (a *App) cbJoin(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}

	code := payload(c)
	ctx := tghelpers.BuildContext(c)
	checkout, err := a.svc.StartJoin(ctx, user, code)
	switch {
	case errors.Is(err, service.ErrOwnListing):
		return tghelpers.EditOrSendMD(c, "That's your own listing!", mainMenuMarkup())
	case errors.Is(err, service.ErrAlreadyMember):
		return tghelpers.EditOrSendMD(c, "You've already joined this one.", mainMenuMarkup())
	case errors.Is(err, store.ErrNoSlots), errors.Is(err, store.ErrNotFound):
		return tghelpers.EditOrSendMD(c, msgNoSlots, mainMenuMarkup())
	case err != nil:
		return a.replyOops(c, err)
	}

	return a.promptCheckout(c, checkout)
}

func (a *App) promptCheckout(c tele.Context, checkout *service.Checkout) error {
	s := a.loadSession(c)
	s.Payment = &session.PaymentState{
		Reference:   checkout.Reference,
		ListingCode: checkout.ListingCode,
		Purpose:     checkout.Purpose,
		Amount:      checkout.Amount,
	}
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}

	text := fmt.Sprintf("Pay %s to continue. When you're done, tap *I've paid*.", naira(checkout.Amount))
	return tghelpers.EditOrSendMD(c, text, checkoutMarkup(checkout.AuthorizationURL))
}

func (a *App) cbPayVerify(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}

	s := a.loadSession(c)
	// An empty reference means this checkout already settled; the second
	// tap is a harmless no-op.
	if s.Payment == nil || s.Payment.Reference == "" {
		return tghelpers.EditOrSendMD(c, msgNothingToPay, mainMenuMarkup())
	}
	pay := s.Payment

	ctx := tghelpers.BuildContext(c)
	outcome, err := a.svc.ConfirmPayment(ctx, user, service.Checkout{
		Reference:   pay.Reference,
		ListingCode: pay.ListingCode,
		Amount:      pay.Amount,
		Purpose:     pay.Purpose,
	})
	switch {
	case errors.Is(err, store.ErrNoSlots), errors.Is(err, store.ErrNotFound):
		s.Payment = nil
		if saveErr := a.saveSession(c, s); saveErr != nil {
			return a.replyOops(c, saveErr)
		}
		return tghelpers.EditOrSendMD(c, msgNoSlots, mainMenuMarkup())
	case err != nil:
		return tghelpers.SendMD(c, msgVerifyFailed)
	}

	if outcome.Status != paystack.StatusSuccess {
		var note string
		switch outcome.Status {
		case paystack.StatusFailed:
			note = "The payment didn't go through. You can try paying again."
		case paystack.StatusOngoing:
			note = "Your payment is still processing. Give it a moment, then tap *I've paid* again."
		default:
			note = "We haven't seen your payment yet. Pay first, then tap *I've paid*."
		}
		return tghelpers.SendMD(c, note)
	}

	purpose := pay.Purpose
	s.Payment = nil
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}

	if purpose == domain.PaymentRenew {
		return tghelpers.EditOrSendMD(c, msgPaymentRenew, mainMenuMarkup())
	}
	text := fmt.Sprintf(msgPaymentJoined, accessDetails(outcome.Listing))
	return tghelpers.EditOrSendMD(c, text, mainMenuMarkup())
}

func (a *App) cbPayCancel(c tele.Context) error {
	s := a.loadSession(c)
	s.Payment = nil
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return tghelpers.EditOrSendMD(c, msgPayCancelled, mainMenuMarkup())
}
