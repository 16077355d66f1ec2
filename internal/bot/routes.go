package bot

import (
	"github.com/crewshare/crewbot/core/telegram/commands"
)

// Callback keys. These end up inside inline button data, so they stay
// short to leave room for payloads within Telegram's 64-byte limit.
const (
	cbMenu = "menu"

	cbAddCategory    = "addcat"
	cbAddSubcategory = "addsub"
	cbAddPlan        = "addplan"
	cbShareMethod    = "share"
	cbAddConfirm     = "addok"
	cbWizardCancel   = "wizcancel"

	cbBrowseCategory = "bcat"
	cbBrowseSub      = "bsub"
	cbBrowseSort     = "bsort"
	cbBrowsePage     = "bpage"
	cbBrowseItem     = "bitem"
	cbJoin           = "join"

	cbPayVerify = "payverify"
	cbPayCancel = "paycancel"

	cbMyListing   = "mlist"
	cbUnlist      = "munlist"
	cbUpdateSlots = "muslots"
	cbMembership  = "mmem"
	cbRenew       = "mrenew"
	cbLeave       = "mleave"
	cbLeaveYes    = "mleaveyes"
	cbCancelLeave = "mcleave"

	cbEditName  = "pname"
	cbEditEmail = "pemail"
)

func (a *App) registerRoutes() {
	a.buildSteps()

	a.reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Open the main menu",
	})
	a.reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Abort the current flow",
	})
	a.reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "How the marketplace works",
	})
	a.reg.RegisterCommand("/approve", commands.Command{
		Handler:     a.handleApprove,
		Description: "Approve a pending listing",
		AdminOnly:   true,
		Hidden:      true,
	})

	a.reg.SetTextFallback(a.handleUnknownText)

	_ = a.reg.RegisterCallback(cbMenu, a.handleMenuCallback)

	_ = a.reg.RegisterCallback(cbAddCategory, a.cbAddCategory)
	_ = a.reg.RegisterCallback(cbAddSubcategory, a.cbAddSubcategory)
	_ = a.reg.RegisterCallback(cbAddPlan, a.cbAddPlan)
	_ = a.reg.RegisterCallback(cbShareMethod, a.cbShareMethod)
	_ = a.reg.RegisterCallback(cbAddConfirm, a.cbAddConfirm)
	_ = a.reg.RegisterCallback(cbWizardCancel, a.cbWizardCancel)

	_ = a.reg.RegisterCallback(cbBrowseCategory, a.cbBrowseCategory)
	_ = a.reg.RegisterCallback(cbBrowseSub, a.cbBrowseSub)
	_ = a.reg.RegisterCallback(cbBrowseSort, a.cbBrowseSort)
	_ = a.reg.RegisterCallback(cbBrowsePage, a.cbBrowsePage)
	_ = a.reg.RegisterCallback(cbBrowseItem, a.cbBrowseItem)
	_ = a.reg.RegisterCallback(cbJoin, a.cbJoin)

	_ = a.reg.RegisterCallback(cbPayVerify, a.cbPayVerify)
	_ = a.reg.RegisterCallback(cbPayCancel, a.cbPayCancel)

	_ = a.reg.RegisterCallback(cbMyListing, a.cbMyListing)
	_ = a.reg.RegisterCallback(cbUnlist, a.cbUnlist)
	_ = a.reg.RegisterCallback(cbUpdateSlots, a.cbUpdateSlots)
	_ = a.reg.RegisterCallback(cbMembership, a.cbMembership)
	_ = a.reg.RegisterCallback(cbRenew, a.cbRenew)
	_ = a.reg.RegisterCallback(cbLeave, a.cbLeave)
	_ = a.reg.RegisterCallback(cbLeaveYes, a.cbLeaveYes)
	_ = a.reg.RegisterCallback(cbCancelLeave, a.cbCancelLeave)

	_ = a.reg.RegisterCallback(cbEditName, a.cbEditName)
	_ = a.reg.RegisterCallback(cbEditEmail, a.cbEditEmail)
}
