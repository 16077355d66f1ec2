package bot

import (
	"errors"
	"fmt"

	"github.com/crewshare/crewbot/core/telegram/callbacks"
	tghelpers "github.com/crewshare/crewbot/core/telegram/helpers"
	"github.com/crewshare/crewbot/core/telegram/keyboard"
	"github.com/crewshare/crewbot/internal/store"

	tele "gopkg.in/telebot.v4"
)

func (a *App) startBrowse(c tele.Context) error {
	user, err := a.gatedUser(c)
	if user == nil {
		return err
	}
	s := a.loadSession(c)
	s.Reset()
	s.EnsureBrowse()
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}

	var rows [][]keyboard.InlineBtn
	for _, name := range a.svc.Catalog().CategoryNames() {
		rows = append(rows, []keyboard.InlineBtn{{Text: name, Unique: cbBrowseCategory, Data: name}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "⬅️ Main menu", Unique: cbMenu, Data: "main"}})
	return tghelpers.EditOrSendMD(c, "What are you looking for?", keyboard.InlineButtonsRows(rows...))
}

func (a *App) cbBrowseCategory(c tele.Context) error {
	s := a.loadSession(c)
	b := s.EnsureBrowse()

	category := payload(c)
	subs, ok := a.svc.Catalog().SubcategoryNames(category)
	if !ok || len(subs) == 0 {
		return a.startBrowse(c)
	}
	b.Category = category
	b.Subcategory = ""
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}

	var rows [][]keyboard.InlineBtn
	for _, name := range subs {
		rows = append(rows, []keyboard.InlineBtn{{Text: name, Unique: cbBrowseSub, Data: name}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "⬅️ Main menu", Unique: cbMenu, Data: "main"}})
	return tghelpers.EditOrSendMD(c, "Which service?", keyboard.InlineButtonsRows(rows...))
}

func (a *App) cbBrowseSub(c tele.Context) error {
	s := a.loadSession(c)
	b := s.EnsureBrowse()
	if b.Category == "" {
		return a.startBrowse(c)
	}
	b.Subcategory = payload(c)
	b.Sort = store.SortNewest
	b.Page = 0
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return a.showBrowsePage(c)
}

func (a *App) cbBrowseSort(c tele.Context) error {
	s := a.loadSession(c)
	b := s.EnsureBrowse()
	if b.Subcategory == "" {
		return a.startBrowse(c)
	}
	switch payload(c) {
	case store.SortNewest, store.SortOldest, store.SortVerified:
		b.Sort = payload(c)
	default:
		b.Sort = store.SortNewest
	}
	b.Page = 0
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return a.showBrowsePage(c)
}

func (a *App) cbBrowsePage(c tele.Context) error {
	s := a.loadSession(c)
	b := s.EnsureBrowse()
	if b.Subcategory == "" {
		return a.startBrowse(c)
	}
	page, err := callbacks.PayloadInt(c)
	if err != nil || page < 0 {
		page = 0
	}
	b.Page = page
	if err := a.saveSession(c, s); err != nil {
		return a.replyOops(c, err)
	}
	return a.showBrowsePage(c)
}

func (a *App) showBrowsePage(c tele.Context) error {
	s := a.loadSession(c)
	b := s.EnsureBrowse()

	ctx := tghelpers.BuildContext(c)
	listings, total, err := a.svc.Browse(ctx, b.Category, b.Subcategory, b.Sort, b.Page)
	if err != nil {
		return a.replyOops(c, err)
	}
	if total == 0 {
		markup := keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{{Text: "⬅️ Back", Unique: cbBrowseCategory, Data: b.Category}},
			[]keyboard.InlineBtn{{Text: "🏠 Main menu", Unique: cbMenu, Data: "main"}},
		)
		return tghelpers.EditOrSendMD(c, "No open slots here right now. Check back later!", markup)
	}

	pageSize := a.svc.Policy().PageSize
	lastPage := (total - 1) / pageSize

	var rows [][]keyboard.InlineBtn
	for i := range listings {
		l := &listings[i]
		rows = append(rows, []keyboard.InlineBtn{{Text: listingButtonLabel(l), Unique: cbBrowseItem, Data: l.Code}})
	}

	sortRow := []keyboard.InlineBtn{
		{Text: sortMark(b.Sort, store.SortNewest) + "Newest", Unique: cbBrowseSort, Data: store.SortNewest},
		{Text: sortMark(b.Sort, store.SortOldest) + "Oldest", Unique: cbBrowseSort, Data: store.SortOldest},
		{Text: sortMark(b.Sort, store.SortVerified) + "Verified", Unique: cbBrowseSort, Data: store.SortVerified},
	}
	rows = append(rows, sortRow)

	var nav []keyboard.InlineBtn
	if b.Page > 0 {
		nav = append(nav, keyboard.InlineBtn{Text: "⬅️ Prev", Unique: cbBrowsePage, Data: fmt.Sprint(b.Page - 1)})
	}
	if b.Page < lastPage {
		nav = append(nav, keyboard.InlineBtn{Text: "Next ➡️", Unique: cbBrowsePage, Data: fmt.Sprint(b.Page + 1)})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "🏠 Main menu", Unique: cbMenu, Data: "main"}})

	text := fmt.Sprintf("*%s / %s* — %d listing(s), page %d of %d",
		esc(b.Category), esc(b.Subcategory), total, b.Page+1, lastPage+1)
	return tghelpers.EditOrSendMD(c, text, keyboard.InlineButtonsRows(rows...))
}

func sortMark(current, key string) string {
	if current == key {
		return "• "
	}
	return ""
}

func (a *App) cbBrowseItem(c tele.Context) error {
	code := payload(c)
	ctx := tghelpers.BuildContext(c)
	listing, err := a.svc.Listing(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return tghelpers.EditOrSendMD(c, "That listing is gone.", mainMenuMarkup())
	}
	if err != nil {
		return a.replyOops(c, err)
	}

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: fmt.Sprintf("🤝 Join for %s", naira(listing.Amount)), Unique: cbJoin, Data: listing.Code}},
		[]keyboard.InlineBtn{{Text: "⬅️ Back to results", Unique: cbBrowsePage, Data: fmt.Sprint(a.loadSession(c).EnsureBrowse().Page)}},
	)
	return tghelpers.EditOrSendMD(c, listingCard(listing), markup)
}
