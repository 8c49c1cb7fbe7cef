package main

import (
	"fmt"
	"strings"

	"github.com/dimonomid/memegen/meme"
	"github.com/dimonomid/memegen/recent"
	"github.com/rivo/tview"
)

const historyTimeLayout = "Jan 2 15:04"

type HistoryViewParams struct {
	Entries []recent.Entry

	// TemplateName returns a human-readable name of a template image.
	TemplateName func(imageURL string) string

	OnSelect func(doc meme.Document)
}

// HistoryView lists the recently exported memes, newest first; selecting one
// makes it the current Document.
type HistoryView struct {
	params   HistoryViewParams
	mainView *MainView

	list *tview.List
}

func NewHistoryView(mainView *MainView, params *HistoryViewParams) *HistoryView {
	hv := &HistoryView{
		params:   *params,
		mainView: mainView,
	}

	p := mainView.palette

	hv.list = tview.NewList()
	hv.list.SetSelectedFunc(func(idx int, mainText, secondaryText string, shortcut rune) {
		if idx >= len(hv.params.Entries) {
			hv.Hide()
			return
		}

		doc := hv.params.Entries[idx].Doc
		hv.Hide()
		hv.params.OnSelect(doc)
	})
	hv.list.SetDoneFunc(func() {
		hv.Hide()
	})

	if len(params.Entries) == 0 {
		hv.list.AddItem("No recent memes yet", "  Memes appear here once downloaded or copied", 0, nil)
	}

	for _, e := range params.Entries {
		mainText, secondaryText := historyEntryText(e, params.TemplateName)
		hv.list.AddItem(mainText, secondaryText, 0, nil)
	}

	hv.list.SetBorder(true).SetTitle(" Recent memes ").SetBorderPadding(0, 0, 1, 1)
	hv.list.SetBackgroundColor(p.Background)
	hv.list.SetMainTextColor(p.Foreground)
	hv.list.SetSecondaryTextColor(p.Accent)
	hv.list.SetBorderColor(p.Border).SetTitleColor(p.Title)

	return hv
}

func (hv *HistoryView) Show() {
	height := 2*len(hv.params.Entries) + 2
	if height < 4 {
		height = 4
	}

	hv.mainView.showModal(pageNameHistory, hv.list, 80, height, true)
}

func (hv *HistoryView) Hide() {
	hv.mainView.hideModal(pageNameHistory, true)
}

func historyEntryText(e recent.Entry, templateName func(string) string) (mainText, secondaryText string) {
	captions := make([]string, 0, 2)
	for _, c := range []string{e.Doc.TopText, e.Doc.BottomText} {
		if c = strings.TrimSpace(c); c != "" {
			captions = append(captions, c)
		}
	}

	mainText = strings.Join(captions, " / ")
	if mainText == "" {
		mainText = "(no captions)"
	}

	name := e.Doc.ImageURL
	if templateName != nil {
		name = templateName(e.Doc.ImageURL)
	}

	secondaryText = fmt.Sprintf("  %s, %s", e.Time.Format(historyTimeLayout), name)

	return tview.Escape(mainText), tview.Escape(secondaryText)
}
