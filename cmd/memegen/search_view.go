package main

import (
	"fmt"

	"github.com/dimonomid/memegen/catalog"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type SearchViewParams struct {
	// State is the catalog to search in.
	State catalog.State

	OnSelect func(t catalog.Template)
}

// SearchView is a modal with a query input and the list of matching
// templates, updated as the query is typed.
type SearchView struct {
	params   SearchViewParams
	mainView *MainView

	flex  *tview.Flex
	input *tview.InputField
	list  *tview.List

	results []catalog.Template
}

func NewSearchView(mainView *MainView, params *SearchViewParams) *SearchView {
	sv := &SearchView{
		params:   *params,
		mainView: mainView,
	}

	p := mainView.palette

	sv.input = tview.NewInputField()
	sv.input.SetLabel("Search: ")
	sv.input.SetChangedFunc(func(text string) {
		sv.update(text)
	})
	sv.input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			sv.selectResult(0)
		case tcell.KeyEsc:
			sv.Hide()
		case tcell.KeyTab:
			sv.mainView.params.App.SetFocus(sv.list)
		}
	})
	sv.input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyDown {
			sv.mainView.params.App.SetFocus(sv.list)
			return nil
		}

		return event
	})

	sv.list = tview.NewList()
	sv.list.SetSelectedFunc(func(idx int, mainText, secondaryText string, shortcut rune) {
		sv.selectResult(idx)
	})
	sv.list.SetDoneFunc(func() {
		sv.Hide()
	})
	sv.list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp:
			if sv.list.GetCurrentItem() == 0 {
				sv.mainView.params.App.SetFocus(sv.input)
				return nil
			}

		case tcell.KeyTab, tcell.KeyBacktab:
			sv.mainView.params.App.SetFocus(sv.input)
			return nil
		}

		return event
	})

	sv.input.SetBackgroundColor(p.Background)
	sv.input.SetLabelColor(p.Title)
	sv.input.SetFieldBackgroundColor(p.FieldBackground)
	sv.input.SetFieldTextColor(p.Foreground)
	sv.list.SetBackgroundColor(p.Background)
	sv.list.SetMainTextColor(p.Foreground)
	sv.list.SetSecondaryTextColor(p.Accent)

	sv.flex = tview.NewFlex().SetDirection(tview.FlexRow)
	sv.flex.
		AddItem(sv.input, 1, 0, true).
		AddItem(nil, 1, 0, false).
		AddItem(sv.list, 0, 1, false)
	sv.flex.SetBorder(true).SetTitle(" Templates ").SetBorderPadding(0, 0, 1, 1)
	sv.flex.SetBackgroundColor(p.Background)
	sv.flex.SetBorderColor(p.Border).SetTitleColor(p.Title)

	return sv
}

func (sv *SearchView) Show(query string) {
	sv.input.SetText(query)
	sv.update(query)

	sv.mainView.showModal(pageNameSearch, sv.flex, 70, 2*catalog.DefaultSearchLimit+5, true)
}

func (sv *SearchView) Hide() {
	sv.mainView.hideModal(pageNameSearch, true)
}

func (sv *SearchView) update(query string) {
	state := sv.params.State

	sv.results = catalog.Search(state.AllMemes, query, catalog.DefaultSearchLimit)
	sv.list.Clear()

	if len(sv.results) == 0 {
		sv.list.AddItem(searchPlaceholder(state, query), "", 0, nil)
		return
	}

	for _, t := range sv.results {
		mainText, secondaryText := searchResultText(t)
		sv.list.AddItem(mainText, secondaryText, 0, nil)
	}
}

func (sv *SearchView) selectResult(idx int) {
	if idx < 0 || idx >= len(sv.results) {
		return
	}

	t := sv.results[idx]
	sv.Hide()
	sv.params.OnSelect(t)
}

// searchPlaceholder returns the text shown instead of the results when there
// are none.
func searchPlaceholder(state catalog.State, query string) string {
	switch {
	case len(state.AllMemes) == 0 && state.IsLoading:
		return "Loading templates..."
	case len(state.AllMemes) == 0:
		return "No memes available, try :reload"
	}

	return fmt.Sprintf("Nothing matches %q", query)
}

func searchResultText(t catalog.Template) (mainText, secondaryText string) {
	mainText = tview.Escape(t.Name)

	secondaryText = "  "
	if t.Width > 0 && t.Height > 0 {
		secondaryText += fmt.Sprintf("%dx%d, ", t.Width, t.Height)
	}

	boxes := "boxes"
	if t.BoxCount == 1 {
		boxes = "box"
	}
	secondaryText += fmt.Sprintf("%d text %s, id %s", t.BoxCount, boxes, tview.Escape(t.ID))

	return mainText, secondaryText
}
