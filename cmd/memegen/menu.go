package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type menuItem struct {
	Title   string
	Handler func(mv *MainView)
}

func cmdMenuItem(title, cmd string) menuItem {
	return menuItem{
		Title: title,
		Handler: func(mv *MainView) {
			mv.params.OnCmd(cmd, CmdOpts{Internal: true})
		},
	}
}

var mainMenu = []menuItem{
	cmdMenuItem("Search templates     <Ctrl+K>", "search"),
	cmdMenuItem("Random template      <Ctrl+R>", "random"),
	cmdMenuItem("Undo                 <Ctrl+Z>", "undo"),
	cmdMenuItem("Redo                 <Ctrl+Y>", "redo"),
	cmdMenuItem("Clear captions       :clear  ", "clear"),
	cmdMenuItem("Save PNG             <Ctrl+D>", "download"),
	cmdMenuItem("Copy image           <Ctrl+O>", "xclip"),
	cmdMenuItem("Copy share link      :link   ", "link"),
	cmdMenuItem("Recent memes         <Ctrl+H>", "history"),
	cmdMenuItem("Toggle theme         <Ctrl+T>", "theme"),
	cmdMenuItem("Reload templates     :reload ", "reload"),
	cmdMenuItem("Help                 :help   ", "help"),
	cmdMenuItem("About                :version", "version"),
	cmdMenuItem("Quit                 :q      ", "q"),
}

func getMainMenuTitles() []string {
	ret := make([]string, 0, len(mainMenu))
	for _, item := range mainMenu {
		ret = append(ret, item.Title)
	}

	return ret
}

func (mv *MainView) showMainMenu() {
	p := mv.palette

	list := tview.NewList().ShowSecondaryText(false)
	for _, title := range getMainMenuTitles() {
		list.AddItem(title, "", 0, nil)
	}

	list.SetSelectedFunc(func(idx int, mainText, secondaryText string, shortcut rune) {
		mv.hideModal(pageNameMenu, true)
		mainMenu[idx].Handler(mv)
	})
	list.SetDoneFunc(func() {
		mv.hideModal(pageNameMenu, true)
	})
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyF2 {
			mv.hideModal(pageNameMenu, true)
			return nil
		}

		return event
	})

	list.SetBorder(true).SetTitle(" Menu ").SetBorderPadding(0, 0, 1, 1)
	list.SetBackgroundColor(p.Background)
	list.SetMainTextColor(p.Foreground)
	list.SetBorderColor(p.Border).SetTitleColor(p.Title)

	mv.showModal(pageNameMenu, list, 36, len(mainMenu)+2, true)
}
