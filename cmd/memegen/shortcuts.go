package main

import (
	"github.com/gdamore/tcell/v2"
)

type shortcut struct {
	Keys  string
	Cmd   string
	Descr string
}

// shortcuts is only used for the help message; the actual handling is in
// shortcutCmd.
var shortcuts = []shortcut{
	{Keys: "Ctrl+Z", Cmd: "undo", Descr: "Undo the last change"},
	{Keys: "Ctrl+Shift+Z, Ctrl+Y", Cmd: "redo", Descr: "Redo"},
	{Keys: "Ctrl+D", Cmd: "download", Descr: "Save the meme as PNG"},
	{Keys: "Ctrl+O", Cmd: "xclip", Descr: "Copy the meme image to clipboard"},
	{Keys: "Ctrl+K", Cmd: "search", Descr: "Search templates"},
	{Keys: "Ctrl+H", Cmd: "history", Descr: "Recent memes"},
	{Keys: "Ctrl+R", Cmd: "random", Descr: "Random template"},
	{Keys: "Ctrl+T", Cmd: "theme", Descr: "Toggle light/dark theme"},
	{Keys: "F2", Cmd: "menu", Descr: "Menu"},
	{Keys: ":", Cmd: "", Descr: "Command line"},
}

// shortcutCmd returns the command which the key event is a shortcut for, if
// any.
//
// NOTE: Ctrl+H is the same as Backspace for most terminals' purposes (both
// are 0x08), but practically all terminals send 0x7f (KeyBackspace2) for
// Backspace, so we can use 0x08 as Ctrl+H.
func shortcutCmd(event *tcell.EventKey) (string, bool) {
	shift := event.Modifiers()&tcell.ModShift != 0

	switch event.Key() {
	case tcell.KeyCtrlZ:
		if shift {
			return "redo", true
		}
		return "undo", true

	case tcell.KeyCtrlY:
		return "redo", true

	case tcell.KeyCtrlD:
		return "download", true

	case tcell.KeyCtrlO:
		return "xclip", true

	case tcell.KeyCtrlK:
		return "search", true

	case tcell.KeyCtrlH:
		return "history", true

	case tcell.KeyCtrlR:
		return "random", true

	case tcell.KeyCtrlT:
		return "theme", true

	case tcell.KeyF2:
		return "menu", true

	case tcell.KeyRune:
		// Terminals supporting extended keyboard protocols report Ctrl+Shift+Z
		// as a rune with modifiers.
		if event.Modifiers()&tcell.ModCtrl != 0 {
			switch event.Rune() {
			case 'Z':
				return "redo", true
			case 'z':
				if shift {
					return "redo", true
				}
				return "undo", true
			}
		}
	}

	return "", false
}
