package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dimonomid/memegen/catalog"
	"github.com/dimonomid/memegen/version"
	"github.com/juju/errors"
)

// cmdHelp has a one-line description of every command; the key is the main
// name of a command, aliases are listed in cmdAliases.
var cmdHelp = map[string]string{
	"top":          "top TEXT: set the top caption",
	"bottom":       "bottom TEXT: set the bottom caption",
	"fontsize":     "fontsize N: set the font size multiplier, from 1 to 3",
	"color":        "color C: set the caption color, like #ffffff or yellow",
	"template":     "template NAME|ID|GLOB|URL: switch the template image",
	"clear":        "clear: clear both captions",
	"undo":         "undo: undo the last change",
	"redo":         "redo: redo the last undone change",
	"random":       "random: switch to a random template",
	"search":       "search [QUERY]: search templates",
	"history":      "history: recent memes",
	"clearhistory": "clearhistory: forget the recent memes",
	"download":     "download [DIR]: save the meme as PNG",
	"xclip":        "xclip: copy the meme image to clipboard",
	"link":         "link: copy the share link to clipboard",
	"theme":        "theme: toggle light/dark theme",
	"reload":       "reload: reload the template list",
	"set":          "set OPTION[=VALUE]: query or change an option, see below",
	"memegen":      "memegen ARGS...: apply a command line as printed by :history",
	"menu":         "menu: show the menu",
	"version":      "version: show the version",
	"help":         "help: show this help",
	"quit":         "quit: exit memegen",
}

var cmdAliases = map[string]string{
	"fs":     "fontsize",
	"t":      "template",
	"u":      "undo",
	"w":      "download",
	"write":  "download",
	"copy":   "xclip",
	"rand":   "random",
	"about":  "version",
	"h":      "help",
	"q":      "quit",
	"recent": "history",
}

// splitCmd splits the command into the name (with aliases resolved) and the
// rest, which is kept intact, since for captions whitespace matters.
func splitCmd(cmd string) (name, arg string) {
	cmd = strings.TrimLeftFunc(cmd, unicode.IsSpace)

	idx := strings.IndexFunc(cmd, unicode.IsSpace)
	if idx < 0 {
		name = cmd
	} else {
		name = cmd[:idx]
		arg = strings.TrimLeftFunc(cmd[idx:], unicode.IsSpace)
	}

	if canonical, ok := cmdAliases[name]; ok {
		name = canonical
	}

	return name, arg
}

// NOTE: handleCmd is always called from the tview's event loop, so it's safe
// to use all UI primitives and memegenApp etc.
func (app *memegenApp) handleCmd(cmd string) {
	name, arg := splitCmd(cmd)
	if name == "" {
		return
	}

	switch name {
	case "top":
		app.applyEdit(app.session.SetTopText(arg))

	case "bottom":
		app.applyEdit(app.session.SetBottomText(arg))

	case "fontsize":
		size, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			app.printError(fmt.Sprintf("Invalid font size %q", arg))
			return
		}

		app.applyEdit(app.session.SetFontSize(size))

	case "color":
		if err := app.SetTextColor(strings.TrimSpace(arg)); err != nil {
			app.printError(err.Error())
		}

	case "template":
		spec := strings.TrimSpace(arg)
		if spec == "" {
			app.printError("template requires an argument, try :search")
			return
		}

		tpl, err := app.catalog.Find(spec)
		if err != nil {
			if errors.Cause(err) == catalog.ErrNoTemplatesSelectable {
				app.showAdvisory(err)
				return
			}

			app.printError(err.Error())
			return
		}

		app.setTemplate(tpl)

	case "clear":
		app.applyEdit(app.session.ClearText())

	case "undo":
		if !app.session.Undo() {
			app.printMsg("Already at oldest change")
			return
		}
		app.applyDocument()

	case "redo":
		if !app.session.Redo() {
			app.printMsg("Already at newest change")
			return
		}
		app.applyDocument()

	case "random":
		tpl, err := app.session.RandomTemplate()
		if err != nil {
			app.showAdvisory(err)
			return
		}

		app.applyDocument()
		app.printMsg("Template: " + tpl.Name)

	case "search":
		app.showSearch(arg)

	case "history":
		app.showHistory()

	case "clearhistory":
		if err := app.recent.Clear(); err != nil {
			app.printError("Failed to clear history: " + err.Error())
			return
		}
		app.printMsg("Recent memes cleared")

	case "download":
		dir := strings.TrimSpace(arg)
		if dir != "" {
			if err := app.SetExportDir(dir); err != nil {
				app.printError(err.Error())
				return
			}
		}

		app.download()

	case "xclip":
		app.copyImage()

	case "link":
		app.copyLink()

	case "theme":
		if err := app.SetDark(!app.theme.IsDark()); err != nil {
			app.printError(err.Error())
		}

	case "reload":
		app.reloadCatalog()

	case "set":
		if strings.TrimSpace(arg) == "" {
			app.printError("set requires an argument")
			return
		}

		setRes, err := setOption(app, arg)
		if err != nil {
			app.printError(capitalizeFirstRune(err.Error()))
			return
		}

		if setRes.got != nil {
			app.printMsg(fmt.Sprintf("%s is %s", setRes.got.optName, setRes.got.optValue))
		}

	case "memegen":
		doc := app.session.Document()
		if err := doc.UnmarshalShellCmd(cmd); err != nil {
			app.printError(capitalizeFirstRune(err.Error()))
			return
		}

		app.applyEdit(app.session.Replace(doc))

	case "menu":
		app.mainView.showMainMenu()

	case "version":
		app.mainView.showMessage("about", "About", version.VersionFullDescr())

	case "help":
		app.mainView.showMessage("help", "Help", helpText())

	case "quit":
		app.tviewApp.Stop()

	default:
		app.printError(fmt.Sprintf("Unknown command %q", name))
	}
}

func helpText() string {
	names := make([]string, 0, len(cmdHelp))
	for name := range cmdHelp {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder

	sb.WriteString("Commands (type : on the preview to enter one):\n\n")
	for _, name := range names {
		sb.WriteString("  :" + cmdHelp[name] + "\n")
	}

	sb.WriteString("\nShortcuts:\n\n")
	for _, sc := range shortcuts {
		sb.WriteString(fmt.Sprintf("  %-22s %s\n", sc.Keys, sc.Descr))
	}

	sb.WriteString("\nOptions (:set):\n\n")
	sb.WriteString(optionsHelp())

	return sb.String()
}

func capitalizeFirstRune(s string) string {
	if s == "" {
		return s
	}

	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// The methods below implement optionTarget.

func (app *memegenApp) ExportDir() string {
	return app.exporter.Dir()
}

func (app *memegenApp) SetExportDir(dir string) error {
	dir = expandHomeDir(dir, app.params.homeDir)

	info, err := os.Stat(dir)
	if err != nil {
		return errors.Trace(err)
	}

	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", dir)
	}

	app.exporter.SetDir(dir)
	return nil
}

func (app *memegenApp) FontSize() float64 {
	return app.session.Document().FontSize
}

func (app *memegenApp) SetFontSize(size float64) {
	app.applyEdit(app.session.SetFontSize(size))
}

func (app *memegenApp) TextColor() string {
	return app.session.Document().TextColor
}

func (app *memegenApp) SetTextColor(c string) error {
	changed, err := app.session.SetTextColor(c)
	if err != nil {
		return errors.Trace(err)
	}

	app.applyEdit(changed)
	return nil
}

func (app *memegenApp) IsDark() bool {
	return app.theme.IsDark()
}

func (app *memegenApp) SetDark(dark bool) error {
	if app.theme.IsDark() == dark {
		return nil
	}

	if _, err := app.theme.Toggle(); err != nil {
		return errors.Annotatef(err, "saving theme")
	}

	app.applyTheme()
	return nil
}

var _ optionTarget = &memegenApp{}
