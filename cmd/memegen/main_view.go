package main

import (
	"fmt"
	"image"
	"strconv"

	"github.com/dimonomid/memegen/clhistory"
	"github.com/dimonomid/memegen/log"
	"github.com/dimonomid/memegen/meme"
	"github.com/dimonomid/memegen/theme"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	pageNameMain    = "main"
	pageNameMessage = "message"
	pageNameSearch  = "search"
	pageNameHistory = "history"
	pageNameMenu    = "menu"
)

const formWidth = 42

type MainViewParams struct {
	App *tview.Application

	// OnCmd is called whenever the user submits a command, either typed into
	// the command line or invoked with a shortcut.
	OnCmd OnCmdCallback

	// OnEdit is called when the user is done editing one of the form fields;
	// if it returns an error, the field is reverted to the current Document.
	OnEdit OnEditCallback

	CmdHistory *clhistory.CLHistory

	Logger *log.Logger
}

type CmdOpts struct {
	// If Internal is true, it means the user didn't actually type the command,
	// it was generated using some other way; so e.g. it shouldn't be added to the
	// command line history.
	Internal bool
}

type OnCmdCallback func(cmd string, opts CmdOpts)

type formField string

const (
	formFieldTop      formField = "top"
	formFieldBottom   formField = "bottom"
	formFieldFontSize formField = "fontsize"
	formFieldColor    formField = "color"
)

type OnEditCallback func(field formField, value string) error

type MainView struct {
	params    MainViewParams
	rootPages *tview.Pages

	headerView *tview.TextView

	topInput      *tview.InputField
	bottomInput   *tview.InputField
	fontSizeInput *tview.InputField
	colorInput    *tview.InputField
	hintsView     *tview.TextView

	formFlex *tview.Flex
	preview  *PreviewView

	statusLineLeft  *tview.TextView
	statusLineRight *tview.TextView

	cmdInput *tview.InputField

	// focusedBeforeCmd is a primitive which was focused before cmdInput was
	// focused. Once the user is done editing command, focusedBeforeCmd
	// normally resumes focus.
	focusedBeforeCmd tview.Primitive

	// doc is the last Document set with setDocument; the form fields are
	// reverted to it when an edit is rejected or aborted.
	doc meme.Document

	// suppressChanges is set while the form is being filled from a Document,
	// so that the changed callbacks don't treat it as user edits.
	suppressChanges bool

	// advisoryView is the currently shown advisory, if any; there's never more
	// than one.
	advisoryView *MessageView

	palette theme.Palette

	screenWidth, screenHeight int

	modalsFocusStack []tview.Primitive
}

var (
	cmdLineCommand = tcell.Style{}.
			Background(tcell.ColorBlue).
			Foreground(tcell.ColorWhite).
			Bold(false)

	cmdLineMsgInfo = tcell.Style{}.
			Background(tcell.ColorBlue).
			Foreground(tcell.ColorWhite).
			Bold(false)

	cmdLineMsgWarn = tcell.Style{}.
			Background(tcell.ColorBlue).
			Foreground(tcell.ColorLime).
			Bold(true)

	cmdLineMsgErr = tcell.Style{}.
			Background(tcell.ColorBlue).
			Foreground(tcell.ColorYellow).
			Bold(false)
)

var hintsText = `[yellow]Tab[-]/[yellow]Shift+Tab[-]: next/prev field
[yellow]Enter[-]: apply, [yellow]Esc[-]: to preview
[yellow]Ctrl+Z[-]/[yellow]Ctrl+Y[-]: undo/redo
[yellow]Ctrl+K[-]: search templates
[yellow]Ctrl+R[-]: random template
[yellow]Ctrl+D[-]: save PNG, [yellow]Ctrl+O[-]: copy
[yellow]Ctrl+H[-]: recent memes
[yellow]F2[-]: menu, [yellow]:[-] (on preview): command`

func NewMainView(params *MainViewParams) *MainView {
	params.Logger = params.Logger.WithNamespaceAppended("MainView")

	mv := &MainView{
		params: *params,
	}

	mv.rootPages = tview.NewPages()

	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow)

	mv.headerView = tview.NewTextView()
	mv.headerView.SetScrollable(false).SetDynamicColors(true)
	mainFlex.AddItem(mv.headerView, 1, 0, false)

	mv.topInput = mv.newFormInput("Top:    ", formFieldTop)
	mv.bottomInput = mv.newFormInput("Bottom: ", formFieldBottom)
	mv.fontSizeInput = mv.newFormInput("Size:   ", formFieldFontSize)
	mv.fontSizeInput.SetAcceptanceFunc(func(text string, lastChar rune) bool {
		if text == "" || text == "." {
			return true
		}
		_, err := strconv.ParseFloat(text, 64)
		return err == nil
	})
	mv.colorInput = mv.newFormInput("Color:  ", formFieldColor)

	mv.hintsView = tview.NewTextView()
	mv.hintsView.SetDynamicColors(true).SetText(hintsText)

	mv.formFlex = tview.NewFlex().SetDirection(tview.FlexRow)
	mv.formFlex.
		AddItem(mv.topInput, 1, 0, true).
		AddItem(nil, 1, 0, false).
		AddItem(mv.bottomInput, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(mv.fontSizeInput, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(mv.colorInput, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(mv.hintsView, 0, 1, false)
	mv.formFlex.SetBorder(true).SetTitle(" Meme ").SetBorderPadding(0, 0, 1, 1)

	mv.preview = NewPreviewView()
	mv.preview.SetBorder(true).SetTitle(" Preview ")
	mv.preview.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			mv.params.App.SetFocus(mv.topInput)
			return nil
		case tcell.KeyBacktab:
			mv.params.App.SetFocus(mv.colorInput)
			return nil

		case tcell.KeyRune:
			switch event.Rune() {
			case ':':
				mv.focusCmdline()
				return nil

			case 'i', 'a':
				mv.params.App.SetFocus(mv.topInput)
				return nil

			case 'u':
				mv.params.OnCmd("undo", CmdOpts{Internal: true})
				return nil

			case '/':
				mv.params.OnCmd("search", CmdOpts{Internal: true})
				return nil
			}
		}

		return event
	})

	contentFlex := tview.NewFlex().SetDirection(tview.FlexColumn)
	contentFlex.
		AddItem(mv.formFlex, formWidth, 0, true).
		AddItem(mv.preview, 0, 1, false)

	mainFlex.AddItem(contentFlex, 0, 1, true)

	mv.statusLineLeft = tview.NewTextView()
	mv.statusLineLeft.SetScrollable(false).SetDynamicColors(true)

	mv.statusLineRight = tview.NewTextView()
	mv.statusLineRight.SetTextAlign(tview.AlignRight).SetScrollable(false).SetDynamicColors(true)

	statusLineFlex := tview.NewFlex().SetDirection(tview.FlexColumn)
	statusLineFlex.
		AddItem(mv.statusLineLeft, 0, 1, false).
		AddItem(nil, 1, 0, false).
		AddItem(mv.statusLineRight, 30, 0, false)

	mainFlex.AddItem(statusLineFlex, 1, 0, false)

	mv.cmdInput = tview.NewInputField()
	mv.cmdInput.SetFieldStyle(cmdLineCommand)
	mv.cmdInput.SetChangedFunc(func(text string) {
		if text == "" && mv.cmdInput.HasFocus() {
			mv.params.App.SetFocus(mv.focusedBeforeCmd)
		}
	})

	mv.cmdInput.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		cmd := mv.cmdInput.GetText()
		if len(cmd) > 0 {
			// Remove the ":" prefix
			cmd = cmd[1:]
		}

		switch event.Key() {
		case tcell.KeyCtrlP, tcell.KeyUp:
			item, _ := mv.params.CmdHistory.Prev(cmd)
			mv.cmdInput.SetText(":" + item.Str)
			return nil

		case tcell.KeyCtrlN, tcell.KeyDown:
			item, _ := mv.params.CmdHistory.Next(cmd)
			mv.cmdInput.SetText(":" + item.Str)
			return nil
		}

		mv.params.CmdHistory.Reset()

		return event
	})

	mv.cmdInput.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			cmd := mv.cmdInput.GetText()

			// Remove the ":" prefix
			if len(cmd) > 0 {
				cmd = cmd[1:]
			}

			if cmd != "" {
				mv.params.OnCmd(cmd, CmdOpts{})
			} else {
				// Similarly to zsh, make it so that an empty command causes history to
				// be reloaded.
				if err := mv.params.CmdHistory.Load(); err != nil {
					mv.params.Logger.Errorf("Failed to reload command history: %s", err.Error())
				}
			}

		case tcell.KeyEsc:
		// Gonna just stop editing it
		default:
			// Ignore it
			return
		}

		mv.cmdInput.SetText("")
		mv.params.CmdHistory.Reset()
		if mv.focusedBeforeCmd != nil {
			mv.params.App.SetFocus(mv.focusedBeforeCmd)
		}
	})

	mainFlex.AddItem(mv.cmdInput, 1, 0, false)

	mv.rootPages.AddPage(pageNameMain, mainFlex, true, true)

	return mv
}

// newFormInput creates one of the form fields: Tab and Shift+Tab move
// between the fields, Enter commits the edit, Esc reverts it and leaves the
// form. Leaving a field in any other way commits the edit too.
func (mv *MainView) newFormInput(label string, field formField) *tview.InputField {
	input := tview.NewInputField()
	input.SetLabel(label)

	input.SetChangedFunc(func(text string) {
		if mv.suppressChanges {
			return
		}

		// Keep the preview live, even though the edit is not committed yet.
		mv.preview.SetDocument(mv.formDocument())
	})

	input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEsc:
			mv.revertForm()
			mv.params.App.SetFocus(mv.preview)
			return

		case tcell.KeyEnter:
			mv.commitField(field, input)

		case tcell.KeyTab:
			mv.params.App.SetFocus(mv.nextFormPrimitive(input, 1))

		case tcell.KeyBacktab:
			mv.params.App.SetFocus(mv.nextFormPrimitive(input, -1))
		}
	})

	input.SetBlurFunc(func() {
		mv.commitField(field, input)
	})

	return input
}

func (mv *MainView) formInputs() []*tview.InputField {
	return []*tview.InputField{mv.topInput, mv.bottomInput, mv.fontSizeInput, mv.colorInput}
}

// nextFormPrimitive returns the primitive which is delta positions away from
// the given input, cycling through the form fields and the preview.
func (mv *MainView) nextFormPrimitive(cur *tview.InputField, delta int) tview.Primitive {
	cycle := []tview.Primitive{mv.topInput, mv.bottomInput, mv.fontSizeInput, mv.colorInput, mv.preview}

	idx := 0
	for i, p := range cycle {
		if p == tview.Primitive(cur) {
			idx = i
		}
	}

	idx = (idx + delta + len(cycle)) % len(cycle)
	return cycle[idx]
}

func (mv *MainView) commitField(field formField, input *tview.InputField) {
	if mv.suppressChanges {
		return
	}

	if err := mv.params.OnEdit(field, input.GetText()); err != nil {
		mv.printMsg(capitalizeFirstRune(err.Error()), msgLevelErr)
		mv.revertForm()
	}
}

// formDocument returns the Document as it's currently shown in the form,
// including the edits which aren't committed yet.
func (mv *MainView) formDocument() meme.Document {
	doc := mv.doc.
		WithTopText(mv.topInput.GetText()).
		WithBottomText(mv.bottomInput.GetText())

	if fs, err := strconv.ParseFloat(mv.fontSizeInput.GetText(), 64); err == nil {
		doc = doc.WithFontSize(fs)
	}

	if _, err := meme.ParseColor(mv.colorInput.GetText()); err == nil {
		doc = doc.WithTextColor(mv.colorInput.GetText())
	}

	return doc
}

// setDocument makes the form fields and the preview captions reflect the
// Document; uncommitted edits are discarded.
func (mv *MainView) setDocument(doc meme.Document) {
	mv.doc = doc
	mv.revertForm()
}

func (mv *MainView) setTemplateName(name string) {
	mv.headerView.SetText(fmt.Sprintf(" [::b]memegen[::-]  Template: [yellow]%s[-]", tview.Escape(name)))
}

// commitFocusedField commits the edit in the focused form field, if any; it's
// called before shortcuts are handled, so that e.g. an undo right after typing
// undoes the typed text.
func (mv *MainView) commitFocusedField() {
	fields := map[*tview.InputField]formField{
		mv.topInput:      formFieldTop,
		mv.bottomInput:   formFieldBottom,
		mv.fontSizeInput: formFieldFontSize,
		mv.colorInput:    formFieldColor,
	}

	for input, field := range fields {
		if input.HasFocus() {
			mv.commitField(field, input)
			return
		}
	}
}

func (mv *MainView) revertForm() {
	mv.suppressChanges = true
	defer func() { mv.suppressChanges = false }()

	setIfChanged := func(input *tview.InputField, text string) {
		if input.GetText() != text {
			input.SetText(text)
		}
	}

	setIfChanged(mv.topInput, mv.doc.TopText)
	setIfChanged(mv.bottomInput, mv.doc.BottomText)
	setIfChanged(mv.fontSizeInput, strconv.FormatFloat(mv.doc.FontSize, 'f', -1, 64))
	setIfChanged(mv.colorInput, mv.doc.TextColor)

	mv.preview.SetDocument(mv.doc)
}

func (mv *MainView) setPreviewLoading() {
	mv.preview.SetLoading()
}

func (mv *MainView) setPreviewImage(img image.Image) {
	mv.preview.SetImage(img)
}

func (mv *MainView) setPreviewFailed(msg string) {
	mv.preview.SetFailed(msg)
}

func (mv *MainView) setStatus(left, right string) {
	mv.statusLineLeft.SetText(left)
	mv.statusLineRight.SetText(right)
}

// applyPalette paints the view with the theme colors.
func (mv *MainView) applyPalette(p theme.Palette) {
	mv.palette = p

	for _, box := range []interface {
		SetBackgroundColor(color tcell.Color) *tview.Box
	}{
		mv.headerView, mv.hintsView, mv.formFlex, mv.preview,
		mv.statusLineLeft, mv.statusLineRight,
	} {
		box.SetBackgroundColor(p.Background)
	}

	mv.headerView.SetTextColor(p.Title)
	mv.hintsView.SetTextColor(p.Foreground)
	mv.statusLineLeft.SetTextColor(p.Accent)
	mv.statusLineRight.SetTextColor(p.Accent)

	mv.formFlex.SetBorderColor(p.Border).SetTitleColor(p.Title)
	mv.preview.SetBorderColor(p.Border).SetTitleColor(p.Title)

	for _, input := range mv.formInputs() {
		input.SetBackgroundColor(p.Background)
		input.SetLabelColor(p.Title)
		input.SetFieldBackgroundColor(p.FieldBackground)
		input.SetFieldTextColor(p.Foreground)
	}
}

func (mv *MainView) focusCmdline() {
	mv.cmdInput.SetFieldStyle(cmdLineCommand)
	mv.cmdInput.SetText(":")
	mv.focusedBeforeCmd = mv.params.App.GetFocus()
	mv.params.App.SetFocus(mv.cmdInput)
}

// isEditingText returns whether the focus is on something where keys should
// go as is: the command line or any modal.
func (mv *MainView) isEditingText() bool {
	return mv.cmdInput.HasFocus() || len(mv.modalsFocusStack) > 0
}

type msgLevel string

const (
	msgLevelInfo msgLevel = "info"
	msgLevelWarn msgLevel = "warn"
	msgLevelErr  msgLevel = "err"
)

func (mv *MainView) printMsg(s string, level msgLevel) {
	// If the commandline is focused, then don't print anything since it would mess
	// with the current input.
	if mv.cmdInput.HasFocus() {
		return
	}

	style := cmdLineMsgInfo
	switch level {
	case msgLevelInfo:
		style = cmdLineMsgInfo
	case msgLevelWarn:
		style = cmdLineMsgWarn
	case msgLevelErr:
		style = cmdLineMsgErr
	}

	mv.cmdInput.SetFieldStyle(style)
	mv.cmdInput.SetText(s)
}

// showMessage shows a message box with the given title and text; help and
// about go here.
func (mv *MainView) showMessage(id, title, message string) *MessageView {
	msgv := NewMessageView(mv, MessageViewParams{
		ID:      id,
		Kind:    messageKindInfo,
		Title:   title,
		Message: message,
	})
	msgv.Show()

	return msgv
}

// showAdvisory shows the message about a failure; if another advisory is
// still shown, it's replaced, so there's never more than one.
func (mv *MainView) showAdvisory(msg string) {
	if mv.advisoryView != nil {
		mv.advisoryView.Hide()
		mv.advisoryView = nil
	}

	var msgv *MessageView
	msgv = NewMessageView(mv, MessageViewParams{
		ID:      "advisory",
		Kind:    messageKindAdvisory,
		Title:   "Oops",
		Message: msg,
		OnDismiss: func() {
			if mv.advisoryView == msgv {
				mv.advisoryView = nil
			}
		},
	})
	msgv.Show()

	mv.advisoryView = msgv
}

func (mv *MainView) showModal(name string, primitive tview.Primitive, width, height int, focus bool) {
	mv.modalsFocusStack = append(mv.modalsFocusStack, mv.params.App.GetFocus())

	// Returns a new primitive which puts the provided primitive in the center and
	// sets its size to the given width and height.
	modal := func(p tview.Primitive, width, height int) tview.Primitive {
		return tview.NewGrid().
			SetColumns(0, width, 0).
			SetRows(0, height, 0).
			AddItem(p, 1, 1, 1, 1, 0, 0, true)
	}

	mv.rootPages.AddPage(name, modal(primitive, width, height), true, true)

	if focus {
		mv.params.App.SetFocus(primitive)
	} else {
		mv.popFocusStack()
	}
}

func (mv *MainView) hideModal(name string, popFocusStack bool) {
	prevFocused := mv.params.App.GetFocus()

	mv.rootPages.RemovePage(name)
	if popFocusStack {
		mv.popFocusStack()
	} else {
		// Adding/removing pages inevitably messes with focus, and so if we want
		// to keep it unchanged, we have to set it back manually.
		mv.params.App.SetFocus(prevFocused)
	}
}

func (mv *MainView) popFocusStack() {
	l := len(mv.modalsFocusStack)
	if l == 0 {
		return
	}

	mv.params.App.SetFocus(mv.modalsFocusStack[l-1])
	mv.modalsFocusStack = mv.modalsFocusStack[:l-1]
}

func (mv *MainView) GetUIPrimitive() tview.Primitive {
	return mv.rootPages
}

// queueUpdateLater is useful when we are IN the UI event loop, and we want to
// queue another update which will fire after the current handler is done;
// e.g. when a list item handler wants to show a modal, and the list itself
// is being hidden.
func (mv *MainView) queueUpdateLater(f func()) {
	go func() {
		mv.params.App.QueueUpdateDraw(f)
	}()
}
