package main

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"
)

type messageKind int

const (
	// messageKindInfo is for things the user asked for, like help.
	messageKindInfo messageKind = iota
	// messageKindAdvisory is for failures: painted with the error color.
	messageKindAdvisory
)

const (
	// Border and padding at each side.
	messageBoxExtraWidth = 4
	// Border and padding at the top and bottom, plus the spacer and the OK
	// button line.
	messageBoxExtraHeight = 6
)

type MessageViewParams struct {
	// ID makes the page name unique, so that e.g. help can be shown over an
	// advisory.
	ID      string
	Kind    messageKind
	Title   string
	Message string

	// OnDismiss, if not nil, is called after the message is hidden by the
	// user.
	OnDismiss func()
}

// MessageView is a modal box with some text and a single OK button. The text
// is focused, so if it doesn't fit on the screen, it can be scrolled with the
// usual keys; Enter, Esc and q dismiss the box.
type MessageView struct {
	params   MessageViewParams
	mainView *MainView

	width, height int

	frame    *tview.Frame
	textView *tview.TextView

	shown bool
}

// messageBoxSize returns the size of a box which fits the given text on the
// given screen, and whether the text still doesn't fit and thus has to be
// scrolled. Empty lines around the text are not counted. A zero screen size
// means it's unknown yet, and then the box is sized to the text alone.
func messageBoxSize(screenWidth, screenHeight int, text string) (width, height int, scroll bool) {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	maxLineWidth := 0
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > maxLineWidth {
			maxLineWidth = w
		}
	}

	width = maxLineWidth + messageBoxExtraWidth
	if screenWidth > 0 && width > screenWidth {
		width = screenWidth
	}

	textWidth := width - messageBoxExtraWidth
	numLines := 0
	for _, line := range lines {
		lineWidth := runewidth.StringWidth(line)
		if lineWidth == 0 || textWidth <= 0 {
			numLines++
			continue
		}

		numLines += (lineWidth + textWidth - 1) / textWidth
	}

	height = numLines + messageBoxExtraHeight
	if screenHeight > 0 && height > screenHeight {
		return width, screenHeight, true
	}

	return width, height, false
}

func NewMessageView(mainView *MainView, params MessageViewParams) *MessageView {
	msgv := &MessageView{
		params:   params,
		mainView: mainView,
	}

	text := strings.TrimSpace(params.Message)

	var scroll bool
	msgv.width, msgv.height, scroll = messageBoxSize(
		mainView.screenWidth, mainView.screenHeight, text,
	)

	p := mainView.palette
	accent := p.Title
	if params.Kind == messageKindAdvisory {
		accent = p.Error
	}

	msgv.textView = tview.NewTextView()
	msgv.textView.SetText(text)
	msgv.textView.SetDynamicColors(true)
	msgv.textView.SetWordWrap(true)
	msgv.textView.SetTextColor(p.Foreground)
	msgv.textView.SetBackgroundColor(p.Background)
	msgv.textView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyEsc:
			msgv.dismiss()
			return nil

		case tcell.KeyRune:
			if event.Rune() == 'q' {
				msgv.dismiss()
				return nil
			}
		}

		// Scrolling keys are handled by the text view itself.
		return event
	})

	okButton := tview.NewButton("OK").SetSelectedFunc(msgv.dismiss)
	okButton.SetBackgroundColorActivated(accent)
	okButton.SetLabelColorActivated(p.Background)

	buttons := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(nil, 0, 1, false).
		AddItem(okButton, 10, 0, false).
		AddItem(nil, 0, 1, false)

	content := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(msgv.textView, 0, 1, true).
		AddItem(nil, 1, 0, false).
		AddItem(buttons, 1, 0, false)
	content.SetBackgroundColor(p.Background)

	msgv.frame = tview.NewFrame(content).SetBorders(0, 0, 0, 0, 0, 0)
	msgv.frame.SetBorder(true).SetBorderPadding(1, 1, 1, 1)
	msgv.frame.SetBorderColor(accent)
	msgv.frame.SetTitle(" " + params.Title + " ")
	msgv.frame.SetTitleColor(accent)
	msgv.frame.SetBackgroundColor(p.Background)
	if scroll {
		msgv.frame.AddText("arrows, PgUp/PgDn: scroll", false, tview.AlignRight, p.Border)
	}

	return msgv
}

func (msgv *MessageView) pageName() string {
	return pageNameMessage + msgv.params.ID
}

func (msgv *MessageView) Show() {
	if msgv.shown {
		return
	}

	msgv.shown = true
	msgv.mainView.showModal(msgv.pageName(), msgv.frame, msgv.width, msgv.height, true)
}

// Hide removes the box, without calling OnDismiss. It's a no-op if the box
// is not shown.
func (msgv *MessageView) Hide() {
	if !msgv.shown {
		return
	}

	msgv.shown = false
	msgv.mainView.hideModal(msgv.pageName(), true)
}

func (msgv *MessageView) dismiss() {
	msgv.Hide()

	if msgv.params.OnDismiss != nil {
		msgv.params.OnDismiss()
	}
}
