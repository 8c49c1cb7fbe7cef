// Package editor holds the editing session: the current meme Document and its
// undo/redo history. Every edit the UI (or the command line) makes goes
// through a Session.
package editor

import (
	"math/rand"
	"time"

	"github.com/dimonomid/memegen/blhistory"
	"github.com/dimonomid/memegen/catalog"
	"github.com/dimonomid/memegen/meme"
	"github.com/juju/errors"
)

// TemplateSource is where RandomTemplate picks templates from;
// *catalog.Manager is one.
type TemplateSource interface {
	Random(rnd *rand.Rand) (catalog.Template, error)
}

type Session struct {
	params SessionParams

	hist *blhistory.BLHistory[meme.Document]
	rnd  *rand.Rand
}

type SessionParams struct {
	// Initial is the Document the session starts with; meme.Default() if
	// zero.
	Initial meme.Document

	// HistoryLen is how many Documents undo can go back through;
	// blhistory.DefaultMaxLen if zero.
	HistoryLen int

	Templates TemplateSource

	// Rand is seeded with the current time if nil.
	Rand *rand.Rand
}

func NewSession(params SessionParams) *Session {
	if params.Initial == (meme.Document{}) {
		params.Initial = meme.Default()
	}

	rnd := params.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Session{
		params: params,
		hist: blhistory.New(params.Initial.Normalized(), blhistory.Params{
			MaxLen: params.HistoryLen,
		}),
		rnd: rnd,
	}
}

// Document returns the current Document.
func (s *Session) Document() meme.Document {
	return s.hist.Current()
}

// apply pushes the edited Document, unless the edit didn't change anything:
// re-applying the same value must not create undo steps which do nothing.
// Returns whether anything was pushed.
func (s *Session) apply(edit func(d meme.Document) meme.Document) bool {
	cur := s.hist.Current()
	next := edit(cur)
	if next == cur {
		return false
	}

	s.hist.Push(next)
	return true
}

func (s *Session) SetTopText(text string) bool {
	return s.apply(func(d meme.Document) meme.Document { return d.WithTopText(text) })
}

func (s *Session) SetBottomText(text string) bool {
	return s.apply(func(d meme.Document) meme.Document { return d.WithBottomText(text) })
}

// SetFontSize sets the multiplier, clamped into the valid range.
func (s *Session) SetFontSize(size float64) bool {
	return s.apply(func(d meme.Document) meme.Document { return d.WithFontSize(size) })
}

// SetTextColor validates the color first; an invalid one changes nothing.
func (s *Session) SetTextColor(c string) (bool, error) {
	if _, err := meme.ParseColor(c); err != nil {
		return false, errors.Trace(err)
	}

	return s.apply(func(d meme.Document) meme.Document { return d.WithTextColor(c) }), nil
}

func (s *Session) SetImageURL(url string) bool {
	return s.apply(func(d meme.Document) meme.Document { return d.WithImageURL(url) })
}

// ClearText empties both captions as a single undo step.
func (s *Session) ClearText() bool {
	return s.apply(func(d meme.Document) meme.Document { return d.WithoutText() })
}

// Replace makes the given Document current as a single undo step; it's used
// when the user picks one of the recent memes.
func (s *Session) Replace(doc meme.Document) bool {
	return s.apply(func(meme.Document) meme.Document { return doc.Normalized() })
}

// RandomTemplate switches the image to a random template from the catalog.
// If there's nothing to pick from, the error's cause is
// catalog.ErrNoTemplatesSelectable and the history is left untouched.
func (s *Session) RandomTemplate() (catalog.Template, error) {
	if s.params.Templates == nil {
		return catalog.Template{}, errors.Trace(catalog.ErrNoTemplatesSelectable)
	}

	t, err := s.params.Templates.Random(s.rnd)
	if err != nil {
		return catalog.Template{}, errors.Trace(err)
	}

	s.SetImageURL(t.URL)

	return t, nil
}

// Undo steps back; returns false if already at the oldest Document.
func (s *Session) Undo() bool {
	return s.hist.Undo()
}

// Redo steps forward; returns false if already at the newest Document.
func (s *Session) Redo() bool {
	return s.hist.Redo()
}

func (s *Session) CanUndo() bool {
	return s.hist.CanUndo()
}

func (s *Session) CanRedo() bool {
	return s.hist.CanRedo()
}

// HistoryPos returns the 1-based position of the current Document in the
// history, and the history length; the status line shows it like "3/7".
func (s *Session) HistoryPos() (pos, total int) {
	return s.hist.Cursor() + 1, s.hist.Len()
}
