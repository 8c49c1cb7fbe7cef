package meme

import (
	"image/color"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/juju/errors"
)

const (
	MinFontSize     = 1.0
	MaxFontSize     = 3.0
	DefaultFontSize = 1.0

	DefaultTextColor = "#ffffff"

	DefaultTopText    = "One does not simply"
	DefaultBottomText = "Walk into Mordor"
	DefaultImageURL   = "http://i.imgflip.com/1bij.jpg"
)

// Document is the complete state of a meme being edited. It's a plain value:
// the With* methods return modified copies and never touch the receiver, so
// Documents can be freely stored in histories and compared with ==.
type Document struct {
	TopText    string
	BottomText string

	// ImageURL refers to the template image; it's not owned by memegen.
	ImageURL string

	// FontSize is a multiplier in the range [MinFontSize, MaxFontSize].
	FontSize float64

	TextColor string
}

// Default returns the Document a new session starts with.
func Default() Document {
	return Document{
		TopText:    DefaultTopText,
		BottomText: DefaultBottomText,
		ImageURL:   DefaultImageURL,
		FontSize:   DefaultFontSize,
		TextColor:  DefaultTextColor,
	}
}

func (d Document) WithTopText(s string) Document {
	d.TopText = s
	return d
}

func (d Document) WithBottomText(s string) Document {
	d.BottomText = s
	return d
}

func (d Document) WithImageURL(url string) Document {
	d.ImageURL = url
	return d
}

// WithFontSize clamps the size into [MinFontSize, MaxFontSize].
func (d Document) WithFontSize(size float64) Document {
	d.FontSize = ClampFontSize(size)
	return d
}

func (d Document) WithTextColor(c string) Document {
	d.TextColor = c
	return d
}

// WithoutText clears both captions.
func (d Document) WithoutText() Document {
	d.TopText = ""
	d.BottomText = ""
	return d
}

// Normalized fills in the zero-valued style fields with defaults, so that a
// Document coming from a partial source (e.g. an old history line) is always
// fully specified.
func (d Document) Normalized() Document {
	if d.FontSize == 0 {
		d.FontSize = DefaultFontSize
	}
	d.FontSize = ClampFontSize(d.FontSize)

	if d.TextColor == "" {
		d.TextColor = DefaultTextColor
	}

	return d
}

func ClampFontSize(size float64) float64 {
	if size < MinFontSize {
		return MinFontSize
	}

	if size > MaxFontSize {
		return MaxFontSize
	}

	return size
}

// ParseColor resolves a color given as "#rgb", "#rrggbb" or as a color name
// known to tcell (e.g. "white", "yellow").
func ParseColor(s string) (color.RGBA, error) {
	tc, err := ParseTCellColor(s)
	if err != nil {
		return color.RGBA{}, errors.Trace(err)
	}

	r, g, b := tc.RGB()
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}, nil
}

// ParseTCellColor is like ParseColor, but returns the tcell color, which is
// what the terminal preview needs.
func ParseTCellColor(s string) (tcell.Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))

	// tcell only knows the full form.
	if len(name) == 4 && name[0] == '#' {
		name = string([]byte{'#', name[1], name[1], name[2], name[2], name[3], name[3]})
	}

	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return tcell.ColorDefault, errors.Errorf("invalid color %q", s)
	}

	return c.TrueColor(), nil
}
