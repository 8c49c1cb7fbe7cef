// Package theme keeps the light/dark preference and the colors the UI uses
// for each.
package theme

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/dimonomid/memegen/kvstore"
	"github.com/gdamore/tcell/v2"
	"github.com/juju/errors"
)

// StoreKey is the kvstore key the preference is persisted under.
const StoreKey = "theme"

const (
	valueDark  = "dark"
	valueLight = "light"
)

type Theme struct {
	params ThemeParams

	mtx    sync.Mutex
	isDark bool
}

type ThemeParams struct {
	Store kvstore.Store

	// Getenv is os.Getenv if nil; it's only used to detect the system
	// preference when nothing is persisted yet.
	Getenv func(key string) string
}

// New returns the persisted theme if any, or the system preference
// otherwise.
func New(params ThemeParams) (*Theme, error) {
	if params.Getenv == nil {
		params.Getenv = os.Getenv
	}

	t := &Theme{
		params: params,
	}

	v, ok, err := params.Store.Get(StoreKey)
	if err != nil {
		return nil, errors.Annotatef(err, "getting %s", StoreKey)
	}

	if ok && (v == valueDark || v == valueLight) {
		t.isDark = v == valueDark
	} else {
		t.isDark = systemPrefersDark(params.Getenv)
	}

	return t, nil
}

func (t *Theme) IsDark() bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return t.isDark
}

// Toggle switches between dark and light, persists the new preference and
// returns whether it's dark now. If persisting fails, the theme is switched
// anyway and the error is returned.
func (t *Theme) Toggle() (bool, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.isDark = !t.isDark

	v := valueLight
	if t.isDark {
		v = valueDark
	}

	if err := t.params.Store.Set(StoreKey, v); err != nil {
		return t.isDark, errors.Annotatef(err, "setting %s", StoreKey)
	}

	return t.isDark, nil
}

// systemPrefersDark looks at COLORFGBG, which many terminals set as
// "<fg>;<bg>" (sometimes "<fg>;<default>;<bg>"); background colors 0-6 and 8
// are dark. Without the variable, we assume dark, which is what most
// terminals are.
func systemPrefersDark(getenv func(string) string) bool {
	v := getenv("COLORFGBG")
	if v == "" {
		return true
	}

	parts := strings.Split(v, ";")
	bg, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return true
	}

	return bg < 7 || bg == 8
}

// Palette is the set of colors the UI is painted with.
type Palette struct {
	Background tcell.Color
	Foreground tcell.Color
	Border     tcell.Color
	Title      tcell.Color

	// Accent is used for the focused elements and the status line.
	Accent tcell.Color

	FieldBackground tcell.Color
	Error           tcell.Color
}

var (
	darkPalette = Palette{
		Background:      tcell.ColorBlack,
		Foreground:      tcell.ColorWhite,
		Border:          tcell.ColorGray,
		Title:           tcell.ColorYellow,
		Accent:          tcell.ColorLightSkyBlue,
		FieldBackground: tcell.ColorDarkSlateGray,
		Error:           tcell.ColorRed,
	}

	lightPalette = Palette{
		Background:      tcell.ColorWhite,
		Foreground:      tcell.ColorBlack,
		Border:          tcell.ColorDarkGray,
		Title:           tcell.ColorNavy,
		Accent:          tcell.ColorBlue,
		FieldBackground: tcell.ColorLightGray,
		Error:           tcell.ColorDarkRed,
	}
)

func (t *Theme) Palette() Palette {
	if t.IsDark() {
		return darkPalette
	}

	return lightPalette
}
