package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// optionTarget is what the :set options read and modify. Some options are
// app settings (export dir, theme), others are shortcuts for editing the
// current meme (font size, color).
type optionTarget interface {
	ExportDir() string
	SetExportDir(dir string) error

	FontSize() float64
	SetFontSize(size float64)

	TextColor() string
	SetTextColor(c string) error

	IsDark() bool
	SetDark(dark bool) error
}

type OptionMeta struct {
	// If AliasOf is non-empty, all the other fields are ignored.
	AliasOf string

	Get  func(t optionTarget) string
	Set  func(t optionTarget, value string) error
	Help string
}

const (
	themeDark  = "dark"
	themeLight = "light"
)

var AllOptions = map[string]*OptionMeta{
	"exportdir": { // {{{
		Get: func(t optionTarget) string {
			return t.ExportDir()
		},
		Set: func(t optionTarget, value string) error {
			if value == "" {
				return errors.Errorf("exportdir can't be empty")
			}

			return errors.Trace(t.SetExportDir(value))
		},
		Help: "Directory where downloaded memes are saved",
	}, // }}}
	"fontsize": { // {{{
		Get: func(t optionTarget) string {
			return strconv.FormatFloat(t.FontSize(), 'f', -1, 64)
		},
		Set: func(t optionTarget, value string) error {
			size, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return errors.Trace(err)
			}

			t.SetFontSize(size)
			return nil
		},
		Help: "Font size multiplier, from 1 to 3",
	},
	"fs": {
		AliasOf: "fontsize",
	}, // }}}
	"color": { // {{{
		Get: func(t optionTarget) string {
			return t.TextColor()
		},
		Set: func(t optionTarget, value string) error {
			return errors.Trace(t.SetTextColor(value))
		},
		Help: "Caption color, like #ffffff or yellow",
	}, // }}}
	"theme": { // {{{
		Get: func(t optionTarget) string {
			if t.IsDark() {
				return themeDark
			}
			return themeLight
		},
		Set: func(t optionTarget, value string) error {
			switch value {
			case themeDark:
				return errors.Trace(t.SetDark(true))
			case themeLight:
				return errors.Trace(t.SetDark(false))
			}

			return errors.Errorf("invalid theme %q, valid options are: %s, %s", value, themeDark, themeLight)
		},
		Help: "UI theme: dark or light",
	}, // }}}
}

func OptionMetaByName(name string) *OptionMeta {
	meta, ok := AllOptions[name]
	if !ok {
		return nil
	}

	if meta.AliasOf != "" {
		aliasOf := meta.AliasOf
		meta, ok = AllOptions[aliasOf]
		if !ok {
			// This one would mean a programmer error, so we panic here.
			panic(fmt.Sprintf("option %s is defined as an alias of non-existing option %s", name, aliasOf))
		}
	}

	if meta.AliasOf != "" {
		panic(fmt.Sprintf("option %s is defined as an alias of another alias %s", name, meta.AliasOf))
	}

	return meta
}

type optionValue struct {
	optName  string
	optValue string
}

type setOptionResult struct {
	// got is non-nil if the option was only queried, not set.
	got *optionValue
}

// setOption handles the argument of :set, which is either "name" or "name?"
// to query the value, or "name=value" to set it.
func setOption(t optionTarget, arg string) (*setOptionResult, error) {
	name, value, isSet := strings.Cut(arg, "=")
	name = strings.TrimSuffix(strings.TrimSpace(name), "?")

	meta := OptionMetaByName(name)
	if meta == nil {
		return nil, errors.Errorf("unknown option %q", name)
	}

	if !isSet {
		return &setOptionResult{
			got: &optionValue{
				optName:  name,
				optValue: meta.Get(t),
			},
		}, nil
	}

	if err := meta.Set(t, strings.TrimSpace(value)); err != nil {
		return nil, errors.Annotatef(err, "setting %s", name)
	}

	return &setOptionResult{}, nil
}

// optionsHelp returns one line per option (aliases excluded), sorted.
func optionsHelp() string {
	names := make([]string, 0, len(AllOptions))
	for name, meta := range AllOptions {
		if meta.AliasOf == "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("  %-10s %s\n", name, AllOptions[name].Help))
	}

	return sb.String()
}
