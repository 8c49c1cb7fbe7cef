package meme

import (
	"strconv"

	"github.com/dimonomid/memegen/shellescape"
	"github.com/juju/errors"
)

var execName = "memegen"

// numShellParts defines how many shell parts are in the
// shell-command-marshalled form. It looks like this:
//
//	memegen --template <value> --top <value> --bottom <value> --font-size <value> --color <value>
//
// Therefore, there are 11 parts.
var numShellParts = 1 + 5*2

// MarshalShellCmd returns the Document as a memegen command which would
// render the same meme.
func (d Document) MarshalShellCmd() string {
	return shellescape.Escape(d.MarshalShellCmdParts())
}

func (d *Document) UnmarshalShellCmd(cmd string) error {
	parts, err := shellescape.Parse(cmd)
	if err != nil {
		return errors.Trace(err)
	}

	if err := d.UnmarshalShellCmdParts(parts); err != nil {
		return errors.Trace(err)
	}

	return nil
}

func (d Document) MarshalShellCmdParts() []string {
	parts := make([]string, 0, numShellParts)

	parts = append(parts, execName)
	parts = append(parts, "--template", d.ImageURL)
	parts = append(parts, "--top", d.TopText)
	parts = append(parts, "--bottom", d.BottomText)
	parts = append(parts, "--font-size", strconv.FormatFloat(d.FontSize, 'f', -1, 64))
	parts = append(parts, "--color", d.TextColor)

	return parts
}

// UnmarshalShellCmdParts unmarshals shell command parts to the receiver.
// The template is required; the style flags may be missing, in which case
// defaults are used.
func (d *Document) UnmarshalShellCmdParts(parts []string) error {
	if len(parts) == 0 || parts[0] != execName {
		return errors.Errorf("command should begin with %q", execName)
	}

	parts = parts[1:]
	if len(parts)%2 != 0 {
		return errors.Errorf("flag %q has no value", parts[len(parts)-1])
	}

	var doc Document
	templateSet := false

	for ; len(parts) >= 2; parts = parts[2:] {
		switch parts[0] {
		case "--template":
			doc.ImageURL = parts[1]
			templateSet = true
		case "--top":
			doc.TopText = parts[1]
		case "--bottom":
			doc.BottomText = parts[1]
		case "--font-size":
			fs, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return errors.Annotatef(err, "parsing --font-size")
			}
			doc.FontSize = fs
		case "--color":
			if _, err := ParseColor(parts[1]); err != nil {
				return errors.Annotatef(err, "parsing --color")
			}
			doc.TextColor = parts[1]
		default:
			return errors.Errorf("unknown flag %q", parts[0])
		}
	}

	if !templateSet {
		return errors.Errorf("--template is missing")
	}

	*d = doc.Normalized()

	return nil
}
