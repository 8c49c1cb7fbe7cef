// Package shellescape converts between argument lists and single-line,
// shell-compatible strings. It's used to persist Documents as
// "memegen --top ... --bottom ..." lines, and to split what the user types
// into the command line.
package shellescape

import (
	"strings"
	"unicode"

	"github.com/juju/errors"
)

// Quote returns s in a form which a POSIX shell (and Parse) reads back as a
// single word.
func Quote(s string) string {
	if s != "" && !needsQuoting(s) {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// Escape quotes every part as needed and joins them with spaces.
func Escape(parts []string) string {
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = Quote(part)
	}

	return strings.Join(quoted, " ")
}

func needsQuoting(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return false
		}

		return !strings.ContainsRune("-_./", r)
	}) >= 0
}

type quoting int

const (
	unquoted quoting = iota
	singleQuoted
	doubleQuoted
	doubleQuotedBackslash
)

// splitter keeps the state of Parse while it walks the input.
type splitter struct {
	words []string
	cur   strings.Builder

	// inWord is true once at least one char (possibly just an opening quote)
	// of the current word was seen, so that '' yields an empty word.
	inWord bool
	q      quoting
}

func (s *splitter) flush() {
	if !s.inWord {
		return
	}

	s.words = append(s.words, s.cur.String())
	s.cur.Reset()
	s.inWord = false
}

func (s *splitter) feed(r rune) {
	switch s.q {
	case unquoted:
		switch {
		case unicode.IsSpace(r):
			s.flush()
		case r == '\'':
			s.inWord = true
			s.q = singleQuoted
		case r == '"':
			s.inWord = true
			s.q = doubleQuoted
		default:
			s.inWord = true
			s.cur.WriteRune(r)
		}

	case singleQuoted:
		if r == '\'' {
			s.q = unquoted
			return
		}
		s.cur.WriteRune(r)

	case doubleQuoted:
		switch r {
		case '"':
			s.q = unquoted
		case '\\':
			s.q = doubleQuotedBackslash
		default:
			s.cur.WriteRune(r)
		}

	case doubleQuotedBackslash:
		// Inside double quotes, backslash only escapes a quote or another
		// backslash; otherwise it's literal.
		if r != '\\' && r != '"' {
			s.cur.WriteRune('\\')
		}
		s.cur.WriteRune(r)
		s.q = doubleQuoted
	}
}

// Parse splits a shell-like string into words, honoring single and double
// quotes. An unterminated quote is an error.
func Parse(shellCmd string) ([]string, error) {
	var s splitter

	for _, r := range shellCmd {
		s.feed(r)
	}

	if s.q != unquoted {
		return nil, errors.Errorf("unfinished quote")
	}

	s.flush()

	return s.words, nil
}
