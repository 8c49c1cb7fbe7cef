package shellescape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	type testCase struct {
		in      string
		want    []string
		wantErr string
	}

	testCases := []testCase{
		{in: ``, want: nil},
		{in: `   `, want: nil},
		{in: `top One does not simply`, want: []string{`top`, `One`, `does`, `not`, `simply`}},
		{in: `  top    'One does'  `, want: []string{`top`, `One does`}},
		{in: `top 'One does'not`, want: []string{`top`, `One doesnot`}},
		{in: `top 'Walk in'"to  Mor"dor`, want: []string{`top`, `Walk into  Mordor`}},
		{in: `color "#ff0000"`, want: []string{`color`, `#ff0000`}},
		{in: `top ''`, want: []string{`top`, ``}},
		{in: `top "say \"cheese\""`, want: []string{`top`, `say "cheese"`}},
		{in: `top "back \\ slash"`, want: []string{`top`, `back \ slash`}},
		{in: `top "keep \n literal"`, want: []string{`top`, `keep \n literal`}},
		{in: `top 'no \" escapes here'`, want: []string{`top`, `no \" escapes here`}},
		{in: `'it'"'"'s fine'`, want: []string{`it's fine`}},

		{in: `top "One does`, wantErr: "unfinished quote"},
		{in: `top 'One does`, wantErr: "unfinished quote"},
	}

	for i, tc := range testCases {
		got, err := Parse(tc.in)

		if tc.wantErr != "" {
			assert.Nil(t, got, "testCase #%d %q", i, tc.in)
			if assert.NotNil(t, err, "testCase #%d %q", i, tc.in) {
				assert.Equal(t, tc.wantErr, err.Error(), "testCase #%d %q", i, tc.in)
			}
			continue
		}

		assert.Nil(t, err, "testCase #%d %q", i, tc.in)
		assert.Equal(t, tc.want, got, "testCase #%d %q", i, tc.in)
	}
}

func TestEscape(t *testing.T) {
	type testCase struct {
		parts []string
		want  string
	}

	testCases := []testCase{
		{parts: nil, want: ""},
		{parts: []string{`memegen`, `--font-size`, `1.5`}, want: `memegen --font-size 1.5`},
		{parts: []string{`--top`, `One does not simply`}, want: `--top 'One does not simply'`},
		{parts: []string{`--top`, ``}, want: `--top ''`},
		{parts: []string{`--color`, `#ffffff`}, want: `--color '#ffffff'`},
		{parts: []string{`--top`, `it's`}, want: `--top 'it'"'"'s'`},
		{parts: []string{`--template`, `http://i.imgflip.com/1bij.jpg`}, want: `--template 'http://i.imgflip.com/1bij.jpg'`},
	}

	for i, tc := range testCases {
		got := Escape(tc.parts)
		assert.Equal(t, tc.want, got, "testCase #%d %q", i, tc.parts)

		// Whatever we escape must parse back into the same parts.
		parsed, err := Parse(got)
		assert.Nil(t, err, "testCase #%d %q", i, tc.parts)
		assert.Equal(t, tc.parts, parsed, "testCase #%d %q", i, tc.parts)
	}
}
