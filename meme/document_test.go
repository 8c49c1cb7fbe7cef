package meme

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentEditsAreCopies(t *testing.T) {
	orig := Default()

	edited := orig.
		WithTopText("top").
		WithBottomText("bottom").
		WithImageURL("http://example.com/a.png").
		WithFontSize(2).
		WithTextColor("#ff0000")

	assert.Equal(t, Default(), orig)
	assert.Equal(t, Document{
		TopText:    "top",
		BottomText: "bottom",
		ImageURL:   "http://example.com/a.png",
		FontSize:   2,
		TextColor:  "#ff0000",
	}, edited)

	cleared := edited.WithoutText()
	assert.Equal(t, "", cleared.TopText)
	assert.Equal(t, "", cleared.BottomText)
	assert.Equal(t, "top", edited.TopText)
}

func TestClampFontSize(t *testing.T) {
	assert.Equal(t, 1.0, ClampFontSize(0.2))
	assert.Equal(t, 1.0, ClampFontSize(1))
	assert.Equal(t, 1.7, ClampFontSize(1.7))
	assert.Equal(t, 3.0, ClampFontSize(3))
	assert.Equal(t, 3.0, ClampFontSize(10))

	assert.Equal(t, 3.0, Default().WithFontSize(4).FontSize)
}

func TestParseColor(t *testing.T) {
	type testCase struct {
		in      string
		want    color.RGBA
		wantErr bool
	}

	testCases := []testCase{
		{in: "#ffffff", want: color.RGBA{0xff, 0xff, 0xff, 0xff}},
		{in: "#FF0000", want: color.RGBA{0xff, 0, 0, 0xff}},
		{in: "#0f0", want: color.RGBA{0, 0xff, 0, 0xff}},
		{in: " #102030 ", want: color.RGBA{0x10, 0x20, 0x30, 0xff}},
		{in: "black", want: color.RGBA{0, 0, 0, 0xff}},
		{in: "white", want: color.RGBA{0xff, 0xff, 0xff, 0xff}},
		{in: "#12345", wantErr: true},
		{in: "#zzzzzz", wantErr: true},
		{in: "notacolor", wantErr: true},
		{in: "", wantErr: true},
	}

	for i, tc := range testCases {
		got, err := ParseColor(tc.in)
		if tc.wantErr {
			assert.NotNil(t, err, "testCase #%d %q", i, tc.in)
			continue
		}

		assert.Nil(t, err, "testCase #%d %q", i, tc.in)
		assert.Equal(t, tc.want, got, "testCase #%d %q", i, tc.in)
	}
}

func TestShellCmdRoundTrip(t *testing.T) {
	docs := []Document{
		Default(),
		{
			TopText:    "it's \"quoted\"",
			BottomText: "",
			ImageURL:   "https://i.imgflip.com/30b1gx.jpg",
			FontSize:   2.5,
			TextColor:  "yellow",
		},
	}

	for i, doc := range docs {
		cmd := doc.MarshalShellCmd()

		var got Document
		assert.Nil(t, got.UnmarshalShellCmd(cmd), "doc #%d: %s", i, cmd)
		assert.Equal(t, doc, got, "doc #%d: %s", i, cmd)
	}
}

func TestMarshalShellCmd(t *testing.T) {
	assert.Equal(
		t,
		`memegen --template 'http://i.imgflip.com/1bij.jpg' --top 'One does not simply' --bottom 'Walk into Mordor' --font-size 1 --color '#ffffff'`,
		Default().MarshalShellCmd(),
	)
}

func TestUnmarshalShellCmdErrors(t *testing.T) {
	testCases := []struct {
		cmd     string
		wantErr string
	}{
		{cmd: `convert --template x`, wantErr: `command should begin with "memegen"`},
		{cmd: `memegen --top foo`, wantErr: `--template is missing`},
		{cmd: `memegen --template x --top`, wantErr: `flag "--top" has no value`},
		{cmd: `memegen --template x --what y`, wantErr: `unknown flag "--what"`},
		{cmd: `memegen --template x --color nope`, wantErr: `parsing --color: invalid color "nope"`},
	}

	for _, tc := range testCases {
		var d Document
		err := d.UnmarshalShellCmd(tc.cmd)
		if assert.NotNil(t, err, tc.cmd) {
			assert.Equal(t, tc.wantErr, err.Error(), tc.cmd)
		}
	}
}

func TestUnmarshalShellCmdDefaults(t *testing.T) {
	var d Document
	assert.Nil(t, d.UnmarshalShellCmd(`memegen --template foo.png --top hi --font-size 7`))
	assert.Equal(t, Document{
		TopText:   "hi",
		ImageURL:  "foo.png",
		FontSize:  MaxFontSize,
		TextColor: DefaultTextColor,
	}, d)
}
