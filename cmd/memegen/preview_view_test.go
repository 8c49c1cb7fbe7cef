package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestWrapCaption(t *testing.T) {
	type testCase struct {
		text  string
		width int
		want  []string
	}

	testCases := []testCase{
		{text: "", width: 10, want: nil},
		{text: "   ", width: 10, want: nil},
		{text: "hello", width: 0, want: nil},
		{text: "one does not simply", width: 40, want: []string{"ONE DOES NOT SIMPLY"}},
		{text: "one does not simply", width: 10, want: []string{"ONE DOES", "NOT SIMPLY"}},
		{text: "one  does\tnot", width: 8, want: []string{"ONE DOES", "NOT"}},
		{text: "supercalifragilistic", width: 8, want: []string{"SUPERCAL", "IFRAGILI", "STIC"}},
		{text: "a supercalifragilistic b", width: 8, want: []string{"A", "SUPERCAL", "IFRAGILI", "STIC B"}},
		// Wide chars take two columns each.
		{text: "日本語テキスト", width: 6, want: []string{"日本語", "テキス", "ト"}},
	}

	for _, tc := range testCases {
		got := wrapCaption(tc.text, tc.width)
		assert.Equal(t, tc.want, got, "%q at %d", tc.text, tc.width)

		for _, line := range got {
			assert.LessOrEqual(t, runewidth.StringWidth(line), tc.width, "%q", line)
		}
	}
}

func TestCaptionWrapWidth(t *testing.T) {
	assert.Equal(t, 60, captionWrapWidth(60, 1))
	assert.Equal(t, 30, captionWrapWidth(60, 2))
	assert.Equal(t, 20, captionWrapWidth(60, 3))
	assert.Equal(t, 60, captionWrapWidth(60, 0))
	assert.Equal(t, 1, captionWrapWidth(2, 3))
}

func TestFitThumbnail(t *testing.T) {
	type testCase struct {
		srcW, srcH       int
		maxCols, maxRows int
		wantCols         int
		wantRows         int
	}

	testCases := []testCase{
		// Square image in a wide area: limited by height. 20 rows is 40px.
		{srcW: 500, srcH: 500, maxCols: 100, maxRows: 20, wantCols: 40, wantRows: 20},
		// Wide image in a tall area: limited by width.
		{srcW: 800, srcH: 400, maxCols: 40, maxRows: 50, wantCols: 40, wantRows: 10},
		{srcW: 0, srcH: 400, maxCols: 40, maxRows: 50, wantCols: 0, wantRows: 0},
		{srcW: 400, srcH: 400, maxCols: 0, maxRows: 50, wantCols: 0, wantRows: 0},
		// Extremely tall image in a tiny area.
		{srcW: 1, srcH: 1000, maxCols: 10, maxRows: 1, wantCols: 0, wantRows: 0},
	}

	for _, tc := range testCases {
		cols, rows := fitThumbnail(tc.srcW, tc.srcH, tc.maxCols, tc.maxRows)
		assert.Equal(t, tc.wantCols, cols, "%+v", tc)
		assert.Equal(t, tc.wantRows, rows, "%+v", tc)
		assert.LessOrEqual(t, cols, tc.maxCols)
		assert.LessOrEqual(t, rows, tc.maxRows)
	}
}

func TestScaleThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 200, A: 255})
		}
	}

	thumb := scaleThumbnail(src, 10, 20)
	assert.Equal(t, image.Rect(0, 0, 10, 20), thumb.Bounds())
	assert.Equal(t, color.RGBA{R: 200, A: 255}, thumb.RGBAAt(5, 5))
}
