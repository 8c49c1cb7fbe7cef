package main

import (
	"image"
	"image/color"
	"strings"

	"github.com/dimonomid/memegen/meme"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"
	"github.com/rivo/uniseg"
	"golang.org/x/image/draw"
)

type previewStatus int

const (
	previewLoading previewStatus = iota
	previewReady
	previewFailed
)

// PreviewView draws a thumbnail of the template with half-block characters
// (every cell is two pixels, one above the other) and the captions over it.
// It's only an approximation of the real render: the captions are plain
// terminal text, and the font size only affects how narrow they wrap.
type PreviewView struct {
	*tview.Box

	doc meme.Document

	status previewStatus
	errMsg string
	img    image.Image

	// thumb is the img scaled for the last drawn size; it's regenerated
	// whenever the size or the image changes.
	thumb             *image.RGBA
	thumbW, thumbRows int
}

func NewPreviewView() *PreviewView {
	return &PreviewView{
		Box: tview.NewBox(),
	}
}

func (pv *PreviewView) SetDocument(doc meme.Document) *PreviewView {
	pv.doc = doc
	return pv
}

// SetLoading makes the preview show that the image for the current
// Document is being loaded.
func (pv *PreviewView) SetLoading() *PreviewView {
	pv.status = previewLoading
	pv.img = nil
	pv.thumb = nil
	return pv
}

func (pv *PreviewView) SetImage(img image.Image) *PreviewView {
	pv.status = previewReady
	pv.img = img
	pv.thumb = nil
	return pv
}

func (pv *PreviewView) SetFailed(msg string) *PreviewView {
	pv.status = previewFailed
	pv.errMsg = msg
	pv.img = nil
	pv.thumb = nil
	return pv
}

func (pv *PreviewView) Draw(screen tcell.Screen) {
	pv.Box.DrawForSubclass(screen, pv)
	x, y, width, height := pv.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}

	switch pv.status {
	case previewLoading:
		tview.Print(screen, "Loading image ...", x, y+height/2, width, tview.AlignCenter, tcell.ColorYellow)
		return
	case previewFailed:
		tview.Print(screen, tview.Escape(pv.errMsg), x, y+height/2, width, tview.AlignCenter, tcell.ColorRed)
		return
	}

	cols, rows := fitThumbnail(pv.img.Bounds().Dx(), pv.img.Bounds().Dy(), width, height)
	if cols <= 0 || rows <= 0 {
		return
	}

	if pv.thumb == nil || pv.thumbW != cols || pv.thumbRows != rows {
		pv.thumb = scaleThumbnail(pv.img, cols, rows*2)
		pv.thumbW, pv.thumbRows = cols, rows
	}

	offX := x + (width-cols)/2
	offY := y + (height-rows)/2

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			upper := toTCellColor(pv.thumb.RGBAAt(col, row*2))
			lower := toTCellColor(pv.thumb.RGBAAt(col, row*2+1))
			style := tcell.StyleDefault.Foreground(upper).Background(lower)
			screen.SetContent(offX+col, offY+row, '▀', nil, style)
		}
	}

	pv.drawCaptions(screen, offX, offY, cols, rows)
}

func (pv *PreviewView) drawCaptions(screen tcell.Screen, x, y, cols, rows int) {
	fg, err := meme.ParseTCellColor(pv.doc.TextColor)
	if err != nil {
		fg = tcell.ColorWhite
	}

	style := tcell.StyleDefault.Foreground(fg).Background(tcell.ColorBlack).Bold(true)
	wrapWidth := captionWrapWidth(cols, pv.doc.FontSize)

	top := wrapCaption(pv.doc.TopText, wrapWidth)
	bottom := wrapCaption(pv.doc.BottomText, wrapWidth)

	// Leave the same margin as the real render does, roughly: one row.
	margin := 0
	if rows > len(top)+len(bottom)+2 {
		margin = 1
	}

	for i, line := range top {
		if i+margin >= rows {
			break
		}
		printCentered(screen, line, x, y+margin+i, cols, style)
	}

	for i, line := range bottom {
		row := rows - margin - len(bottom) + i
		if row < 0 {
			continue
		}
		printCentered(screen, line, x, y+row, cols, style)
	}
}

func printCentered(screen tcell.Screen, line string, x, y, width int, style tcell.Style) {
	lineWidth := runewidth.StringWidth(line)
	cx := x + (width-lineWidth)/2

	gr := uniseg.NewGraphemes(line)
	for gr.Next() {
		runes := gr.Runes()
		screen.SetContent(cx, y, runes[0], runes[1:], style)
		cx += runewidth.StringWidth(gr.Str())
	}
}

// fitThumbnail returns the size in cells of the largest thumbnail of an
// srcW x srcH image which fits into maxCols x maxRows cells, keeping the
// aspect ratio. Every cell is 1 pixel wide and 2 pixels high.
func fitThumbnail(srcW, srcH, maxCols, maxRows int) (cols, rows int) {
	if srcW <= 0 || srcH <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}

	// Try to use the full width first; if it's too tall, use the full height.
	cols = maxCols
	pixH := cols * srcH / srcW
	if (pixH+1)/2 > maxRows {
		pixH = maxRows * 2
		cols = pixH * srcW / srcH
	}

	rows = (pixH + 1) / 2
	if cols < 1 || rows < 1 {
		return 0, 0
	}

	return cols, rows
}

func scaleThumbnail(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func toTCellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// captionWrapWidth is how wide the captions can be in the preview: the
// bigger the font, the fewer chars fit in a line.
func captionWrapWidth(cols int, fontSize float64) int {
	if fontSize < meme.MinFontSize {
		fontSize = meme.MinFontSize
	}

	w := int(float64(cols) / fontSize)
	if w < 1 {
		w = 1
	}

	return w
}

// wrapCaption upper-cases the text (like the real render does) and splits it
// into lines of at most width terminal columns, breaking at spaces where
// possible and inside words (at grapheme boundaries) when a word is too long.
func wrapCaption(text string, width int) []string {
	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" || width <= 0 {
		return nil
	}

	var lines []string
	var cur strings.Builder
	curWidth := 0

	flush := func() {
		if cur.Len() > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
	}

	for _, word := range strings.Fields(text) {
		wordWidth := runewidth.StringWidth(word)

		if curWidth > 0 && curWidth+1+wordWidth <= width {
			cur.WriteByte(' ')
			cur.WriteString(word)
			curWidth += 1 + wordWidth
			continue
		}

		flush()

		if wordWidth <= width {
			cur.WriteString(word)
			curWidth = wordWidth
			continue
		}

		// The word alone doesn't fit, so break it.
		gr := uniseg.NewGraphemes(word)
		for gr.Next() {
			g := gr.Str()
			gw := runewidth.StringWidth(g)
			if curWidth+gw > width && curWidth > 0 {
				flush()
			}
			cur.WriteString(g)
			curWidth += gw
		}
	}

	flush()

	return lines
}
