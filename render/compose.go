package render

import (
	"image"
	"image/color"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/dimonomid/memegen/meme"
	"github.com/juju/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	minBaseFontSize = 30
	maxBaseFontSize = 60

	minCaptionMargin = 20
	minStrokeWidth   = 2
)

var strokeColor = color.RGBA{A: 0xff}

// EffectiveFontSize returns the caption font size in pixels: proportional to
// the image width, clamped to [30, 60], and then scaled by the Document's
// multiplier.
func EffectiveFontSize(imageWidth int, multiplier float64) float64 {
	base := float64(imageWidth) / 15
	base = math.Max(minBaseFontSize, math.Min(base, maxBaseFontSize))

	return base * multiplier
}

// StrokeWidth returns the outline width for the given font size.
func StrokeWidth(fontSize float64) float64 {
	return math.Max(minStrokeWidth, fontSize/12)
}

// CaptionMargin returns the distance between a caption and the top or bottom
// edge of the image.
func CaptionMargin(imageHeight int) float64 {
	return math.Max(minCaptionMargin, float64(imageHeight)*0.05)
}

var (
	captionFont     *opentype.Font
	captionFontErr  error
	captionFontOnce sync.Once
)

func getCaptionFont() (*opentype.Font, error) {
	captionFontOnce.Do(func() {
		captionFont, captionFontErr = opentype.Parse(gobold.TTF)
	})

	return captionFont, captionFontErr
}

type verticalAlign int

const (
	alignTop verticalAlign = iota
	alignBottom
)

// Compose draws the Document's captions over the source image and returns
// the result, which always has the same size as the source. Empty captions
// are not drawn at all.
func Compose(src image.Image, doc meme.Document) (*image.RGBA, error) {
	b := src.Bounds()
	width, height := b.Dx(), b.Dy()

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	if doc.TopText == "" && doc.BottomText == "" {
		return dst, nil
	}

	fill, err := meme.ParseColor(doc.TextColor)
	if err != nil {
		return nil, errors.Annotatef(err, "text color")
	}

	f, err := getCaptionFont()
	if err != nil {
		return nil, errors.Annotatef(err, "parsing caption font")
	}

	fontSize := EffectiveFontSize(width, doc.FontSize)
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, errors.Annotatef(err, "creating font face")
	}
	defer face.Close()

	c := caption{
		face:   face,
		stroke: StrokeWidth(fontSize),
		fill:   fill,
		x:      float64(width) / 2,
	}

	margin := CaptionMargin(height)

	if doc.TopText != "" {
		c.draw(dst, strings.ToUpper(doc.TopText), margin, alignTop)
	}

	if doc.BottomText != "" {
		c.draw(dst, strings.ToUpper(doc.BottomText), float64(height)-margin, alignBottom)
	}

	return dst, nil
}

type caption struct {
	face   font.Face
	stroke float64
	fill   color.Color

	// x is the horizontal center.
	x float64
}

// draw renders the text centered at c.x, with its top (alignTop) or bottom
// (alignBottom) edge at y: first the black outline, then the fill.
func (c *caption) draw(dst *image.RGBA, text string, y float64, align verticalAlign) {
	metrics := c.face.Metrics()
	advance := font.MeasureString(c.face, text)

	var baseline fixed.Int26_6
	switch align {
	case alignTop:
		baseline = toFixed(y) + metrics.Ascent
	case alignBottom:
		baseline = toFixed(y) - metrics.Descent
	}

	dot := fixed.Point26_6{
		X: toFixed(c.x) - advance/2,
		Y: baseline,
	}

	bounds, _ := font.BoundString(c.face, text)
	pad := int(math.Ceil(c.stroke)) + 2

	area := image.Rect(
		(dot.X+bounds.Min.X).Floor()-pad,
		(dot.Y+bounds.Min.Y).Floor()-pad,
		(dot.X+bounds.Max.X).Ceil()+pad,
		(dot.Y+bounds.Max.Y).Ceil()+pad,
	).Intersect(dst.Bounds())
	if area.Empty() {
		return
	}

	glyphs := image.NewAlpha(area)
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.Opaque,
		Face: c.face,
		Dot:  dot,
	}
	d.DrawString(text)

	ring := outline(glyphs, c.stroke)

	draw.DrawMask(dst, area, image.NewUniform(strokeColor), image.Point{}, ring, area.Min, draw.Over)
	draw.DrawMask(dst, area, image.NewUniform(c.fill), image.Point{}, glyphs, area.Min, draw.Over)
}

// outline returns the mask of the caption outline: everything within width
// pixels from the glyphs. The distance from a pixel to the glyph edge is
// estimated from the coverage of the glyph pixels around it, so the outer edge
// of the outline is antialiased, and pixels within width of a fully covered
// glyph pixel are opaque.
//
// Since the fill is drawn over the outline, only the part outside of the
// glyphs is visible, and it's width pixels wide.
func outline(mask *image.Alpha, width float64) *image.Alpha {
	r := int(math.Ceil(width)) + 1

	type offset struct {
		dx, dy int
		dist   float64
	}

	var offsets []offset
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			dist := math.Hypot(float64(dx), float64(dy))
			if dist < width+1 {
				offsets = append(offsets, offset{dx, dy, dist})
			}
		}
	}

	// Nearest first, so that the loop below can stop early on opaque pixels.
	sort.Slice(offsets, func(i, j int) bool {
		return offsets[i].dist < offsets[j].dist
	})

	b := mask.Bounds()
	ret := image.NewAlpha(b)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var cov float64
			for _, o := range offsets {
				sx, sy := x+o.dx, y+o.dy
				if sx < b.Min.X || sx >= b.Max.X || sy < b.Min.Y || sy >= b.Max.Y {
					continue
				}

				a := mask.Pix[mask.PixOffset(sx, sy)]
				if a == 0 {
					continue
				}

				// A pixel with coverage a has the glyph edge roughly (1-a)
				// pixels away from its far side.
				if v := width + float64(a)/0xff - o.dist; v > cov {
					cov = v
					if cov >= 1 {
						break
					}
				}
			}

			ret.Pix[ret.PixOffset(x, y)] = uint8(math.Min(cov, 1)*0xff + 0.5)
		}
	}

	return ret
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
