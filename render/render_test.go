package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dimonomid/memegen/meme"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gray = color.RGBA{0x80, 0x80, 0x80, 0xff}

func newUniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func TestEffectiveFontSize(t *testing.T) {
	type testCase struct {
		width int
		mult  float64
		want  float64
	}

	testCases := []testCase{
		{width: 900, mult: 1, want: 60},
		{width: 150, mult: 1, want: 30},
		// The base is clamped by width first, and only then multiplied.
		{width: 450, mult: 2, want: 60},
		{width: 1500, mult: 2, want: 120},
		{width: 100, mult: 3, want: 90},
		{width: 600, mult: 1, want: 40},
		{width: 600, mult: 1.5, want: 60},
	}

	for _, tc := range testCases {
		assert.InDelta(t, tc.want, EffectiveFontSize(tc.width, tc.mult), 1e-9, "%+v", tc)
	}
}

func TestStrokeWidthAndMargin(t *testing.T) {
	assert.Equal(t, 2.0, StrokeWidth(12))
	assert.Equal(t, 2.5, StrokeWidth(30))
	assert.Equal(t, 5.0, StrokeWidth(60))

	assert.Equal(t, 20.0, CaptionMargin(100))
	assert.Equal(t, 20.0, CaptionMargin(400))
	assert.Equal(t, 50.0, CaptionMargin(1000))
}

// changedArea returns the bounding box of the pixels where img differs from
// src.
func changedArea(t *testing.T, src, img *image.RGBA) (image.Rectangle, bool) {
	t.Helper()

	var r image.Rectangle
	found := false

	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if src.RGBAAt(x, y) == img.RGBAAt(x, y) {
				continue
			}

			p := image.Rect(x, y, x+1, y+1)
			if !found {
				r = p
				found = true
			} else {
				r = r.Union(p)
			}
		}
	}

	return r, found
}

func hasPixel(img *image.RGBA, area image.Rectangle, c color.RGBA) bool {
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				return true
			}
		}
	}
	return false
}

func TestComposeNoCaptions(t *testing.T) {
	src := newUniform(400, 300, gray)

	doc := meme.Default().WithoutText()
	got, err := Compose(src, doc)
	require.Nil(t, err)

	assert.Equal(t, src.Bounds(), got.Bounds())
	assert.Equal(t, src.Pix, got.Pix)
}

func TestComposeTopCaption(t *testing.T) {
	src := newUniform(400, 300, gray)

	doc := meme.Default().WithTopText("hello").WithBottomText("")
	got, err := Compose(src, doc)
	require.Nil(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 300), got.Bounds())

	area, found := changedArea(t, src, got)
	require.True(t, found)

	// The top edge of the caption is right around the 20px margin, and the
	// whole caption is well within the top half.
	assert.GreaterOrEqual(t, area.Min.Y, 18)
	assert.Less(t, area.Min.Y, 45)
	assert.Less(t, area.Max.Y, 150)

	// Horizontally centered.
	left := area.Min.X
	right := 400 - area.Max.X
	assert.InDelta(t, left, right, 6)

	// Both the white fill and the black outline are there.
	assert.True(t, hasPixel(got, area, color.RGBA{0xff, 0xff, 0xff, 0xff}))
	assert.True(t, hasPixel(got, area, color.RGBA{0, 0, 0, 0xff}))
}

func TestComposeOutlineIsSolid(t *testing.T) {
	type testCase struct {
		width    int
		fontSize float64
	}

	// The first one is the smallest stroke: 2.5px at the 30px base size.
	testCases := []testCase{
		{width: 400, fontSize: 1},
		{width: 600, fontSize: 1},
		{width: 900, fontSize: 1},
		{width: 400, fontSize: 2},
	}

	black := color.RGBA{0, 0, 0, 0xff}

	for _, tc := range testCases {
		src := newUniform(tc.width, 300, gray)

		doc := meme.Default().WithTopText("hello").WithBottomText("").WithFontSize(tc.fontSize)
		got, err := Compose(src, doc)
		require.Nil(t, err)

		numBlack := 0
		for i := 0; i < len(got.Pix); i += 4 {
			if got.Pix[i] == 0 && got.Pix[i+1] == 0 && got.Pix[i+2] == 0 {
				numBlack++
			}
		}

		assert.Greater(t, numBlack, 100, "width %d, font size %v: outline pixels", tc.width, tc.fontSize)
		area, found := changedArea(t, src, got)
		require.True(t, found)
		assert.True(t, hasPixel(got, area, black))
	}
}

func TestOutline(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 20, 20))
	for y := 8; y < 12; y++ {
		for x := 8; x < 12; x++ {
			mask.SetAlpha(x, y, color.Alpha{0xff})
		}
	}
	// Partially covered column to the left.
	for y := 8; y < 12; y++ {
		mask.SetAlpha(7, y, color.Alpha{0x80})
	}

	ring := outline(mask, 2.5)

	type testCase struct {
		x, y int
		want uint8
	}

	testCases := []testCase{
		// Inside the glyph.
		{x: 9, y: 9, want: 0xff},
		// 1 and 2 px to the right of the edge.
		{x: 12, y: 9, want: 0xff},
		{x: 13, y: 9, want: 0xff},
		// 3 px away: half covered; 4 px away: nothing.
		{x: 14, y: 9, want: 0x80},
		{x: 15, y: 9, want: 0},
		// On the left, the edge is in the middle of the half covered column,
		// so the outline ends exactly at x=5.
		{x: 6, y: 9, want: 0xff},
		{x: 5, y: 9, want: 0xff},
		{x: 4, y: 9, want: 0},
		// Far away.
		{x: 0, y: 0, want: 0},
	}

	for _, tc := range testCases {
		got := ring.AlphaAt(tc.x, tc.y).A
		assert.InDelta(t, tc.want, got, 1, "(%d, %d)", tc.x, tc.y)
	}
}

func TestComposeBottomCaption(t *testing.T) {
	src := newUniform(400, 300, gray)

	doc := meme.Default().WithTopText("").WithBottomText("walk into mordor").WithTextColor("#ff0000")
	got, err := Compose(src, doc)
	require.Nil(t, err)

	area, found := changedArea(t, src, got)
	require.True(t, found)

	assert.Greater(t, area.Min.Y, 150)
	// The bottom edge of the caption box is at 300-20; uppercase letters
	// have no descenders, so the ink ends above it (plus the outline).
	assert.LessOrEqual(t, area.Max.Y, 280+2)
	assert.Greater(t, area.Max.Y, 250)

	assert.True(t, hasPixel(got, area, color.RGBA{0xff, 0, 0, 0xff}))
}

func TestComposeEmptyCaptionIsSkipped(t *testing.T) {
	src := newUniform(400, 300, gray)

	both, err := Compose(src, meme.Default().WithTopText("top").WithBottomText("bottom"))
	require.Nil(t, err)

	topOnly, err := Compose(src, meme.Default().WithTopText("top").WithBottomText(""))
	require.Nil(t, err)

	bottomOnly, err := Compose(src, meme.Default().WithTopText("").WithBottomText("bottom"))
	require.Nil(t, err)

	// Top half of "both" is the same as "top only", bottom half is the same as
	// "bottom only"; and the bottom half of "top only" is the untouched source.
	half := 150 * src.Stride
	assert.Equal(t, topOnly.Pix[:half], both.Pix[:half])
	assert.Equal(t, bottomOnly.Pix[half:], both.Pix[half:])
	assert.Equal(t, src.Pix[half:], topOnly.Pix[half:])
	assert.Equal(t, src.Pix[:half], bottomOnly.Pix[:half])
}

func TestComposeUppercases(t *testing.T) {
	src := newUniform(400, 300, gray)

	lower, err := Compose(src, meme.Default().WithTopText("meme").WithBottomText(""))
	require.Nil(t, err)

	upper, err := Compose(src, meme.Default().WithTopText("MEME").WithBottomText(""))
	require.Nil(t, err)

	assert.Equal(t, upper.Pix, lower.Pix)
}

func TestComposeFontSizeMultiplier(t *testing.T) {
	src := newUniform(600, 400, gray)

	small, err := Compose(src, meme.Default().WithTopText("abc").WithBottomText(""))
	require.Nil(t, err)

	big, err := Compose(src, meme.Default().WithTopText("abc").WithBottomText("").WithFontSize(2))
	require.Nil(t, err)

	smallArea, _ := changedArea(t, src, small)
	bigArea, _ := changedArea(t, src, big)

	assert.Greater(t, bigArea.Dx(), smallArea.Dx()*3/2)
	assert.Greater(t, bigArea.Dy(), smallArea.Dy()*3/2)
}

func TestComposeNonZeroOrigin(t *testing.T) {
	src := newUniform(200, 100, gray).SubImage(image.Rect(50, 20, 150, 80))

	got, err := Compose(src, meme.Default().WithoutText())
	require.Nil(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 60), got.Bounds())
}

func TestComposeInvalidColor(t *testing.T) {
	_, err := Compose(newUniform(10, 10, gray), meme.Default().WithTextColor("nope"))
	assert.NotNil(t, err)
}

type fakeLoader struct {
	img   image.Image
	err   error
	calls int32

	// release, if not nil, blocks Load until closed.
	release chan struct{}
}

func (l *fakeLoader) Load(ctx context.Context, location string) (image.Image, error) {
	atomic.AddInt32(&l.calls, 1)
	if l.release != nil {
		<-l.release
	}
	return l.img, l.err
}

func TestLoadAsync(t *testing.T) {
	img := newUniform(4, 4, gray)

	resCh := LoadAsync(context.Background(), &fakeLoader{img: img}, "x")
	res, ok := <-resCh
	assert.True(t, ok)
	assert.Nil(t, res.Err)
	assert.Equal(t, img, res.Image)

	_, ok = <-resCh
	assert.False(t, ok, "exactly one result is delivered")

	resCh = LoadAsync(context.Background(), &fakeLoader{err: errors.New("CORS")}, "http://x/y.png")
	res = <-resCh
	assert.Nil(t, res.Image)
	assert.Equal(t, ErrImageLoadFailed, errors.Cause(res.Err))
	assert.Contains(t, res.Err.Error(), "http://x/y.png: CORS")
}

func TestCompositorRender(t *testing.T) {
	img := newUniform(300, 200, gray)
	c := NewCompositor(CompositorParams{Loader: &fakeLoader{img: img}})

	got, err := c.Render(context.Background(), meme.Default())
	require.Nil(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())

	data, err := c.RenderPNG(context.Background(), meme.Default())
	require.Nil(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.Nil(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestCompositorRenderLoadFails(t *testing.T) {
	c := NewCompositor(CompositorParams{Loader: &fakeLoader{err: errors.New("network down")}})

	got, err := c.Render(context.Background(), meme.Default())
	assert.Nil(t, got)
	assert.Equal(t, ErrImageLoadFailed, errors.Cause(err))

	data, err := c.RenderPNG(context.Background(), meme.Default())
	assert.Nil(t, data)
	assert.Equal(t, ErrImageLoadFailed, errors.Cause(err))
}

func TestCompositorRenderCanceled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	c := NewCompositor(CompositorParams{Loader: &fakeLoader{img: newUniform(1, 1, gray), release: release}})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Render(ctx, meme.Default())
	assert.Equal(t, ErrImageLoadFailed, errors.Cause(err))
}

func TestEncodePNG(t *testing.T) {
	img := newUniform(3, 2, gray)

	data, err := EncodePNG(img)
	require.Nil(t, err)
	assert.NotEmpty(t, data)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.Nil(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), decoded.Bounds())

	_, err = EncodePNG(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.Equal(t, ErrExportEncodingFailed, errors.Cause(err))
}

func encodeTestPNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.Nil(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHTTPLoader(t *testing.T) {
	data := encodeTestPNG(t, newUniform(7, 5, gray))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/img.png":
			w.Write(data)
		case "/broken.png":
			w.Write([]byte("not an image"))
		default:
			http.Error(w, "nope", http.StatusForbidden)
		}
	}))
	defer srv.Close()

	l := NewHTTPLoader(HTTPLoaderParams{})

	img, err := l.Load(context.Background(), srv.URL+"/img.png")
	require.Nil(t, err)
	assert.Equal(t, image.Rect(0, 0, 7, 5), img.Bounds())

	_, err = l.Load(context.Background(), srv.URL+"/broken.png")
	assert.NotNil(t, err)

	_, err = l.Load(context.Background(), srv.URL+"/forbidden.png")
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "403")
	}

	fname := filepath.Join(t.TempDir(), "local.png")
	require.Nil(t, os.WriteFile(fname, data, 0644))

	img, err = l.Load(context.Background(), fname)
	require.Nil(t, err)
	assert.Equal(t, 7, img.Bounds().Dx())

	img, err = l.Load(context.Background(), "file://"+fname)
	require.Nil(t, err)
	assert.Equal(t, 5, img.Bounds().Dy())

	_, err = l.Load(context.Background(), "ftp://example.com/x.png")
	assert.NotNil(t, err)
}

func TestCachingLoaderDedupes(t *testing.T) {
	inner := &fakeLoader{img: newUniform(2, 2, gray), release: make(chan struct{})}
	l := NewCachingLoader(CachingLoaderParams{Loader: inner})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := l.Load(context.Background(), "same")
			assert.Nil(t, err)
			assert.NotNil(t, img)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))

	// Cached now.
	_, err := l.Load(context.Background(), "same")
	assert.Nil(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
}

func TestCachingLoaderEvicts(t *testing.T) {
	inner := &fakeLoader{img: newUniform(2, 2, gray)}
	l := NewCachingLoader(CachingLoaderParams{Loader: inner, Size: 2})

	for _, loc := range []string{"a", "b", "a", "c", "a", "b"} {
		_, err := l.Load(context.Background(), loc)
		require.Nil(t, err)
	}

	// a, b: miss; a: hit; c: miss (evicts b); a: hit; b: miss.
	assert.Equal(t, int32(4), atomic.LoadInt32(&inner.calls))
}

func TestCachingLoaderDoesNotCacheErrors(t *testing.T) {
	inner := &fakeLoader{err: errors.New("nope")}
	l := NewCachingLoader(CachingLoaderParams{Loader: inner})

	_, err := l.Load(context.Background(), "x")
	assert.NotNil(t, err)
	_, err = l.Load(context.Background(), "x")
	assert.NotNil(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}

func TestCachingLoaderCanceledCallerDoesNotFailOthers(t *testing.T) {
	inner := &fakeLoader{img: newUniform(2, 2, gray), release: make(chan struct{})}
	l := NewCachingLoader(CachingLoaderParams{Loader: inner})

	ctx, cancel := context.WithCancel(context.Background())

	firstErrCh := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx, "same")
		firstErrCh <- err
	}()

	// Let the first caller start the shared load.
	for atomic.LoadInt32(&inner.calls) == 0 {
		time.Sleep(time.Millisecond)
	}

	secondResCh := make(chan error, 1)
	go func() {
		img, err := l.Load(context.Background(), "same")
		if err == nil && img == nil {
			err = errors.New("no image")
		}
		secondResCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.Equal(t, context.Canceled, errors.Cause(<-firstErrCh))

	close(inner.release)
	assert.Nil(t, <-secondResCh)

	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
}
