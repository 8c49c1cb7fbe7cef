package render

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"github.com/dimonomid/memegen/log"
	"github.com/dimonomid/memegen/meme"
	"github.com/juju/errors"
)

// ErrExportEncodingFailed means encoding the rendered image produced no
// data.
var ErrExportEncodingFailed = errors.New("export encoding failed")

// Compositor renders Documents into images, loading the template images
// with the given Loader.
type Compositor struct {
	params CompositorParams
}

type CompositorParams struct {
	Loader Loader
	Logger *log.Logger
}

func NewCompositor(params CompositorParams) *Compositor {
	params.Logger = params.Logger.WithNamespaceAppended("compositor")

	return &Compositor{
		params: params,
	}
}

// Render loads the Document's image and composes the captions over it. It
// waits for the load to either succeed or fail; on failure, the error's cause
// is ErrImageLoadFailed and nothing is drawn.
func (c *Compositor) Render(ctx context.Context, doc meme.Document) (*image.RGBA, error) {
	var res LoadResult
	select {
	case res = <-LoadAsync(ctx, c.params.Loader, doc.ImageURL):
	case <-ctx.Done():
		return nil, annotateLoadErr(ctx.Err(), doc.ImageURL)
	}

	if res.Err != nil {
		c.params.Logger.Errorf("Failed to load %s: %s", doc.ImageURL, res.Err.Error())
		return nil, errors.Trace(res.Err)
	}

	img, err := Compose(res.Image, doc)
	if err != nil {
		return nil, errors.Trace(err)
	}

	return img, nil
}

// RenderPNG is Render followed by EncodePNG.
func (c *Compositor) RenderPNG(ctx context.Context, doc meme.Document) ([]byte, error) {
	img, err := c.Render(ctx, doc)
	if err != nil {
		return nil, errors.Trace(err)
	}

	data, err := EncodePNG(img)
	if err != nil {
		return nil, errors.Trace(err)
	}

	return data, nil
}

// EncodePNG encodes the image as PNG. Both encoder errors and an empty
// result are reported as ErrExportEncodingFailed.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Annotatef(ErrExportEncodingFailed, "%s", err.Error())
	}

	if buf.Len() == 0 {
		return nil, errors.Trace(ErrExportEncodingFailed)
	}

	return buf.Bytes(), nil
}
