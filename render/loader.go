package render

import (
	"context"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/dimonomid/memegen/log"
	"github.com/dimonomid/memegen/util/capped"
	"github.com/juju/errors"
	"golang.org/x/sync/singleflight"

	// Image formats the templates come in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrImageLoadFailed means the template image could not be fetched or
// decoded.
var ErrImageLoadFailed = errors.New("image load failed")

// maxImageSize caps how much we read from a single image source.
const maxImageSize = 32 << 20

type Loader interface {
	Load(ctx context.Context, location string) (image.Image, error)
}

// LoadResult is the outcome of an asynchronous load: exactly one of Image and
// Err is set.
type LoadResult struct {
	Image image.Image
	Err   error
}

// LoadAsync starts loading the image and returns a channel which receives
// exactly one LoadResult and is then closed. Failures are annotated
// ErrImageLoadFailed.
func LoadAsync(ctx context.Context, loader Loader, location string) <-chan LoadResult {
	resCh := make(chan LoadResult, 1)

	go func() {
		defer close(resCh)

		img, err := loader.Load(ctx, location)
		if err != nil {
			resCh <- LoadResult{Err: annotateLoadErr(err, location)}
			return
		}

		resCh <- LoadResult{Image: img}
	}()

	return resCh
}

func annotateLoadErr(err error, location string) error {
	if errors.Cause(err) == ErrImageLoadFailed {
		return err
	}

	return errors.Annotatef(ErrImageLoadFailed, "%s: %s", location, err.Error())
}

// HTTPLoader loads images from http(s) URLs, file:// URLs and plain file
// paths.
type HTTPLoader struct {
	params HTTPLoaderParams
}

type HTTPLoaderParams struct {
	// Client is http.DefaultClient if nil.
	Client *http.Client

	Logger *log.Logger
}

func NewHTTPLoader(params HTTPLoaderParams) *HTTPLoader {
	if params.Client == nil {
		params.Client = http.DefaultClient
	}

	params.Logger = params.Logger.WithNamespaceAppended("loader")

	return &HTTPLoader{
		params: params,
	}
}

func (l *HTTPLoader) Load(ctx context.Context, location string) (image.Image, error) {
	l.params.Logger.Verbose1f("Loading %s", location)

	rc, err := l.open(ctx, location)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rc.Close()

	img, format, err := image.Decode(io.LimitReader(rc, maxImageSize))
	if err != nil {
		return nil, errors.Annotatef(err, "decoding %s", location)
	}

	l.params.Logger.Verbose2f("Loaded %s: %s %dx%d", location, format, img.Bounds().Dx(), img.Bounds().Dy())

	return img, nil
}

func (l *HTTPLoader) open(ctx context.Context, location string) (io.ReadCloser, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" {
		return os.Open(location)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, errors.Trace(err)
		}

		resp, err := l.params.Client.Do(req)
		if err != nil {
			return nil, errors.Trace(err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, errors.Errorf("fetching %s: %s", location, resp.Status)
		}

		return resp.Body, nil

	case "file":
		return os.Open(u.Path)

	default:
		return nil, errors.Errorf("unsupported scheme %q", u.Scheme)
	}
}

// CachingLoader wraps another Loader: concurrent loads of the same location
// share one underlying load, and the last few images are kept in memory (the
// preview and the export usually want the same image).
type CachingLoader struct {
	params CachingLoaderParams

	group singleflight.Group

	mtx sync.Mutex
	// recent is ordered from the least to the most recently used.
	recent []cachedImage
}

type CachingLoaderParams struct {
	Loader Loader

	// Size is how many images to keep; 8 if zero.
	Size int
}

type cachedImage struct {
	location string
	img      image.Image
}

func NewCachingLoader(params CachingLoaderParams) *CachingLoader {
	if params.Size <= 0 {
		params.Size = 8
	}

	return &CachingLoader{
		params: params,
	}
}

func (l *CachingLoader) Load(ctx context.Context, location string) (image.Image, error) {
	if img, ok := l.get(location); ok {
		return img, nil
	}

	// The shared load must not depend on whichever caller started it: it
	// keeps going until the inner loader is done, and every caller only stops
	// waiting when its own ctx is done.
	loadCtx := context.WithoutCancel(ctx)

	resCh := l.group.DoChan(location, func() (interface{}, error) {
		img, err := l.params.Loader.Load(loadCtx, location)
		if err != nil {
			return nil, errors.Trace(err)
		}

		l.put(location, img)
		return img, nil
	})

	select {
	case res := <-resCh:
		if res.Err != nil {
			return nil, errors.Trace(res.Err)
		}

		return res.Val.(image.Image), nil

	case <-ctx.Done():
		return nil, errors.Trace(ctx.Err())
	}
}

func (l *CachingLoader) get(location string) (image.Image, bool) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	for i, ci := range l.recent {
		if ci.location == location {
			l.recent = append(append(l.recent[:i:i], l.recent[i+1:]...), ci)
			return ci.img, true
		}
	}

	return nil, false
}

func (l *CachingLoader) put(location string, img image.Image) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	for i, ci := range l.recent {
		if ci.location == location {
			l.recent = append(l.recent[:i:i], l.recent[i+1:]...)
			break
		}
	}

	l.recent = append(l.recent, cachedImage{location: location, img: img})
	l.recent, _ = capped.KeepLast(l.recent, l.params.Size)
}
