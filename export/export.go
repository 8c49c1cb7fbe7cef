// Package export turns the current Document into something that leaves the
// app: a PNG file, a PNG in the clipboard, or a share link.
package export

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dimonomid/memegen/log"
	"github.com/dimonomid/memegen/meme"
	"github.com/google/uuid"
	"github.com/juju/errors"
)

// ErrClipboardOrShareFailed means the clipboard rejected the data.
var ErrClipboardOrShareFailed = errors.New("clipboard or share failed")

// DefaultShareBaseURL is used when ExporterParams.ShareBaseURL is empty.
const DefaultShareBaseURL = "https://memegen.link/share"

// Renderer produces PNG data for a Document; *render.Compositor is one.
type Renderer interface {
	RenderPNG(ctx context.Context, doc meme.Document) ([]byte, error)
}

// Clipboard is where CopyImage and CopyLink put their results;
// clipboard.System is one.
type Clipboard interface {
	WriteText(s string) error
	WriteImage(png []byte) error
}

type Exporter struct {
	params ExporterParams

	// dirMtx guards params.Dir: downloads run in their own goroutines, while
	// the dir may be changed from the UI.
	dirMtx sync.Mutex
}

type ExporterParams struct {
	Renderer  Renderer
	Clipboard Clipboard

	// Dir is where Download writes files; the current dir if empty.
	Dir string

	ShareBaseURL string

	// SessionID identifies this run in share links; a random UUID is
	// generated if empty.
	SessionID string

	// Now is time.Now if nil.
	Now func() time.Time

	Logger *log.Logger
}

func NewExporter(params ExporterParams) *Exporter {
	if params.ShareBaseURL == "" {
		params.ShareBaseURL = DefaultShareBaseURL
	}

	if params.SessionID == "" {
		params.SessionID = uuid.New().String()
	}

	if params.Now == nil {
		params.Now = time.Now
	}

	params.Logger = params.Logger.WithNamespaceAppended("export")

	return &Exporter{
		params: params,
	}
}

// FileName returns the name a meme downloaded at the given time gets, like
// "meme-1700000000000.png".
func FileName(t time.Time) string {
	return fmt.Sprintf("meme-%d.png", t.UnixMilli())
}

func (e *Exporter) Dir() string {
	e.dirMtx.Lock()
	defer e.dirMtx.Unlock()

	return e.params.Dir
}

// SetDir changes the directory future downloads go to.
func (e *Exporter) SetDir(dir string) {
	e.dirMtx.Lock()
	defer e.dirMtx.Unlock()

	e.params.Dir = dir
}

func (e *Exporter) SessionID() string {
	return e.params.SessionID
}

// Download renders the Document and writes it as a PNG file into the export
// dir, returning the path. The file appears atomically: on any failure,
// nothing is left behind.
func (e *Exporter) Download(ctx context.Context, doc meme.Document) (string, error) {
	data, err := e.params.Renderer.RenderPNG(ctx, doc)
	if err != nil {
		return "", errors.Trace(err)
	}

	fname := filepath.Join(e.Dir(), FileName(e.params.Now()))
	if err := writeFileAtomic(fname, data); err != nil {
		return "", errors.Annotatef(err, "writing %s", fname)
	}

	e.params.Logger.Infof("Downloaded %s (%d bytes)", fname, len(data))

	return fname, nil
}

func writeFileAtomic(fname string, data []byte) error {
	tmp, err := ioutil.TempFile(filepath.Dir(fname), ".meme-*.png.tmp")
	if err != nil {
		return errors.Trace(err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Trace(err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Trace(err)
	}

	if err := os.Rename(tmpName, fname); err != nil {
		os.Remove(tmpName)
		return errors.Trace(err)
	}

	return nil
}

// CopyImage renders the Document and puts the PNG into the clipboard.
func (e *Exporter) CopyImage(ctx context.Context, doc meme.Document) error {
	data, err := e.params.Renderer.RenderPNG(ctx, doc)
	if err != nil {
		return errors.Trace(err)
	}

	if err := e.params.Clipboard.WriteImage(data); err != nil {
		return errors.Annotatef(ErrClipboardOrShareFailed, "copying image: %s", err.Error())
	}

	e.params.Logger.Infof("Copied image to clipboard (%d bytes)", len(data))

	return nil
}

// CopyLink is the fallback for when the image itself can't be copied: it
// puts a link describing the Document into the clipboard as text, and
// returns the link.
func (e *Exporter) CopyLink(doc meme.Document) (string, error) {
	link := e.ShareLink(doc)

	if err := e.params.Clipboard.WriteText(link); err != nil {
		return link, errors.Annotatef(ErrClipboardOrShareFailed, "copying link: %s", err.Error())
	}

	e.params.Logger.Infof("Copied link to clipboard: %s", link)

	return link, nil
}

// ShareLink returns the link referencing the current session and the
// Document's contents.
func (e *Exporter) ShareLink(doc meme.Document) string {
	q := url.Values{}
	q.Set("img", doc.ImageURL)
	q.Set("top", doc.TopText)
	q.Set("bottom", doc.BottomText)

	return fmt.Sprintf(
		"%s/%s?%s",
		strings.TrimSuffix(e.params.ShareBaseURL, "/"), url.PathEscape(e.params.SessionID), q.Encode(),
	)
}
