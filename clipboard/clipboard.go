// Package clipboard wraps golang.design/x/clipboard, which needs cgo and
// only supports Linux, MacOS and Windows; on other builds, all writes fail
// with InitErr.
package clipboard

import "github.com/juju/errors"

// ErrNotInitialized is returned by writes before Init was called.
var ErrNotInitialized = errors.New("clipboard is not initialized")

// System is the system clipboard. The zero value is ready to use, but Init
// must be called once before any writes succeed.
type System struct{}

func (System) WriteText(s string) error {
	if err := initErr(); err != nil {
		return errors.Trace(err)
	}

	writeText([]byte(s))
	return nil
}

// WriteImage puts PNG-encoded image data to the clipboard.
func (System) WriteImage(png []byte) error {
	if err := initErr(); err != nil {
		return errors.Trace(err)
	}

	if len(png) == 0 {
		return errors.New("empty image")
	}

	writeImage(png)
	return nil
}

func initErr() error {
	if !initialized {
		return ErrNotInitialized
	}

	return InitErr
}

var initialized bool

// Init initializes the clipboard; it must be called once on startup, before
// any other goroutines use the clipboard. The result is also stored in
// InitErr.
func Init() error {
	InitErr = platformInit()
	initialized = true

	return InitErr
}
