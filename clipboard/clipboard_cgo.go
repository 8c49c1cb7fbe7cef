//go:build (darwin || linux || windows) && cgo
// +build darwin linux windows
// +build cgo

package clipboard

import (
	"github.com/juju/errors"
	"golang.design/x/clipboard"
)

// InitErr is the result of Init; nil means the clipboard works.
var InitErr error = ErrNotInitialized

func platformInit() error {
	if err := clipboard.Init(); err != nil {
		return errors.Annotatef(err, "initializing clipboard")
	}

	return nil
}

func writeText(value []byte) {
	clipboard.Write(clipboard.FmtText, value)
}

func writeImage(value []byte) {
	clipboard.Write(clipboard.FmtImage, value)
}
