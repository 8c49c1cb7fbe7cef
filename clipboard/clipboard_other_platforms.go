//go:build !darwin && !linux && !windows && cgo
// +build !darwin,!linux,!windows,cgo

package clipboard

import (
	"github.com/juju/errors"
)

var InitErr = errors.New("clipboard is only supported on Linux, MacOS and Windows")

func platformInit() error {
	return InitErr
}

// writeText and writeImage exist so that we can avoid compiling the real
// clipboard on unsupported platforms (e.g. FreeBSD) and still have memegen
// working (without clipboard support).
func writeText(value []byte) {
	// no-op
}

func writeImage(value []byte) {
	// no-op
}
