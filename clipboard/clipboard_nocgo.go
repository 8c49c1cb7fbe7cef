//go:build !cgo
// +build !cgo

package clipboard

import (
	"github.com/juju/errors"
)

var InitErr = errors.New("memegen was built with CGO_ENABLED=0")

// platformInit exists because clipboard.Init panics if it was built with
// CGO_ENABLED=0, but we want just an error, not a panic.
func platformInit() error {
	return InitErr
}

func writeText(value []byte) {
	// no-op
}

func writeImage(value []byte) {
	// no-op
}
