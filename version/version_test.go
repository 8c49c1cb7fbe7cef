package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionFullDescr(t *testing.T) {
	descr := VersionFullDescr()

	assert.True(t, strings.HasPrefix(descr, "Memegen dev\n"), descr)
	assert.Contains(t, descr, "Commit: none\n")
	assert.Contains(t, descr, "CGO: ")
	assert.Contains(t, descr, "Clipboard support: ")
	assert.Equal(t, "dev", Version())
}
