package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/dimonomid/memegen/clipboard"
)

// These are being replaced with the actual values using ldflags, e.g.
// -X github.com/dimonomid/memegen/version.version=v1.0.0
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Version returns just the version string, e.g. "v1.0.0" or "dev".
func Version() string {
	return version
}

// VersionFullDescr returns the full version description, printed at
// --version and :version
func VersionFullDescr() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Memegen %s\n", version))
	sb.WriteString(fmt.Sprintf("Commit: %s\n", commit))
	sb.WriteString(fmt.Sprintf("Build time: %s\n", date))
	sb.WriteString(fmt.Sprintf("Built by: %s\n", builtBy))
	sb.WriteString(fmt.Sprintf("GOOS: %s\n", runtime.GOOS))
	sb.WriteString(fmt.Sprintf("Go: %s\n", runtime.Version()))
	if cgoEnabled {
		sb.WriteString("CGO: enabled\n")
	} else {
		sb.WriteString("CGO: disabled\n")
	}
	if clipboard.InitErr == nil {
		sb.WriteString("Clipboard support: yes\n")
	} else {
		sb.WriteString(fmt.Sprintf("Clipboard support: no (%s)\n", clipboard.InitErr.Error()))
	}

	return sb.String()
}
