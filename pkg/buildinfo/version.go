// Package buildinfo holds version metadata stamped in at link time:
//
//	go build -ldflags "\
//	    -X github.com/wit-platform/witpanel/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/wit-platform/witpanel/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/wit-platform/witpanel/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/witpanel
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template is the cobra version template. Cobra fills in the command name.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, built %s)\n", Version, Commit, Date)
}
