// Package build holds version information stamped in at link time, e.g.
// -ldflags "-X github.com/mistral-io/phaseanalysis/internal/common/build.ReleaseVersion=v1.2.0".
package build

import "runtime"

var (
	ReleaseVersion = "UNKNOWN"
	GitCommit      = "UNKNOWN"
	BuildTime      = "UNKNOWN"
	GoVersion      = runtime.Version()
)
