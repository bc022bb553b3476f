// Package version holds build information injected through ldflags.
package version

import (
	"fmt"
	"runtime"

	"github.com/aatumaykin/nexsched/internal/constants"
)

var (
	Version   = constants.DefaultVersion
	BuildTime = constants.DefaultBuildTime
	GitCommit = constants.DefaultGitCommit
	GoVersion = constants.DefaultGoVersion
)

// SetInfo overrides build information. Empty values keep the current ones.
func SetInfo(v, bt, gc, gv string) {
	if v != "" {
		Version = v
	}
	if bt != "" {
		BuildTime = bt
	}
	if gc != "" {
		GitCommit = gc
	}
	if gv != "" {
		GoVersion = gv
	}
}

// Format renders the multi-line output of "nexsched version".
func Format() string {
	goVersion := GoVersion
	if goVersion == constants.DefaultGoVersion {
		goVersion = runtime.Version()
	}
	return fmt.Sprintf("nexsched %s\nBuild time: %s\nGit commit: %s\nGo version: %s\nPlatform:   %s/%s\n",
		Version, BuildTime, GitCommit, goVersion, runtime.GOOS, runtime.GOARCH)
}

// Short returns the version string used by cobra's --version flag.
func Short() string {
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}
