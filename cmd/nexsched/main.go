package main

import (
	"io"
	"os"

	"github.com/aatumaykin/nexsched/internal/version"
)

var (
	Version   string = "0.1.0-dev"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
	GoVersion string = "unknown"
)

func init() {
	version.SetInfo(Version, BuildTime, GitCommit, GoVersion)
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command tree and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd.Version = version.Short()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		printError(stderr, err)
		return exitCode(err)
	}
	return 0
}
