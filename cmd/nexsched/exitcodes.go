package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/aatumaykin/nexsched/internal/constants"
	"github.com/aatumaykin/nexsched/internal/directive"
	"github.com/aatumaykin/nexsched/internal/launchd"
	"github.com/aatumaykin/nexsched/internal/machine"
	"github.com/aatumaykin/nexsched/internal/registry"
	"github.com/aatumaykin/nexsched/internal/schedule"
	"github.com/aatumaykin/nexsched/internal/task"
)

// Exit codes
const (
	exitGeneric         = 1
	exitDuplicateName   = 3
	exitNotFound        = 4
	exitInvalidSchedule = 5
	exitEmptyCommand    = 6
	exitAliasNotAllowed = 7
	exitCorruptRegistry = 8
	exitControlFailure  = 9
	exitArtifactWrite   = 10
	exitInvalidName     = 11
	exitUnknownMachine  = 12
)

// exitCodes is checked in order; the first match wins.
var exitCodes = []struct {
	err  error
	code int
}{
	{registry.ErrDuplicateName, exitDuplicateName},
	{registry.ErrNotFound, exitNotFound},
	{schedule.ErrInvalidSchedule, exitInvalidSchedule},
	{task.ErrEmptyCommand, exitEmptyCommand},
	{directive.ErrAliasNotAllowed, exitAliasNotAllowed},
	{registry.ErrCorrupt, exitCorruptRegistry},
	{launchd.ErrControl, exitControlFailure},
	{launchd.ErrArtifactWrite, exitArtifactWrite},
	{task.ErrInvalidName, exitInvalidName},
	{machine.ErrUnknownMachine, exitUnknownMachine},
}

// commandExitError carries the exit code of a task run in the foreground.
type commandExitError struct {
	code int
}

func (e *commandExitError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.code)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var runErr *commandExitError
	if errors.As(err, &runErr) {
		return runErr.code
	}
	for _, ec := range exitCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return exitGeneric
}

// printError writes err and, for some kinds, a hint on what to do next.
func printError(w io.Writer, err error) {
	var runErr *commandExitError
	if errors.As(err, &runErr) {
		// the task's own output already explains the failure
		return
	}

	fmt.Fprintf(w, constants.MsgErrorFormat, err)

	var aliasErr *directive.AliasError
	switch {
	case errors.As(err, &aliasErr):
		fmt.Fprintf(w, constants.MsgErrorHintCanonical, aliasErr.Canonical)
	case errors.Is(err, registry.ErrCorrupt):
		fmt.Fprint(w, constants.MsgErrorHintCorrupt)
	case errors.Is(err, launchd.ErrControl), errors.Is(err, launchd.ErrArtifactWrite):
		fmt.Fprint(w, constants.MsgErrorHintReconcile)
	}
}
