package task

import "errors"

var (
	// ErrEmptyCommand is returned when a task command is blank
	ErrEmptyCommand = errors.New("command cannot be empty")

	// ErrInvalidName is returned when a task name is not safe for use as a
	// launchd label suffix and a file name
	ErrInvalidName = errors.New("invalid task name")
)
