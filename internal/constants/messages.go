package constants

// Package messages contains the user-facing text printed by the nexsched CLI.

// Task operation messages
const (
	// MsgTaskCreated confirms a new task: name, schedule, machine.
	MsgTaskCreated = "Created task '%s' (%s) on %s\n"

	// MsgTaskCreatedRemote explains why nothing was installed locally.
	MsgTaskCreatedRemote = "Task runs on %s; it will be installed there by 'nexsched reconcile' or 'nexsched watch'.\n"

	// MsgTaskUpdated confirms an edit.
	MsgTaskUpdated = "Updated task '%s' (%s) on %s\n"

	// MsgTaskRemoved confirms a removal.
	MsgTaskRemoved = "Removed task '%s'\n"

	// MsgTaskEnabled confirms enabling a task.
	MsgTaskEnabled = "Enabled task '%s'\n"

	// MsgTaskDisabled confirms disabling a task.
	MsgTaskDisabled = "Disabled task '%s'\n"

	// MsgRemoteNote is printed when the artifact lives on another machine.
	MsgRemoteNote = "Task '%s' is designated to %s; the registry was updated, launchd on this machine was not touched.\n"
)

// List and show messages
const (
	// MsgNoTasks is printed by list when the registry is empty.
	MsgNoTasks = "No scheduled tasks.\n"

	// MsgTasksTotal is the footer of the task table.
	MsgTasksTotal = "\n%d task(s)\n"

	// MsgNoLogFile replaces a log tail when the file does not exist.
	MsgNoLogFile = "(no log file yet)"

	// MsgLogHeader introduces one log tail: stream name and path.
	MsgLogHeader = "=== %s: %s ===\n"
)

// Run messages
const (
	// MsgRunFinished reports a foreground run: name, run id, exit code, duration.
	MsgRunFinished = "Finished '%s' (run %s) with exit code %d in %s\n"

	// MsgRunDetached confirms a launchd start request.
	MsgRunDetached = "Asked launchd to start '%s'\n"
)

// Reconcile messages
const (
	// MsgReconcileInstalled lists an installed task.
	MsgReconcileInstalled = "installed   %s\n"

	// MsgReconcileUpdated lists a task whose plist was rewritten.
	MsgReconcileUpdated = "updated     %s\n"

	// MsgReconcileUninstalled lists an uninstalled task.
	MsgReconcileUninstalled = "uninstalled %s\n"

	// MsgReconcileOrphan lists a removed orphan job.
	MsgReconcileOrphan = "orphan      %s (removed)\n"

	// MsgReconcileInSync is printed when nothing changed.
	MsgReconcileInSync = "launchd is in sync with the registry (%d task(s) on this machine)\n"
)

// Config messages
const (
	// MsgConfigValid confirms a valid configuration file.
	MsgConfigValid = "Configuration is valid: %s\n"

	// MsgConfigDefaults notes that no config file exists.
	MsgConfigDefaults = "No configuration file at %s; using defaults.\n"

	// MsgConfigInvalid is the header of a validation error list.
	MsgConfigInvalid = "Configuration has %d error(s):\n"
)

// Error messages
const (
	// MsgErrorFormat is the prefix for formatting error messages.
	MsgErrorFormat = "Error: %v\n"

	// MsgErrorHintCanonical follows an alias error.
	MsgErrorHintCanonical = "Hint: aliases only resolve in interactive sessions; scheduled commands must use /%s.\n"

	// MsgErrorHintCorrupt follows a corrupt registry error.
	MsgErrorHintCorrupt = "Hint: the registry file was left untouched; fix or restore it and retry.\n"

	// MsgErrorHintReconcile follows a launchd failure.
	MsgErrorHintReconcile = "Hint: the registry is the source of truth; run 'nexsched reconcile' to retry launchd on this machine.\n"
)
