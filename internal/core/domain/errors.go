package domain

import "go.trai.ch/zerr"

var (
	// ErrEmptyTaskName is returned when registering a task without a name.
	ErrEmptyTaskName = zerr.New("task name must not be empty")

	// ErrUnknownTask is returned when a requested task or dependency is not registered.
	ErrUnknownTask = zerr.New("unknown task")

	// ErrDependencyCycle is returned when the dependency graph of a task contains a cycle.
	ErrDependencyCycle = zerr.New("dependency cycle detected")

	// ErrCommandFailed is returned when a command exits with a non-zero status.
	ErrCommandFailed = zerr.New("command failed")

	// ErrCommandStart is returned when a command cannot be started.
	ErrCommandStart = zerr.New("failed to start command")

	// ErrInterrupted is returned when a run is aborted by a signal.
	ErrInterrupted = zerr.New("run interrupted")

	// ErrNoTasks is returned when a default task is requested from an empty registry.
	ErrNoTasks = zerr.New("no tasks defined")

	// ErrInvalidTransition is returned when a run moves between states in an illegal order.
	ErrInvalidTransition = zerr.New("invalid run state transition")

	// ErrInvalidCommand is returned when a taskfile command entry cannot be interpreted.
	ErrInvalidCommand = zerr.New("invalid command")

	// ErrInvalidVersion is returned when a version string is not MAJOR.MINOR.PATCH.
	ErrInvalidVersion = zerr.New("invalid version, expected MAJOR.MINOR.PATCH")

	// ErrInvalidVersionPart is returned when a bump names an unknown version part.
	ErrInvalidVersionPart = zerr.New("invalid version part, expected 'major', 'minor' or 'patch'")

	// ErrVersionReadFailed is returned when the version file cannot be read.
	ErrVersionReadFailed = zerr.New("failed to read version file")

	// ErrVersionWriteFailed is returned when the version file cannot be written.
	ErrVersionWriteFailed = zerr.New("failed to write version file")

	// ErrConfigReadFailed is returned when the taskfile cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read taskfile")

	// ErrConfigParseFailed is returned when the taskfile cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse taskfile")

	// ErrConfigNotFound is returned when no taskfile can be found.
	ErrConfigNotFound = zerr.New("could not find rbuild.yaml")

	// ErrSettingsLoadFailed is returned when runtime settings cannot be loaded.
	ErrSettingsLoadFailed = zerr.New("failed to load settings")

	// ErrInvalidSetting is returned when a runtime setting has an unsupported value.
	ErrInvalidSetting = zerr.New("invalid setting")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to watch files")
)
