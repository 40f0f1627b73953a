package domain

import (
	"go.trai.ch/zerr"
)

// RunState is the state of a single run invocation.
type RunState uint8

const (
	// StatePending is the state of a run that has not started.
	StatePending RunState = iota
	// StateResolvingDeps is the state while the dependency plan is computed.
	StateResolvingDeps
	// StateRunningCommands is the state while task commands execute.
	StateRunningCommands
	// StateSucceeded is the terminal state of a run where every command exited with 0.
	StateSucceeded
	// StateFailed is the terminal state of a run that was aborted.
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateResolvingDeps:
		return "RESOLVING_DEPS"
	case StateRunningCommands:
		return "RUNNING_COMMANDS"
	case StateSucceeded:
		return "SUCCEEDED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition is possible.
func (s RunState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

var transitions = map[RunState][]RunState{
	StatePending:         {StateResolvingDeps, StateFailed},
	StateResolvingDeps:   {StateRunningCommands, StateFailed},
	StateRunningCommands: {StateSucceeded, StateFailed},
}

// TaskStatus represents the status of a task within a run.
type TaskStatus string

const (
	// TaskPending indicates the task is waiting to be executed.
	TaskPending TaskStatus = "pending"
	// TaskRunning indicates the task's commands are executing.
	TaskRunning TaskStatus = "running"
	// TaskSucceeded indicates every command of the task exited with 0.
	TaskSucceeded TaskStatus = "succeeded"
	// TaskFailed indicates a command of the task failed.
	TaskFailed TaskStatus = "failed"
	// TaskSkipped indicates the task never ran because an earlier task failed.
	TaskSkipped TaskStatus = "skipped"
)

// Run records the progress of one invocation of a target task.
type Run struct {
	Target string

	state    RunState
	plan     []string
	statuses map[string]TaskStatus
	commands int
	err      error
}

// NewRun creates a pending run for target.
func NewRun(target string) *Run {
	return &Run{
		Target:   target,
		state:    StatePending,
		statuses: make(map[string]TaskStatus),
	}
}

// State returns the current state.
func (r *Run) State() RunState {
	return r.state
}

// Transition moves the run to the given state.
func (r *Run) Transition(to RunState) error {
	for _, allowed := range transitions[r.state] {
		if allowed == to {
			r.state = to
			return nil
		}
	}
	err := zerr.Wrap(ErrInvalidTransition, r.state.String()+" -> "+to.String())
	err = zerr.With(err, "from", r.state.String())
	return zerr.With(err, "to", to.String())
}

// Fail moves the run to StateFailed and records the cause.
// It is a no-op on a run that already finished.
func (r *Run) Fail(err error) {
	if r.state.Terminal() {
		return
	}
	r.state = StateFailed
	r.err = err
	for _, name := range r.plan {
		if s := r.statuses[name]; s == TaskPending {
			r.statuses[name] = TaskSkipped
		}
	}
}

// Err returns the error that failed the run, if any.
func (r *Run) Err() error {
	return r.err
}

// SetPlan records the tasks that will run, in order, and marks them pending.
func (r *Run) SetPlan(names []string) {
	r.plan = append([]string(nil), names...)
	for _, name := range names {
		r.statuses[name] = TaskPending
	}
}

// Plan returns the planned task names in execution order.
func (r *Run) Plan() []string {
	return append([]string(nil), r.plan...)
}

// SetTaskStatus updates the status of a task.
func (r *Run) SetTaskStatus(name string, status TaskStatus) {
	r.statuses[name] = status
}

// TaskStatus returns the status of a task, or an empty status if it is not part of the run.
func (r *Run) TaskStatus(name string) TaskStatus {
	return r.statuses[name]
}

// CommandStarted counts a command that was started.
func (r *Run) CommandStarted() {
	r.commands++
}

// CommandsExecuted returns how many commands were started.
func (r *Run) CommandsExecuted() int {
	return r.commands
}
