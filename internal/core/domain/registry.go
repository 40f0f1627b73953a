package domain

import (
	"fmt"
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// Registry maps task names to tasks and remembers the order they were registered in.
type Registry struct {
	tasks       map[string]*Task
	order       []string
	defaultTask string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*Task),
	}
}

// Register adds a task to the registry.
// Registering a name twice replaces the earlier definition but keeps its position.
func (r *Registry) Register(t *Task) error {
	if t == nil || t.Name == "" {
		return ErrEmptyTaskName
	}
	if _, exists := r.tasks[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tasks[t.Name] = t
	return nil
}

// SetDefault configures the task that runs when none is named.
func (r *Registry) SetDefault(name string) {
	r.defaultTask = name
}

// Default returns the configured default task, or the first registered task.
func (r *Registry) Default() (string, error) {
	if r.defaultTask != "" {
		if _, ok := r.tasks[r.defaultTask]; !ok {
			return "", unknownTask(r.defaultTask, "")
		}
		return r.defaultTask, nil
	}
	if len(r.order) == 0 {
		return "", ErrNoTasks
	}
	return r.order[0], nil
}

// Lookup returns the task registered under name.
func (r *Registry) Lookup(name string) (*Task, error) {
	t, ok := r.tasks[name]
	if !ok {
		return nil, unknownTask(name, "")
	}
	return t, nil
}

// Describe returns the description of the named task, or an empty string.
func (r *Registry) Describe(name string) string {
	if t, ok := r.tasks[name]; ok {
		return t.Description
	}
	return ""
}

// Names returns the registered task names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	return len(r.order)
}

// All yields the registered tasks in registration order.
func (r *Registry) All() iter.Seq[*Task] {
	return func(yield func(*Task) bool) {
		for _, name := range r.order {
			if !yield(r.tasks[name]) {
				return
			}
		}
	}
}

// Resolve returns the tasks needed to run name, in execution order.
// Dependencies are visited depth-first in declaration order and each task appears once,
// before every task that depends on it. Unknown tasks and cycles are reported before
// anything is returned.
func (r *Registry) Resolve(name string) ([]*Task, error) {
	if _, ok := r.tasks[name]; !ok {
		return nil, unknownTask(name, "")
	}

	const (
		unvisited = iota
		visiting
		visited
	)

	state := make(map[string]int, len(r.tasks))
	plan := make([]*Task, 0, len(r.tasks))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		state[name] = visiting
		path = append(path, name)

		task := r.tasks[name]
		for _, dep := range task.Dependencies {
			if _, ok := r.tasks[dep]; !ok {
				return unknownTask(dep, name)
			}
			switch state[dep] {
			case visiting:
				return cycleError(path, dep)
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		state[name] = visited
		path = path[:len(path)-1]
		plan = append(plan, task)
		return nil
	}

	if err := visit(name); err != nil {
		return nil, err
	}
	return plan, nil
}

func unknownTask(name, requiredBy string) error {
	if requiredBy == "" {
		return zerr.With(zerr.Wrap(ErrUnknownTask, fmt.Sprintf("task %q is not defined", name)), "task", name)
	}
	err := zerr.Wrap(ErrUnknownTask, fmt.Sprintf("task %q depends on %q which is not defined", requiredBy, name))
	err = zerr.With(err, "task", name)
	return zerr.With(err, "required_by", requiredBy)
}

// cycleError builds an error whose message and metadata carry the cycle, e.g. "a -> b -> a".
func cycleError(path []string, dep string) error {
	start := 0
	for i, name := range path {
		if name == dep {
			start = i
			break
		}
	}

	cycle := make([]string, 0, len(path)-start+1)
	cycle = append(cycle, path[start:]...)
	cycle = append(cycle, dep)
	joined := strings.Join(cycle, " -> ")

	return zerr.With(zerr.Wrap(ErrDependencyCycle, joined), "cycle", joined)
}
