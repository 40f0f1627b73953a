// Package runner executes a task and its dependencies, one command at a time.
package runner

import (
	"context"
	"fmt"
	"path/filepath"

	"go.trai.ch/rbuild/internal/core/domain"
	"go.trai.ch/rbuild/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner runs tasks from a registry.
type Runner struct {
	executor ports.Executor
	versions ports.VersionStore
	tracer   ports.Tracer
	logger   ports.Logger
}

// Options configures a single run.
type Options struct {
	// Env is the base environment of every command. Task and command overlays are applied on top.
	Env domain.Env
	// DryRun resolves and reports the plan without executing any command.
	DryRun bool
}

// NewRunner creates a new Runner.
func NewRunner(
	executor ports.Executor,
	versions ports.VersionStore,
	tracer ports.Tracer,
	logger ports.Logger,
) *Runner {
	return &Runner{
		executor: executor,
		versions: versions,
		tracer:   tracer,
		logger:   logger,
	}
}

// Run executes target after its dependencies. The whole plan is resolved before
// the first command starts. The first failing command aborts the run.
//
// The returned Run is never nil and records the final state; its error is also returned.
func (r *Runner) Run(ctx context.Context, registry *domain.Registry, target string, opts Options) (*domain.Run, error) {
	run := domain.NewRun(target)

	if err := run.Transition(domain.StateResolvingDeps); err != nil {
		return run, err
	}

	plan, err := registry.Resolve(target)
	if err != nil {
		run.Fail(err)
		return run, err
	}

	names := make([]string, len(plan))
	deps := make(map[string][]string, len(plan))
	for i, task := range plan {
		names[i] = task.Name
		if len(task.Dependencies) > 0 {
			deps[task.Name] = task.Dependencies
		}
	}
	run.SetPlan(names)
	r.tracer.EmitPlan(ctx, names, deps, []string{target})

	if err := run.Transition(domain.StateRunningCommands); err != nil {
		return run, err
	}

	for _, task := range plan {
		if ctx.Err() != nil {
			err := zerr.With(zerr.Wrap(domain.ErrInterrupted, fmt.Sprintf("interrupted before task %q", task.Name)), "task", task.Name)
			run.Fail(err)
			return run, err
		}

		run.SetTaskStatus(task.Name, domain.TaskRunning)
		if err := r.runTask(ctx, run, task, opts); err != nil {
			run.SetTaskStatus(task.Name, domain.TaskFailed)
			err = zerr.With(zerr.Wrap(err, fmt.Sprintf("task %q failed", task.Name)), "task", task.Name)
			run.Fail(err)
			return run, err
		}
		run.SetTaskStatus(task.Name, domain.TaskSucceeded)
	}

	if opts.DryRun {
		r.logger.Info(fmt.Sprintf("dry run: %d task(s) planned, no command executed", len(plan)))
	}

	if err := run.Transition(domain.StateSucceeded); err != nil {
		return run, err
	}
	return run, nil
}

func (r *Runner) runTask(ctx context.Context, run *domain.Run, task *domain.Task, opts Options) error {
	ctx, span := r.tracer.Start(ctx, task.Name,
		ports.WithAttribute("task", task.Name),
		ports.WithAttribute("commands", len(task.Commands)),
	)
	defer span.End()

	// The task overlay is computed once and shared by its commands only.
	env := opts.Env.Overlay(task.Environment)

	for i := range task.Commands {
		if err := r.runCommand(ctx, run, task, task.Commands[i], env, opts); err != nil {
			span.RecordError(err)
			return err
		}
	}
	return nil
}

func (r *Runner) runCommand(
	ctx context.Context,
	run *domain.Run,
	task *domain.Task,
	cmd domain.Command,
	env domain.Env,
	opts Options,
) error {
	text := cmd.String()
	ctx, span := r.tracer.Start(ctx, text,
		ports.WithAttribute("task", task.Name),
		ports.WithAttribute("command", text),
	)
	defer span.End()

	dir := cmd.ResolveDir(task.BaseDir)

	if opts.DryRun {
		span.SetAttribute("dry_run", true)
		return nil
	}

	run.CommandStarted()

	if cmd.IsBuiltin() {
		return r.bump(span, cmd.Bump, dir)
	}

	err := r.executor.Execute(ctx, cmd, dir, env.Overlay(cmd.Environment).Environ(), span, span)
	if code, ok := domain.MetadataValue(err, "exit_code").(int); ok {
		span.SetAttribute("exit_code", code)
	} else if err == nil {
		span.SetAttribute("exit_code", 0)
	}
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (r *Runner) bump(span ports.Span, spec *domain.BumpSpec, dir string) error {
	path := spec.ResolveFile(dir)

	oldVersion, newVersion, err := r.versions.Bump(path, spec.Part)
	if err != nil {
		span.RecordError(err)
		return zerr.With(err, "command", "bump "+string(spec.Part)+" "+spec.File)
	}

	span.SetAttribute("version", newVersion.String())
	_, _ = fmt.Fprintf(span, "%s: %s -> %s\n", filepath.Base(path), oldVersion, newVersion)
	return nil
}
