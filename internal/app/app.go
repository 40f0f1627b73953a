// Package app implements the application layer for rbuild.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel"
	"go.trai.ch/rbuild/internal/adapters/linear"
	"go.trai.ch/rbuild/internal/adapters/telemetry"
	"go.trai.ch/rbuild/internal/core/domain"
	"go.trai.ch/rbuild/internal/core/ports"
	"go.trai.ch/rbuild/internal/engine/runner"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	versions     ports.VersionStore
	watcher      ports.Watcher
	logger       ports.Logger

	taskfile string
	stdout   io.Writer
	stderr   io.Writer
	environ  func() []string
	getwd    func() (string, error)
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	versions ports.VersionStore,
	watcher ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		versions:     versions,
		watcher:      watcher,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		environ:      os.Environ,
		getwd:        os.Getwd,
	}
}

// WithTaskfile sets the taskfile used when a command does not name one.
// An empty path means the taskfile is discovered from the working directory.
func (a *App) WithTaskfile(path string) *App {
	a.taskfile = path
	return a
}

// WithOutput redirects task output. It is primarily used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithEnviron replaces the process environment the run snapshot is taken from.
func (a *App) WithEnviron(environ func() []string) *App {
	a.environ = environ
	return a
}

// WithWorkDir fixes the directory taskfile discovery starts from.
func (a *App) WithWorkDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// Overrides carries command line values that take precedence over settings.
// Empty fields leave the configured value in place.
type Overrides struct {
	File      string
	LogFormat domain.LogFormat
	TTY       domain.TTYMode
}

// Configure applies o to the application and the components that support it.
func (a *App) Configure(o Overrides) error {
	s := domain.DefaultSettings()
	if o.LogFormat != "" {
		s.LogFormat = o.LogFormat
	}
	if o.TTY != "" {
		s.TTY = o.TTY
	}
	if err := s.Validate(); err != nil {
		return err
	}

	if o.File != "" {
		a.taskfile = o.File
	}
	if o.LogFormat != "" {
		if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
			l.SetJSON(o.LogFormat == domain.LogFormatJSON)
		}
	}
	if o.TTY != "" {
		if e, ok := a.executor.(interface{ SetTTYMode(domain.TTYMode) }); ok {
			e.SetTTYMode(o.TTY)
		}
	}
	return nil
}

// RunOptions configuration for the Run and Watch methods.
type RunOptions struct {
	DryRun bool
}

// Run loads the taskfile and runs target, or the default task when target is empty.
func (a *App) Run(ctx context.Context, target string, opts RunOptions) (*domain.Run, error) {
	taskfile, err := a.load()
	if err != nil {
		return nil, err
	}
	return a.runTaskfile(ctx, taskfile, target, opts, a.versions)
}

func (a *App) runTaskfile(
	ctx context.Context,
	taskfile *domain.Taskfile,
	target string,
	opts RunOptions,
	versions ports.VersionStore,
) (*domain.Run, error) {
	if target == "" {
		name, err := taskfile.Registry.Default()
		if err != nil {
			return nil, zerr.With(err, "taskfile", taskfile.Path)
		}
		target = name
	}

	env := domain.NewEnv(a.environ()).WithDefaults(taskfile.Env)

	renderer := linear.NewRenderer(a.stdout, a.stderr)
	if err := renderer.Start(ctx); err != nil {
		return nil, err
	}

	tp := telemetry.NewProvider(renderer)
	otel.SetTracerProvider(tp)
	tracer := telemetry.NewOTelTracerWithProvider(tp, "rbuild").WithRenderer(renderer)

	r := runner.NewRunner(a.executor, versions, tracer, a.logger)
	run, err := r.Run(ctx, taskfile.Registry, target, runner.Options{
		Env:    env,
		DryRun: opts.DryRun,
	})

	_ = tp.Shutdown(context.WithoutCancel(ctx))
	if stopErr := renderer.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	return run, err
}

// TaskSummary is one row of the task list.
type TaskSummary struct {
	Name        string
	Description string
	Default     bool
}

// List returns the tasks of the taskfile in declaration order.
func (a *App) List() ([]TaskSummary, error) {
	taskfile, err := a.load()
	if err != nil {
		return nil, err
	}

	defaultTask, _ := taskfile.Registry.Default()

	tasks := make([]TaskSummary, 0, taskfile.Registry.Len())
	for task := range taskfile.Registry.All() {
		tasks = append(tasks, TaskSummary{
			Name:        task.Name,
			Description: task.Description,
			Default:     task.Name == defaultTask,
		})
	}
	return tasks, nil
}

// TaskDetail describes a single task.
type TaskDetail struct {
	Name         string
	Description  string
	Dir          string
	Dependencies []string
	Commands     []string
	Plan         []string
}

// Describe returns the details of the named task, including its execution plan.
func (a *App) Describe(name string) (TaskDetail, error) {
	taskfile, err := a.load()
	if err != nil {
		return TaskDetail{}, err
	}

	task, err := taskfile.Registry.Lookup(name)
	if err != nil {
		return TaskDetail{}, err
	}

	detail := TaskDetail{
		Name:         task.Name,
		Description:  task.Description,
		Dir:          task.BaseDir,
		Dependencies: append([]string(nil), task.Dependencies...),
		Commands:     make([]string, len(task.Commands)),
	}
	for i, cmd := range task.Commands {
		detail.Commands[i] = cmd.String()
	}

	plan, err := taskfile.Registry.Resolve(name)
	if err != nil {
		return detail, err
	}
	for _, t := range plan {
		detail.Plan = append(detail.Plan, t.Name)
	}
	return detail, nil
}

// Bump increments part of the version stored at path.
func (a *App) Bump(path string, part domain.VersionPart) (oldVersion, newVersion domain.Version, err error) {
	oldVersion, newVersion, err = a.versions.Bump(path, part)
	if err != nil {
		return oldVersion, newVersion, err
	}
	a.logger.Info(fmt.Sprintf("bumped %s from %s to %s", path, oldVersion, newVersion))
	return oldVersion, newVersion, nil
}

// Watch runs target once, then again after every settled batch of changes below
// the taskfile directory. A failed run is reported and watching continues.
// Files rewritten by builtin steps of the last run do not count as changes.
// Watch returns when ctx is cancelled or the watcher stops.
func (a *App) Watch(ctx context.Context, target string, opts RunOptions) error {
	taskfile, err := a.load()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	if err := a.watcher.Start(ctx, taskfile.Dir); err != nil {
		return zerr.With(err, "dir", taskfile.Dir)
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	// One pending re-run at most: batches arriving during a run are coalesced.
	changes := make(chan []ports.WatchEvent, 1)

	g.Go(func() error {
		defer close(changes)
		for batch := range a.watcher.Events() {
			select {
			case changes <- batch:
			case <-ctx.Done():
				return nil
			default:
			}
		}
		return nil
	})

	written := newWrittenFiles(a.versions)

	stopped := func() error {
		if ctx.Err() != nil {
			return zerr.Wrap(domain.ErrInterrupted, "watch stopped")
		}
		return nil
	}

	g.Go(func() error {
		a.watchRun(ctx, taskfile.Path, target, opts, written)
		for {
			select {
			case <-ctx.Done():
				return stopped()
			case batch, ok := <-changes:
				if !ok {
					return stopped()
				}
				batch = written.filter(batch)
				if len(batch) == 0 {
					continue
				}
				a.logger.Info(fmt.Sprintf("%d file(s) changed, running again", len(batch)))
				a.watchRun(ctx, taskfile.Path, target, opts, written)
			}
		}
	})

	return g.Wait()
}

// watchRun reloads the taskfile and runs target, logging any failure.
func (a *App) watchRun(ctx context.Context, path, target string, opts RunOptions, written *writtenFiles) {
	written.reset()

	taskfile, err := a.configLoader.Load(path)
	if err != nil {
		a.logger.Error(err)
		return
	}
	if _, err := a.runTaskfile(ctx, taskfile, target, opts, written); err != nil && ctx.Err() == nil {
		a.logger.Error(err)
	}
}

// load reads the configured taskfile, or discovers one from the working directory.
func (a *App) load() (*domain.Taskfile, error) {
	path := a.taskfile
	if path == "" {
		cwd, err := a.getwd()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to get working directory")
		}
		path, err = a.configLoader.Discover(cwd)
		if err != nil {
			return nil, err
		}
	}

	taskfile, err := a.configLoader.Load(path)
	if err != nil {
		return nil, err
	}
	return taskfile, nil
}

// writtenFiles is a VersionStore that remembers the files it rewrote since the last reset.
type writtenFiles struct {
	ports.VersionStore

	mu    sync.Mutex
	paths map[string]struct{}
}

func newWrittenFiles(store ports.VersionStore) *writtenFiles {
	return &writtenFiles{VersionStore: store, paths: make(map[string]struct{})}
}

func (w *writtenFiles) Bump(path string, part domain.VersionPart) (domain.Version, domain.Version, error) {
	w.mu.Lock()
	w.paths[filepath.Clean(path)] = struct{}{}
	w.mu.Unlock()
	return w.VersionStore.Bump(path, part)
}

func (w *writtenFiles) reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.paths)
}

// filter drops the events on files rewritten since the last reset.
func (w *writtenFiles) filter(batch []ports.WatchEvent) []ports.WatchEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := batch[:0:0]
	for _, event := range batch {
		if _, ok := w.paths[filepath.Clean(event.Path)]; ok {
			continue
		}
		kept = append(kept, event)
	}
	return kept
}
