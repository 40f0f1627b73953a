// Package shell provides the executor adapter that runs commands as child processes.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/rbuild/internal/core/domain"
	"go.trai.ch/rbuild/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// Executor implements ports.Executor using os/exec, or a pseudo-terminal
// for commands that need one.
type Executor struct {
	logger      ports.Logger
	gracePeriod time.Duration
	tty         domain.TTYMode
	stdin       io.Reader
	isTerminal  func() bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithGracePeriod sets how long an interrupted command may take to exit before it is killed.
func WithGracePeriod(d time.Duration) Option {
	return func(e *Executor) { e.gracePeriod = d }
}

// WithTTYMode sets when commands are attached to a pseudo-terminal.
func WithTTYMode(mode domain.TTYMode) Option {
	return func(e *Executor) { e.tty = mode }
}

// WithStdin connects r to the standard input of commands run without a pseudo-terminal.
func WithStdin(r io.Reader) Option {
	return func(e *Executor) { e.stdin = r }
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger, opts ...Option) *Executor {
	e := &Executor{
		logger:      logger,
		gracePeriod: domain.DefaultGracePeriod,
		tty:         domain.TTYAuto,
		isTerminal:  func() bool { return term.IsTerminal(int(os.Stdout.Fd())) },
	}
	for _, opt := range opts {
		opt(e)
	}
	// Without a grace period nothing would ever kill a command that ignores the interrupt.
	if e.gracePeriod <= 0 {
		e.gracePeriod = domain.DefaultGracePeriod
	}
	return e
}

// SetTTYMode changes when commands are attached to a pseudo-terminal.
func (e *Executor) SetTTYMode(mode domain.TTYMode) {
	e.tty = mode
}

// Execute runs cmd in dir with exactly env as its environment and waits for it.
// The executable is looked up on the PATH of env, not of the current process.
func (e *Executor) Execute(
	ctx context.Context,
	cmd domain.Command,
	dir string,
	env []string,
	stdout, stderr io.Writer,
) error {
	if cmd.IsBuiltin() || cmd.Program == "" {
		return zerr.With(zerr.Wrap(domain.ErrInvalidCommand, "nothing to execute"), "command", cmd.String())
	}

	name := cmd.Program
	executable := name
	if !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, cmd.Args...) //nolint:gosec // user provided command

	// Restore the name as written in the taskfile.
	if len(c.Args) > 0 {
		c.Args[0] = name
	}

	c.Dir = dir
	c.Env = append(make([]string, 0, len(env)), env...)

	// The interrupt goes to the whole process group: a shell line such as
	// "cd tracer && gradle assemble" forks gradle instead of replacing itself with it.
	var (
		mu        sync.Mutex
		killTimer *time.Timer
	)
	c.Cancel = func() error {
		e.logger.Warn(fmt.Sprintf("interrupting %q", cmd.String()))
		mu.Lock()
		killTimer = time.AfterFunc(e.gracePeriod, func() { _ = killGroup(c.Process) })
		mu.Unlock()
		return interruptGroup(c.Process)
	}
	c.WaitDelay = e.gracePeriod

	var err error
	if e.useTTY(cmd) {
		err = runPTY(c, stdout)
	} else {
		// A command reading the terminal from a background group would be stopped.
		// Ctrl-C already reaches the whole foreground group.
		if !readsTerminal(e.stdin) {
			newProcessGroup(c)
		}
		c.Stdin = e.stdin
		c.Stdout = stdout
		c.Stderr = stderr
		err = c.Run()
	}

	if ctx.Err() != nil && c.Process != nil {
		mu.Lock()
		if killTimer != nil {
			killTimer.Stop()
		}
		mu.Unlock()
		// Whatever outlived the group leader goes with it.
		_ = killGroup(c.Process)
	}

	return commandError(ctx, cmd, err)
}

func (e *Executor) useTTY(cmd domain.Command) bool {
	switch e.tty {
	case domain.TTYAlways:
		return true
	case domain.TTYNever:
		return false
	default:
		return cmd.TTY && e.isTerminal()
	}
}

func readsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// runPTY runs c attached to a pseudo-terminal. Both output streams arrive merged on out.
func runPTY(c *exec.Cmd, out io.Writer) error {
	ptmx, err := pty.Start(c)
	if err != nil {
		return &startError{err: err}
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// Reading the master returns EIO once the child side is closed.
		_, _ = io.Copy(out, ptmx)
	}()

	err = c.Wait()
	<-ioDone
	_ = ptmx.Close()
	return err
}

type startError struct {
	err error
}

func (e *startError) Error() string { return e.err.Error() }
func (e *startError) Unwrap() error { return e.err }

func commandError(ctx context.Context, cmd domain.Command, err error) error {
	if err == nil {
		return nil
	}

	text := cmd.String()

	if ctx.Err() != nil {
		return zerr.With(zerr.Wrap(domain.ErrInterrupted, text+" was interrupted"), "command", text)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		msg := fmt.Sprintf("%s exited with status %d", text, code)
		if code < 0 {
			msg = text + " was terminated by a signal"
		}
		wrapped := zerr.With(zerr.Wrap(domain.ErrCommandFailed, msg), "exit_code", code)
		return zerr.With(wrapped, "command", text)
	}

	return zerr.With(zerr.Wrap(domain.ErrCommandStart, err.Error()), "command", text)
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
