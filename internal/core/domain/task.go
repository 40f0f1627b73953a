// Package domain contains the core models of the task runner: tasks, the registry that
// resolves them, environments, versions and the run state machine.
package domain

import (
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultShell is the shell used to run command lines when none is configured.
var DefaultShell = []string{"sh", "-c"}

// Task represents a named unit of work.
// Its dependencies run first, in declaration order, then its own commands run in order.
type Task struct {
	Name         string
	Description  string
	Dependencies []string
	Commands     []Command
	Environment  map[string]string
	// BaseDir is the absolute directory the task's commands run in
	// unless a command names its own directory.
	BaseDir string
}

// Command is a single step of a task.
type Command struct {
	Program     string
	Args        []string
	Dir         string
	Environment map[string]string
	TTY         bool
	// Text is how the command is shown in logs and errors.
	Text string
	// Bump replaces the external program with an in-process version bump.
	Bump *BumpSpec
}

// BumpSpec describes a builtin version bump step.
type BumpSpec struct {
	File string
	Part VersionPart
}

// NewShellCommand returns a command that runs line through the given shell.
// An empty shell falls back to DefaultShell.
func NewShellCommand(shell []string, line string) Command {
	if len(shell) == 0 {
		shell = DefaultShell
	}
	args := make([]string, 0, len(shell))
	args = append(args, shell[1:]...)
	args = append(args, line)

	return Command{
		Program: shell[0],
		Args:    args,
		Text:    line,
	}
}

// IsBuiltin reports whether the command is handled in-process.
func (c Command) IsBuiltin() bool {
	return c.Bump != nil
}

// String returns the display text of the command.
func (c Command) String() string {
	if c.Text != "" {
		return c.Text
	}
	if c.Bump != nil {
		return "bump " + string(c.Bump.Part) + " " + c.Bump.File
	}

	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Program))
	for _, arg := range c.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

// ResolveDir returns the absolute directory the command runs in.
func (c Command) ResolveDir(base string) string {
	return resolvePath(base, c.Dir)
}

// ResolveFile returns the absolute path of the version file of a bump step.
func (b BumpSpec) ResolveFile(base string) string {
	return resolvePath(base, b.File)
}

func resolvePath(base, p string) string {
	switch {
	case p == "":
		return base
	case filepath.IsAbs(p):
		return filepath.Clean(p)
	default:
		return filepath.Join(base, p)
	}
}

func quoteArg(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"'\\$") {
		return strconv.Quote(s)
	}
	return s
}
