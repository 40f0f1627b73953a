package shell_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rbuild/internal/adapters/shell"
	"go.trai.ch/rbuild/internal/core/domain"
)

func TestLookPath(t *testing.T) {
	dir := t.TempDir()
	//nolint:gosec // Test requires executable file
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tool"), []byte("#!/bin/sh\n"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data"), []byte("x"), 0o600))

	got, err := shell.LookPath("tool", []string{"HOME=/x", "PATH=/nonexistent:" + dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tool"), got)

	_, err = shell.LookPath("data", []string{"PATH=" + dir})
	require.ErrorIs(t, err, exec.ErrNotFound)

	_, err = shell.LookPath("tool", nil)
	require.ErrorIs(t, err, exec.ErrNotFound)
}

func TestUseTTY(t *testing.T) {
	plain := domain.Command{Program: "gradle"}
	wants := domain.Command{Program: "adb", TTY: true}

	tests := []struct {
		name     string
		mode     domain.TTYMode
		cmd      domain.Command
		terminal bool
		want     bool
	}{
		{name: "never", mode: domain.TTYNever, cmd: wants, terminal: true, want: false},
		{name: "always", mode: domain.TTYAlways, cmd: plain, want: true},
		{name: "auto on terminal", mode: domain.TTYAuto, cmd: wants, terminal: true, want: true},
		{name: "auto off terminal", mode: domain.TTYAuto, cmd: wants, terminal: false, want: false},
		{name: "auto plain", mode: domain.TTYAuto, cmd: plain, terminal: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := shell.NewExecutor(nil, shell.WithTTYMode(tt.mode))
			assert.Equal(t, tt.want, executor.UseTTY(tt.cmd, tt.terminal))
		})
	}
}

func TestSetTTYMode(t *testing.T) {
	executor := shell.NewExecutor(nil, shell.WithTTYMode(domain.TTYNever))
	cmd := domain.Command{Program: "gradle"}
	assert.False(t, executor.UseTTY(cmd, true))

	executor.SetTTYMode(domain.TTYAlways)
	assert.True(t, executor.UseTTY(cmd, false))
}

func TestGracePeriod(t *testing.T) {
	assert.Equal(t, domain.DefaultGracePeriod, shell.NewExecutor(nil).GracePeriod())
	assert.Equal(t, domain.DefaultGracePeriod, shell.NewExecutor(nil, shell.WithGracePeriod(0)).GracePeriod())
	assert.Equal(t, time.Second, shell.NewExecutor(nil, shell.WithGracePeriod(time.Second)).GracePeriod())
}
