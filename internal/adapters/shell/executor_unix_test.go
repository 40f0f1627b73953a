//go:build unix

package shell_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rbuild/internal/adapters/shell"
	"go.trai.ch/rbuild/internal/core/domain"
	"go.uber.org/mock/gomock"
)

func TestExecutor_Execute_InterruptStopsForkedCommands(t *testing.T) {
	tests := []struct {
		name string
		line string
		tty  domain.TTYMode
	}{
		{
			name: "compound line",
			line: `true && sh -c 'echo $$ > child.pid; exec sleep 10'; echo done`,
			tty:  domain.TTYNever,
		},
		{
			name: "forked command ignores the interrupt",
			line: `true && sh -c 'trap "" INT; echo $$ > child.pid; exec sleep 10'; echo done`,
			tty:  domain.TTYNever,
		},
		{
			name: "pseudo-terminal",
			line: `true && sh -c 'echo $$ > child.pid; exec sleep 10'; echo done`,
			tty:  domain.TTYAlways,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor, logger := newExecutor(t,
				shell.WithGracePeriod(200*time.Millisecond),
				shell.WithTTYMode(tt.tty),
			)
			logger.EXPECT().Warn(gomock.Any()).AnyTimes()

			dir := t.TempDir()
			pidFile := filepath.Join(dir, "child.pid")

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() {
				defer cancel()
				deadline := time.Now().Add(5 * time.Second)
				for time.Now().Before(deadline) {
					if data, err := os.ReadFile(pidFile); err == nil && strings.HasSuffix(string(data), "\n") {
						return
					}
					time.Sleep(10 * time.Millisecond)
				}
			}()

			start := time.Now()
			err := executor.Execute(ctx, sh(tt.line), dir, systemEnv, io.Discard, io.Discard)
			require.ErrorIs(t, err, domain.ErrInterrupted)
			assert.Less(t, time.Since(start), 5*time.Second)

			data, readErr := os.ReadFile(pidFile)
			require.NoError(t, readErr)
			pid, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
			require.NoError(t, convErr)

			assert.Eventually(t, func() bool { return processGone(pid) }, 2*time.Second, 20*time.Millisecond,
				"forked command %d is still running", pid)
		})
	}
}

// processGone reports whether pid has exited. A killed process that its new
// parent has not reaped yet counts as gone.
func processGone(pid int) bool {
	if err := syscall.Kill(pid, 0); err != nil {
		return true
	}
	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	return err == nil && strings.Contains(string(stat), ") Z ")
}
