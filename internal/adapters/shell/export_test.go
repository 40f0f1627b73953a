package shell

import (
	"time"

	"go.trai.ch/rbuild/internal/core/domain"
)

// LookPath exposes lookPath for testing.
func LookPath(file string, env []string) (string, error) {
	return lookPath(file, env)
}

// UseTTY exposes the terminal decision for testing with a fixed terminal probe.
func (e *Executor) UseTTY(cmd domain.Command, terminal bool) bool {
	e.isTerminal = func() bool { return terminal }
	return e.useTTY(cmd)
}

// GracePeriod exposes the effective grace period for testing.
func (e *Executor) GracePeriod() time.Duration {
	return e.gracePeriod
}
