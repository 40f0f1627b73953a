// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/rbuild/internal/core/domain"
)

// Executor defines the interface for running external commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd in dir with exactly the given environment ("KEY=VALUE" entries)
	// and waits for it to exit.
	//
	// A non-zero exit returns domain.ErrCommandFailed carrying the "exit_code" metadata.
	// A cancelled context interrupts the command and returns domain.ErrInterrupted.
	Execute(ctx context.Context, cmd domain.Command, dir string, env []string, stdout, stderr io.Writer) error
}
