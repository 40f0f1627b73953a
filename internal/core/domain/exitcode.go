package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUnknownTask = 3
	ExitCycle       = 4
	ExitInterrupted = 130
)

// ExitCode maps a run error to the exit code of the process.
// A failed command propagates its own exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInterrupted):
		return ExitInterrupted
	case errors.Is(err, ErrDependencyCycle):
		return ExitCycle
	case errors.Is(err, ErrUnknownTask):
		return ExitUnknownTask
	case errors.Is(err, ErrCommandFailed):
		if code, ok := MetadataValue(err, "exit_code").(int); ok && code > 0 {
			return code
		}
		return ExitFailure
	default:
		return ExitFailure
	}
}

// MetadataValue returns the value of key from the first error in err's chain
// that carries it, or nil.
func MetadataValue(err error, key string) any {
	for err != nil {
		if z, ok := err.(*zerr.Error); ok {
			if v, found := z.Metadata()[key]; found {
				return v
			}
		}
		err = errors.Unwrap(err)
	}
	return nil
}
