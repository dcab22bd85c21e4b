package cli

import (
	"errors"
	"fmt"
)

// exitUsage is the exit code for a command invoked incorrectly.
const exitUsage = 2

// UsageError is a mistake in how a command was invoked. Run prints it followed by the command's help, and exits 2.
type UsageError struct {
	Message string
}

func (e UsageError) Error() string { return e.Message }

func usageErrorf(format string, args ...any) UsageError {
	return UsageError{Message: fmt.Sprintf(format, args...)}
}

// ExitError makes Run exit with Code, printing Err if it is non-nil. A nil Err suits commands whose exit status is itself the result (ex: a
// number of conflicts).
type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e ExitError) Unwrap() error { return e.Err }

// exitCode maps a handler error to its exit code and whether it should be reported with usage. Errors other than ExitError and UsageError
// exit 1.
func exitCode(err error) (code int, isUsage bool) {
	var ue UsageError
	var ee ExitError
	switch {
	case err == nil:
		return 0, false
	case errors.As(err, &ee):
		return ee.Code, false
	case errors.As(err, &ue):
		return exitUsage, true
	}
	return 1, false
}
