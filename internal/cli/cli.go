package cli

import (
	"context"
	"errors"
	"io"

	"github.com/specialistvlad/buildplan/internal/builderr"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// commandError marks failures of a command's own work, as opposed to usage
// errors reported by the flag parser.
type commandError struct{ err error }

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

func usageErrorf(err error) error {
	return &ExitError{Code: builderr.ExitUsage, Message: err.Error(), Err: err}
}

// Execute runs the command line described by args. Regular output goes to
// outW, logs and usage to errW. A nil return means exit code 0; otherwise
// the error is an *ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := newRootCommand(outW, errW)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		return &ExitError{Code: builderr.ExitCode(cmdErr.err), Message: cmdErr.err.Error(), Err: cmdErr.err}
	}
	return usageErrorf(err)
}
