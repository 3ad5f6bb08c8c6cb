// Package builderr defines the error taxonomy of the build configurator.
//
// Every failure is one of three kinds:
//
//   - Configuration: the description is invalid (bad option value, unknown
//     subproject reference, dependency cycle, malformed repository).
//   - Resolution: a declared plugin or dependency is not available from any
//     registered repository.
//   - Filesystem: the output tree could not be read or removed.
//
// All of them are fatal. Nothing in this module retries or downgrades them;
// they are surfaced verbatim to the invoking process, which maps the kind to an
// exit code with ExitCode.
package builderr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind int

const (
	// KindUnknown is never produced by this package; it is what Of reports for
	// foreign errors.
	KindUnknown Kind = iota
	KindConfiguration
	KindResolution
	KindFilesystem
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindResolution:
		return "resolution"
	case KindFilesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Op names the phase that failed (for example
// "evaluation-order"), Subject the thing it failed on (a subproject name, a
// coordinate, a path).
type Error struct {
	Kind    Kind
	Op      string
	Subject string
	Err     error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	sb.WriteString(" error")
	if e.Op != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.Op)
	}
	if e.Subject != "" {
		fmt.Fprintf(&sb, " (%s)", e.Subject)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, builderr.ErrResolution).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Subject == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrResolution    = &Error{Kind: KindResolution}
	ErrFilesystem    = &Error{Kind: KindFilesystem}
)

// Configuration builds a configuration error.
func Configuration(op, subject string, err error) error {
	return &Error{Kind: KindConfiguration, Op: op, Subject: subject, Err: err}
}

// Configurationf builds a configuration error from a format string.
func Configurationf(op, subject, format string, args ...any) error {
	return Configuration(op, subject, fmt.Errorf(format, args...))
}

// Resolution builds a resolution error.
func Resolution(op, subject string, err error) error {
	return &Error{Kind: KindResolution, Op: op, Subject: subject, Err: err}
}

// Filesystem builds a filesystem error.
func Filesystem(op, subject string, err error) error {
	return &Error{Kind: KindFilesystem, Op: op, Subject: subject, Err: err}
}

// Of returns the kind of the first *Error in err's chain.
func Of(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

// Exit codes reported by the CLI.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitUsage         = 2
	ExitConfiguration = 3
	ExitResolution    = 4
	ExitFilesystem    = 5
)

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch Of(err) {
	case KindConfiguration:
		return ExitConfiguration
	case KindResolution:
		return ExitResolution
	case KindFilesystem:
		return ExitFilesystem
	default:
		return ExitFailure
	}
}
