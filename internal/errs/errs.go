// Package errs defines the error taxonomy shared by the ssam packages and the
// mapping from error kinds to process exit codes.
//
// Callers classify failures by wrapping them in *Error (usually through one
// of the constructors below) and test for a kind with errors.Is:
//
//	if errors.Is(err, errs.ErrCapacity) { ... }
package errs

import (
	"errors"
	"fmt"
)

// Error kinds. They are sentinels so that errors.Is works through any amount
// of fmt.Errorf("%w") wrapping.
var (
	// ErrConfig: malformed or contradictory options.
	ErrConfig = errors.New("configuration error")
	// ErrIO: unreadable or unwritable file.
	ErrIO = errors.New("i/o error")
	// ErrConsistency: empty dataset or columns of unequal length.
	ErrConsistency = errors.New("consistency error")
	// ErrCapacity: requested sizes exceed the available units without replacement.
	ErrCapacity = errors.New("capacity error")
	// ErrInvariant: internal invariant violated (e.g. missing destination).
	ErrInvariant = errors.New("invariant violation")
)

// Error attaches a kind and the failing operation to an underlying error.
type Error struct {
	Kind error  // one of the Err* sentinels
	Op   string // short operation name, e.g. "sizes" or "open input"
	Err  error  // optional cause
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Op)
	default:
		return e.Kind.Error()
	}
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newf(kind error, op, format string, a ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, a...)}
}

// Config returns an ErrConfig error for op with a formatted detail.
func Config(op, format string, a ...any) error { return newf(ErrConfig, op, format, a...) }

// Consistency returns an ErrConsistency error with a formatted detail.
func Consistency(op, format string, a ...any) error { return newf(ErrConsistency, op, format, a...) }

// Capacity returns an ErrCapacity error with a formatted detail.
func Capacity(op, format string, a ...any) error { return newf(ErrCapacity, op, format, a...) }

// Invariant returns an ErrInvariant error with a formatted detail.
func Invariant(op, format string, a ...any) error { return newf(ErrInvariant, op, format, a...) }

// IO wraps err as an ErrIO error. A nil err yields nil.
func IO(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrIO, Op: op, Err: err}
}

// Exit codes returned by the ssam binary.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitInvariant = 2
)

// ExitCode maps err to the process exit status: 0 for nil, 2 for invariant
// violations, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvariant):
		return ExitInvariant
	default:
		return ExitFailure
	}
}
