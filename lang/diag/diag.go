// Package diag implements the transpiler's error and diagnostics reporter
// (spec.md §4.5 / §7): a traceback through the chain of spawn-instructions
// (imports, macro/function calls, block heads) down to the offending
// token, grounded on original_source/sfmlog.py's _error/_warning.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skyethefoxyfox/sfmlog/lang/token"
)

// Frame is one entry of a traceback: the position at which a spawned
// evaluator (import, macro/function call, or block-reading head) began.
type Frame struct {
	Pos token.Position
}

// Error is a fatal diagnostic: a message plus the chain of owner frames
// leading to the offending position. Exit code 2 per spec.md §6.
type Error struct {
	Message string
	Owners  []Frame
	At      token.Position
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "error: %s\ntraceback (most recent call last):", e.Message)
	for _, f := range e.Owners {
		fmt.Fprintf(&b, "\n\t%s", f.Pos)
	}
	fmt.Fprintf(&b, "\n\t%s", e.At)
	return b.String()
}

// New builds a fatal Error with the given owner chain and offending
// position.
func New(message string, owners []Frame, at token.Position) *Error {
	return &Error{Message: message, Owners: owners, At: at}
}

// Newf is New with fmt.Sprintf-style formatting of message.
func Newf(owners []Frame, at token.Position, format string, args ...any) *Error {
	return New(fmt.Sprintf(format, args...), owners, at)
}

// Warning is a non-fatal diagnostic with the same traceback shape as
// Error; the caller continues execution after recording/printing it.
type Warning struct {
	Message string
	Owners  []Frame
	At      token.Position
}

func (w *Warning) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "warning: %s\ntraceback (most recent call last):", w.Message)
	for _, f := range w.Owners {
		fmt.Fprintf(&b, "\n\t%s", f.Pos)
	}
	fmt.Fprintf(&b, "\n\t%s", w.At)
	return b.String()
}

// NewWarning builds a Warning with the given owner chain and position.
func NewWarning(message string, owners []Frame, at token.Position) *Warning {
	return &Warning{Message: message, Owners: owners, At: at}
}

// AsError reports whether err is (or wraps) a *diag.Error, for callers
// that need to distinguish a fatal transpile diagnostic from an I/O or
// other infrastructure error (e.g. to choose the process exit code).
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
