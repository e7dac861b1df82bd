package ast

import (
	"fmt"

	"github.com/woojufon/ljd/internal/panicerr"
)

// UnsupportedGotoError is wrapped in the error PrimaryPass returns when a
// block's warp cannot be explained as a loop back-edge, a structured if's then/else exit, or a
// resolvable break. Per spec, this is a hard failure: the function being
// decompiled is abandoned, never partially structured.
type UnsupportedGotoError struct {
	Detail string
}

func (err *UnsupportedGotoError) Error() string {
	return fmt.Sprintf("unsupported GOTO: %s", err.Detail)
}

// InvariantError indicates a broken internal invariant (index mismatch,
// missing End warp, equal true/false targets before fixup, a missing
// assignment source where one was required). These are bugs in the caller's
// CFG or in this package, not malformed-but-legal input.
type InvariantError struct {
	Detail string
}

func (err *InvariantError) Error() string {
	return fmt.Sprintf("unwarp: invariant violation: %s", err.Detail)
}

func invariantErrorf(format string, args ...interface{}) *InvariantError {
	return &InvariantError{Detail: fmt.Sprintf(format, args...)}
}

func unsupportedGotof(format string, args ...interface{}) *UnsupportedGotoError {
	return &UnsupportedGotoError{Detail: fmt.Sprintf(format, args...)}
}

// recoverPass runs f under panicerr.Recover and converts any panic raised
// within it (this package's *UnsupportedGotoError and *InvariantError panics
// included) into an error return that wraps the panic value, the way core.go's halt/haltError let the rest of the teacher VM write
// straight-line code under a single panic/recover boundary.
func recoverPass(name string, f func()) (err error) {
	return panicerr.Recover(name, func() error {
		f()
		return nil
	})
}
