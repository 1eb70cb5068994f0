package qasm

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax marks malformed OpenQASM source.
	ErrSyntax = errors.New("syntax error")
	// ErrUnsupported marks valid OpenQASM 2.0 that this reader does not handle,
	// such as custom gate definitions and classically controlled operations.
	ErrUnsupported = errors.New("unsupported construct")
)

/*
SyntaxError locates a parse failure. Statement is the 1-based index of the
`;`-terminated statement that failed.
*/
type SyntaxError struct {
	Statement int
	Text      string
	Err       error
	Msg       string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("qasm: statement %d %q: %v: %s", e.Statement, e.Text, e.Err, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
