package tinybasic

import (
	"errors"
	"fmt"
)

// ErrUnexpected is the one error kind every halt reports. Callers that only
// care whether execution stopped test for it with errors.Is.
var ErrUnexpected = errors.New("unexpected condition")

// Halt causes. Each one carries the message printed to the console.
var (
	ErrSyntax             = errors.New("Syntax error")
	ErrDivisionByZero     = errors.New("Division by zero error")
	ErrUndefinedLine      = errors.New("Undef'd statement error")
	ErrReturnWithoutGosub = errors.New("RETURN without GOSUB")
	ErrBreak              = errors.New("Break")
	ErrOutOfMemory        = errors.New("Out of memory error")
	ErrSubscript          = errors.New("Subscript out of range error")
	ErrRedimensioned      = errors.New("Redim'd array error")
)

// Storage failures. They are reported on the console and never stop the REPL.
var (
	ErrNoStorage     = errors.New("storage not available")
	ErrEmptyFilename = errors.New("missing file name")
)

// BASICError is a halt raised while executing a line.
type BASICError struct {
	Cause      error // one of the halt causes above
	LineNumber int   // program line being executed
	DirectMode bool  // raised by a statement typed at the prompt
}

// Error renders the classic message, e.g. "?Division by zero error in 10".
func (be *BASICError) Error() string {
	if be.DirectMode {
		return "?" + be.Cause.Error()
	}
	return fmt.Sprintf("?%s in %d", be.Cause.Error(), be.LineNumber)
}

// Unwrap exposes the halt cause.
func (be *BASICError) Unwrap() error {
	return be.Cause
}

// Is makes every BASICError match ErrUnexpected.
func (be *BASICError) Is(target error) bool {
	return target == ErrUnexpected
}

// NewBASICError creates a halt for the given line.
func NewBASICError(cause error, lineNumber int, directMode bool) *BASICError {
	return &BASICError{
		Cause:      cause,
		LineNumber: lineNumber,
		DirectMode: directMode,
	}
}
