package rplcore

import "fmt"

// ErrOutOfMemory is returned when the arena cannot satisfy an allocation
// even after a GC pass.
type ErrOutOfMemory struct{}

func (ErrOutOfMemory) Error() string { return "out of memory" }

// ErrParse indicates that no object kind could parse the input, or a kind
// started parsing and then rejected it. Position is a byte offset into the
// text passed to PushText.
type ErrParse struct {
	Position int
	Message  string
}

func (err ErrParse) Error() string {
	return fmt.Sprintf("parse error at %d: %s", err.Position, err.Message)
}

// ErrType indicates an operation was applied to the wrong object kind.
type ErrType struct {
	Expected string
	Got      string
}

func (err ErrType) Error() string {
	return fmt.Sprintf("type error: expected %s, got %s", err.Expected, err.Got)
}

// ErrArithmetic indicates a domain error in an operation that explicitly
// requires finiteness. Producing a NaN or an infinity is not by itself an
// error (see decimal128 classification).
type ErrArithmetic struct {
	Message string
}

func (err ErrArithmetic) Error() string {
	if err.Message == "" {
		return "arithmetic error"
	}
	return "arithmetic error: " + err.Message
}

// ErrStackUnderflow indicates a pop (explicit or implicit, via an operator
// consuming operands) from an empty stack.
type ErrStackUnderflow struct{}

func (ErrStackUnderflow) Error() string { return "stack underflow" }

// ErrNotFound indicates Recall of a name with no binding in Globals.
type ErrNotFound struct {
	Name string
}

func (err ErrNotFound) Error() string {
	return fmt.Sprintf("not found: %s", err.Name)
}

// ErrInterrupted indicates an external interrupt was observed at an
// evaluation-step boundary.
type ErrInterrupted struct{}

func (ErrInterrupted) Error() string { return "interrupted" }
