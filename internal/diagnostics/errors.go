package diagnostics

import (
	"fmt"
)

// ErrorCode identifies a class of diagnostic.
type ErrorCode string

const (
	// Manifest errors
	ErrM001 ErrorCode = "M001" // Cannot read or parse compilation unit
	ErrM002 ErrorCode = "M002" // Invalid type expression
	ErrM003 ErrorCode = "M003" // Invalid declaration
	ErrM004 ErrorCode = "M004" // Invalid call site

	// Resolution errors
	ErrR001 ErrorCode = "R001" // No candidate
	ErrR002 ErrorCode = "R002" // Ambiguous candidates
	ErrR003 ErrorCode = "R003" // Malformed instance constructor
	ErrR004 ErrorCode = "R004" // Cyclic instance dependency
	ErrR005 ErrorCode = "R005" // Internal error

	// Code generation errors
	ErrC001 ErrorCode = "C001"
)

var errorMessages = map[ErrorCode]string{
	ErrM001: "cannot load unit: %s",
	ErrM002: "invalid type expression: %s",
	ErrM003: "invalid declaration: %s",
	ErrM004: "invalid call site: %s",
	ErrR001: "%s",
	ErrR002: "%s",
	ErrR003: "%s",
	ErrR004: "%s",
	ErrR005: "internal error: %s",
	ErrC001: "code generation failed: %s",
}

// Pos is a source position. Line and Column are 1-based; zero means unknown.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.Line == 0 {
		return "-"
	}
	if p.Column == 0 {
		return fmt.Sprintf("%d", p.Line)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// DiagnosticError is a user-facing error attached to a source position.
type DiagnosticError struct {
	Code    ErrorCode
	Pos     Pos
	File    string
	Message string
}

func (e *DiagnosticError) Error() string {
	loc := e.Pos.String()
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return fmt.Sprintf("%s [%s]: %s", loc, e.Code, e.Message)
}

// NewError formats the message template of code with args.
func NewError(code ErrorCode, pos Pos, args ...interface{}) *DiagnosticError {
	template, ok := errorMessages[code]
	if !ok {
		template = "%s"
	}
	return &DiagnosticError{Code: code, Pos: pos, Message: fmt.Sprintf(template, args...)}
}

// IsFatal reports whether the diagnostic aborts its compilation unit.
func (e *DiagnosticError) IsFatal() bool {
	return e.Code == ErrR005 || e.Code == ErrM001
}
