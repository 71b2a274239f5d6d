// Package reqerr defines the error taxonomy shared by the request core.
//
// Every error raised while building fields, predicates, groups and requests
// is a usage error detected at construction time. None of them are retried or
// recovered internally.
package reqerr

import (
	"errors"
	"fmt"
)

// Code categorizes construction errors.
type Code string

const (
	// CodeInvalidArgument indicates malformed construction input: an empty
	// name, an empty group, or a value arity that does not fit the operator.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// CodeInvalidExpression indicates an expression shape that cannot be
	// resolved to a field.
	CodeInvalidExpression Code = "INVALID_EXPRESSION"

	// CodeUnsupportedExpression indicates an expression shape that cannot be
	// turned into a predicate.
	CodeUnsupportedExpression Code = "UNSUPPORTED_EXPRESSION"

	// CodeUnmappedType indicates the name mapping could not resolve a type.
	CodeUnmappedType Code = "UNMAPPED_TYPE"

	// CodeUnsupportedHints indicates a statement builder rejected table hints.
	CodeUnsupportedHints Code = "UNSUPPORTED_HINTS"
)

// Error is the structured error returned by the request core.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Expr is the textual form of the offending expression, if any.
	Expr string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Expr != "" {
		msg = fmt.Sprintf("%s (expression: %s)", msg, e.Expr)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidArgument creates a CodeInvalidArgument error.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// InvalidExpression creates a CodeInvalidExpression error for expr.
func InvalidExpression(expr fmt.Stringer, format string, args ...any) *Error {
	return &Error{Code: CodeInvalidExpression, Message: fmt.Sprintf(format, args...), Expr: text(expr)}
}

// UnsupportedExpression creates a CodeUnsupportedExpression error for expr.
func UnsupportedExpression(expr fmt.Stringer, format string, args ...any) *Error {
	return &Error{Code: CodeUnsupportedExpression, Message: fmt.Sprintf(format, args...), Expr: text(expr)}
}

// UnmappedType creates a CodeUnmappedType error.
func UnmappedType(typeName string, cause error) *Error {
	return &Error{
		Code:    CodeUnmappedType,
		Message: fmt.Sprintf("type %q has no mapped name", typeName),
		Err:     cause,
	}
}

// UnsupportedHints creates a CodeUnsupportedHints error.
func UnsupportedHints(dialect, hints string) *Error {
	return &Error{
		Code:    CodeUnsupportedHints,
		Message: fmt.Sprintf("dialect %s does not support table hints %q", dialect, hints),
	}
}

// CodeOf returns the code of err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) Code {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsInvalidArgument reports whether err is a CodeInvalidArgument error.
func IsInvalidArgument(err error) bool { return CodeOf(err) == CodeInvalidArgument }

// IsInvalidExpression reports whether err is a CodeInvalidExpression error.
func IsInvalidExpression(err error) bool { return CodeOf(err) == CodeInvalidExpression }

// IsUnsupportedExpression reports whether err is a CodeUnsupportedExpression error.
func IsUnsupportedExpression(err error) bool { return CodeOf(err) == CodeUnsupportedExpression }

// IsUnmappedType reports whether err is a CodeUnmappedType error.
func IsUnmappedType(err error) bool { return CodeOf(err) == CodeUnmappedType }

// IsUnsupportedHints reports whether err is a CodeUnsupportedHints error.
func IsUnsupportedHints(err error) bool { return CodeOf(err) == CodeUnsupportedHints }

func text(s fmt.Stringer) string {
	if s == nil {
		return "<nil>"
	}
	return s.String()
}
