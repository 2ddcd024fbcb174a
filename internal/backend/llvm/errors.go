package llvm

import (
	"errors"
	"fmt"

	"zenc/internal/diag"
	"zenc/internal/source"
)

// ErrorKind classifies code generation failures.
type ErrorKind uint8

const (
	ErrTypeMismatch ErrorKind = iota + 1
	ErrTypeError
	ErrUndeclaredVariable
	ErrUndeclaredFunction
	ErrMissingReturn
	ErrUnsupportedFeature
	ErrInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrTypeError:
		return "TypeError"
	case ErrUndeclaredVariable:
		return "UndeclaredVariable"
	case ErrUndeclaredFunction:
		return "UndeclaredFunction"
	case ErrMissingReturn:
		return "MissingReturnStatement"
	case ErrUnsupportedFeature:
		return "UnsupportedFeature"
	case ErrInternal:
		return "InternalError"
	}
	return "Unknown"
}

// Code maps the kind onto its diagnostic code.
func (k ErrorKind) Code() diag.Code {
	switch k {
	case ErrTypeMismatch:
		return diag.CgnTypeMismatch
	case ErrTypeError:
		return diag.CgnTypeError
	case ErrUndeclaredVariable:
		return diag.CgnUndeclaredVariable
	case ErrUndeclaredFunction:
		return diag.CgnUndeclaredFunction
	case ErrMissingReturn:
		return diag.CgnMissingReturnStatement
	case ErrUnsupportedFeature:
		return diag.CgnUnsupportedFeature
	}
	return diag.CgnInternalError
}

// CompileError is the single error type returned by the code generator.
// Compilation stops at the first one.
type CompileError struct {
	Kind     ErrorKind
	Msg      string
	Expected string // TypeMismatch only
	Found    string // TypeMismatch only
	Span     *source.Span
}

func (e *CompileError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if e.Kind == ErrTypeMismatch && (e.Expected != "" || e.Found != "") {
		msg = fmt.Sprintf("%s: expected %s, found %s", msg, e.Expected, e.Found)
	}
	if e.Span != nil {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Span, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// ToDiagnostic renders the error as an error-severity diagnostic.
func (e *CompileError) ToDiagnostic() diag.Diagnostic {
	msg := e.Msg
	if e.Kind == ErrTypeMismatch && (e.Expected != "" || e.Found != "") {
		msg = fmt.Sprintf("%s: expected %s, found %s", msg, e.Expected, e.Found)
	}
	if e.Span == nil {
		return diag.NewUnplaced(diag.SevError, e.Kind.Code(), msg)
	}
	return diag.NewError(e.Kind.Code(), *e.Span, msg)
}

// KindOf extracts the CompileError kind from err, or 0.
func KindOf(err error) ErrorKind {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func newError(kind ErrorKind, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func typeMismatch(expected, found fmt.Stringer, format string, args ...any) *CompileError {
	e := newError(ErrTypeMismatch, format, args...)
	if expected != nil {
		e.Expected = expected.String()
	}
	if found != nil {
		e.Found = found.String()
	}
	return e
}

func typeError(format string, args ...any) *CompileError {
	return newError(ErrTypeError, format, args...)
}

func undeclaredVariable(name string) *CompileError {
	return newError(ErrUndeclaredVariable, "undeclared variable or type %q", name)
}

func undeclaredFunction(name string) *CompileError {
	return newError(ErrUndeclaredFunction, "undeclared function %q", name)
}

func unsupported(format string, args ...any) *CompileError {
	return newError(ErrUnsupportedFeature, format, args...)
}

func internalError(format string, args ...any) *CompileError {
	return newError(ErrInternal, format, args...)
}

// withSpan attaches sp to a CompileError that has no position yet.
func withSpan(err error, sp source.Span) error {
	if err == nil || sp.Empty() {
		return err
	}
	var ce *CompileError
	if errors.As(err, &ce) && ce.Span == nil {
		s := sp
		ce.Span = &s
	}
	return err
}
