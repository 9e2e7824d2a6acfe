package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDiscover     Phase = "discover"     // manifest scanning and decoding
	PhaseRegistration Phase = "registration" // adding units to a loader or opener
	PhaseResolve      Phase = "resolve"      // dependency wiring and ordering
	PhaseLoad         Phase = "load"         // opening and activating units
	PhaseLifecycle    Phase = "lifecycle"    // initialise/finalise callbacks
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindInvalidInput   Kind = "invalid_input"
	KindParseFailed    Kind = "parse_failed"
	KindAlreadyExists  Kind = "already_exists"
	KindUnsupported    Kind = "unsupported"
	KindOpenFailed     Kind = "open_failed"
	KindCallbackFailed Kind = "callback_failed"
	KindCloseFailed    Kind = "close_failed"
	KindIO             Kind = "io"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause     error
	Phase     Phase
	Kind      Kind
	Component string
	Location  string
	Detail    string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Component != "" {
		b.WriteString(" component ")
		b.WriteString(fmt.Sprintf("%q", e.Component))
	}

	if e.Location != "" {
		b.WriteString(" at ")
		b.WriteString(e.Location)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Component sets the component name
func (b *Builder) Component(name string) *Builder {
	b.err.Component = name
	return b
}

// Location sets the location string
func (b *Builder) Location(loc string) *Builder {
	b.err.Location = loc
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotFound creates a not-found error for a named thing
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// ParseFailed creates a parse error for a discovery document
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseDiscover,
		Kind:   KindParseFailed,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// AlreadyExists creates a duplicate registration error
func AlreadyExists(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAlreadyExists,
		Detail: fmt.Sprintf("%s %q already registered", what, name),
	}
}

// OpenFailed creates an open-capability failure error
func OpenFailed(location string, cause error) *Error {
	return &Error{
		Phase:    PhaseLoad,
		Kind:     KindOpenFailed,
		Location: location,
		Cause:    cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
