package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an execution failed
type ErrorKind string

const (
	KindUnsupportedLanguage   ErrorKind = "UnsupportedLanguage"
	KindNoEntryPointFound     ErrorKind = "NoEntryPointFound"
	KindCompileError          ErrorKind = "CompileError"
	KindRuntimeError          ErrorKind = "RuntimeError"
	KindTimeout               ErrorKind = "Timeout"
	KindOutputParseError      ErrorKind = "OutputParseError"
	KindUnsupportedInputShape ErrorKind = "UnsupportedInputShape"
	KindToolchainUnavailable  ErrorKind = "ToolchainUnavailable"
	KindInternalError         ErrorKind = "InternalError"
)

// Error is a classified judge error
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Errorf creates a classified error with a formatted message
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error, keeping its text as the message
func Wrap(err error, kind ErrorKind, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if format != "" {
		msg = fmt.Sprintf(format, args...) + ": " + msg
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the kind of err, InternalError for unclassified errors
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternalError
}

// Sentinel values usable with errors.Is
var (
	ErrUnsupportedLanguage   = &Error{Kind: KindUnsupportedLanguage}
	ErrNoEntryPointFound     = &Error{Kind: KindNoEntryPointFound}
	ErrCompile               = &Error{Kind: KindCompileError}
	ErrRuntime               = &Error{Kind: KindRuntimeError}
	ErrTimeout               = &Error{Kind: KindTimeout}
	ErrOutputParse           = &Error{Kind: KindOutputParseError}
	ErrUnsupportedInputShape = &Error{Kind: KindUnsupportedInputShape}
	ErrToolchainUnavailable  = &Error{Kind: KindToolchainUnavailable}
)
