// Package errors provides structured error reporting for Loom.
//
// None of these errors stop a session. The transport reports them through the
// global ErrorHandler and keeps serving, so the client always receives a
// fresh view.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindTransport indicates a websocket or HTTP failure.
	KindTransport
	// KindParsing indicates a client frame that could not be decoded.
	KindParsing
	// KindInit indicates an initialization error.
	KindInit
	// KindRender indicates a failure to render or encode a view.
	KindRender
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindDispatch indicates a failure while dispatching an interaction.
	KindDispatch
	// KindConfig indicates invalid configuration.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindParsing:
		return "parsing"
	case KindInit:
		return "init"
	case KindRender:
		return "render"
	case KindPanic:
		return "panic"
	case KindDispatch:
		return "dispatch"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// LoomError represents a structured error in Loom.
type LoomError struct {
	// Op is the operation that failed (e.g., "server.readFrame").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Session is the client session identifier, if applicable.
	Session string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *LoomError) Error() string {
	if e.Session != "" {
		return fmt.Sprintf("%s [%s] session=%s: %v", e.Op, e.Kind, e.Session, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *LoomError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "server.session").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a client frame that could not be decoded.
type ParseError struct {
	// Session is the session that sent the frame.
	Session string
	// DataType is the expected type name.
	DataType string
	// Got is the data received.
	Got any
	// Reason describes what was wrong, if known.
	Reason string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("failed to parse %s", e.DataType)
	if e.Session != "" {
		msg += " from session " + e.Session
	}
	if e.Reason != "" {
		return msg + ": " + e.Reason
	}
	return fmt.Sprintf("%s: got %T", msg, e.Got)
}

// CallbackError represents a bound callback that failed during dispatch.
type CallbackError struct {
	// Node is the identifier of the node whose callback failed.
	Node uint64
	// NodeType is the node variant name (Button, Input, ...).
	NodeType string
	// Label is the button label, if any.
	Label string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *CallbackError) Error() string {
	target := fmt.Sprintf("%s(%d)", e.NodeType, e.Node)
	if e.Label != "" {
		target = fmt.Sprintf("%s(%d %q)", e.NodeType, e.Node, e.Label)
	}
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s callback: %v", target, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s callback: %v", target, e.Err)
	}
	return fmt.Sprintf("unknown error in %s callback", target)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by Loom.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *LoomError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleCallbackError is called when a bound callback fails.
	HandleCallbackError(err *CallbackError)
}
