// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package errs defines the error kinds returned by every public
// operation in the planner. Every kind named in the design (viewport
// validation, bitstream parsing, plugin failures, MPD file I/O) maps
// to exactly one Kind value so callers can switch on failure class
// without string matching.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the class of failure. Kind values are stable; read
// one from an error with Of, or compare with errors.Is against an
// *Error carrying the Kind (see Error.Is).
type Kind int

const (
	// NullInput is returned when a required pointer/slice/handle is missing.
	NullInput Kind = iota
	// InvalidViewport is returned when yaw/pitch fall outside [-180,180]/[-90,90].
	InvalidViewport
	// InvalidParameterSet is returned when an SPS/PPS fails structural validation.
	InvalidParameterSet
	// ViewportMathFailure is returned when the viewport-math collaborator errors.
	ViewportMathFailure
	// LayoutFailure is returned for packing layout failures other than the specific kinds below.
	LayoutFailure
	// PluginFailure is returned when a packing generator plugin cannot be loaded or run.
	PluginFailure
	// StreamNotFound is returned when a referenced stream index has no matching SourceLayer.
	StreamNotFound
	// InvalidVideoCount is returned when the configured and actual video stream counts disagree.
	InvalidVideoCount
	// XmlCreateFailure is returned when the MPD XML document cannot be constructed.
	XmlCreateFailure
	// CreateFolderFailure is returned when the output directory cannot be created.
	CreateFolderFailure
	// InvalidTime is returned when a time computation (e.g. UTC now) fails.
	InvalidTime
	// RealpathFailure is returned when the output directory path cannot be resolved.
	RealpathFailure
	// MissingPlugin is returned when no packing generator is registered under the requested name.
	MissingPlugin
	// IncompatibleSelection is returned when a plugin refuses a given selection cardinality N.
	IncompatibleSelection
	// LayoutOverflow is returned when a packed picture exceeds HEVC level limits.
	LayoutOverflow
	// InvalidSPS is returned when an SPS NAL unit fails to parse.
	InvalidSPS
	// InvalidPPS is returned when a PPS NAL unit fails to parse.
	InvalidPPS
	// OutputTooSmall is returned when a rewritten NAL unit would exceed the caller's output buffer.
	OutputTooSmall
)

// String names the Kind the way its constant is spelled, for logging and CLI exit messages.
func (k Kind) String() string {
	switch k {
	case NullInput:
		return "NullInput"
	case InvalidViewport:
		return "InvalidViewport"
	case InvalidParameterSet:
		return "InvalidParameterSet"
	case ViewportMathFailure:
		return "ViewportMathFailure"
	case LayoutFailure:
		return "LayoutFailure"
	case PluginFailure:
		return "PluginFailure"
	case StreamNotFound:
		return "StreamNotFound"
	case InvalidVideoCount:
		return "InvalidVideoCount"
	case XmlCreateFailure:
		return "XmlCreateFailure"
	case CreateFolderFailure:
		return "CreateFolderFailure"
	case InvalidTime:
		return "InvalidTime"
	case RealpathFailure:
		return "RealpathFailure"
	case MissingPlugin:
		return "MissingPlugin"
	case IncompatibleSelection:
		return "IncompatibleSelection"
	case LayoutOverflow:
		return "LayoutOverflow"
	case InvalidSPS:
		return "InvalidSPS"
	case InvalidPPS:
		return "InvalidPPS"
	case OutputTooSmall:
		return "OutputTooSmall"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every public planner operation.
// It carries a Kind for programmatic dispatch and, where the failure
// originated from a wrapped cause (a bitstream parse error, an I/O
// error), that cause via Unwrap so errors.Is/errors.As keep working.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// New creates an Error of the given kind with a formatted message and no cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind, preserving cause for Unwrap
// and attaching a stack trace via github.com/pkg/errors the same way
// the bitstream parsers in the example corpus do.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	if cause == nil {
		return New(kind, format, args...)
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

// Error implements error.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same Kind, so
// errors.Is(err, &errs.Error{Kind: errs.InvalidViewport}) style checks
// work; callers more typically use the Of helper below.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// Of reports the Kind of err if it is (or wraps) an *Error, and ok=false otherwise.
func Of(err error) (kind Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
