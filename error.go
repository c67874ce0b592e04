package dbus

import (
	"errors"
	"fmt"
	"io"

	"github.com/SchorppDA/dbus/signature"
)

// TypeError is the error returned when a value's shape doesn't match
// the DBus type it's being converted to.
type TypeError struct {
	// Type is the DBus signature of the target type.
	Type string
	// Reason is an explanation of why the value doesn't fit the type.
	Reason error
}

func (e *TypeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("dbus type error: %s", e.Reason)
	}
	return fmt.Sprintf("dbus cannot represent value as %q: %s", e.Type, e.Reason)
}

func (e *TypeError) Unwrap() error {
	return e.Reason
}

func typeErr(t *signature.Type, reason string, args ...any) error {
	ts := ""
	if t != nil {
		ts = t.String()
	}
	return &TypeError{ts, fmt.Errorf(reason, args...)}
}

// RangeError is the error returned when a number doesn't fit in the
// DBus integer type it's being converted to.
type RangeError struct {
	// Type is the DBus signature of the target integer type.
	Type string
	// Value is the out of range value.
	Value any
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("value %v out of range for dbus type %q", e.Value, e.Type)
}

// InvalidPacketError is the error returned when wire data, or a value
// destined for the wire, violates the DBus wire format.
type InvalidPacketError struct {
	// Reason is an explanation of what's wrong with the data.
	Reason error
}

func (e *InvalidPacketError) Error() string {
	return fmt.Sprintf("invalid dbus packet: %s", e.Reason)
}

func (e *InvalidPacketError) Unwrap() error {
	return e.Reason
}

func invalidErr(reason string, args ...any) error {
	return &InvalidPacketError{fmt.Errorf(reason, args...)}
}

// IncompleteBufferError is the error returned by [Unmarshaller] when
// the input ends before a complete value has been read.
//
// Unlike other errors, IncompleteBufferError is recoverable: the
// Unmarshaller's position is unchanged, and decoding can be retried
// after more input is provided with [Unmarshaller.Feed].
type IncompleteBufferError struct {
	// Reason describes the read that ran out of input.
	Reason error
}

func (e *IncompleteBufferError) Error() string {
	return fmt.Sprintf("incomplete dbus buffer: %s", e.Reason)
}

func (e *IncompleteBufferError) Unwrap() error {
	return e.Reason
}

// UnsupportedTypeError is the error returned when a type code has no
// known encoding.
type UnsupportedTypeError struct {
	// Code is the unsupported type code.
	Code byte
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported dbus type code %q", e.Code)
}

// codecError is implemented by the error types of this package.
type codecError interface {
	error
	codecError()
}

func (*TypeError) codecError()             {}
func (*RangeError) codecError()            {}
func (*InvalidPacketError) codecError()    {}
func (*IncompleteBufferError) codecError() {}
func (*UnsupportedTypeError) codecError()  {}

// IsIncomplete reports whether err is, or wraps, an
// [IncompleteBufferError].
func IsIncomplete(err error) bool {
	var ie *IncompleteBufferError
	return errors.As(err, &ie)
}

// withContext wraps err with a description of where it happened.
func withContext(err error, msg string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(msg, args...), err)
}

// wireErr converts an error from the fragments package into the
// appropriate error from this package. Errors that already belong to
// this package are returned unchanged.
func wireErr(err error) error {
	var ce codecError
	if err == nil || errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return &IncompleteBufferError{err}
	}
	return &InvalidPacketError{err}
}
