package dbus

import (
	"github.com/SchorppDA/dbus/signature"
)

// Signature is a DBus type signature value, as found in variants and
// message headers.
type Signature string

// NewSignature returns s as a Signature, or an [InvalidPacketError]
// if s is not a valid sequence of zero or more complete types.
func NewSignature(s string) (Signature, error) {
	if _, err := signature.Parse(s); err != nil {
		return "", &InvalidPacketError{err}
	}
	return Signature(s), nil
}

func (Signature) Type() *signature.Type { return typeSignature }
func (s Signature) Plain() any           { return string(s) }

// Types returns the complete types described by s.
func (s Signature) Types() ([]*signature.Type, error) {
	return signature.Parse(string(s))
}
