package dbus

import (
	"strings"
	"unicode/utf8"

	"github.com/SchorppDA/dbus/signature"
)

// String is a DBus string. It is valid UTF-8 without NUL bytes.
type String string

// NewString returns s as a String, or an [InvalidPacketError] if s
// contains a NUL byte or is not valid UTF-8.
func NewString(s string) (String, error) {
	if err := validString(s); err != nil {
		return "", err
	}
	return String(s), nil
}

func (String) Type() *signature.Type { return typeString }
func (s String) Plain() any           { return string(s) }

func validString(s string) error {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return invalidErr("string contains NUL byte at offset %d", i)
	}
	if !utf8.ValidString(s) {
		return invalidErr("string %q is not valid UTF-8", s)
	}
	return nil
}
