package dbus

import (
	"strings"

	"github.com/SchorppDA/dbus/signature"
)

// ObjectPath is a DBus object path: "/", or one or more elements of
// the form "/name", where name is made of [A-Za-z0-9_].
type ObjectPath string

// NewObjectPath returns s as an ObjectPath, or an
// [InvalidPacketError] if s is not a valid object path.
func NewObjectPath(s string) (ObjectPath, error) {
	if err := validPath(s); err != nil {
		return "", err
	}
	return ObjectPath(s), nil
}

func (ObjectPath) Type() *signature.Type { return typeObjectPath }
func (p ObjectPath) Plain() any           { return string(p) }

func validPath(s string) error {
	if s == "/" {
		return nil
	}
	if !strings.HasPrefix(s, "/") {
		return invalidErr("object path %q must begin with /", s)
	}
	for i, elem := range strings.Split(s[1:], "/") {
		if elem == "" {
			return invalidErr("object path %q has empty element %d", s, i)
		}
		for _, c := range []byte(elem) {
			if !isPathByte(c) {
				return invalidErr("object path %q has invalid character %q", s, c)
			}
		}
	}
	return nil
}

func isPathByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}
