package dbus

import (
	"github.com/SchorppDA/dbus/signature"
)

// Exact types of the basic values.
var (
	typeByte       = signature.Basic(signature.CodeByte)
	typeBoolean    = signature.Basic(signature.CodeBoolean)
	typeInt16      = signature.Basic(signature.CodeInt16)
	typeUInt16     = signature.Basic(signature.CodeUInt16)
	typeInt32      = signature.Basic(signature.CodeInt32)
	typeUInt32     = signature.Basic(signature.CodeUInt32)
	typeInt64      = signature.Basic(signature.CodeInt64)
	typeUInt64     = signature.Basic(signature.CodeUInt64)
	typeDouble     = signature.Basic(signature.CodeDouble)
	typeUnixFD     = signature.Basic(signature.CodeUnixFD)
	typeString     = signature.Basic(signature.CodeString)
	typeObjectPath = signature.Basic(signature.CodeObjectPath)
	typeSignature  = signature.Basic(signature.CodeSignature)
	typeVariant    = signature.Basic(signature.CodeVariant)

	// Types produced by variant type guessing.
	typeVariantArray = signature.ArrayOf(typeVariant)
	typeVardict      = signature.DictOf(typeString, typeVariant)
)

// sameType reports whether a and b describe the same DBus type.
func sameType(a, b *signature.Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.String() == b.String()
}
