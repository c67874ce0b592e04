// Package signature parses DBus type signatures into type trees.
//
// A signature is a string of type codes describing zero or more
// complete types, e.g. "a{sv}" or "(ii)s". Parse turns it into one
// *Type per complete type. Each Type carries its type code, its wire
// alignment, and its member or element types.
package signature

import (
	"strings"

	"github.com/creachadair/mds/mapset"
)

// Type codes. Structs and dict entries are written "(...)" and "{..}"
// in signature strings, but are identified by the codes 'r' and 'e'
// in a Type.
const (
	CodeByte       = 'y'
	CodeBoolean    = 'b'
	CodeInt16      = 'n'
	CodeUInt16     = 'q'
	CodeInt32      = 'i'
	CodeUInt32     = 'u'
	CodeInt64      = 'x'
	CodeUInt64     = 't'
	CodeDouble     = 'd'
	CodeUnixFD     = 'h'
	CodeString     = 's'
	CodeObjectPath = 'o'
	CodeSignature  = 'g'
	CodeArray      = 'a'
	CodeStruct     = 'r'
	CodeDictEntry  = 'e'
	CodeVariant    = 'v'
)

var (
	// fixedCodes are the codes of types with a constant wire width.
	fixedCodes = mapset.New[byte](
		CodeByte,
		CodeBoolean,
		CodeInt16,
		CodeUInt16,
		CodeInt32,
		CodeUInt32,
		CodeInt64,
		CodeUInt64,
		CodeDouble,
		CodeUnixFD,
	)

	// stringCodes are the codes of length-prefixed, NUL-terminated
	// types.
	stringCodes = mapset.New[byte](
		CodeString,
		CodeObjectPath,
		CodeSignature,
	)

	// alignments maps type codes to their wire alignment.
	alignments = map[byte]int{
		CodeByte:       1,
		CodeBoolean:    4,
		CodeInt16:      2,
		CodeUInt16:     2,
		CodeInt32:      4,
		CodeUInt32:     4,
		CodeInt64:      8,
		CodeUInt64:     8,
		CodeDouble:     8,
		CodeUnixFD:     4,
		CodeString:     4,
		CodeObjectPath: 4,
		CodeSignature:  1,
		CodeArray:      4,
		CodeStruct:     8,
		CodeDictEntry:  8,
		CodeVariant:    1,
	}
)

// A Type describes one complete DBus type.
//
// Types returned by this package are shared and must not be
// modified.
type Type struct {
	// Code is the type's code, one of the Code constants.
	Code byte
	// Members are the field types of a struct, or the key and value
	// types of a dict entry.
	Members []*Type
	// Child is the element type of an array.
	Child *Type
}

// Alignment returns the wire alignment of values of type t, or 0 if
// t has an unknown code.
func (t *Type) Alignment() int {
	return alignments[t.Code]
}

// IsFixed reports whether t is a fixed-width basic type.
func (t *Type) IsFixed() bool { return fixedCodes.Has(t.Code) }

// IsStringLike reports whether t is a string, object path or
// signature.
func (t *Type) IsStringLike() bool { return stringCodes.Has(t.Code) }

// IsBasic reports whether t is a basic type, i.e. a valid dict entry
// key type.
func (t *Type) IsBasic() bool { return t.IsFixed() || t.IsStringLike() }

// IsDict reports whether t is an array of dict entries.
func (t *Type) IsDict() bool {
	return t.Code == CodeArray && t.Child != nil && t.Child.Code == CodeDictEntry
}

// String returns the signature string of t.
func (t *Type) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Type) write(b *strings.Builder) {
	switch t.Code {
	case CodeArray:
		b.WriteByte('a')
		if t.Child != nil {
			t.Child.write(b)
		}
	case CodeStruct:
		b.WriteByte('(')
		for _, m := range t.Members {
			m.write(b)
		}
		b.WriteByte(')')
	case CodeDictEntry:
		b.WriteByte('{')
		for _, m := range t.Members {
			m.write(b)
		}
		b.WriteByte('}')
	default:
		b.WriteByte(t.Code)
	}
}

// Join returns the signature string of the concatenation of ts.
func Join(ts []*Type) string {
	var b strings.Builder
	for _, t := range ts {
		t.write(&b)
	}
	return b.String()
}

// Basic returns the Type for the given basic or variant type code.
// It panics if code is not one of those.
func Basic(code byte) *Type {
	ret, ok := basicTypes[code]
	if !ok {
		panic("signature.Basic called with non-basic type code " + string(rune(code)))
	}
	return ret
}

var basicTypes = func() map[byte]*Type {
	ret := map[byte]*Type{
		CodeVariant: {Code: CodeVariant},
	}
	for c := range fixedCodes {
		ret[c] = &Type{Code: c}
	}
	for c := range stringCodes {
		ret[c] = &Type{Code: c}
	}
	return ret
}()

// ArrayOf returns the type of arrays of elem.
func ArrayOf(elem *Type) *Type {
	return &Type{Code: CodeArray, Child: elem}
}

// StructOf returns the type of structs with the given field types.
func StructOf(fields ...*Type) *Type {
	return &Type{Code: CodeStruct, Members: fields}
}

// DictOf returns the type of dictionaries from key to val, i.e. an
// array of dict entries.
func DictOf(key, val *Type) *Type {
	return ArrayOf(&Type{Code: CodeDictEntry, Members: []*Type{key, val}})
}
