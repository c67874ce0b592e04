package dbus

import (
	"slices"

	"github.com/SchorppDA/dbus/signature"
)

// Array is a DBus array. An array whose element type is a dict entry
// is a dictionary.
//
// The zero Array is not a valid value; use [NewArray] or [MakeValue].
type Array struct {
	typ   *signature.Type
	elems []Value
}

// NewArray returns an Array of type t containing elems. Each element
// is converted to t's element type as by [MakeValue].
func NewArray(t *signature.Type, elems ...any) (Array, error) {
	if t == nil || t.Code != signature.CodeArray {
		return Array{}, typeErr(t, "not an array type")
	}
	return makeArray(t, elems)
}

func (a Array) Type() *signature.Type { return a.typ }

// Plain returns a map[any]any if a is a dictionary, or []any
// otherwise.
func (a Array) Plain() any {
	if a.IsDict() {
		ret := make(map[any]any, len(a.elems))
		for _, e := range a.elems {
			de := e.(DictEntry)
			ret[de.key.Plain()] = de.val.Plain()
		}
		return ret
	}
	ret := make([]any, len(a.elems))
	for i, e := range a.elems {
		ret[i] = e.Plain()
	}
	return ret
}

// Len returns the number of elements in a.
func (a Array) Len() int { return len(a.elems) }

// Index returns the i-th element of a.
func (a Array) Index(i int) Value { return a.elems[i] }

// Elems returns a copy of a's elements.
func (a Array) Elems() []Value { return slices.Clone(a.elems) }

// IsDict reports whether a is a dictionary.
func (a Array) IsDict() bool { return a.typ != nil && a.typ.IsDict() }

// Entries returns a copy of a's dict entries, or nil if a is not a
// dictionary.
func (a Array) Entries() []DictEntry {
	if !a.IsDict() {
		return nil
	}
	ret := make([]DictEntry, len(a.elems))
	for i, e := range a.elems {
		ret[i] = e.(DictEntry)
	}
	return ret
}

// Map returns a's dict entries as a map, keyed by the plain value of
// each entry's key. If a has duplicate keys, the last one wins. Map
// returns nil if a is not a dictionary.
func (a Array) Map() map[any]Value {
	if !a.IsDict() {
		return nil
	}
	ret := make(map[any]Value, len(a.elems))
	for _, e := range a.elems {
		de := e.(DictEntry)
		ret[de.key.Plain()] = de.val
	}
	return ret
}

// Struct is a DBus struct.
//
// The zero Struct is not a valid value; use [NewStruct] or
// [MakeValue].
type Struct struct {
	typ    *signature.Type
	fields []Value
}

// NewStruct returns a Struct of type t with the given fields, which
// must match t's member types in number. Each field is converted to
// its member type as by [MakeValue].
func NewStruct(t *signature.Type, fields ...any) (Struct, error) {
	if t == nil || t.Code != signature.CodeStruct {
		return Struct{}, typeErr(t, "not a struct type")
	}
	vs, err := makeMembers(t, fields)
	if err != nil {
		return Struct{}, err
	}
	return Struct{t, vs}, nil
}

func (s Struct) Type() *signature.Type { return s.typ }

// Plain returns the plain values of s's fields as a []any.
func (s Struct) Plain() any {
	ret := make([]any, len(s.fields))
	for i, f := range s.fields {
		ret[i] = f.Plain()
	}
	return ret
}

// Fields returns a copy of s's fields.
func (s Struct) Fields() []Value { return slices.Clone(s.fields) }

// DictEntry is a key/value pair in a DBus dictionary. Exact decoding
// produces DictEntry values; Plain decoding produces the []any pair
// returned by [DictEntry.Plain].
type DictEntry struct {
	typ *signature.Type
	key Value
	val Value
}

func (e DictEntry) Type() *signature.Type { return e.typ }

// Plain returns the entry's key and value as a two element []any.
func (e DictEntry) Plain() any {
	return []any{e.key.Plain(), e.val.Plain()}
}

// Key returns the entry's key.
func (e DictEntry) Key() Value { return e.key }

// Value returns the entry's value.
func (e DictEntry) Value() Value { return e.val }

// makeMembers converts vs to the member types of the struct or dict
// entry type t.
func makeMembers(t *signature.Type, vs []any) ([]Value, error) {
	if len(vs) != len(t.Members) {
		return nil, typeErr(t, "got %d values for %d members", len(vs), len(t.Members))
	}
	ret := make([]Value, len(vs))
	for i, v := range vs {
		mv, err := MakeValue(t.Members[i], v)
		if err != nil {
			return nil, withContext(err, "member %d", i)
		}
		ret[i] = mv
	}
	return ret, nil
}
