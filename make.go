package dbus

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/SchorppDA/dbus/signature"
)

// MakeValue converts v to a [Value] of type t.
//
// If v is already a Value of type t, it is returned unchanged. Other
// Values are converted from their plain representation, except for
// containers which are converted element by element. A [Variant]
// targeted at a non-variant type contributes its contents.
//
// Otherwise, v must be a Go value compatible with t:
//
//   - integer types accept any Go integer that fits in the type's
//     range, or return a [RangeError]
//   - "b" accepts anything, and uses its truth value as described in
//     [NewBoolean]
//   - "d" accepts any Go float or integer
//   - "s", "o" and "g" accept Go strings, []byte, and [fmt.Stringer]s
//     whose content is valid for the type
//   - arrays accept slices and Go arrays. Dictionaries also accept
//     maps, which are converted in sorted key order. Byte arrays also
//     accept strings.
//   - structs accept slices and Go arrays with one element per member
//   - "v" accepts anything accepted by [GuessType], and [Typed]
//
// A nil v, or a v of the wrong shape for t, results in a [TypeError].
func MakeValue(t *signature.Type, v any) (Value, error) {
	if t == nil {
		return nil, typeErr(nil, "no type given for value %v", v)
	}
	if v == nil {
		return nil, typeErr(t, "nil value")
	}
	if t.Code == signature.CodeVariant {
		return wrap[Variant](makeVariant(v))
	}

	switch x := v.(type) {
	case Variant:
		if x.contents == nil {
			return nil, typeErr(t, "empty variant")
		}
		return MakeValue(t, x.contents)
	case Array:
		if sameType(x.typ, t) {
			return x, nil
		}
		v = valuesAsAny(x.elems)
	case Struct:
		if sameType(x.typ, t) {
			return x, nil
		}
		v = valuesAsAny(x.fields)
	case DictEntry:
		if sameType(x.typ, t) {
			return x, nil
		}
		v = []any{x.key, x.val}
	case Value:
		if sameType(x.Type(), t) {
			return x, nil
		}
		v = x.Plain()
	case Typed:
		return nil, typeErr(t, "explicitly typed value %v is only allowed in a variant", x.Value)
	}

	switch t.Code {
	case signature.CodeByte, signature.CodeInt16, signature.CodeUInt16,
		signature.CodeInt32, signature.CodeUInt32, signature.CodeUnixFD,
		signature.CodeInt64, signature.CodeUInt64:
		return makeInteger(t, v)
	case signature.CodeBoolean:
		return NewBoolean(v), nil
	case signature.CodeDouble:
		rv := reflect.ValueOf(v)
		if !isNumber(rv) {
			return nil, typeErr(t, "cannot use %T as a number", v)
		}
		return Double(toFloat(rv)), nil
	case signature.CodeString:
		s, err := stringArg(t, v)
		if err != nil {
			return nil, err
		}
		return wrap[String](NewString(s))
	case signature.CodeObjectPath:
		s, err := stringArg(t, v)
		if err != nil {
			return nil, err
		}
		return wrap[ObjectPath](NewObjectPath(s))
	case signature.CodeSignature:
		s, err := stringArg(t, v)
		if err != nil {
			return nil, err
		}
		return wrap[Signature](NewSignature(s))
	case signature.CodeArray:
		return wrap[Array](makeArray(t, v))
	case signature.CodeStruct, signature.CodeDictEntry:
		return makeComposite(t, v)
	default:
		return nil, &UnsupportedTypeError{t.Code}
	}
}

// wrap converts the result of a concrete constructor into a Value
// result, so that errors don't come with a non-nil Value.
func wrap[T Value](v T, err error) (Value, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func valuesAsAny(vs []Value) []any {
	ret := make([]any, len(vs))
	for i, v := range vs {
		ret[i] = v
	}
	return ret
}

func makeInteger(t *signature.Type, v any) (Value, error) {
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return integerOf(t, rv.Int())
	case rv.CanUint():
		return integerOf(t, rv.Uint())
	default:
		return nil, typeErr(t, "cannot use %T as an integer", v)
	}
}

func integerOf[N int64 | uint64](t *signature.Type, n N) (Value, error) {
	switch t.Code {
	case signature.CodeByte:
		return wrap[Byte](NewByte(n))
	case signature.CodeInt16:
		return wrap[Int16](NewInt16(n))
	case signature.CodeUInt16:
		return wrap[UInt16](NewUInt16(n))
	case signature.CodeInt32:
		return wrap[Int32](NewInt32(n))
	case signature.CodeUInt32:
		return wrap[UInt32](NewUInt32(n))
	case signature.CodeUnixFD:
		return wrap[UnixFD](NewUnixFD(n))
	case signature.CodeInt64:
		return wrap[Int64](NewInt64(n))
	case signature.CodeUInt64:
		return wrap[UInt64](NewUInt64(n))
	default:
		return nil, &UnsupportedTypeError{t.Code}
	}
}

func stringArg(t *signature.Type, v any) (string, error) {
	rv := reflect.ValueOf(v)
	switch {
	case rv.Kind() == reflect.String:
		return rv.String(), nil
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		return string(rv.Bytes()), nil
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), nil
	}
	return "", typeErr(t, "cannot use %T as a string", v)
}

func makeArray(t *signature.Type, v any) (Array, error) {
	if t.Child == nil {
		return Array{}, typeErr(t, "array type has no element type")
	}
	rv := reflect.ValueOf(v)

	if t.Child.Code == signature.CodeByte {
		var (
			bs    []byte
			isRaw = true
		)
		switch {
		case rv.Kind() == reflect.String:
			bs = []byte(rv.String())
		case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
			bs = rv.Bytes()
		default:
			isRaw = false
		}
		if isRaw {
			elems := make([]Value, len(bs))
			for i, b := range bs {
				elems[i] = Byte(b)
			}
			return Array{t, elems}, nil
		}
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]Value, rv.Len())
		for i := range elems {
			ev, err := MakeValue(t.Child, rv.Index(i).Interface())
			if err != nil {
				return Array{}, withContext(err, "array element %d", i)
			}
			elems[i] = ev
		}
		return Array{t, elems}, nil
	case reflect.Map:
		if !t.IsDict() {
			return Array{}, typeErr(t, "cannot use map %T as a non-dictionary array", v)
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, compareKeys)
		elems := make([]Value, len(keys))
		for i, k := range keys {
			ev, err := makeComposite(t.Child, []any{k.Interface(), rv.MapIndex(k).Interface()})
			if err != nil {
				return Array{}, withContext(err, "dict key %v", k)
			}
			elems[i] = ev
		}
		return Array{t, elems}, nil
	default:
		return Array{}, typeErr(t, "cannot use %T as an array", v)
	}
}

// compareKeys orders map keys, for deterministic dictionary output.
func compareKeys(a, b reflect.Value) int {
	for a.Kind() == reflect.Interface {
		a = a.Elem()
	}
	for b.Kind() == reflect.Interface {
		b = b.Elem()
	}
	switch {
	case a.CanInt() && b.CanInt():
		return cmp.Compare(a.Int(), b.Int())
	case a.CanUint() && b.CanUint():
		return cmp.Compare(a.Uint(), b.Uint())
	case a.CanFloat() && b.CanFloat():
		return cmp.Compare(a.Float(), b.Float())
	case a.Kind() == reflect.String && b.Kind() == reflect.String:
		return cmp.Compare(a.String(), b.String())
	case a.Kind() == reflect.Bool && b.Kind() == reflect.Bool:
		if a.Bool() == b.Bool() {
			return 0
		} else if b.Bool() {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// makeComposite converts v to the struct or dict entry type t.
func makeComposite(t *signature.Type, v any) (Value, error) {
	if t.Code == signature.CodeDictEntry && (len(t.Members) != 2 || !t.Members[0].IsBasic()) {
		return nil, typeErr(t, "dict entry must have a basic key and one value")
	}
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, typeErr(t, "cannot use %T as %s, need a slice or array", v, compositeName(t))
	}
	vs := make([]any, rv.Len())
	for i := range vs {
		vs[i] = rv.Index(i).Interface()
	}
	members, err := makeMembers(t, vs)
	if err != nil {
		return nil, err
	}
	if t.Code == signature.CodeDictEntry {
		return DictEntry{t, members[0], members[1]}, nil
	}
	return Struct{t, members}, nil
}

func compositeName(t *signature.Type) string {
	if t.Code == signature.CodeDictEntry {
		return "a dict entry"
	}
	return "a struct"
}
