package dbus

import (
	"reflect"

	"github.com/SchorppDA/dbus/signature"
)

// Value is a DBus value together with its exact DBus type.
//
// The concrete implementations are [Byte], [Boolean], [Int16],
// [UInt16], [Int32], [UInt32], [UnixFD], [Int64], [UInt64], [Double],
// [String], [ObjectPath], [Signature], [Array], [Struct], [DictEntry]
// and [Variant]. Values are immutable once constructed.
type Value interface {
	// Type returns the value's exact DBus type.
	Type() *signature.Type
	// Plain returns the value as an ordinary Go value, discarding
	// the distinctions between DBus types that share a Go
	// representation.
	Plain() any
}

// Mode selects how decoded values are presented to callers.
//
// Dict entries are pairs in both modes: a []any{key, value} in Plain
// mode, and a [DictEntry] in Exact mode, whose Key and Value are the
// pair and whose Plain method returns the []any form.
type Mode int

const (
	// Plain presents values as ordinary Go values: bool, sized
	// integers, float64, string, []any for arrays and structs, and
	// map[any]any for dictionaries.
	Plain Mode = iota
	// Exact presents values as [Value]s, preserving their exact DBus
	// types.
	Exact
)

func (m Mode) String() string {
	switch m {
	case Plain:
		return "plain"
	case Exact:
		return "exact"
	default:
		return "unknown mode"
	}
}

func (m Mode) present(v Value) any {
	if m == Exact {
		return v
	}
	return v.Plain()
}

// Equal reports whether a and b hold the same value. b may be another
// Value or a plain Go value.
//
// Only the wrapped values are compared, not their DBus types:
// integers compare equal if they have the same numeric value,
// regardless of width or signedness, and a [Variant] is equal to its
// contents.
func Equal(a Value, b any) bool {
	if a == nil {
		return b == nil
	}
	return plainEqual(normalize(a), normalize(b))
}

// normalize converts x to the shape produced by Value.Plain, so that
// values and native Go values can be compared.
func normalize(x any) any {
	if v, ok := x.(Value); ok {
		x = v.Plain()
	}
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		ret := make([]any, rv.Len())
		for i := range ret {
			ret[i] = normalize(rv.Index(i).Interface())
		}
		return ret
	case reflect.Map:
		ret := make(map[any]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().Interface()
			if kv, ok := k.(Value); ok {
				k = kv.Plain()
			}
			ret[k] = normalize(iter.Value().Interface())
		}
		return ret
	}
	return x
}

func plainEqual(x, y any) bool {
	xv, yv := reflect.ValueOf(x), reflect.ValueOf(y)
	if isNumber(xv) && isNumber(yv) {
		return numberEqual(xv, yv)
	}
	switch xs := x.(type) {
	case []any:
		ys, ok := y.([]any)
		if !ok || len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !plainEqual(xs[i], ys[i]) {
				return false
			}
		}
		return true
	case map[any]any:
		ys, ok := y.(map[any]any)
		if !ok || len(xs) != len(ys) {
			return false
		}
		// Keys may differ in width, so lookups have to compare by
		// value.
	outer:
		for xk, xe := range xs {
			for yk, ye := range ys {
				if plainEqual(xk, yk) {
					if !plainEqual(xe, ye) {
						return false
					}
					continue outer
				}
			}
			return false
		}
		return true
	}
	if xv.Kind() == reflect.String && yv.Kind() == reflect.String {
		return xv.String() == yv.String()
	}
	if xv.Kind() == reflect.Bool && yv.Kind() == reflect.Bool {
		return xv.Bool() == yv.Bool()
	}
	return reflect.DeepEqual(x, y)
}

func isNumber(v reflect.Value) bool {
	return v.CanInt() || v.CanUint() || v.CanFloat()
}

func numberEqual(a, b reflect.Value) bool {
	switch {
	case a.CanFloat() || b.CanFloat():
		return toFloat(a) == toFloat(b)
	case a.CanInt() && b.CanInt():
		return a.Int() == b.Int()
	case a.CanUint() && b.CanUint():
		return a.Uint() == b.Uint()
	case a.CanInt():
		return a.Int() >= 0 && uint64(a.Int()) == b.Uint()
	default:
		return b.Int() >= 0 && uint64(b.Int()) == a.Uint()
	}
}

func toFloat(v reflect.Value) float64 {
	switch {
	case v.CanFloat():
		return v.Float()
	case v.CanInt():
		return float64(v.Int())
	default:
		return float64(v.Uint())
	}
}
