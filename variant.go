package dbus

import (
	"fmt"
	"math"
	"reflect"

	"go.uber.org/zap"

	"github.com/SchorppDA/dbus/signature"
)

// Variant is a DBus variant: a value that carries its own type.
//
// A Variant placed into a variant slot is copied as-is rather than
// wrapped in another Variant.
type Variant struct {
	contents Value
}

// NewVariant returns a Variant containing v converted to type t. If t
// is nil, v's type is inferred as described in [GuessType].
func NewVariant(t *signature.Type, v any) (Variant, error) {
	if t == nil {
		return makeVariant(v)
	}
	return makeVariant(Typed{Type: t, Value: v})
}

func (Variant) Type() *signature.Type { return typeVariant }

// Plain returns the plain value of v's contents.
func (v Variant) Plain() any {
	if v.contents == nil {
		return nil
	}
	return v.contents.Plain()
}

// Contents returns the value held by v.
func (v Variant) Contents() Value { return v.contents }

// Typed is a value paired with an explicit DBus type, for use in
// variants whose type should not be guessed.
//
// If Type is nil, Signature is parsed to get the type. If Signature
// is also empty or doesn't describe exactly one complete type, the
// type is guessed from Value as if it had been provided without
// Typed.
type Typed struct {
	Type      *signature.Type
	Signature string
	Value     any
}

func makeVariant(v any) (Variant, error) {
	switch x := v.(type) {
	case Variant:
		return x, nil
	case Value:
		return Variant{x}, nil
	case Typed:
		t := x.typ()
		if t == nil {
			return makeVariant(x.Value)
		}
		if x.Value == nil {
			return Variant{}, typeErr(t, "cannot put nil value in variant")
		}
		inner, err := MakeValue(t, x.Value)
		if err != nil {
			return Variant{}, err
		}
		return Variant{inner}, nil
	}

	t, err := GuessType(v)
	if err != nil {
		return Variant{}, err
	}
	inner, err := MakeValue(t, v)
	if err != nil {
		return Variant{}, err
	}
	return Variant{inner}, nil
}

// typ returns the explicit type of t, or nil if it has none.
func (t Typed) typ() *signature.Type {
	if t.Type != nil {
		return t.Type
	}
	if t.Signature == "" {
		return nil
	}
	ret, err := signature.ParseOne(t.Signature)
	if err != nil {
		Logger().Debug("ignoring unusable variant signature",
			zap.String("signature", t.Signature), zap.Error(err))
		return nil
	}
	return ret
}

// GuessType returns the DBus type that v is given when it is placed
// into a variant without an explicit type.
//
// [Value]s have their own type, a [Variant] contributes the type of
// its contents, and a [Typed] its explicit type. Other values are
// matched against the following rules in order, first match wins:
//
//   - bool is "b"
//   - nil is an error
//   - float32 and float64 are "d"
//   - strings are "s"
//   - slices and arrays are "av", each element getting its own type
//   - maps are "a{sv}", each value getting its own type
//   - [fmt.Stringer]s are "s"
//   - integers are "i" if they fit in an int32, "x" if they fit in
//     an int64, and "t" otherwise
//
// Anything else cannot be represented, and GuessType returns a
// [TypeError].
func GuessType(v any) (*signature.Type, error) {
	switch x := v.(type) {
	case Variant:
		if x.contents == nil {
			return nil, typeErr(typeVariant, "empty variant")
		}
		return x.contents.Type(), nil
	case Value:
		return x.Type(), nil
	case Typed:
		if t := x.typ(); t != nil {
			return t, nil
		}
		return GuessType(x.Value)
	case bool:
		return typeBoolean, nil
	case nil:
		return nil, typeErr(typeVariant, "cannot guess type of nil value")
	}

	ret, err := guessKind(v)
	if err != nil {
		return nil, err
	}
	Logger().Debug("guessed variant type",
		zap.String("signature", ret.String()), zap.String("go_type", fmt.Sprintf("%T", v)))
	return ret, nil
}

func guessKind(v any) (*signature.Type, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return typeBoolean, nil
	case reflect.Float32, reflect.Float64:
		return typeDouble, nil
	case reflect.String:
		return typeString, nil
	case reflect.Slice, reflect.Array:
		return typeVariantArray, nil
	case reflect.Map:
		return typeVardict, nil
	}
	if _, ok := v.(fmt.Stringer); ok {
		return typeString, nil
	}
	switch {
	case rv.CanInt():
		if n := rv.Int(); n >= math.MinInt32 && n <= math.MaxInt32 {
			return typeInt32, nil
		}
		return typeInt64, nil
	case rv.CanUint():
		switch n := rv.Uint(); {
		case n <= math.MaxInt32:
			return typeInt32, nil
		case n <= math.MaxInt64:
			return typeInt64, nil
		default:
			return typeUInt64, nil
		}
	}
	return nil, typeErr(typeVariant, "cannot represent %T in a variant", v)
}
