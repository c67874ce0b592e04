package dbus

import (
	"math"
	"reflect"

	"github.com/SchorppDA/dbus/signature"
)

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// checkRange returns a RangeError if v is outside [min, max].
func checkRange[N integer](t *signature.Type, v N, min int64, max uint64) error {
	if v < 0 {
		if int64(v) < min {
			return &RangeError{t.String(), v}
		}
		return nil
	}
	if uint64(v) > max {
		return &RangeError{t.String(), v}
	}
	return nil
}

// Byte is a DBus byte.
type Byte uint8

// NewByte returns v as a Byte, or a [RangeError] if v doesn't fit.
func NewByte[N integer](v N) (Byte, error) {
	if err := checkRange(typeByte, v, 0, math.MaxUint8); err != nil {
		return 0, err
	}
	return Byte(v), nil
}

func (Byte) Type() *signature.Type { return typeByte }
func (v Byte) Plain() any           { return uint8(v) }

// Boolean is a DBus boolean.
type Boolean bool

// NewBoolean returns the truth value of v as a Boolean. nil, false,
// numeric zeros, and empty strings, slices and maps are false,
// everything else is true.
func NewBoolean(v any) Boolean {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return Boolean(x)
	case Boolean:
		return x
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return rv.Int() != 0
	case rv.CanUint():
		return rv.Uint() != 0
	case rv.CanFloat():
		return rv.Float() != 0
	}
	switch rv.Kind() {
	case reflect.Bool:
		return Boolean(rv.Bool())
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() != 0
	}
	return true
}

// booleanFromRaw returns the Boolean for the given wire value, which
// must be 0 or 1.
func booleanFromRaw(u uint32) (Boolean, error) {
	switch u {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, invalidErr("invalid boolean value %d, must be 0 or 1", u)
	}
}

func (Boolean) Type() *signature.Type { return typeBoolean }
func (v Boolean) Plain() any           { return bool(v) }

// Int16 is a DBus int16.
type Int16 int16

// NewInt16 returns v as an Int16, or a [RangeError] if v doesn't fit.
func NewInt16[N integer](v N) (Int16, error) {
	if err := checkRange(typeInt16, v, math.MinInt16, math.MaxInt16); err != nil {
		return 0, err
	}
	return Int16(v), nil
}

func (Int16) Type() *signature.Type { return typeInt16 }
func (v Int16) Plain() any           { return int16(v) }

// UInt16 is a DBus uint16.
type UInt16 uint16

// NewUInt16 returns v as a UInt16, or a [RangeError] if v doesn't
// fit.
func NewUInt16[N integer](v N) (UInt16, error) {
	if err := checkRange(typeUInt16, v, 0, math.MaxUint16); err != nil {
		return 0, err
	}
	return UInt16(v), nil
}

func (UInt16) Type() *signature.Type { return typeUInt16 }
func (v UInt16) Plain() any           { return uint16(v) }

// Int32 is a DBus int32.
type Int32 int32

// NewInt32 returns v as an Int32, or a [RangeError] if v doesn't fit.
func NewInt32[N integer](v N) (Int32, error) {
	if err := checkRange(typeInt32, v, math.MinInt32, math.MaxInt32); err != nil {
		return 0, err
	}
	return Int32(v), nil
}

func (Int32) Type() *signature.Type { return typeInt32 }
func (v Int32) Plain() any           { return int32(v) }

// UInt32 is a DBus uint32.
type UInt32 uint32

// NewUInt32 returns v as a UInt32, or a [RangeError] if v doesn't
// fit.
func NewUInt32[N integer](v N) (UInt32, error) {
	if err := checkRange(typeUInt32, v, 0, math.MaxUint32); err != nil {
		return 0, err
	}
	return UInt32(v), nil
}

func (UInt32) Type() *signature.Type { return typeUInt32 }
func (v UInt32) Plain() any           { return uint32(v) }

// UnixFD is a DBus file descriptor. On the wire, it is an index into
// the file descriptors sent out of band alongside the message.
type UnixFD uint32

// NewUnixFD returns v as a UnixFD, or a [RangeError] if v doesn't
// fit.
func NewUnixFD[N integer](v N) (UnixFD, error) {
	if err := checkRange(typeUnixFD, v, 0, math.MaxUint32); err != nil {
		return 0, err
	}
	return UnixFD(v), nil
}

func (UnixFD) Type() *signature.Type { return typeUnixFD }
func (v UnixFD) Plain() any           { return uint32(v) }

// Int64 is a DBus int64.
type Int64 int64

// NewInt64 returns v as an Int64, or a [RangeError] if v doesn't fit.
func NewInt64[N integer](v N) (Int64, error) {
	if err := checkRange(typeInt64, v, math.MinInt64, math.MaxInt64); err != nil {
		return 0, err
	}
	return Int64(v), nil
}

func (Int64) Type() *signature.Type { return typeInt64 }
func (v Int64) Plain() any           { return int64(v) }

// UInt64 is a DBus uint64.
type UInt64 uint64

// NewUInt64 returns v as a UInt64, or a [RangeError] if v is
// negative.
func NewUInt64[N integer](v N) (UInt64, error) {
	if err := checkRange(typeUInt64, v, 0, math.MaxUint64); err != nil {
		return 0, err
	}
	return UInt64(v), nil
}

func (UInt64) Type() *signature.Type { return typeUInt64 }
func (v UInt64) Plain() any           { return uint64(v) }

// Double is a DBus double precision float.
type Double float64

func (Double) Type() *signature.Type { return typeDouble }
func (v Double) Plain() any           { return float64(v) }
