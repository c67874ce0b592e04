package dbus

import (
	"fmt"
	"math"

	"github.com/creachadair/mds/value"
	"go.uber.org/zap"

	"github.com/SchorppDA/dbus/fragments"
	"github.com/SchorppDA/dbus/signature"
)

// An Unmarshaller decodes DBus values from a buffer of wire data.
//
// The buffer must begin at the start of a DBus message, since
// alignment is computed relative to the buffer start. The read cursor
// only moves forward.
type Unmarshaller struct {
	dec fragments.Decoder
	// depth is the number of containers currently being decoded.
	depth int
}

// MaxNesting is the maximum depth of nested arrays, structs, dict
// entries and variants in a message.
const MaxNesting = 64

// NewUnmarshaller returns an Unmarshaller that reads values in the
// given byte order from buf.
func NewUnmarshaller(buf []byte, order fragments.ByteOrder) *Unmarshaller {
	return &Unmarshaller{
		dec: fragments.Decoder{
			Order: order,
			In:    buf,
		},
	}
}

// Pos returns the current read position.
func (u *Unmarshaller) Pos() int { return u.dec.Pos() }

// Remaining returns the number of buffered bytes that have not been
// read yet.
func (u *Unmarshaller) Remaining() int { return u.dec.Remaining() }

// Feed appends more wire data to the buffer.
func (u *Unmarshaller) Feed(more []byte) {
	u.dec.In = append(u.dec.In, more...)
}

// ByteOrderFlag reads a DBus byte order flag byte ('l' or 'B'), and
// decodes subsequent values in that byte order.
func (u *Unmarshaller) ByteOrderFlag() error {
	return wireErr(u.dec.ByteOrderFlag())
}

// AlignBody skips the padding between a message header and its body.
func (u *Unmarshaller) AlignBody() error {
	return wireErr(u.dec.Pad(8))
}

// Unmarshal decodes one value for each complete type in sig, and
// returns them presented according to mode.
//
// If length is present, it is the number of bytes that the values
// are expected to occupy, and Unmarshal returns an
// [IncompleteBufferError] without reading anything if fewer bytes
// than that are buffered.
//
// Unmarshal also returns an [IncompleteBufferError] if the buffer
// runs out partway through decoding. In that case the read position
// is reset to where it was when Unmarshal was called, and Unmarshal
// can be retried after providing more data with [Unmarshaller.Feed].
// All other errors are fatal.
func (u *Unmarshaller) Unmarshal(sig string, mode Mode, length value.Maybe[int]) ([]any, error) {
	if n, ok := length.GetOK(); ok && u.dec.Remaining() < n {
		Logger().Debug("incomplete buffer",
			zap.Int("pos", u.dec.Pos()), zap.Int("want", n), zap.Int("have", u.dec.Remaining()))
		return nil, &IncompleteBufferError{fmt.Errorf("want %d bytes at offset %d, have %d", n, u.dec.Pos(), u.dec.Remaining())}
	}

	ts, err := signature.Parse(sig)
	if err != nil {
		return nil, err
	}

	start := u.dec.Pos()
	ret := make([]any, 0, len(ts))
	for i, t := range ts {
		v, err := u.decode(t)
		if err != nil {
			if IsIncomplete(err) {
				Logger().Debug("incomplete buffer, rewinding",
					zap.Int("pos", start), zap.Int("failed_at", u.dec.Pos()), zap.Error(err))
				u.dec.Seek(start)
			}
			return nil, withContext(err, "decoding value %d (%q)", i, t)
		}
		ret = append(ret, mode.present(v))
	}
	return ret, nil
}

// decode reads one value of type t, in its exact form.
func (u *Unmarshaller) decode(t *signature.Type) (Value, error) {
	switch t.Code {
	case signature.CodeArray, signature.CodeStruct, signature.CodeDictEntry, signature.CodeVariant:
		u.depth++
		defer func() { u.depth-- }()
		if u.depth > MaxNesting {
			return nil, invalidErr("containers nested more than %d deep", MaxNesting)
		}
	}

	d := &u.dec
	switch t.Code {
	case signature.CodeByte:
		v, err := d.Uint8()
		return Byte(v), wireErr(err)
	case signature.CodeBoolean:
		v, err := d.Uint32()
		if err != nil {
			return nil, wireErr(err)
		}
		return wrap[Boolean](booleanFromRaw(v))
	case signature.CodeInt16:
		v, err := d.Uint16()
		return Int16(v), wireErr(err)
	case signature.CodeUInt16:
		v, err := d.Uint16()
		return UInt16(v), wireErr(err)
	case signature.CodeInt32:
		v, err := d.Uint32()
		return Int32(v), wireErr(err)
	case signature.CodeUInt32:
		v, err := d.Uint32()
		return UInt32(v), wireErr(err)
	case signature.CodeUnixFD:
		v, err := d.Uint32()
		return UnixFD(v), wireErr(err)
	case signature.CodeInt64:
		v, err := d.Uint64()
		return Int64(v), wireErr(err)
	case signature.CodeUInt64:
		v, err := d.Uint64()
		return UInt64(v), wireErr(err)
	case signature.CodeDouble:
		v, err := d.Uint64()
		return Double(math.Float64frombits(v)), wireErr(err)
	case signature.CodeString:
		bs, err := d.String()
		if err != nil {
			return nil, wireErr(err)
		}
		return wrap[String](NewString(string(bs)))
	case signature.CodeObjectPath:
		bs, err := d.String()
		if err != nil {
			return nil, wireErr(err)
		}
		return wrap[ObjectPath](NewObjectPath(string(bs)))
	case signature.CodeSignature:
		bs, err := d.Signature()
		if err != nil {
			return nil, wireErr(err)
		}
		return wrap[Signature](NewSignature(string(bs)))
	case signature.CodeArray:
		return u.decodeArray(t)
	case signature.CodeStruct:
		fields, err := u.decodeMembers(t)
		if err != nil {
			return nil, err
		}
		return Struct{t, fields}, nil
	case signature.CodeDictEntry:
		kv, err := u.decodeMembers(t)
		if err != nil {
			return nil, err
		}
		if len(kv) != 2 {
			return nil, typeErr(t, "dict entry has %d members", len(kv))
		}
		return DictEntry{t, kv[0], kv[1]}, nil
	case signature.CodeVariant:
		return u.decodeVariant()
	default:
		return nil, &UnsupportedTypeError{t.Code}
	}
}

func (u *Unmarshaller) decodeArray(t *signature.Type) (Value, error) {
	if t.Child == nil {
		return nil, typeErr(t, "array type has no element type")
	}
	var elems []Value
	_, err := u.dec.Array(t.Child.Alignment(), func(i int) error {
		e, err := u.decode(t.Child)
		if err != nil {
			return withContext(err, "array element %d", i)
		}
		elems = append(elems, e)
		return nil
	})
	if err != nil {
		return nil, wireErr(err)
	}
	return Array{t, elems}, nil
}

func (u *Unmarshaller) decodeMembers(t *signature.Type) ([]Value, error) {
	ret := make([]Value, 0, len(t.Members))
	err := u.dec.Struct(func() error {
		for i, mt := range t.Members {
			v, err := u.decode(mt)
			if err != nil {
				return withContext(err, "member %d", i)
			}
			ret = append(ret, v)
		}
		return nil
	})
	if err != nil {
		return nil, wireErr(err)
	}
	return ret, nil
}

func (u *Unmarshaller) decodeVariant() (Value, error) {
	bs, err := u.dec.Signature()
	if err != nil {
		return nil, wireErr(err)
	}
	t, err := signature.ParseOne(string(bs))
	if err != nil {
		return nil, &InvalidPacketError{fmt.Errorf("variant signature: %w", err)}
	}
	inner, err := u.decode(t)
	if err != nil {
		return nil, withContext(err, "variant contents %q", t)
	}
	return Variant{inner}, nil
}
