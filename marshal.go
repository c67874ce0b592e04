package dbus

import (
	"errors"
	"math"

	"github.com/SchorppDA/dbus/fragments"
	"github.com/SchorppDA/dbus/signature"
)

// A Marshaller builds the DBus wire encoding of a sequence of values.
//
// A Marshaller starts at a caller-provided offset within a DBus
// message, and computes alignment padding relative to the start of
// that message.
type Marshaller struct {
	enc fragments.Encoder
}

// NewMarshaller returns a Marshaller that writes values in the given
// byte order, starting at byte offset within a message.
func NewMarshaller(offset int, order fragments.ByteOrder) *Marshaller {
	return &Marshaller{
		enc: fragments.Encoder{
			Order:  order,
			Offset: offset,
		},
	}
}

// Bytes returns the encoded output. The returned slice aliases the
// Marshaller's buffer, and is only valid until the next Append.
func (m *Marshaller) Bytes() []byte { return m.enc.Out }

// Offset returns the message offset at which the Marshaller's output
// begins.
func (m *Marshaller) Offset() int { return m.enc.Offset }

// Len returns the number of bytes written so far.
func (m *Marshaller) Len() int { return len(m.enc.Out) }

// Append converts v to type t as by [MakeValue], and appends its wire
// encoding. Nil values are rejected with a [TypeError].
//
// If Append returns an error, the Marshaller's output is unchanged.
func (m *Marshaller) Append(t *signature.Type, v any) error {
	if v == nil {
		return typeErr(t, "cannot marshal nil value")
	}
	val, err := MakeValue(t, v)
	if err != nil {
		return err
	}
	return m.AppendValue(val)
}

// AppendValue appends the wire encoding of v.
//
// If AppendValue returns an error, the Marshaller's output is
// unchanged.
func (m *Marshaller) AppendValue(v Value) error {
	if v == nil {
		return typeErr(nil, "cannot marshal nil value")
	}
	n := len(m.enc.Out)
	if err := m.write(v); err != nil {
		m.enc.Out = m.enc.Out[:n]
		return err
	}
	return nil
}

// AppendAll appends vs, which must match the complete types of sig
// one for one.
//
// If AppendAll returns an error, the Marshaller's output is
// unchanged.
func (m *Marshaller) AppendAll(sig string, vs ...any) error {
	ts, err := signature.Parse(sig)
	if err != nil {
		return err
	}
	if len(ts) != len(vs) {
		return &TypeError{sig, errors.New("wrong number of values for signature")}
	}
	n := len(m.enc.Out)
	for i, t := range ts {
		if err := m.Append(t, vs[i]); err != nil {
			m.enc.Out = m.enc.Out[:n]
			return withContext(err, "value %d", i)
		}
	}
	return nil
}

// Align pads the output with zero bytes to a multiple of n, relative
// to the start of the message. n must be 1, 2, 4 or 8, Align panics
// otherwise.
func (m *Marshaller) Align(n int) {
	m.enc.Pad(n)
}

// AppendByteOrderFlag appends the DBus byte order flag byte for the
// Marshaller's byte order.
func (m *Marshaller) AppendByteOrderFlag() {
	m.enc.ByteOrderFlag()
}

// AppendString appends a DBus string. s must be valid UTF-8 and not
// contain NUL bytes.
func (m *Marshaller) AppendString(s string) error {
	if err := validString(s); err != nil {
		return err
	}
	m.enc.String(s)
	return nil
}

// AppendSignature appends a DBus signature. sig must be a valid
// signature.
func (m *Marshaller) AppendSignature(sig string) error {
	if _, err := signature.Parse(sig); err != nil {
		return &InvalidPacketError{err}
	}
	m.enc.Signature(sig)
	return nil
}

// AppendArray appends a DBus array of elements of type child. body
// must append the array's elements.
//
// If the elements amount to more than 64MiB, AppendArray returns an
// [InvalidPacketError].
func (m *Marshaller) AppendArray(child *signature.Type, body func() error) error {
	err := m.enc.Array(child.Alignment(), body)
	if errors.Is(err, fragments.ErrArrayTooLong) {
		return &InvalidPacketError{err}
	}
	return err
}

// AppendStruct appends a DBus struct. body must append the struct's
// fields.
func (m *Marshaller) AppendStruct(body func() error) error {
	return m.enc.Struct(body)
}

func (m *Marshaller) write(v Value) error {
	switch x := v.(type) {
	case Byte:
		m.enc.Uint8(uint8(x))
	case Boolean:
		var u uint32
		if x {
			u = 1
		}
		m.enc.Uint32(u)
	case Int16:
		m.enc.Uint16(uint16(x))
	case UInt16:
		m.enc.Uint16(uint16(x))
	case Int32:
		m.enc.Uint32(uint32(x))
	case UInt32:
		m.enc.Uint32(uint32(x))
	case UnixFD:
		m.enc.Uint32(uint32(x))
	case Int64:
		m.enc.Uint64(uint64(x))
	case UInt64:
		m.enc.Uint64(uint64(x))
	case Double:
		m.enc.Uint64(math.Float64bits(float64(x)))
	case String:
		return m.AppendString(string(x))
	case ObjectPath:
		if err := validPath(string(x)); err != nil {
			return err
		}
		m.enc.String(string(x))
	case Signature:
		return m.AppendSignature(string(x))
	case Array:
		if x.typ == nil || x.typ.Child == nil {
			return typeErr(nil, "uninitialized Array")
		}
		return m.AppendArray(x.typ.Child, func() error {
			for i, e := range x.elems {
				if err := m.write(e); err != nil {
					return withContext(err, "array element %d", i)
				}
			}
			return nil
		})
	case Struct:
		if x.typ == nil {
			return typeErr(nil, "uninitialized Struct")
		}
		return m.AppendStruct(func() error {
			for i, f := range x.fields {
				if err := m.write(f); err != nil {
					return withContext(err, "struct field %d", i)
				}
			}
			return nil
		})
	case DictEntry:
		if x.typ == nil {
			return typeErr(nil, "uninitialized DictEntry")
		}
		return m.AppendStruct(func() error {
			if err := m.write(x.key); err != nil {
				return withContext(err, "dict key")
			}
			if err := m.write(x.val); err != nil {
				return withContext(err, "dict value")
			}
			return nil
		})
	case Variant:
		return m.writeVariant(x)
	default:
		return typeErr(v.Type(), "cannot marshal value of unknown type %T", v)
	}
	return nil
}

// writeVariant writes v's signature, then its contents. The contents
// are encoded separately starting from the current message position,
// and spliced into the output.
func (m *Marshaller) writeVariant(v Variant) error {
	if v.contents == nil {
		return typeErr(typeVariant, "empty variant")
	}
	t := v.contents.Type()
	if err := m.AppendSignature(t.String()); err != nil {
		return err
	}
	m.enc.Pad(t.Alignment())

	sub := NewMarshaller(m.enc.Pos(), m.enc.Order)
	if err := sub.write(v.contents); err != nil {
		return withContext(err, "variant contents %q", t)
	}
	m.enc.Write(sub.Bytes())
	return nil
}
