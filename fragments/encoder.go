package fragments

import (
	"errors"
	"fmt"
)

// MaxArrayLen is the maximum size in bytes of a DBus array body.
const MaxArrayLen = 64 << 20

var (
	// ErrArrayTooLong is returned when an array body exceeds
	// MaxArrayLen bytes.
	ErrArrayTooLong = errors.New("array body exceeds 64MiB")
	// ErrNonZeroPadding is returned by Decoder when alignment
	// padding contains non-zero bytes.
	ErrNonZeroPadding = errors.New("non-zero alignment padding")
	// ErrMissingNUL is returned by Decoder when a string or
	// signature is not followed by a NUL terminator.
	ErrMissingNUL = errors.New("missing NUL terminator")
)

// An Encoder provides utilities to write a DBus wire format message
// to a byte slice.
//
// Methods insert padding as needed to conform to DBus alignment
// rules, except for [Encoder.Write] which outputs bytes verbatim.
type Encoder struct {
	// Order is the byte order to use when encoding multi-byte values.
	Order ByteOrder
	// Offset is the position of Out[0] within the overall
	// message. Alignment is computed relative to the message start,
	// so an Encoder that writes a fragment in the middle of a message
	// must know where that fragment begins.
	Offset int
	// Out is the encoded output.
	Out []byte
}

// Pos returns the absolute position of the next byte to be written.
func (e *Encoder) Pos() int {
	return e.Offset + len(e.Out)
}

// Pad inserts padding bytes as needed to make the message a multiple
// of align bytes. If the message is already correctly aligned, no
// padding is inserted.
//
// align must be 1, 2, 4 or 8, Pad panics otherwise.
func (e *Encoder) Pad(align int) {
	checkAlign(align)
	extra := e.Pos() % align
	if extra == 0 {
		return
	}
	var pad [8]byte
	e.Out = append(e.Out, pad[:align-extra]...)
}

func checkAlign(align int) {
	switch align {
	case 1, 2, 4, 8:
	default:
		panic(fmt.Sprintf("invalid DBus alignment %d", align))
	}
}

// Write writes bs as-is to the output. It is the caller's
// responsibility to ensure correct padding and encoding.
func (e *Encoder) Write(bs []byte) {
	e.Out = append(e.Out, bs...)
}

// String writes a DBus string or object path: a 4-byte length,
// the string bytes, and a NUL terminator.
func (e *Encoder) String(s string) {
	e.Pad(4)
	e.Uint32(uint32(len(s)))
	e.Out = append(e.Out, s...)
	e.Out = append(e.Out, 0)
}

// Signature writes a DBus signature: a 1-byte length, the signature
// bytes, and a NUL terminator. It is the caller's responsibility to
// ensure len(sig) fits in a byte.
func (e *Encoder) Signature(sig string) {
	e.Uint8(uint8(len(sig)))
	e.Out = append(e.Out, sig...)
	e.Out = append(e.Out, 0)
}

// Uint8 writes a uint8.
func (e *Encoder) Uint8(u8 uint8) {
	e.Out = append(e.Out, u8)
}

// Uint16 writes uint16.
func (e *Encoder) Uint16(u16 uint16) {
	e.Pad(2)
	e.Out = e.Order.AppendUint16(e.Out, u16)
}

// Uint32 writes uint32.
func (e *Encoder) Uint32(u32 uint32) {
	e.Pad(4)
	e.Out = e.Order.AppendUint32(e.Out, u32)
}

// Uint64 writes uint64.
func (e *Encoder) Uint64(u64 uint64) {
	e.Pad(8)
	e.Out = e.Order.AppendUint64(e.Out, u64)
}

// Array writes an array to the output.
//
// Array elements must be added within the provided elements
// function. The elements function is responsible for padding each
// array element to the correct alignment for the element type.
//
// elemAlign is the alignment of the array's element type. The array
// header is padded to elemAlign even if the array ends up empty.
//
// If the elements add up to more than MaxArrayLen bytes, Array
// returns an error wrapping ErrArrayTooLong.
func (e *Encoder) Array(elemAlign int, elements func() error) error {
	e.Pad(4)
	offset := len(e.Out)
	e.Uint32(0)
	e.Pad(elemAlign)

	start := len(e.Out)
	if err := elements(); err != nil {
		return err
	}
	ln := len(e.Out) - start
	if ln > MaxArrayLen {
		return fmt.Errorf("%w: got %d bytes", ErrArrayTooLong, ln)
	}
	e.Order.PutUint32(e.Out[offset:], uint32(ln))
	return nil
}

// Struct writes a struct to the output.
//
// Struct fields must be added within the provided elements function.
func (e *Encoder) Struct(elements func() error) error {
	e.Pad(8)
	return elements()
}

// ByteOrderFlag writes the DBus byte order flag byte ('l' or 'B')
// that matches [Encoder.Order].
func (e *Encoder) ByteOrderFlag() {
	e.Uint8(e.Order.Flag())
}
