package fragments

import (
	"fmt"
	"io"
)

// A Decoder provides utilities to read a DBus wire format message
// from a byte slice.
//
// Methods advance the read cursor as needed to account for the
// padding required by DBus alignment rules, except for [Decoder.Read]
// which reads bytes verbatim.
//
// Reads that run past the end of In fail with an error wrapping
// io.ErrUnexpectedEOF, and leave the cursor where it was before the
// failed read.
type Decoder struct {
	// Order is the byte order to use when reading multi-byte values.
	Order ByteOrder
	// In is the input to read. Alignment is computed relative to
	// In[0], which must therefore be the start of a message.
	In []byte

	// pos is the read cursor within In.
	pos int
}

// Pos returns the current read position.
func (d *Decoder) Pos() int {
	return d.pos
}

// Seek moves the read cursor to pos.
func (d *Decoder) Seek(pos int) {
	d.pos = pos
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.In) - d.pos
}

// Pad consumes padding bytes as needed to make the next read happen
// at a multiple of align bytes. If the decoder is already correctly
// aligned, no bytes are consumed. Padding bytes must be zero.
//
// align must be 1, 2, 4 or 8, Pad panics otherwise.
func (d *Decoder) Pad(align int) error {
	checkAlign(align)
	extra := d.pos % align
	if extra == 0 {
		return nil
	}
	pad, err := d.Read(align - extra)
	if err != nil {
		return err
	}
	for _, b := range pad {
		if b != 0 {
			return fmt.Errorf("%w at offset %d", ErrNonZeroPadding, d.pos-len(pad))
		}
	}
	return nil
}

// Read reads n bytes, with no framing or padding. The returned slice
// aliases In.
func (d *Decoder) Read(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, fmt.Errorf("reading %d bytes at offset %d, %d available: %w", n, d.pos, d.Remaining(), io.ErrUnexpectedEOF)
	}
	ret := d.In[d.pos : d.pos+n]
	d.pos += n
	return ret, nil
}

// String reads a DBus string or object path, and returns its raw
// bytes without the NUL terminator.
func (d *Decoder) String() ([]byte, error) {
	ln, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	return d.terminated(int(ln))
}

// Signature reads a DBus signature, and returns its raw bytes without
// the NUL terminator.
func (d *Decoder) Signature() ([]byte, error) {
	ln, err := d.Uint8()
	if err != nil {
		return nil, err
	}
	return d.terminated(int(ln))
}

func (d *Decoder) terminated(n int) ([]byte, error) {
	ret, err := d.Read(n)
	if err != nil {
		return nil, err
	}
	nul, err := d.Uint8()
	if err != nil {
		return nil, err
	}
	if nul != 0 {
		return nil, fmt.Errorf("%w at offset %d, found %#02x", ErrMissingNUL, d.pos-1, nul)
	}
	return ret, nil
}

// Uint8 reads a uint8.
func (d *Decoder) Uint8() (uint8, error) {
	bs, err := d.Read(1)
	if err != nil {
		return 0, err
	}
	return bs[0], nil
}

// Uint16 reads a uint16.
func (d *Decoder) Uint16() (uint16, error) {
	if err := d.Pad(2); err != nil {
		return 0, err
	}
	bs, err := d.Read(2)
	if err != nil {
		return 0, err
	}
	return d.Order.Uint16(bs), nil
}

// Uint32 reads a uint32.
func (d *Decoder) Uint32() (uint32, error) {
	if err := d.Pad(4); err != nil {
		return 0, err
	}
	bs, err := d.Read(4)
	if err != nil {
		return 0, err
	}
	return d.Order.Uint32(bs), nil
}

// Uint64 reads a uint64.
func (d *Decoder) Uint64() (uint64, error) {
	if err := d.Pad(8); err != nil {
		return 0, err
	}
	bs, err := d.Read(8)
	if err != nil {
		return 0, err
	}
	return d.Order.Uint64(bs), nil
}

// Array reads an array.
//
// readElement is called repeatedly while there is array data
// remaining to process, passing in the array index of the element to
// be decoded. readElement must consume exactly the array's bytes in
// total, an element that reads past the end of the array body is an
// error.
//
// elemAlign is the alignment of the array's element type. The
// padding between the array length and the first element is consumed
// even if the array is empty.
//
// Array returns the total number of array elements that were
// processed.
func (d *Decoder) Array(elemAlign int, readElement func(int) error) (int, error) {
	ln, err := d.Uint32()
	if err != nil {
		return 0, err
	}
	if ln > MaxArrayLen {
		return 0, fmt.Errorf("%w: got %d bytes", ErrArrayTooLong, ln)
	}
	if err := d.Pad(elemAlign); err != nil {
		return 0, err
	}
	end := d.pos + int(ln)
	idx := 0
	for d.pos < end {
		if err := readElement(idx); err != nil {
			return idx, err
		}
		idx++
	}
	if d.pos != end {
		return idx, fmt.Errorf("array element %d overran array body by %d bytes", idx-1, d.pos-end)
	}
	return idx, nil
}

// Struct reads a struct.
//
// Struct fields must be read within the provided fields function.
func (d *Decoder) Struct(fields func() error) error {
	if err := d.Pad(8); err != nil {
		return err
	}
	return fields()
}

// ByteOrderFlag reads a DBus byte order flag byte, and sets
// [Decoder.Order] to match it.
func (d *Decoder) ByteOrderFlag() error {
	v, err := d.Uint8()
	if err != nil {
		return err
	}
	ord, err := ByteOrderFor(v)
	if err != nil {
		return err
	}
	d.Order = ord
	return nil
}
