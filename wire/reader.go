package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader walks a borrowed byte span. All reads are bounds-checked; any
// out-of-range access fails without advancing past the end.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a reader over data. The reader borrows the slice; it
// never mutates it.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Pos returns the current offset from the start of the span.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total length of the span.
func (r *Reader) Len() int { return len(r.buf) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// EOF reports whether the reader is exhausted.
func (r *Reader) EOF() bool { return r.pos >= len(r.buf) }

// Skip advances the reader by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.pos+n > len(r.buf) {
		r.pos = len(r.buf)
		return ErrUnexpectedEOF
	}
	r.pos += n
	return nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, ErrUnexpectedEOF
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// ReadVarint decodes a varint from the current position. It fails once the
// accumulator would shift past 63 bits, i.e. after 10 continuation bytes.
func (r *Reader) ReadVarint() (uint64, error) {
	var result uint64
	var shift uint

	for i := 0; i < 10; i++ {
		if r.pos >= len(r.buf) {
			return 0, ErrUnexpectedEOF
		}
		b := r.buf[r.pos]
		r.pos++

		result |= uint64(b&0x7F) << shift

		if (b & 0x80) == 0 {
			return result, nil
		}
		shift += 7
	}
	return 0, ErrVarintTooLong
}

// SkipVarint skips over a varint without decoding it.
func (r *Reader) SkipVarint() error {
	for i := 0; i < 10; i++ {
		if r.pos >= len(r.buf) {
			return ErrUnexpectedEOF
		}
		b := r.buf[r.pos]
		r.pos++
		if (b & 0x80) == 0 {
			return nil
		}
	}
	return ErrVarintTooLong
}

// ReadFixed32 reads a 4-byte little-endian value.
func (r *Reader) ReadFixed32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadFixed64 reads an 8-byte little-endian value.
func (r *Reader) ReadFixed64() (uint64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadFloat32 reads a fixed32 and reinterprets it as a float.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadFixed32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads a fixed64 and reinterprets it as a double.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadFixed64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBytes reads a length-prefixed byte region. The result is copied so it
// does not alias the input span.
func (r *Reader) ReadBytes() ([]byte, error) {
	length, err := r.ReadVarint()
	if err != nil {
		return nil, fmt.Errorf("failed to decode length prefix: %w", err)
	}
	if length > uint64(r.Remaining()) {
		return nil, ErrLengthOverrun
	}
	data := make([]byte, length)
	copy(data, r.buf[r.pos:r.pos+int(length)])
	r.pos += int(length)
	return data, nil
}

// ReadString reads a length-prefixed UTF-8 string. The bytes are not
// re-validated as UTF-8 at this layer.
func (r *Reader) ReadString() (string, error) {
	data, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SkipBytes skips over a length-prefixed byte region.
func (r *Reader) SkipBytes() error {
	length, err := r.ReadVarint()
	if err != nil {
		return err
	}
	if length > uint64(r.Remaining()) {
		return ErrLengthOverrun
	}
	r.pos += int(length)
	return nil
}

// Sub reads a length prefix and returns an independent reader over the
// prefixed region, advancing this reader past it.
func (r *Reader) Sub() (*Reader, error) {
	length, err := r.ReadVarint()
	if err != nil {
		return nil, fmt.Errorf("failed to decode length prefix: %w", err)
	}
	if length > uint64(r.Remaining()) {
		return nil, ErrLengthOverrun
	}
	sub := NewReader(r.buf[r.pos : r.pos+int(length)])
	r.pos += int(length)
	return sub, nil
}

// SkipField skips one field body framed by wt, returning an error on group
// wire types or unknown framings.
func (r *Reader) SkipField(wt WireType) error {
	switch wt {
	case WireVarint:
		return r.SkipVarint()
	case WireFixed64:
		return r.Skip(8)
	case WireBytes:
		return r.SkipBytes()
	case WireFixed32:
		return r.Skip(4)
	case wireStartGroup, wireEndGroup:
		return ErrGroupWireType
	default:
		return ErrInvalidWire
	}
}

// ReadRawField consumes one field body framed by wt and returns the raw
// bytes consumed, length prefix included for WireBytes. The result is a
// copy; callers may retain it past the reader's lifetime.
func (r *Reader) ReadRawField(wt WireType) ([]byte, error) {
	start := r.pos
	if err := r.SkipField(wt); err != nil {
		return nil, err
	}
	raw := make([]byte, r.pos-start)
	copy(raw, r.buf[start:r.pos])
	return raw, nil
}
