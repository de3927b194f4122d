package codec

import (
	"math"

	"github.com/anirudhraja/protoscribe/wire"
)

// Typed scalar parse/serialize helpers. Generated code calls these directly
// with hard-coded choices per field; the dynamic codecs below wrap them.

// PARSE HELPERS

// ParseInt32 decodes a varint as int32, truncating to 32 bits and
// sign-extending (canonical int32 behavior).
func ParseInt32(r *wire.Reader) (int32, error) {
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// ParseInt64 decodes a varint as int64.
func ParseInt64(r *wire.Reader) (int64, error) {
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// ParseUint32 decodes a varint as uint32, rejecting values beyond 2^32-1.
func ParseUint32(r *wire.Reader) (uint32, error) {
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, wire.ErrRangeOverflow
	}
	return uint32(v), nil
}

// ParseUint64 decodes a varint as uint64.
func ParseUint64(r *wire.Reader) (uint64, error) {
	return r.ReadVarint()
}

// ParseSint32 decodes a zigzag-encoded varint as int32.
func ParseSint32(r *wire.Reader) (int32, error) {
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return wire.DecodeZigZag32(v), nil
}

// ParseSint64 decodes a zigzag-encoded varint as int64.
func ParseSint64(r *wire.Reader) (int64, error) {
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return wire.DecodeZigZag64(v), nil
}

// ParseBool decodes a varint as bool.
func ParseBool(r *wire.Reader) (bool, error) {
	v, err := r.ReadVarint()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ParseFixed32 decodes a 4-byte little-endian uint32.
func ParseFixed32(r *wire.Reader) (uint32, error) {
	return r.ReadFixed32()
}

// ParseSfixed32 decodes a 4-byte little-endian int32.
func ParseSfixed32(r *wire.Reader) (int32, error) {
	v, err := r.ReadFixed32()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// ParseFixed64 decodes an 8-byte little-endian uint64.
func ParseFixed64(r *wire.Reader) (uint64, error) {
	return r.ReadFixed64()
}

// ParseSfixed64 decodes an 8-byte little-endian int64.
func ParseSfixed64(r *wire.Reader) (int64, error) {
	v, err := r.ReadFixed64()
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// ParseFloat decodes a fixed32 as float32.
func ParseFloat(r *wire.Reader) (float32, error) {
	return r.ReadFloat32()
}

// ParseDouble decodes a fixed64 as float64.
func ParseDouble(r *wire.Reader) (float64, error) {
	return r.ReadFloat64()
}

// ParseString decodes a length-prefixed string. UTF-8 validity is not
// enforced at this layer.
func ParseString(r *wire.Reader) (string, error) {
	return r.ReadString()
}

// ParseBytes decodes a length-prefixed byte string.
func ParseBytes(r *wire.Reader) ([]byte, error) {
	return r.ReadBytes()
}

// SERIALIZE HELPERS

// AppendInt32 emits v through the 64-bit varint form; negative values
// produce 10 bytes, matching the canonical encoder.
func AppendInt32(w *wire.Writer, v int32) {
	w.PutVarint(uint64(int64(v)))
}

// AppendInt64 emits v as a varint of its unsigned reinterpretation.
func AppendInt64(w *wire.Writer, v int64) {
	w.PutVarint(uint64(v))
}

// AppendUint32 emits v as a varint.
func AppendUint32(w *wire.Writer, v uint32) {
	w.PutVarint(uint64(v))
}

// AppendUint64 emits v as a varint.
func AppendUint64(w *wire.Writer, v uint64) {
	w.PutVarint(v)
}

// AppendSint32 emits v zigzag-encoded.
func AppendSint32(w *wire.Writer, v int32) {
	w.PutVarint(wire.EncodeZigZag32(v))
}

// AppendSint64 emits v zigzag-encoded.
func AppendSint64(w *wire.Writer, v int64) {
	w.PutVarint(wire.EncodeZigZag64(v))
}

// AppendBool emits 0x00 or 0x01.
func AppendBool(w *wire.Writer, v bool) {
	if v {
		w.PutByte(0x01)
	} else {
		w.PutByte(0x00)
	}
}

// AppendFixed32 emits 4 bytes little-endian.
func AppendFixed32(w *wire.Writer, v uint32) {
	w.PutFixed32(v)
}

// AppendSfixed32 emits 4 bytes little-endian.
func AppendSfixed32(w *wire.Writer, v int32) {
	w.PutFixed32(uint32(v))
}

// AppendFixed64 emits 8 bytes little-endian.
func AppendFixed64(w *wire.Writer, v uint64) {
	w.PutFixed64(v)
}

// AppendSfixed64 emits 8 bytes little-endian.
func AppendSfixed64(w *wire.Writer, v int64) {
	w.PutFixed64(uint64(v))
}

// AppendFloat emits a float32 as fixed32.
func AppendFloat(w *wire.Writer, v float32) {
	w.PutFloat32(v)
}

// AppendDouble emits a float64 as fixed64.
func AppendDouble(w *wire.Writer, v float64) {
	w.PutFloat64(v)
}

// AppendString emits a length-prefixed string.
func AppendString(w *wire.Writer, v string) {
	w.PutString(v)
}

// AppendBytes emits a length-prefixed byte string.
func AppendBytes(w *wire.Writer, v []byte) {
	w.PutLenPrefixed(v)
}

// AppendEnum emits an enum integer through the same sign-extended varint
// form as int32.
func AppendEnum(w *wire.Writer, v int32) {
	w.PutVarint(uint64(int64(v)))
}
