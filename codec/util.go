package codec

import (
	"fmt"

	"github.com/anirudhraja/protoscribe/wire"
)

// Helpers shared by the dynamic engine and generated code. Generated parse
// loops hard-code field dispatch but route the uniform cases — unknown
// fields, wire-type mismatches, structural checks — through here.

// ValidateWireType rejects tags whose wire type the codec cannot frame.
// Group wire types are a fatal structural error regardless of flags.
func ValidateWireType(wt wire.WireType, offset int) error {
	if wt.Valid() {
		return nil
	}
	if wt == 3 || wt == 4 {
		return WrapUnknownErr(wire.ErrGroupWireType, offset)
	}
	return WrapUnknownErr(wire.ErrInvalidWire, offset)
}

// CaptureUnknown skips one field body and, when retention is on, appends
// the entry verbatim to unknown.
func CaptureUnknown(r *wire.Reader, tag wire.Tag, wt wire.WireType, offset int, opts UnmarshalOptions, unknown *[]UnknownField) error {
	body, err := r.ReadRawField(wt)
	if err != nil {
		return WrapUnknownErr(err, offset)
	}
	if opts.RetainUnknownFields {
		*unknown = append(*unknown, UnknownField{Tag: tag, Body: body})
	}
	return nil
}

// HandleMismatch resolves a wire-type mismatch on a known field: fatal by
// default, demoted to the unknown-field path when IgnoreIncorrectTypes is
// set.
func HandleMismatch(r *wire.Reader, tag wire.Tag, wt wire.WireType, group string, number int32, offset int, opts UnmarshalOptions, unknown *[]UnknownField) error {
	if opts.IgnoreIncorrectTypes {
		return CaptureUnknown(r, tag, wt, offset, opts, unknown)
	}
	return WrapFieldErr(
		fmt.Errorf("%w: got wire type %d", ErrTypeMismatch, wt),
		group, number, offset)
}

// AppendUnknown re-emits retained unknown entries verbatim, original tags
// included.
func AppendUnknown(w *wire.Writer, unknown []UnknownField) {
	for _, uf := range unknown {
		w.PutVarint(uint64(uf.Tag))
		w.PutBytes(uf.Body)
	}
}

// CloneUnknown deep-copies retained unknown entries.
func CloneUnknown(unknown []UnknownField) []UnknownField {
	if len(unknown) == 0 {
		return nil
	}
	out := make([]UnknownField, len(unknown))
	for i, uf := range unknown {
		body := make([]byte, len(uf.Body))
		copy(body, uf.Body)
		out[i] = UnknownField{Tag: uf.Tag, Body: body}
	}
	return out
}

// EQUALITY HELPERS

// EqualSlices compares two slices element-wise; a nil slice equals an
// empty one.
func EqualSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EqualSlicesFunc compares two slices with an element comparator.
func EqualSlicesFunc[T any](a, b []T, eq func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}

// EqualMaps compares two maps key-wise; a nil map equals an empty one.
func EqualMaps[K, V comparable](a, b map[K]V) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok || v != bv {
			return false
		}
	}
	return true
}

// EqualMapsFunc compares two maps with a value comparator.
func EqualMapsFunc[K comparable, V any](a, b map[K]V, eq func(V, V) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok || !eq(v, bv) {
			return false
		}
	}
	return true
}

// EqualPtr compares two optional scalar slots.
func EqualPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// EqualBytes compares two byte strings; nil equals empty.
func EqualBytes(a, b []byte) bool {
	return string(a) == string(b)
}

// CLONE HELPERS

// CloneBytes copies a byte string, preserving nil.
func CloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// CloneSlice shallow-copies a slice, preserving nil.
func CloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// CloneSliceFunc copies a slice through an element cloner.
func CloneSliceFunc[T any](s []T, clone func(T) T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	for i, e := range s {
		out[i] = clone(e)
	}
	return out
}

// CloneMap shallow-copies a map, preserving nil.
func CloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CloneMapFunc copies a map through a value cloner.
func CloneMapFunc[K comparable, V any](m map[K]V, clone func(V) V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

// DICT PROJECTION HELPERS

// DictSlice projects a slice through an element projection.
func DictSlice[T any](s []T, proj func(T) any) []any {
	out := make([]any, len(s))
	for i, e := range s {
		out[i] = proj(e)
	}
	return out
}

// DictMap projects a map through a value projection.
func DictMap[K comparable, V any](m map[K]V, proj func(V) any) map[any]any {
	out := make(map[any]any, len(m))
	for k, v := range m {
		out[k] = proj(v)
	}
	return out
}

// REPR HELPERS

// ReprString renders a string slot, abbreviating past the repr threshold.
func ReprString(s string) string {
	if len(s) > reprMaxChars {
		return fmt.Sprintf("(%d chars)", len(s))
	}
	return fmt.Sprintf("%q", s)
}

// ReprBytes renders a byte slot, abbreviating past the repr threshold.
func ReprBytes(b []byte) string {
	if len(b) > reprMaxBytes {
		return fmt.Sprintf("(%d bytes)", len(b))
	}
	return fmt.Sprintf("%q", b)
}
