package codec

import (
	"errors"
	"fmt"
)

// Engine-level errors.
var (
	ErrTypeMismatch  = errors.New("wire type does not match field's expected wire type")
	ErrValueMismatch = errors.New("value does not match field's declared type")
	ErrDepthExceeded = errors.New("message nesting exceeds depth limit")
)

// FieldError decorates an encoding/decoding error with a context prefix for
// the call frame that observed it: (Field:<group>#<number>+0x<offset>) for
// known fields, (at 0x<offset>) for unknown fields, (Index:<i>) for elements
// of a repeated field. Nested frames chain their prefixes outermost-first.
type FieldError struct {
	Prefix string // e.g. "(Field:f_uint64#3+0x1A)"
	Err    error  // underlying error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return e.Prefix + " " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for compatibility.
func (e *FieldError) Is(target error) bool {
	_, ok := target.(*FieldError)
	return ok
}

// WrapFieldErr decorates err with a known-field frame prefix.
func WrapFieldErr(err error, group string, number int32, offset int) error {
	if err == nil {
		return nil
	}
	return &FieldError{
		Prefix: fmt.Sprintf("(Field:%s#%d+0x%X)", group, number, offset),
		Err:    err,
	}
}

// WrapUnknownErr decorates err with an unknown-field frame prefix.
func WrapUnknownErr(err error, offset int) error {
	if err == nil {
		return nil
	}
	return &FieldError{
		Prefix: fmt.Sprintf("(at 0x%X)", offset),
		Err:    err,
	}
}

// WrapIndexErr decorates err with a repeated-element frame prefix.
func WrapIndexErr(err error, index int) error {
	if err == nil {
		return nil
	}
	return &FieldError{
		Prefix: fmt.Sprintf("(Index:%d)", index),
		Err:    err,
	}
}
