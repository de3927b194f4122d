package wire

import (
	"errors"
)

// Sentinel errors for wire-format decoding. They carry no offset; the codec
// layer adds position prefixes.
var (
	ErrVarintTooLong  = errors.New("varint has more than 10 7-bit digits")
	ErrUnexpectedEOF  = errors.New("unexpected end of input")
	ErrGroupWireType  = errors.New("group wire types (3/4) are not supported")
	ErrInvalidWire    = errors.New("unknown wire type")
	ErrRangeOverflow  = errors.New("value out of range for declared type")
	ErrLengthOverrun  = errors.New("length prefix exceeds remaining input")
)
