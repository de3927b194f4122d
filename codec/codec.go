package codec

import (
	"fmt"

	"github.com/anirudhraja/protoscribe/schema"
	"github.com/anirudhraja/protoscribe/wire"
)

// Codec knows how to handle one data type: its wire type, its default
// value, how to parse one value from a reader, how to serialize one value
// without its tag, and how to recognize a matching host value.
//
// Dynamic host representations:
//
//	int32/sint32/sfixed32  int32
//	int64/sint64/sfixed64  int64
//	uint32/fixed32         uint32
//	uint64/fixed64         uint64
//	float                  float32
//	double                 float64
//	bool                   bool
//	string                 string
//	bytes                  []byte
//	enum                   *schema.EnumValue
//	message                *Message
//	map                    map[any]any
type Codec interface {
	WireType() wire.WireType
	Default() any
	Matches(v any) bool
	IsDefault(v any) bool
	Parse(r *wire.Reader) (any, error)
	AppendBody(w *wire.Writer, v any) error
}

// WireTypeFor returns the wire type a field of data type dt is framed with.
// Map and message fields are length-prefixed.
func WireTypeFor(dt schema.DataType) wire.WireType {
	switch dt {
	case schema.TypeString, schema.TypeBytes, schema.TypeMessage, schema.TypeMap:
		return wire.WireBytes
	case schema.TypeFloat, schema.TypeFixed32, schema.TypeSfixed32:
		return wire.WireFixed32
	case schema.TypeDouble, schema.TypeFixed64, schema.TypeSfixed64:
		return wire.WireFixed64
	default:
		return wire.WireVarint
	}
}

// scalarCodec implements Codec for one scalar data type through function
// slots; the table below binds the typed helpers from scalar.go.
type scalarCodec struct {
	wt        wire.WireType
	def       any
	matches   func(v any) bool
	isDefault func(v any) bool
	parse     func(r *wire.Reader) (any, error)
	appends   func(w *wire.Writer, v any) error
}

func (c *scalarCodec) WireType() wire.WireType { return c.wt }
func (c *scalarCodec) Default() any            { return c.def }
func (c *scalarCodec) Matches(v any) bool      { return c.matches(v) }
func (c *scalarCodec) IsDefault(v any) bool    { return c.matches(v) && c.isDefault(v) }

func (c *scalarCodec) Parse(r *wire.Reader) (any, error) {
	return c.parse(r)
}

func (c *scalarCodec) AppendBody(w *wire.Writer, v any) error {
	if !c.matches(v) {
		return fmt.Errorf("%w: got %T", ErrValueMismatch, v)
	}
	return c.appends(w, v)
}

func newScalarCodec[T comparable](
	wt wire.WireType,
	zero T,
	parse func(r *wire.Reader) (T, error),
	appends func(w *wire.Writer, v T),
) *scalarCodec {
	return &scalarCodec{
		wt:  wt,
		def: zero,
		matches: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
		isDefault: func(v any) bool {
			return v.(T) == zero
		},
		parse: func(r *wire.Reader) (any, error) {
			return parse(r)
		},
		appends: func(w *wire.Writer, v any) error {
			appends(w, v.(T))
			return nil
		},
	}
}

var scalarCodecs = map[schema.DataType]Codec{
	schema.TypeInt32:    newScalarCodec(wire.WireVarint, int32(0), ParseInt32, AppendInt32),
	schema.TypeInt64:    newScalarCodec(wire.WireVarint, int64(0), ParseInt64, AppendInt64),
	schema.TypeUint32:   newScalarCodec(wire.WireVarint, uint32(0), ParseUint32, AppendUint32),
	schema.TypeUint64:   newScalarCodec(wire.WireVarint, uint64(0), ParseUint64, AppendUint64),
	schema.TypeSint32:   newScalarCodec(wire.WireVarint, int32(0), ParseSint32, AppendSint32),
	schema.TypeSint64:   newScalarCodec(wire.WireVarint, int64(0), ParseSint64, AppendSint64),
	schema.TypeBool:     newScalarCodec(wire.WireVarint, false, ParseBool, AppendBool),
	schema.TypeFixed32:  newScalarCodec(wire.WireFixed32, uint32(0), ParseFixed32, AppendFixed32),
	schema.TypeSfixed32: newScalarCodec(wire.WireFixed32, int32(0), ParseSfixed32, AppendSfixed32),
	schema.TypeFloat:    newScalarCodec(wire.WireFixed32, float32(0), ParseFloat, AppendFloat),
	schema.TypeFixed64:  newScalarCodec(wire.WireFixed64, uint64(0), ParseFixed64, AppendFixed64),
	schema.TypeSfixed64: newScalarCodec(wire.WireFixed64, int64(0), ParseSfixed64, AppendSfixed64),
	schema.TypeDouble:   newScalarCodec(wire.WireFixed64, float64(0), ParseDouble, AppendDouble),
	schema.TypeString:   newScalarCodec(wire.WireBytes, "", ParseString, AppendString),
	schema.TypeBytes: &scalarCodec{
		// []byte is not comparable; empty is the default.
		wt:  wire.WireBytes,
		def: []byte{},
		matches: func(v any) bool {
			_, ok := v.([]byte)
			return ok
		},
		isDefault: func(v any) bool {
			return len(v.([]byte)) == 0
		},
		parse: func(r *wire.Reader) (any, error) {
			return ParseBytes(r)
		},
		appends: func(w *wire.Writer, v any) error {
			AppendBytes(w, v.([]byte))
			return nil
		},
	},
}

// enumCodec implements Codec for one declared enum. The host value is the
// declared *schema.EnumValue; undeclared integers fail to parse.
type enumCodec struct {
	enum *schema.Enum
}

func (c *enumCodec) WireType() wire.WireType { return wire.WireVarint }

func (c *enumCodec) Default() any { return c.enum.Zero() }

func (c *enumCodec) Matches(v any) bool {
	ev, ok := v.(*schema.EnumValue)
	if !ok || ev == nil {
		return false
	}
	declared := c.enum.ValueByName(ev.Name)
	return declared != nil && declared.Number == ev.Number
}

func (c *enumCodec) IsDefault(v any) bool {
	ev, ok := v.(*schema.EnumValue)
	return ok && ev != nil && ev.Number == 0
}

func (c *enumCodec) Parse(r *wire.Reader) (any, error) {
	raw, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	ev := c.enum.ValueByNumber(int32(raw))
	if ev == nil {
		return nil, fmt.Errorf("unknown enum value %d for enum %s", int32(raw), c.enum.Name)
	}
	return ev, nil
}

func (c *enumCodec) AppendBody(w *wire.Writer, v any) error {
	if !c.Matches(v) {
		return fmt.Errorf("%w: got %T, want member of enum %s", ErrValueMismatch, v, c.enum.Name)
	}
	AppendEnum(w, v.(*schema.EnumValue).Number)
	return nil
}

// fieldCodec returns the codec for a non-map field's element type. Message
// codecs are built by the caller because parse needs engine context.
func fieldCodec(dt schema.DataType, enum *schema.Enum) (Codec, error) {
	if dt == schema.TypeEnum {
		if enum == nil {
			return nil, fmt.Errorf("enum field has no resolved enum reference")
		}
		return &enumCodec{enum: enum}, nil
	}
	c, ok := scalarCodecs[dt]
	if !ok {
		return nil, fmt.Errorf("no scalar codec for data type %s", dt)
	}
	return c, nil
}
