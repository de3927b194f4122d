package codec

import (
	"fmt"
	"strings"

	"github.com/anirudhraja/protoscribe/schema"
	"github.com/anirudhraja/protoscribe/wire"
)

// Marshal serializes a dynamic message: field groups in declaration order,
// repeated elements in list order, map entries in sorted key order, retained
// unknown fields last. For a given host state the output is canonical.
func Marshal(m *Message) ([]byte, error) {
	w := wire.NewWriter()
	if err := appendMessage(w, m); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func appendMessage(w *wire.Writer, m *Message) error {
	for _, g := range m.Type.Groups {
		if err := appendGroup(w, g, m.Fields[g.Name]); err != nil {
			return err
		}
	}
	AppendUnknown(w, m.Unknown)
	return nil
}

func appendGroup(w *wire.Writer, g *schema.FieldGroup, v any) error {
	if v == nil {
		if g.Optional() {
			return nil
		}
		// The only non-optional slots that may legally be nil are deferred
		// sub-message defaults and never-touched list/map slots; all of
		// them serialize to nothing.
		f := g.Fields[0]
		if f.Type == schema.TypeMessage || f.Cardinality == schema.CardRepeated || f.Cardinality == schema.CardMap {
			return nil
		}
		return WrapFieldErr(fmt.Errorf("%w: slot %s is nil", ErrValueMismatch, g.Name), g.Name, f.Number, w.Len())
	}

	if g.Oneof {
		// Probe candidates in declaration order; first type match wins.
		for _, f := range g.Fields {
			c, err := marshalCodecFor(f)
			if err != nil {
				return WrapFieldErr(err, g.Name, f.Number, w.Len())
			}
			if c.Matches(v) {
				return appendSingular(w, g, f, v)
			}
		}
		return WrapFieldErr(
			fmt.Errorf("%w: no candidate of oneof %s matches value of type %T", ErrValueMismatch, g.Name, v),
			g.Name, g.Fields[0].Number, w.Len())
	}

	f := g.Field()
	switch f.Cardinality {
	case schema.CardRepeated:
		return appendRepeated(w, g, f, v)
	case schema.CardMap:
		return appendMap(w, g, f, v)
	default:
		return appendSingular(w, g, f, v)
	}
}

// appendSingular emits one tagged value with default elision: SINGULAR
// slots at their type default produce nothing; OPTIONAL slots, once
// present, are always written. A sub-message whose serialized body is empty
// is elided unless the field is optional.
func appendSingular(w *wire.Writer, g *schema.FieldGroup, f *schema.Field, v any) error {
	if f.Type == schema.TypeMessage {
		sm, ok := v.(*Message)
		if !ok {
			return WrapFieldErr(fmt.Errorf("%w: got %T, want *Message", ErrValueMismatch, v), g.Name, f.Number, w.Len())
		}
		sub := wire.NewWriter()
		if err := appendMessage(sub, sm); err != nil {
			return WrapFieldErr(err, g.Name, f.Number, w.Len())
		}
		if sub.Len() == 0 && f.Cardinality != schema.CardOptional {
			return nil
		}
		w.PutTag(wire.FieldNumber(f.Number), wire.WireBytes)
		w.PutLenPrefixed(sub.Bytes())
		return nil
	}

	c, err := marshalCodecFor(f)
	if err != nil {
		return WrapFieldErr(err, g.Name, f.Number, w.Len())
	}
	if !c.Matches(v) {
		return WrapFieldErr(fmt.Errorf("%w: got %T for %s field %s", ErrValueMismatch, v, f.Type, f.Name), g.Name, f.Number, w.Len())
	}
	if f.Cardinality == schema.CardSingular && c.IsDefault(v) {
		return nil
	}
	w.PutTag(wire.FieldNumber(f.Number), c.WireType())
	if err := c.AppendBody(w, v); err != nil {
		return WrapFieldErr(err, g.Name, f.Number, w.Len())
	}
	return nil
}

// appendRepeated emits a repeated field: packed form for packable element
// types, one tagged entry per element otherwise. Empty lists emit nothing.
func appendRepeated(w *wire.Writer, g *schema.FieldGroup, f *schema.Field, v any) error {
	list, ok := v.([]any)
	if !ok {
		return WrapFieldErr(fmt.Errorf("%w: got %T, want []any", ErrValueMismatch, v), g.Name, f.Number, w.Len())
	}
	if len(list) == 0 {
		return nil
	}
	c, err := marshalCodecFor(f)
	if err != nil {
		return WrapFieldErr(err, g.Name, f.Number, w.Len())
	}

	if schema.IsPackedType(f.Type) {
		sub := wire.NewWriter()
		for i, e := range list {
			if err := c.AppendBody(sub, e); err != nil {
				return WrapFieldErr(WrapIndexErr(err, i), g.Name, f.Number, w.Len())
			}
		}
		w.PutTag(wire.FieldNumber(f.Number), wire.WireBytes)
		w.PutLenPrefixed(sub.Bytes())
		return nil
	}

	for i, e := range list {
		w.PutTag(wire.FieldNumber(f.Number), c.WireType())
		if err := c.AppendBody(w, e); err != nil {
			return WrapFieldErr(WrapIndexErr(err, i), g.Name, f.Number, w.Len())
		}
	}
	return nil
}

// appendMap emits one synthetic two-field entry per key in sorted key
// order. Key and value are always written, defaults included.
func appendMap(w *wire.Writer, g *schema.FieldGroup, f *schema.Field, v any) error {
	mv, ok := v.(map[any]any)
	if !ok {
		return WrapFieldErr(fmt.Errorf("%w: got %T, want map[any]any", ErrValueMismatch, v), g.Name, f.Number, w.Len())
	}
	if len(mv) == 0 {
		return nil
	}
	keyCodec, err := fieldCodec(f.KeyType, nil)
	if err != nil {
		return WrapFieldErr(err, g.Name, f.Number, w.Len())
	}
	valCodec, err := marshalMapValueCodec(f)
	if err != nil {
		return WrapFieldErr(err, g.Name, f.Number, w.Len())
	}

	for _, key := range sortedMapKeys(mv) {
		entry := wire.NewWriter()
		entry.PutTag(1, keyCodec.WireType())
		if err := keyCodec.AppendBody(entry, key); err != nil {
			return WrapFieldErr(fmt.Errorf("failed to encode map key: %w", err), g.Name, f.Number, w.Len())
		}
		entry.PutTag(2, valCodec.WireType())
		if err := valCodec.AppendBody(entry, mv[key]); err != nil {
			return WrapFieldErr(fmt.Errorf("failed to encode map value: %w", err), g.Name, f.Number, w.Len())
		}
		w.PutTag(wire.FieldNumber(f.Number), wire.WireBytes)
		w.PutLenPrefixed(entry.Bytes())
	}
	return nil
}

// marshalCodecFor builds the serialize codec for a non-map field.
func marshalCodecFor(f *schema.Field) (Codec, error) {
	if f.Type == schema.TypeMessage {
		return marshalMessageCodec(f.MessageRef), nil
	}
	return fieldCodec(f.Type, f.EnumRef)
}

func marshalMapValueCodec(f *schema.Field) (Codec, error) {
	if f.ValueType == schema.TypeMessage {
		return marshalMessageCodec(f.ValueMessageRef), nil
	}
	return fieldCodec(f.ValueType, f.ValueEnumRef)
}

func marshalMessageCodec(typeName string) Codec {
	return &messageCodec{
		typeName: typeName,
		appends: func(w *wire.Writer, v any) error {
			sub := wire.NewWriter()
			if err := appendMessage(sub, v.(*Message)); err != nil {
				return err
			}
			w.PutLenPrefixed(sub.Bytes())
			return nil
		},
	}
}

// messageCodec adapts sub-message parse/serialize closures to the Codec
// interface. The side not bound by its builder reports an internal error;
// a well-formed engine never takes that path.
type messageCodec struct {
	typeName string
	parse    func(r *wire.Reader) (any, error)
	appends  func(w *wire.Writer, v any) error
}

func (c *messageCodec) WireType() wire.WireType { return wire.WireBytes }

func (c *messageCodec) Default() any { return nil }

func (c *messageCodec) Matches(v any) bool {
	sm, ok := v.(*Message)
	if !ok || sm == nil {
		return false
	}
	if c.typeName == "" {
		return true
	}
	// MessageRef is fully qualified; instance types carry the bare name.
	return sm.Type.Name == c.typeName || strings.HasSuffix(c.typeName, "."+sm.Type.Name)
}

// IsDefault always reports false for messages; elision of all-default
// sub-messages goes through the empty-body check instead.
func (c *messageCodec) IsDefault(v any) bool { return false }

func (c *messageCodec) Parse(r *wire.Reader) (any, error) {
	if c.parse == nil {
		return nil, fmt.Errorf("missing parser for sub-message reference %s", c.typeName)
	}
	return c.parse(r)
}

func (c *messageCodec) AppendBody(w *wire.Writer, v any) error {
	if c.appends == nil {
		return fmt.Errorf("missing serializer for sub-message reference %s", c.typeName)
	}
	if !c.Matches(v) {
		return fmt.Errorf("%w: got %T, want message %s", ErrValueMismatch, v, c.typeName)
	}
	return c.appends(w, v)
}
