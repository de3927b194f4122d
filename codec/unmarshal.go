package codec

import (
	"fmt"

	"github.com/anirudhraja/protoscribe/schema"
	"github.com/anirudhraja/protoscribe/wire"
)

// Resolver supplies message definitions for sub-message references. A
// *registry.Registry satisfies it.
type Resolver interface {
	GetMessage(name string) (*schema.Message, error)
}

// Unmarshal parses data into a fresh instance of mt. All errors propagate
// out of the top-level call; no partial result is returned.
func Unmarshal(data []byte, mt *schema.Message, res Resolver, opts UnmarshalOptions) (*Message, error) {
	m := NewMessage(mt)
	u := &unmarshaler{res: res, opts: opts}
	if err := u.merge(wire.NewReader(data), m); err != nil {
		return nil, err
	}
	return m, nil
}

// UnmarshalMerge parses data into the existing message state: singular
// fields overwrite, repeated and map fields accumulate, retained unknown
// fields append.
func (m *Message) UnmarshalMerge(data []byte, res Resolver, opts UnmarshalOptions) error {
	u := &unmarshaler{res: res, opts: opts}
	return u.merge(wire.NewReader(data), m)
}

type unmarshaler struct {
	res   Resolver
	opts  UnmarshalOptions
	depth int
}

// merge runs the tag-dispatch parse loop over one message body.
func (u *unmarshaler) merge(r *wire.Reader, m *Message) error {
	if u.depth >= u.opts.maxDepth() {
		return ErrDepthExceeded
	}
	u.depth++
	defer func() { u.depth-- }()

	for !r.EOF() {
		start := r.Pos()
		rawTag, err := r.ReadVarint()
		if err != nil {
			return WrapUnknownErr(err, start)
		}
		fn, wt := wire.ParseTag(wire.Tag(rawTag))
		if err := ValidateWireType(wt, start); err != nil {
			return err
		}
		if fn < 1 || fn > wire.MaxFieldNumber {
			return WrapUnknownErr(fmt.Errorf("invalid field number %d", fn), start)
		}

		group, field := m.Type.FieldByNumber(int32(fn))
		if field == nil {
			if err := CaptureUnknown(r, wire.Tag(rawTag), wt, start, u.opts, &m.Unknown); err != nil {
				return err
			}
			continue
		}

		switch {
		case wt == expectedWireType(field):
			if err := u.parseKnown(r, m, group, field, wt, start); err != nil {
				return err
			}
		case field.Cardinality == schema.CardRepeated && schema.IsPackedType(field.Type) && wt == wire.WireBytes:
			if err := u.parsePacked(r, m, group, field, start); err != nil {
				return err
			}
		case u.opts.IgnoreIncorrectTypes:
			if err := CaptureUnknown(r, wire.Tag(rawTag), wt, start, u.opts, &m.Unknown); err != nil {
				return err
			}
		default:
			return WrapFieldErr(
				fmt.Errorf("%w: field %s is %s, got wire type %d", ErrTypeMismatch, field.Name, field.Type, wt),
				group.Name, field.Number, start)
		}
	}
	return nil
}

// expectedWireType returns the wire type a well-formed entry for the field
// carries. Repeated packable fields also tolerate the packed form; merge
// handles that branch separately.
func expectedWireType(f *schema.Field) wire.WireType {
	switch f.Cardinality {
	case schema.CardMap:
		return wire.WireBytes
	default:
		return WireTypeFor(f.Type)
	}
}

// parseKnown decodes one well-typed wire entry per the field's cardinality.
func (u *unmarshaler) parseKnown(r *wire.Reader, m *Message, g *schema.FieldGroup, f *schema.Field, wt wire.WireType, start int) error {
	switch f.Cardinality {
	case schema.CardMap:
		key, val, err := u.parseMapEntry(r, f)
		if err != nil {
			return WrapFieldErr(err, g.Name, f.Number, start)
		}
		slot, _ := m.Fields[g.Name].(map[any]any)
		if slot == nil {
			slot = make(map[any]any)
		}
		slot[key] = val
		m.Fields[g.Name] = slot
		return nil

	case schema.CardRepeated:
		c, err := u.codecFor(f)
		if err != nil {
			return WrapFieldErr(err, g.Name, f.Number, start)
		}
		v, err := c.Parse(r)
		if err != nil {
			return WrapFieldErr(err, g.Name, f.Number, start)
		}
		slot, _ := m.Fields[g.Name].([]any)
		m.Fields[g.Name] = append(slot, v)
		return nil

	default:
		c, err := u.codecFor(f)
		if err != nil {
			return WrapFieldErr(err, g.Name, f.Number, start)
		}
		v, err := c.Parse(r)
		if err != nil {
			return WrapFieldErr(err, g.Name, f.Number, start)
		}
		m.Fields[g.Name] = v
		return nil
	}
}

// parsePacked decodes a length-prefixed run of packed elements, appending
// each to the repeated slot.
func (u *unmarshaler) parsePacked(r *wire.Reader, m *Message, g *schema.FieldGroup, f *schema.Field, start int) error {
	c, err := u.codecFor(f)
	if err != nil {
		return WrapFieldErr(err, g.Name, f.Number, start)
	}
	sub, err := r.Sub()
	if err != nil {
		return WrapFieldErr(err, g.Name, f.Number, start)
	}
	slot, _ := m.Fields[g.Name].([]any)
	for i := 0; !sub.EOF(); i++ {
		v, err := c.Parse(sub)
		if err != nil {
			return WrapFieldErr(WrapIndexErr(err, i), g.Name, f.Number, start)
		}
		slot = append(slot, v)
	}
	m.Fields[g.Name] = slot
	return nil
}

// codecFor builds the parse codec for a non-map field, binding sub-message
// recursion through this unmarshaler.
func (u *unmarshaler) codecFor(f *schema.Field) (Codec, error) {
	if f.Type == schema.TypeMessage {
		return u.messageCodec(f.MessageRef), nil
	}
	return fieldCodec(f.Type, f.EnumRef)
}

// messageCodec binds a sub-message parse closure for the referenced type.
func (u *unmarshaler) messageCodec(typeName string) Codec {
	return &messageCodec{
		typeName: typeName,
		parse: func(r *wire.Reader) (any, error) {
			mt, err := u.resolveMessage(typeName)
			if err != nil {
				return nil, err
			}
			sub, err := r.Sub()
			if err != nil {
				return nil, err
			}
			sm := NewMessage(mt)
			if err := u.merge(sub, sm); err != nil {
				return nil, err
			}
			return sm, nil
		},
	}
}

func (u *unmarshaler) resolveMessage(typeName string) (*schema.Message, error) {
	if u.res == nil {
		return nil, fmt.Errorf("missing parser for sub-message reference %s", typeName)
	}
	mt, err := u.res.GetMessage(typeName)
	if err != nil {
		return nil, fmt.Errorf("missing parser for sub-message reference %s: %w", typeName, err)
	}
	return mt, nil
}

// parseMapEntry decodes one synthetic two-field entry message. Only field
// numbers 1 and 2 are honored; anything else is silently skipped. A missing
// key or value falls back to the type's default; duplicates last-win.
func (u *unmarshaler) parseMapEntry(r *wire.Reader, f *schema.Field) (any, any, error) {
	keyCodec, err := fieldCodec(f.KeyType, nil)
	if err != nil {
		return nil, nil, err
	}
	valCodec, err := u.mapValueCodec(f)
	if err != nil {
		return nil, nil, err
	}

	sub, err := r.Sub()
	if err != nil {
		return nil, nil, err
	}

	key := keyCodec.Default()
	val, err := u.mapValueDefault(f, valCodec)
	if err != nil {
		return nil, nil, err
	}

	for !sub.EOF() {
		start := sub.Pos()
		rawTag, err := sub.ReadVarint()
		if err != nil {
			return nil, nil, WrapUnknownErr(err, start)
		}
		fn, wt := wire.ParseTag(wire.Tag(rawTag))
		if !wt.Valid() {
			return nil, nil, WrapUnknownErr(wire.ErrInvalidWire, start)
		}
		switch fn {
		case 1:
			key, err = keyCodec.Parse(sub)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to decode map key: %w", err)
			}
		case 2:
			val, err = valCodec.Parse(sub)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to decode map value: %w", err)
			}
		default:
			if err := sub.SkipField(wt); err != nil {
				return nil, nil, WrapUnknownErr(err, start)
			}
		}
	}
	return key, val, nil
}

func (u *unmarshaler) mapValueCodec(f *schema.Field) (Codec, error) {
	if f.ValueType == schema.TypeMessage {
		return u.messageCodec(f.ValueMessageRef), nil
	}
	return fieldCodec(f.ValueType, f.ValueEnumRef)
}

// mapValueDefault materializes the default for a map entry's value slot; a
// message value defaults to a fresh empty instance.
func (u *unmarshaler) mapValueDefault(f *schema.Field, valCodec Codec) (any, error) {
	if f.ValueType != schema.TypeMessage {
		return valCodec.Default(), nil
	}
	mt, err := u.resolveMessage(f.ValueMessageRef)
	if err != nil {
		return nil, err
	}
	return NewMessage(mt), nil
}
