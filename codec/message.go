package codec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anirudhraja/protoscribe/schema"
	"github.com/anirudhraja/protoscribe/wire"
)

// Repr truncation thresholds: string slots longer than reprMaxChars and byte
// slots longer than reprMaxBytes are abbreviated.
const (
	reprMaxChars = 10000
	reprMaxBytes = 100
)

// UnknownField preserves one wire entry whose field number is not in the
// schema. Body holds the raw bytes as they appeared on the wire, length
// prefix included, tag excluded; the tag varint is re-synthesized on write.
type UnknownField struct {
	Tag  wire.Tag
	Body []byte
}

// Message is a dynamic message instance: one slot per field group, keyed by
// group name, plus retained unknown-field entries in insertion order.
type Message struct {
	Type    *schema.Message
	Fields  map[string]any
	Unknown []UnknownField
}

// NewMessage constructs an instance of mt with every slot at its group
// default: numeric zero, empty string/bytes, fresh empty list/map, nil for
// optional groups, the zero-valued enum for enum groups. Sub-message slots
// stay nil; default materialization is deferred until first use.
func NewMessage(mt *schema.Message) *Message {
	m := &Message{
		Type:   mt,
		Fields: make(map[string]any, len(mt.Groups)),
	}
	for _, g := range mt.Groups {
		m.Fields[g.Name] = GroupDefault(g)
	}
	return m
}

// GroupDefault returns the initial slot value for a field group. A oneof
// group defaults to the default of its first declared candidate.
func GroupDefault(g *schema.FieldGroup) any {
	if g.Optional() {
		return nil
	}
	f := g.Fields[0]
	switch f.Cardinality {
	case schema.CardRepeated:
		return []any{}
	case schema.CardMap:
		return map[any]any{}
	}
	if f.Type == schema.TypeMessage {
		return nil
	}
	c, err := fieldCodec(f.Type, f.EnumRef)
	if err != nil {
		return nil
	}
	return c.Default()
}

// Marshal serializes the message into canonical proto3 bytes.
func (m *Message) Marshal() ([]byte, error) {
	return Marshal(m)
}

// HasUnknown reports whether any unknown-field entries are retained.
func (m *Message) HasUnknown() bool {
	return len(m.Unknown) > 0
}

// ClearUnknown drops all retained unknown-field entries.
func (m *Message) ClearUnknown() {
	m.Unknown = nil
}

// ToDict projects the message onto plain Go values: sub-messages become
// nested maps, enum values become their declared names, lists and maps are
// preserved, scalars pass through.
func (m *Message) ToDict() map[string]any {
	out := make(map[string]any, len(m.Fields))
	for _, g := range m.Type.Groups {
		out[g.Name] = dictValue(m.Fields[g.Name])
	}
	return out
}

func dictValue(v any) any {
	switch t := v.(type) {
	case *Message:
		if t == nil {
			return nil
		}
		return t.ToDict()
	case *schema.EnumValue:
		if t == nil {
			return nil
		}
		return t.Name
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = dictValue(e)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, e := range t {
			out[k] = dictValue(e)
		}
		return out
	default:
		return v
	}
}

// Equal reports field-group-wise structural equality, recursive on
// sub-messages. A nil message equals an all-default instance, mirroring
// deferred sub-message materialization. Retained unknown fields do not
// participate.
func (m *Message) Equal(o *Message) bool {
	if m == nil && o == nil {
		return true
	}
	if m == nil {
		return o.isAllDefault()
	}
	if o == nil {
		return m.isAllDefault()
	}
	if m.Type.Name != o.Type.Name {
		return false
	}
	for _, g := range m.Type.Groups {
		if !valueEqual(m.Fields[g.Name], o.Fields[g.Name]) {
			return false
		}
	}
	return true
}

// isAllDefault reports whether every slot holds its group default.
func (m *Message) isAllDefault() bool {
	for _, g := range m.Type.Groups {
		if !valueEqual(m.Fields[g.Name], GroupDefault(g)) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return true
		}
		// An unset sub-message slot equals a materialized all-default one.
		other := a
		if a == nil {
			other = b
		}
		if sm, ok := other.(*Message); ok {
			return sm == nil || sm.isAllDefault()
		}
		return false
	}
	switch av := a.(type) {
	case *Message:
		bv, ok := b.(*Message)
		return ok && av.Equal(bv)
	case *schema.EnumValue:
		bv, ok := b.(*schema.EnumValue)
		return ok && av.Name == bv.Name && av.Number == bv.Number
	case []byte:
		bv, ok := b.([]byte)
		return ok && string(av) == string(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[any]any:
		bv, ok := b.(map[any]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !valueEqual(v, bvv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Clone returns a deep copy, retained unknown fields included.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	out := &Message{
		Type:   m.Type,
		Fields: make(map[string]any, len(m.Fields)),
	}
	for k, v := range m.Fields {
		out.Fields[k] = cloneValue(v)
	}
	out.Unknown = CloneUnknown(m.Unknown)
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Message:
		return t.Clone()
	case []byte:
		out := make([]byte, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// String renders a human-readable representation with long string and byte
// slots abbreviated.
func (m *Message) String() string {
	var b strings.Builder
	b.WriteString(m.Type.Name)
	b.WriteByte('(')
	for i, g := range m.Type.Groups {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(g.Name)
		b.WriteByte('=')
		b.WriteString(reprValue(m.Fields[g.Name]))
	}
	b.WriteByte(')')
	return b.String()
}

func reprValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case *Message:
		if t == nil {
			return "nil"
		}
		return t.String()
	case *schema.EnumValue:
		return t.Name
	case string:
		return ReprString(t)
	case []byte:
		return ReprBytes(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = reprValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[any]any:
		keys := sortedMapKeys(t)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%v: %s", k, reprValue(t[k])))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// sortedMapKeys orders a map slot's keys so serialization and repr output
// are deterministic. All keys of one map share a type.
func sortedMapKeys(m map[any]any) []any {
	keys := make([]any, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keyLess(keys[i], keys[j])
	})
	return keys
}

func keyLess(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	case bool:
		bv, ok := b.(bool)
		return ok && !av && bv
	case int32:
		bv, ok := b.(int32)
		return ok && av < bv
	case int64:
		bv, ok := b.(int64)
		return ok && av < bv
	case uint32:
		bv, ok := b.(uint32)
		return ok && av < bv
	case uint64:
		bv, ok := b.(uint64)
		return ok && av < bv
	default:
		return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
	}
}
