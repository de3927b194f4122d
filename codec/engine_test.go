package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/anirudhraja/protoscribe/schema"
	"github.com/anirudhraja/protoscribe/wire"
)

// Test fixture mirroring the documented LongMessage shape:
//
//	message LongMessage {
//	  oneof f_oneof { MyEnum f_enum = 1; string f_string = 2; }
//	  repeated uint64 f_uint64 = 3;
//	  optional bytes f_maybe_bytes = 4;
//	  map<string, float> f_map_str_float = 5;
//	}
var myEnum = &schema.Enum{
	Name: "MyEnum",
	Values: []*schema.EnumValue{
		{Name: "VALUE0", Number: 0},
		{Name: "VALUE1", Number: 1},
		{Name: "VALUE2", Number: 2},
		{Name: "VALUE3", Number: 3},
	},
}

func longMessageType() *schema.Message {
	return &schema.Message{
		Name: "LongMessage",
		Groups: []*schema.FieldGroup{
			{
				Name:  "f_oneof",
				Oneof: true,
				Fields: []*schema.Field{
					{Name: "f_enum", Number: 1, Type: schema.TypeEnum, Cardinality: schema.CardSingular, EnumRef: myEnum},
					{Name: "f_string", Number: 2, Type: schema.TypeString, Cardinality: schema.CardSingular},
				},
			},
			{
				Name: "f_uint64",
				Fields: []*schema.Field{
					{Name: "f_uint64", Number: 3, Type: schema.TypeUint64, Cardinality: schema.CardRepeated},
				},
			},
			{
				Name: "f_maybe_bytes",
				Fields: []*schema.Field{
					{Name: "f_maybe_bytes", Number: 4, Type: schema.TypeBytes, Cardinality: schema.CardOptional},
				},
			},
			{
				Name: "f_map_str_float",
				Fields: []*schema.Field{
					{Name: "f_map_str_float", Number: 5, Type: schema.TypeMap, Cardinality: schema.CardMap,
						KeyType: schema.TypeString, ValueType: schema.TypeFloat},
				},
			},
		},
	}
}

// mapResolver resolves sub-message references for engine tests.
type mapResolver map[string]*schema.Message

func (r mapResolver) GetMessage(name string) (*schema.Message, error) {
	if m, ok := r[name]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("message not found: %s", name)
}

func TestMarshalPopulatedMessage(t *testing.T) {
	mt := longMessageType()
	m := NewMessage(mt)
	m.Fields["f_oneof"] = "hi"
	m.Fields["f_uint64"] = []any{uint64(1), uint64(2), uint64(300)}
	m.Fields["f_maybe_bytes"] = nil
	m.Fields["f_map_str_float"] = map[any]any{"k": float32(1.5)}

	got, err := Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x12, 0x02, 'h', 'i', // f_string, LEN 2
		0x1A, 0x04, 0x01, 0x02, 0xAC, 0x02, // f_uint64 packed
		// f_maybe_bytes absent
		0x2A, 0x08, 0x0A, 0x01, 'k', 0x15, 0x00, 0x00, 0xC0, 0x3F, // map entry
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("marshal = %x, want %x", got, want)
	}
}

func TestMarshalOneofEnum(t *testing.T) {
	mt := longMessageType()
	m := NewMessage(mt)
	m.Fields["f_oneof"] = myEnum.ValueByName("VALUE3")

	got, err := Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x08, 0x03}) {
		t.Fatalf("marshal = %x, want 0803", got)
	}

	back, err := Unmarshal(got, mt, nil, DefaultUnmarshalOptions())
	if err != nil {
		t.Fatal(err)
	}
	ev, ok := back.Fields["f_oneof"].(*schema.EnumValue)
	if !ok {
		t.Fatalf("round trip slot is %T, want enum member", back.Fields["f_oneof"])
	}
	if ev.Name != "VALUE3" || ev.Number != 3 {
		t.Errorf("round trip member = %+v", ev)
	}
	if !m.Equal(back) {
		t.Errorf("round trip message is not equal")
	}
}

func TestMarshalAllDefaultsIsEmpty(t *testing.T) {
	m := NewMessage(longMessageType())
	got, err := Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("all-default message must serialize to nothing, got %x", got)
	}
}

func TestWireTypeMismatch(t *testing.T) {
	mt := longMessageType()
	// Field 2 (f_string) framed as varint.
	data := []byte{0x10, 0x01}

	_, err := Unmarshal(data, mt, nil, DefaultUnmarshalOptions())
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "(Field:f_oneof#2+0x0)") {
		t.Errorf("error must cite the group frame, got %q", err.Error())
	}

	opts := DefaultUnmarshalOptions()
	opts.IgnoreIncorrectTypes = true
	m, err := Unmarshal(data, mt, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !m.HasUnknown() {
		t.Fatalf("mismatch must demote to an unknown-field entry")
	}
	out, err := Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("retained bytes must round trip verbatim, got %x", out)
	}
}

func TestUnpackedRepeatedAccumulates(t *testing.T) {
	mt := longMessageType()
	// Field 3 appears twice in unpacked form: 300, then 5.
	data := []byte{0x18, 0xAC, 0x02, 0x18, 0x05}
	m, err := Unmarshal(data, mt, nil, DefaultUnmarshalOptions())
	if err != nil {
		t.Fatal(err)
	}
	list, _ := m.Fields["f_uint64"].([]any)
	if len(list) != 2 || list[0] != uint64(300) || list[1] != uint64(5) {
		t.Fatalf("f_uint64 = %v, want [300 5]", list)
	}
}

func TestPackedUnpackedInterchange(t *testing.T) {
	mt := longMessageType()
	packed := []byte{0x1A, 0x04, 0x01, 0x02, 0xAC, 0x02}
	unpacked := []byte{0x18, 0x01, 0x18, 0x02, 0x18, 0xAC, 0x02}

	a, err := Unmarshal(packed, mt, nil, DefaultUnmarshalOptions())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Unmarshal(unpacked, mt, nil, DefaultUnmarshalOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Fatalf("packed and unpacked forms must parse equal:\n%s\n%s", a, b)
	}
	// Serialization always re-packs.
	out, err := Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, packed) {
		t.Errorf("unpacked input must re-serialize packed, got %x", out)
	}
}

func TestVarintTooLongScenario(t *testing.T) {
	mt := longMessageType()
	data := []byte{0x18, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x02}
	_, err := Unmarshal(data, mt, nil, DefaultUnmarshalOptions())
	if !errors.Is(err, wire.ErrVarintTooLong) {
		t.Fatalf("expected varint-too-long, got %v", err)
	}
	if !strings.Contains(err.Error(), "varint has more than 10 7-bit digits") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestUnknownFieldRetention(t *testing.T) {
	mt := longMessageType()
	// Field 9 varint, field 10 LEN: both unknown to the schema.
	unknownTail := []byte{0x48, 0x2A, 0x52, 0x03, 'x', 'y', 'z'}
	data := append([]byte{0x12, 0x02, 'h', 'i'}, unknownTail...)

	m, err := Unmarshal(data, mt, nil, DefaultUnmarshalOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !m.HasUnknown() {
		t.Fatalf("unknown fields must be retained by default")
	}
	out, err := Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasSuffix(out, unknownTail) {
		t.Fatalf("unknown bytes must re-emit verbatim at the end, got %x", out)
	}

	m.ClearUnknown()
	if m.HasUnknown() {
		t.Errorf("ClearUnknown must drop entries")
	}

	// Retention off: the bytes are skipped and lost.
	opts := UnmarshalOptions{RetainUnknownFields: false}
	m2, err := Unmarshal(data, mt, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	if m2.HasUnknown() {
		t.Errorf("retention off must not record entries")
	}
}

func TestCanonicalFormStability(t *testing.T) {
	mt := longMessageType()
	m := NewMessage(mt)
	m.Fields["f_oneof"] = "hi"
	m.Fields["f_uint64"] = []any{uint64(1), uint64(300)}
	m.Fields["f_map_str_float"] = map[any]any{"b": float32(2), "a": float32(1)}

	first, err := Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Unmarshal(first, mt, nil, DefaultUnmarshalOptions())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Marshal(back)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("parse/serialize cycle must be stable:\n%x\n%x", first, second)
	}
	if !m.Equal(back) {
		t.Errorf("round trip must compare equal")
	}
}

func TestMergeSemantics(t *testing.T) {
	mt := longMessageType()
	m, err := Unmarshal([]byte{0x12, 0x02, 'h', 'i', 0x18, 0x01}, mt, nil, DefaultUnmarshalOptions())
	if err != nil {
		t.Fatal(err)
	}
	// Second parse into the same instance: singular overwrites, repeated
	// accumulates.
	err = m.UnmarshalMerge([]byte{0x12, 0x02, 'y', 'o', 0x18, 0x02}, nil, DefaultUnmarshalOptions())
	if err != nil {
		t.Fatal(err)
	}
	if m.Fields["f_oneof"] != "yo" {
		t.Errorf("singular slot must overwrite, got %v", m.Fields["f_oneof"])
	}
	list, _ := m.Fields["f_uint64"].([]any)
	if len(list) != 2 || list[0] != uint64(1) || list[1] != uint64(2) {
		t.Errorf("repeated slot must accumulate, got %v", list)
	}
}

func TestMapSemantics(t *testing.T) {
	mt := longMessageType()

	t.Run("duplicate keys last wins", func(t *testing.T) {
		w := wire.NewWriter()
		for _, v := range []float32{1, 2} {
			entry := wire.NewWriter()
			entry.PutTag(1, wire.WireBytes)
			entry.PutString("k")
			entry.PutTag(2, wire.WireFixed32)
			entry.PutFloat32(v)
			w.PutTag(5, wire.WireBytes)
			w.PutLenPrefixed(entry.Bytes())
		}
		m, err := Unmarshal(w.Bytes(), mt, nil, DefaultUnmarshalOptions())
		if err != nil {
			t.Fatal(err)
		}
		mv, _ := m.Fields["f_map_str_float"].(map[any]any)
		if len(mv) != 1 || mv["k"] != float32(2) {
			t.Fatalf("map = %v, want {k: 2}", mv)
		}
	})

	t.Run("missing key and value fill defaults", func(t *testing.T) {
		w := wire.NewWriter()
		w.PutTag(5, wire.WireBytes)
		w.PutLenPrefixed(nil) // empty entry
		m, err := Unmarshal(w.Bytes(), mt, nil, DefaultUnmarshalOptions())
		if err != nil {
			t.Fatal(err)
		}
		mv, _ := m.Fields["f_map_str_float"].(map[any]any)
		if len(mv) != 1 || mv[""] != float32(0) {
			t.Fatalf("map = %v, want {\"\": 0}", mv)
		}
	})

	t.Run("extra entry fields are skipped", func(t *testing.T) {
		entry := wire.NewWriter()
		entry.PutTag(1, wire.WireBytes)
		entry.PutString("k")
		entry.PutTag(3, wire.WireVarint) // not a map-entry field
		entry.PutVarint(9)
		entry.PutTag(2, wire.WireFixed32)
		entry.PutFloat32(4)
		w := wire.NewWriter()
		w.PutTag(5, wire.WireBytes)
		w.PutLenPrefixed(entry.Bytes())
		m, err := Unmarshal(w.Bytes(), mt, nil, DefaultUnmarshalOptions())
		if err != nil {
			t.Fatal(err)
		}
		mv, _ := m.Fields["f_map_str_float"].(map[any]any)
		if mv["k"] != float32(4) {
			t.Fatalf("map = %v, want {k: 4}", mv)
		}
	})

	t.Run("entry always writes key and value", func(t *testing.T) {
		m := NewMessage(mt)
		m.Fields["f_map_str_float"] = map[any]any{"": float32(0)}
		out, err := Marshal(m)
		if err != nil {
			t.Fatal(err)
		}
		want := []byte{0x2A, 0x07, 0x0A, 0x00, 0x15, 0x00, 0x00, 0x00, 0x00}
		if !bytes.Equal(out, want) {
			t.Fatalf("marshal = %x, want %x", out, want)
		}
	})
}

func TestGroupWireTypeFatal(t *testing.T) {
	mt := longMessageType()
	for _, wt := range []byte{3, 4} {
		data := []byte{0x30 | wt} // field 6, group wire type
		_, err := Unmarshal(data, mt, nil, DefaultUnmarshalOptions())
		if !errors.Is(err, wire.ErrGroupWireType) {
			t.Errorf("wire type %d: expected group error, got %v", wt, err)
		}
	}
	// Group wire types stay fatal under IgnoreIncorrectTypes.
	opts := DefaultUnmarshalOptions()
	opts.IgnoreIncorrectTypes = true
	if _, err := Unmarshal([]byte{0x33}, mt, nil, opts); !errors.Is(err, wire.ErrGroupWireType) {
		t.Errorf("flag must not demote group wire types, got %v", err)
	}
}

func TestUnknownEnumValueFails(t *testing.T) {
	mt := longMessageType()
	_, err := Unmarshal([]byte{0x08, 0x09}, mt, nil, DefaultUnmarshalOptions())
	if err == nil || !strings.Contains(err.Error(), "unknown enum value 9") {
		t.Fatalf("undeclared enum integer must fail, got %v", err)
	}
}

func TestNestedMessages(t *testing.T) {
	inner := &schema.Message{
		Name: "Inner",
		Groups: []*schema.FieldGroup{
			{Name: "id", Fields: []*schema.Field{
				{Name: "id", Number: 1, Type: schema.TypeInt32, Cardinality: schema.CardSingular},
			}},
		},
	}
	outer := &schema.Message{
		Name: "Outer",
		Groups: []*schema.FieldGroup{
			{Name: "inner", Fields: []*schema.Field{
				{Name: "inner", Number: 1, Type: schema.TypeMessage, Cardinality: schema.CardSingular, MessageRef: "pkg.Inner"},
			}},
			{Name: "tag", Fields: []*schema.Field{
				{Name: "tag", Number: 2, Type: schema.TypeString, Cardinality: schema.CardSingular},
			}},
		},
	}
	res := mapResolver{"pkg.Inner": inner}

	m := NewMessage(outer)
	im := NewMessage(inner)
	im.Fields["id"] = int32(7)
	m.Fields["inner"] = im
	m.Fields["tag"] = "t"

	data, err := Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x0A, 0x02, 0x08, 0x07, 0x12, 0x01, 't'}
	if !bytes.Equal(data, want) {
		t.Fatalf("marshal = %x, want %x", data, want)
	}

	back, err := Unmarshal(data, outer, res, DefaultUnmarshalOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !m.Equal(back) {
		t.Fatalf("nested round trip mismatch:\n%s\n%s", m, back)
	}

	// An all-default sub-message is elided through the empty-body check.
	m2 := NewMessage(outer)
	m2.Fields["inner"] = NewMessage(inner)
	data2, err := Marshal(m2)
	if err != nil {
		t.Fatal(err)
	}
	if len(data2) != 0 {
		t.Fatalf("all-default sub-message must elide, got %x", data2)
	}

	// Missing resolver is an internal error on sub-message parse.
	if _, err := Unmarshal(want, outer, nil, DefaultUnmarshalOptions()); err == nil ||
		!strings.Contains(err.Error(), "missing parser for sub-message reference") {
		t.Fatalf("expected missing-parser error, got %v", err)
	}
}

func TestDepthCap(t *testing.T) {
	node := &schema.Message{Name: "Node"}
	node.Groups = []*schema.FieldGroup{
		{Name: "next", Fields: []*schema.Field{
			{Name: "next", Number: 1, Type: schema.TypeMessage, Cardinality: schema.CardSingular, MessageRef: "Node"},
		}},
	}
	res := mapResolver{"Node": node}

	// Deeply nested input: 1 byte of tag + length framing per level.
	depth := 300
	data := []byte{}
	for i := 0; i < depth; i++ {
		inner := data
		w := wire.NewWriter()
		w.PutTag(1, wire.WireBytes)
		w.PutLenPrefixed(inner)
		data = w.Bytes()
	}
	_, err := Unmarshal(data, node, res, DefaultUnmarshalOptions())
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected depth cap, got %v", err)
	}

	opts := DefaultUnmarshalOptions()
	opts.MaxDepth = depth + 10
	if _, err := Unmarshal(data, node, res, opts); err != nil {
		t.Fatalf("raised cap must admit the input, got %v", err)
	}
}

func TestIndexedElementError(t *testing.T) {
	mt := &schema.Message{
		Name: "M",
		Groups: []*schema.FieldGroup{
			{Name: "vals", Fields: []*schema.Field{
				{Name: "vals", Number: 1, Type: schema.TypeUint32, Cardinality: schema.CardRepeated},
			}},
		},
	}
	// Packed run whose second element exceeds the uint32 range.
	sub := wire.NewWriter()
	sub.PutVarint(1)
	sub.PutVarint(1 << 40)
	w := wire.NewWriter()
	w.PutTag(1, wire.WireBytes)
	w.PutLenPrefixed(sub.Bytes())

	_, err := Unmarshal(w.Bytes(), mt, nil, DefaultUnmarshalOptions())
	if !errors.Is(err, wire.ErrRangeOverflow) {
		t.Fatalf("expected range overflow, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "(Field:vals#1+0x0)") || !strings.Contains(msg, "(Index:1)") {
		t.Errorf("error must chain field and index frames, got %q", msg)
	}
}

func TestOneofSerializeNoMatch(t *testing.T) {
	mt := longMessageType()
	m := NewMessage(mt)
	m.Fields["f_oneof"] = 3.14 // no candidate holds float64

	_, err := Marshal(m)
	if !errors.Is(err, ErrValueMismatch) {
		t.Fatalf("expected value mismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "f_oneof") {
		t.Errorf("error must name the group, got %q", err.Error())
	}
}
