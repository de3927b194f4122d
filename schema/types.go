package schema

// File represents a single schema file. Each file is a namespace: the
// generator emits one generated source file per schema file, and qualified
// type names are derived from the file's base name.
type File struct {
	Name     string     `json:"name"`     // file.proto
	Package  string     `json:"package"`  // package name
	Syntax   string     `json:"syntax"`   // proto3
	Imports  []string   `json:"imports"`  // imported file paths
	Messages []*Message `json:"messages"` // message definitions
	Enums    []*Enum    `json:"enums"`    // enum definitions
}

// Message represents a protobuf message definition as an ordered list of
// field groups.
type Message struct {
	Name   string        `json:"name"`   // "User"
	Groups []*FieldGroup `json:"groups"` // field groups in declaration order
}

// GroupByName returns the field group with the given name, or nil.
func (m *Message) GroupByName(name string) *FieldGroup {
	for _, g := range m.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// FieldByNumber returns the field with the given number and its enclosing
// group, or nil if the message has no such field.
func (m *Message) FieldByNumber(number int32) (*FieldGroup, *Field) {
	for _, g := range m.Groups {
		for _, f := range g.Fields {
			if f.Number == number {
				return g, f
			}
		}
	}
	return nil, nil
}

// FieldGroup is the unit of host exposure: either a single non-oneof field,
// or all fields of one oneof clause sharing a single slot.
type FieldGroup struct {
	Name   string   `json:"name"`   // "user_info"
	Oneof  bool     `json:"oneof"`  // true when the group is a oneof clause
	Fields []*Field `json:"fields"` // exactly one field unless Oneof
}

// Field returns the group's single member. It must only be called on
// non-oneof groups.
func (g *FieldGroup) Field() *Field {
	return g.Fields[0]
}

// Optional reports whether the group's slot has an absence state, in which
// case the slot may hold nil and an absent slot serializes to nothing. A
// oneof group is optional only when every member is declared optional.
func (g *FieldGroup) Optional() bool {
	for _, f := range g.Fields {
		if f.Cardinality != CardOptional {
			return false
		}
	}
	return true
}

// Field represents a single message field.
type Field struct {
	Name        string      `json:"name"`        // "user_name"
	Number      int32       `json:"number"`      // 1
	Type        DataType    `json:"type"`        // declared data type
	Cardinality Cardinality `json:"cardinality"` // singular, optional, repeated, map

	EnumRef    *Enum  `json:"enum_ref,omitempty"`    // for TypeEnum
	MessageRef string `json:"message_ref,omitempty"` // fully qualified, for TypeMessage

	// Map fields only. Key types are restricted to integral, bool and
	// string; values may be any non-map, non-repeated type.
	KeyType         DataType `json:"key_type,omitempty"`
	ValueType       DataType `json:"value_type,omitempty"`
	ValueEnumRef    *Enum    `json:"value_enum_ref,omitempty"`
	ValueMessageRef string   `json:"value_message_ref,omitempty"`
}

// Cardinality describes how many values a field slot holds.
type Cardinality string

const (
	CardSingular Cardinality = "singular"
	CardOptional Cardinality = "optional"
	CardRepeated Cardinality = "repeated"
	CardMap      Cardinality = "map"
)

// DataType represents the declared protobuf data types.
type DataType string

const (
	TypeFloat    DataType = "float"
	TypeDouble   DataType = "double"
	TypeInt32    DataType = "int32"
	TypeUint32   DataType = "uint32"
	TypeSint32   DataType = "sint32"
	TypeInt64    DataType = "int64"
	TypeUint64   DataType = "uint64"
	TypeSint64   DataType = "sint64"
	TypeFixed32  DataType = "fixed32"
	TypeSfixed32 DataType = "sfixed32"
	TypeFixed64  DataType = "fixed64"
	TypeSfixed64 DataType = "sfixed64"
	TypeBool     DataType = "bool"
	TypeEnum     DataType = "enum"
	TypeString   DataType = "string"
	TypeBytes    DataType = "bytes"
	TypeMap      DataType = "map"
	TypeMessage  DataType = "message"
)

var packedEligible = map[DataType]struct{}{
	TypeFloat:    {},
	TypeDouble:   {},
	TypeInt32:    {},
	TypeUint32:   {},
	TypeSint32:   {},
	TypeInt64:    {},
	TypeUint64:   {},
	TypeSint64:   {},
	TypeFixed32:  {},
	TypeSfixed32: {},
	TypeFixed64:  {},
	TypeSfixed64: {},
	TypeBool:     {},
	TypeEnum:     {},
}

// IsPackedType reports whether a repeated field of type t may use the packed
// wire form. String, bytes, message and map elements are never packed.
func IsPackedType(t DataType) bool {
	_, ok := packedEligible[t]
	return ok
}

var validMapKey = map[DataType]struct{}{
	TypeInt32:    {},
	TypeUint32:   {},
	TypeSint32:   {},
	TypeInt64:    {},
	TypeUint64:   {},
	TypeSint64:   {},
	TypeFixed32:  {},
	TypeSfixed32: {},
	TypeFixed64:  {},
	TypeSfixed64: {},
	TypeBool:     {},
	TypeString:   {},
}

// IsValidMapKey reports whether t may be used as a map key type.
func IsValidMapKey(t DataType) bool {
	_, ok := validMapKey[t]
	return ok
}

// Enum represents an enum definition.
type Enum struct {
	Name   string       `json:"name"`   // "Status"
	Values []*EnumValue `json:"values"` // enum values in declaration order
}

// EnumValue represents a single declared (name, int32) pair. The dynamic
// engine uses *EnumValue as the host representation of an enum value.
type EnumValue struct {
	Name   string `json:"name"`   // "ACTIVE"
	Number int32  `json:"number"` // 1
}

// ValueByNumber returns the declared value with the given number, or nil.
func (e *Enum) ValueByNumber(number int32) *EnumValue {
	for _, v := range e.Values {
		if v.Number == number {
			return v
		}
	}
	return nil
}

// ValueByName returns the declared value with the given name, or nil.
func (e *Enum) ValueByName(name string) *EnumValue {
	for _, v := range e.Values {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Zero returns the mandatory zero-numbered value. Registries reject enums
// without one, so generated and dynamic code may assume it exists.
func (e *Enum) Zero() *EnumValue {
	return e.ValueByNumber(0)
}
