// Package protoscribe is a proto3 codec compiler: it ingests schema
// descriptors parsed from .proto source and either works with them
// dynamically (schema-aware parse and marshal without generated code) or
// emits generated, schema-specialized Go encoders/decoders.
package protoscribe

import (
	"fmt"

	"github.com/anirudhraja/protoscribe/codec"
	"github.com/anirudhraja/protoscribe/gen"
	"github.com/anirudhraja/protoscribe/registry"
	"github.com/anirudhraja/protoscribe/schema"
)

// ===== SCHEMA-AWARE API =====

// Protoscribe provides schema-aware protobuf operations and drives the
// code generator.
type Protoscribe struct {
	registry *registry.Registry
}

// New creates a new Protoscribe instance
func New() *Protoscribe {
	return &Protoscribe{
		registry: registry.NewRegistry(),
	}
}

// LoadSchema loads a .proto file (or recursively a directory of them) into
// the schema registry.
func (p *Protoscribe) LoadSchema(protoPath string) error {
	return p.registry.LoadSchema(protoPath)
}

// LoadSchemaData loads .proto source held in memory, keyed by file name.
func (p *Protoscribe) LoadSchemaData(sources map[string]string) error {
	return p.registry.LoadSchemaData(sources)
}

// Parse decodes protobuf bytes with default flags and projects the result
// onto plain Go values.
func (p *Protoscribe) Parse(data []byte, messageType string) (map[string]any, error) {
	m, err := p.ParseMessage(data, messageType, codec.DefaultUnmarshalOptions())
	if err != nil {
		return nil, err
	}
	return m.ToDict(), nil
}

// ParseMessage decodes protobuf bytes into a dynamic message instance.
func (p *Protoscribe) ParseMessage(data []byte, messageType string, opts codec.UnmarshalOptions) (*codec.Message, error) {
	mt, err := p.registry.GetMessage(messageType)
	if err != nil {
		return nil, fmt.Errorf("message type not found: %s", messageType)
	}
	return codec.Unmarshal(data, mt, p.registry, opts)
}

// NewMessage constructs a default-initialized dynamic instance.
func (p *Protoscribe) NewMessage(messageType string) (*codec.Message, error) {
	mt, err := p.registry.GetMessage(messageType)
	if err != nil {
		return nil, fmt.Errorf("message type not found: %s", messageType)
	}
	return codec.NewMessage(mt), nil
}

// Marshal encodes a dynamic message to protobuf bytes.
func (p *Protoscribe) Marshal(m *codec.Message) ([]byte, error) {
	return codec.Marshal(m)
}

// MarshalFields encodes named field-group values to protobuf bytes using
// schema information. Slots not named keep their defaults.
func (p *Protoscribe) MarshalFields(fields map[string]any, messageType string) ([]byte, error) {
	mt, err := p.registry.GetMessage(messageType)
	if err != nil {
		return nil, fmt.Errorf("message type not found: %s", messageType)
	}
	m := codec.NewMessage(mt)
	for name, value := range fields {
		if mt.GroupByName(name) == nil {
			return nil, fmt.Errorf("message %s has no field group %s", messageType, name)
		}
		m.Fields[name] = value
	}
	return codec.Marshal(m)
}

// Generate runs the code generator over every loaded schema file.
func (p *Protoscribe) Generate(opts gen.Options) ([]gen.GeneratedFile, error) {
	return gen.Generate(p.registry.Files(), opts)
}

// ===== REGISTRY ACCESS =====

func (p *Protoscribe) GetRegistry() *registry.Registry { return p.registry }
func (p *Protoscribe) ListMessages() []string          { return p.registry.ListMessages() }
func (p *Protoscribe) ListEnums() []string             { return p.registry.ListEnums() }

// Files returns the loaded schema files in load order.
func (p *Protoscribe) Files() []*schema.File { return p.registry.Files() }
