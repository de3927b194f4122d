package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/anirudhraja/protoscribe/schema"
)

// Registry stores the schema of the protobuf messages. The dynamic engine
// looks sub-message types up here when it parses; the code generator works
// from the loaded files (Files).
type Registry struct {
	// ProtoDirectories are the roots import paths resolve against.
	ProtoDirectories []string

	files    []*schema.File
	messages map[string]*schema.Message // fully qualified name -> message
	enums    map[string]*schema.Enum    // fully qualified name -> enum
}

func NewRegistry() *Registry {
	return &Registry{
		messages: make(map[string]*schema.Message),
		enums:    make(map[string]*schema.Enum),
	}
}

// LoadSchema loads a single .proto file or recursively scans a directory
// for .proto files, then builds and validates the symbol table.
func (r *Registry) LoadSchema(protoPath string) error {
	info, err := os.Stat(protoPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	var raws []*rawFile
	if !info.IsDir() {
		if !strings.HasSuffix(protoPath, ".proto") {
			return fmt.Errorf("file %s is not a .proto file", protoPath)
		}
		r.ProtoDirectories = append(r.ProtoDirectories, filepath.Dir(protoPath))
		raw, err := r.parseFileWithImports(protoPath)
		if err != nil {
			return err
		}
		raws = raw
	} else {
		r.ProtoDirectories = append(r.ProtoDirectories, protoPath)
		err = filepath.WalkDir(protoPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".proto") {
				return nil
			}
			raw, err := r.parseSingleFile(path)
			if err != nil {
				return fmt.Errorf("failed to load proto file %s: %w", path, err)
			}
			raws = append(raws, raw)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to walk directory: %w", err)
		}
	}

	return r.build(raws)
}

// LoadSchemaData loads .proto source already held in memory, keyed by file
// name. Type references must resolve within the given set; import
// statements are recorded but not followed.
func (r *Registry) LoadSchemaData(sources map[string]string) error {
	var raws []*rawFile
	for name, content := range sources {
		raw, err := r.parseSource(name, []byte(content))
		if err != nil {
			return fmt.Errorf("failed to load proto source %s: %w", name, err)
		}
		raws = append(raws, raw)
	}
	return r.build(raws)
}

// build runs the symbol-table passes over freshly parsed files:
// register all names first, then resolve references and validate.
func (r *Registry) build(raws []*rawFile) error {
	for _, raw := range raws {
		if err := r.registerNames(raw); err != nil {
			return err
		}
	}
	for _, raw := range raws {
		if err := r.resolveFile(raw); err != nil {
			return err
		}
		if err := r.validateFile(raw); err != nil {
			return err
		}
		r.files = append(r.files, raw.file)
	}
	return nil
}

// Files returns the loaded schema files in load order.
func (r *Registry) Files() []*schema.File {
	return r.files
}

// GetMessage retrieves a message definition by name. Bare names resolve
// when they unambiguously suffix a fully qualified name.
func (r *Registry) GetMessage(name string) (*schema.Message, error) {
	if msg, exists := r.messages[name]; exists {
		return msg, nil
	}
	var found *schema.Message
	matches := 0
	for fullName, msg := range r.messages {
		if strings.HasSuffix(fullName, "."+name) {
			found = msg
			matches++
		}
	}
	if matches == 1 {
		return found, nil
	}
	if matches > 1 {
		return nil, fmt.Errorf("message name %s is ambiguous", name)
	}
	return nil, fmt.Errorf("message not found: %s", name)
}

// GetEnum retrieves an enum definition by name.
func (r *Registry) GetEnum(name string) (*schema.Enum, error) {
	if enum, exists := r.enums[name]; exists {
		return enum, nil
	}
	for fullName, enum := range r.enums {
		if strings.HasSuffix(fullName, "."+name) {
			return enum, nil
		}
	}
	return nil, fmt.Errorf("enum not found: %s", name)
}

// ListMessages returns all registered fully qualified message names.
func (r *Registry) ListMessages() []string {
	var names []string
	for name := range r.messages {
		names = append(names, name)
	}
	return names
}

// ListEnums returns all registered fully qualified enum names.
func (r *Registry) ListEnums() []string {
	var names []string
	for name := range r.enums {
		names = append(names, name)
	}
	return names
}

// registerNames registers every message and enum of one file under its
// fully qualified name. Nested definitions are flattened with dotted local
// names ("Outer.Inner").
func (r *Registry) registerNames(raw *rawFile) error {
	for _, m := range raw.messages {
		fullName := fullName(raw.file.Package, m.msg.Name)
		if _, dup := r.messages[fullName]; dup {
			return fmt.Errorf("duplicate message definition: %s", fullName)
		}
		r.messages[fullName] = m.msg
	}
	for _, e := range raw.enums {
		full := fullName(raw.file.Package, e.Name)
		if _, dup := r.enums[full]; dup {
			return fmt.Errorf("duplicate enum definition: %s", full)
		}
		r.enums[full] = e
	}
	return nil
}

func fullName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// validateFile enforces the proto3 rules the engine relies on.
func (r *Registry) validateFile(raw *rawFile) error {
	for _, e := range raw.enums {
		if e.Zero() == nil {
			return fmt.Errorf("enum %s has no zero value (required by proto3)", e.Name)
		}
	}
	for _, m := range raw.messages {
		seen := make(map[int32]string)
		for _, g := range m.msg.Groups {
			for _, f := range g.Fields {
				if f.Number < 1 || f.Number > int32(1<<29-1) {
					return fmt.Errorf("message %s field %s: field number %d out of range", m.msg.Name, f.Name, f.Number)
				}
				if prev, dup := seen[f.Number]; dup {
					return fmt.Errorf("message %s: fields %s and %s share number %d", m.msg.Name, prev, f.Name, f.Number)
				}
				seen[f.Number] = f.Name
				if f.Cardinality == schema.CardMap && !schema.IsValidMapKey(f.KeyType) {
					return fmt.Errorf("message %s field %s: %s is not a valid map key type", m.msg.Name, f.Name, f.KeyType)
				}
			}
		}
	}
	return nil
}
