package registry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	protoparser "github.com/yoheimuta/go-protoparser/v4"
	protoparserparser "github.com/yoheimuta/go-protoparser/v4/parser"

	"github.com/anirudhraja/protoscribe/schema"
)

// rawFile carries one parsed file plus the reference bookkeeping needed for
// the resolution pass.
type rawFile struct {
	file     *schema.File
	messages []*rawMessage
	enums    []*schema.Enum
}

// rawMessage pairs a built message with its resolution scope and the type
// references still to be resolved against the symbol table.
type rawMessage struct {
	msg   *schema.Message
	scope string // fully qualified enclosing scope, e.g. "pkg.Outer"
	refs  []*pendingRef
}

// pendingRef is a field whose written type name is not primitive; whether
// it is an enum or a message is only known once all files are registered.
type pendingRef struct {
	field    *schema.Field
	typeName string
	mapValue bool // the reference is the field's map value type
}

// parseFileWithImports parses a file and, depth-first, every file it
// imports, resolving import paths against ProtoDirectories.
func (r *Registry) parseFileWithImports(protoFile string) ([]*rawFile, error) {
	visited := make(map[string]struct{})
	var result []*rawFile

	var dfs func(path string) error
	dfs = func(path string) error {
		if _, ok := visited[path]; ok {
			return nil
		}
		visited[path] = struct{}{}

		raw, err := r.parseSingleFile(path)
		if err != nil {
			return err
		}
		result = append(result, raw)

		for _, imp := range raw.file.Imports {
			// Well-known types ship with the canonical runtime, not here.
			if strings.Contains(imp, "google/protobuf") {
				continue
			}
			full, err := r.findIfProtoExists(imp)
			if err != nil {
				return err
			}
			if err := dfs(full); err != nil {
				return err
			}
		}
		return nil
	}

	if err := dfs(protoFile); err != nil {
		return nil, err
	}
	return result, nil
}

// parseSingleFile reads and parses one .proto file from disk.
func (r *Registry) parseSingleFile(path string) (*rawFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return r.parseSource(filepath.Base(path), content)
}

// parseSource parses .proto source text into the schema model.
func (r *Registry) parseSource(name string, content []byte) (*rawFile, error) {
	parsed, err := protoparser.Parse(bytes.NewBuffer(content))
	if err != nil {
		return nil, err
	}

	raw := &rawFile{
		file: &schema.File{
			Name:   name,
			Syntax: "proto3",
		},
	}
	if parsed.Syntax != nil {
		raw.file.Syntax = strings.Trim(parsed.Syntax.ProtobufVersion, `"`)
	}

	for _, body := range parsed.ProtoBody {
		switch b := body.(type) {
		case *protoparserparser.Package:
			raw.file.Package = b.Name
		case *protoparserparser.Import:
			raw.file.Imports = append(raw.file.Imports, strings.Trim(b.Location, `"`))
		case *protoparserparser.Enum:
			e, err := buildEnum(b)
			if err != nil {
				return nil, err
			}
			raw.file.Enums = append(raw.file.Enums, e)
			raw.enums = append(raw.enums, e)
		case *protoparserparser.Message:
			if err := buildMessage(raw, b, "", fullName(raw.file.Package, "")); err != nil {
				return nil, err
			}
		}
		// Services, options and reserved ranges have no codec-level role.
	}

	if raw.file.Syntax != "proto3" {
		return nil, fmt.Errorf("file %s: only proto3 is supported, got %s", name, raw.file.Syntax)
	}
	return raw, nil
}

// buildMessage converts one message (and, flattened, its nested types).
// localPrefix is the dotted local name of the enclosing message, empty at
// top level; scopePrefix is the fully qualified enclosing scope.
func buildMessage(raw *rawFile, pm *protoparserparser.Message, localPrefix, scopePrefix string) error {
	localName := pm.MessageName
	if localPrefix != "" {
		localName = localPrefix + "." + pm.MessageName
	}
	scope := strings.TrimSuffix(scopePrefix, ".")
	if scope != "" {
		scope += "." + pm.MessageName
	} else {
		scope = pm.MessageName
	}

	msg := &schema.Message{Name: localName}
	rm := &rawMessage{msg: msg, scope: scope}

	for _, body := range pm.MessageBody {
		switch b := body.(type) {
		case *protoparserparser.Field:
			f, ref, err := buildField(b)
			if err != nil {
				return fmt.Errorf("message %s: %w", localName, err)
			}
			if ref != nil {
				rm.refs = append(rm.refs, ref)
			}
			msg.Groups = append(msg.Groups, &schema.FieldGroup{
				Name:   f.Name,
				Fields: []*schema.Field{f},
			})
		case *protoparserparser.MapField:
			f, refs, err := buildMapField(b)
			if err != nil {
				return fmt.Errorf("message %s: %w", localName, err)
			}
			rm.refs = append(rm.refs, refs...)
			msg.Groups = append(msg.Groups, &schema.FieldGroup{
				Name:   f.Name,
				Fields: []*schema.Field{f},
			})
		case *protoparserparser.Oneof:
			group := &schema.FieldGroup{
				Name:  b.OneofName,
				Oneof: true,
			}
			for _, of := range b.OneofFields {
				f, ref, err := buildOneofField(of)
				if err != nil {
					return fmt.Errorf("message %s oneof %s: %w", localName, b.OneofName, err)
				}
				if ref != nil {
					rm.refs = append(rm.refs, ref)
				}
				group.Fields = append(group.Fields, f)
			}
			msg.Groups = append(msg.Groups, group)
		case *protoparserparser.Enum:
			e, err := buildEnum(b)
			if err != nil {
				return err
			}
			e.Name = localName + "." + e.Name
			raw.file.Enums = append(raw.file.Enums, e)
			raw.enums = append(raw.enums, e)
		case *protoparserparser.Message:
			if err := buildMessage(raw, b, localName, scope+"."); err != nil {
				return err
			}
		}
	}

	raw.file.Messages = append(raw.file.Messages, msg)
	raw.messages = append(raw.messages, rm)
	return nil
}

var primitiveTypes = map[string]schema.DataType{
	"double":   schema.TypeDouble,
	"float":    schema.TypeFloat,
	"int32":    schema.TypeInt32,
	"int64":    schema.TypeInt64,
	"uint32":   schema.TypeUint32,
	"uint64":   schema.TypeUint64,
	"sint32":   schema.TypeSint32,
	"sint64":   schema.TypeSint64,
	"fixed32":  schema.TypeFixed32,
	"fixed64":  schema.TypeFixed64,
	"sfixed32": schema.TypeSfixed32,
	"sfixed64": schema.TypeSfixed64,
	"bool":     schema.TypeBool,
	"string":   schema.TypeString,
	"bytes":    schema.TypeBytes,
}

func buildField(pf *protoparserparser.Field) (*schema.Field, *pendingRef, error) {
	number, err := parseFieldNumber(pf.FieldNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("field %s: %w", pf.FieldName, err)
	}
	card := schema.CardSingular
	if pf.IsRepeated {
		card = schema.CardRepeated
	} else if pf.IsOptional {
		card = schema.CardOptional
	}
	f := &schema.Field{
		Name:        pf.FieldName,
		Number:      number,
		Cardinality: card,
	}
	if dt, ok := primitiveTypes[pf.Type]; ok {
		f.Type = dt
		return f, nil, nil
	}
	return f, &pendingRef{field: f, typeName: pf.Type}, nil
}

func buildOneofField(of *protoparserparser.OneofField) (*schema.Field, *pendingRef, error) {
	number, err := parseFieldNumber(of.FieldNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("field %s: %w", of.FieldName, err)
	}
	f := &schema.Field{
		Name:        of.FieldName,
		Number:      number,
		Cardinality: schema.CardSingular,
	}
	if dt, ok := primitiveTypes[of.Type]; ok {
		f.Type = dt
		return f, nil, nil
	}
	return f, &pendingRef{field: f, typeName: of.Type}, nil
}

func buildMapField(mf *protoparserparser.MapField) (*schema.Field, []*pendingRef, error) {
	number, err := parseFieldNumber(mf.FieldNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("map field %s: %w", mf.MapName, err)
	}
	keyType, ok := primitiveTypes[mf.KeyType]
	if !ok {
		return nil, nil, fmt.Errorf("map field %s: invalid key type %s", mf.MapName, mf.KeyType)
	}
	f := &schema.Field{
		Name:        mf.MapName,
		Number:      number,
		Type:        schema.TypeMap,
		Cardinality: schema.CardMap,
		KeyType:     keyType,
	}
	if dt, ok := primitiveTypes[mf.Type]; ok {
		f.ValueType = dt
		return f, nil, nil
	}
	return f, []*pendingRef{{field: f, typeName: mf.Type, mapValue: true}}, nil
}

func buildEnum(pe *protoparserparser.Enum) (*schema.Enum, error) {
	e := &schema.Enum{Name: pe.EnumName}
	for _, body := range pe.EnumBody {
		ef, ok := body.(*protoparserparser.EnumField)
		if !ok {
			continue
		}
		number, err := strconv.ParseInt(ef.Number, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("enum %s value %s: bad number %q", pe.EnumName, ef.Ident, ef.Number)
		}
		e.Values = append(e.Values, &schema.EnumValue{
			Name:   ef.Ident,
			Number: int32(number),
		})
	}
	return e, nil
}

func parseFieldNumber(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad field number %q", s)
	}
	return int32(n), nil
}
