package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/anirudhraja/protoscribe/codec"
	"github.com/anirudhraja/protoscribe/schema"
)

// Options configures one generation unit. All files of a unit land in a
// single Go package so cross-file references resolve at link time.
type Options struct {
	// PackageName is the Go package of the generated files. Default "pb".
	PackageName string
}

// GeneratedFile is one emitted source file.
type GeneratedFile struct {
	Name    string // e.g. "test.pb.go"
	Content []byte
}

// Generate expands the generated-code template once per schema file. Every
// message becomes a struct whose parse and serialize loops dispatch by
// hard-coded field number, with the wire type, default value and codec
// choice baked in per field.
func Generate(files []*schema.File, opts Options) ([]GeneratedFile, error) {
	if opts.PackageName == "" {
		opts.PackageName = "pb"
	}
	u := &unit{
		opts:   opts,
		msgGo:  make(map[string]string),
		enumGo: make(map[*schema.Enum]string),
	}

	// Pass 1: register every generated symbol. This is the forward
	// declaration pass: definitions may then be emitted in any order.
	for _, f := range files {
		prefix := filePrefix(f.Name)
		for _, m := range f.Messages {
			full := qualifiedName(f.Package, m.Name)
			if _, dup := u.msgGo[full]; dup {
				return nil, fmt.Errorf("duplicate message %s in generation unit", full)
			}
			u.msgGo[full] = prefix + "_" + localIdent(m.Name)
		}
		for _, e := range f.Enums {
			u.enumGo[e] = prefix + "_" + localIdent(e.Name)
		}
	}

	// Pass 2: compute global aliases for names unique across the unit.
	aliasOwners := make(map[string]int)
	for _, f := range files {
		for _, m := range f.Messages {
			aliasOwners[localIdent(m.Name)]++
		}
		for _, e := range f.Enums {
			aliasOwners[localIdent(e.Name)]++
		}
	}

	tmpl, err := template.New("file").Parse(fileTemplate)
	if err != nil {
		return nil, fmt.Errorf("generated-code template is broken: %w", err)
	}

	var out []GeneratedFile
	for _, f := range files {
		ctx, err := u.fileContext(f, aliasOwners)
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", f.Name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, ctx); err != nil {
			return nil, fmt.Errorf("file %s: template expansion failed: %w", f.Name, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("file %s: generated code does not format: %w", f.Name, err)
		}
		out = append(out, GeneratedFile{
			Name:    strings.TrimSuffix(f.Name, ".proto") + ".pb.go",
			Content: src,
		})
	}
	return out, nil
}

type unit struct {
	opts   Options
	msgGo  map[string]string
	enumGo map[*schema.Enum]string
}

// NAME MAPPING

func qualifiedName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// filePrefix derives the namespace prefix of generated idents from the
// file's base name: "long_message.proto" -> "LongMessage".
func filePrefix(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), ".proto")
	return goCamel(base)
}

// localIdent flattens a dotted local name: "Outer.Inner" -> "Outer_Inner".
func localIdent(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// goCamel converts a lower_snake proto name to an exported Go identifier.
func goCamel(s string) string {
	var b strings.Builder
	upper := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_':
			upper = true
		case c == '.':
			b.WriteByte('_')
			upper = true
		case upper:
			b.WriteString(strings.ToUpper(string(c)))
			upper = false
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

var scalarHelper = map[schema.DataType]string{
	schema.TypeInt32:    "Int32",
	schema.TypeInt64:    "Int64",
	schema.TypeUint32:   "Uint32",
	schema.TypeUint64:   "Uint64",
	schema.TypeSint32:   "Sint32",
	schema.TypeSint64:   "Sint64",
	schema.TypeBool:     "Bool",
	schema.TypeFixed32:  "Fixed32",
	schema.TypeSfixed32: "Sfixed32",
	schema.TypeFixed64:  "Fixed64",
	schema.TypeSfixed64: "Sfixed64",
	schema.TypeFloat:    "Float",
	schema.TypeDouble:   "Double",
	schema.TypeString:   "String",
	schema.TypeBytes:    "Bytes",
}

var goScalarType = map[schema.DataType]string{
	schema.TypeInt32:    "int32",
	schema.TypeInt64:    "int64",
	schema.TypeUint32:   "uint32",
	schema.TypeUint64:   "uint64",
	schema.TypeSint32:   "int32",
	schema.TypeSint64:   "int64",
	schema.TypeBool:     "bool",
	schema.TypeFixed32:  "uint32",
	schema.TypeSfixed32: "int32",
	schema.TypeFixed64:  "uint64",
	schema.TypeSfixed64: "int64",
	schema.TypeFloat:    "float32",
	schema.TypeDouble:   "float64",
	schema.TypeString:   "string",
	schema.TypeBytes:    "[]byte",
}

func wireExpr(dt schema.DataType) string {
	switch codec.WireTypeFor(dt) {
	case 0:
		return "wire.WireVarint"
	case 1:
		return "wire.WireFixed64"
	case 5:
		return "wire.WireFixed32"
	default:
		return "wire.WireBytes"
	}
}

// TEMPLATE CONTEXTS

type fileCtx struct {
	Source   string
	Package  string
	Enums    []*enumCtx
	Messages []*messageCtx
	Aliases  []*aliasCtx

	NeedFmt  bool
	NeedSort bool
}

type enumCtx struct {
	GoName    string
	ProtoName string
	Values    []*enumValCtx
}

type enumValCtx struct {
	GoName string // Test_MyEnum_VALUE0
	Name   string // VALUE0
	Number int32
	Dup    bool // an earlier value already claims this number
}

type aliasCtx struct {
	Alias   string
	Target  string
	IsEnum  bool
	Members []*enumValCtx // enum aliases re-export member constants
	IsMsg   bool
}

type messageCtx struct {
	GoName    string
	ProtoName string // package-qualified, for repr
	Groups    []*groupCtx
}

type groupCtx struct {
	ProtoName string
	GoName    string
	Oneof     bool
	Optional  bool // group-level absence state
	GoType    string
	Fields    []*fieldCtx

	// DefaultExpr initializes the slot in the constructor; empty when the
	// Go zero value is already correct.
	DefaultExpr string

	// MarshalFields are the oneof candidates probed at serialize time,
	// deduplicated by Go type: when two candidates share a host type the
	// first declared one always wins, so only it gets a case arm.
	MarshalFields []*fieldCtx

	// NilOneofOK marks oneof groups whose slot may legally be nil: the
	// group is optional, or its first candidate is a message whose default
	// materialization is deferred.
	NilOneofOK bool
}

// F is the single member of a non-oneof group.
func (g *groupCtx) F() *fieldCtx { return g.Fields[0] }

type fieldCtx struct {
	ProtoName string
	GroupName string // enclosing group's proto name, used in error frames
	GoName    string // slot ident (group-level)
	Number    int32

	Type      schema.DataType
	Repeated  bool
	IsMap     bool
	Optional  bool
	Singular  bool
	InOneof   bool
	Packable  bool
	WireExpr  string
	ElemType  string // Go type of one element/value
	IsMessage bool
	MsgGoName string
	IsEnum    bool
	EnumGo    string

	// Map shape.
	KeyType     schema.DataType
	KeyGoType   string
	KeyWireExpr string
	ValType     schema.DataType
	ValGoType   string
	ValWireExpr string
	ValIsMsg    bool
	ValMsgGo    string
	ValIsEnum   bool
	ValEnumGo   string
}

// IsBytes reports a bytes-typed element.
func (f *fieldCtx) IsBytes() bool { return f.Type == schema.TypeBytes }

// IsString reports a string-typed element.
func (f *fieldCtx) IsString() bool { return f.Type == schema.TypeString }

// ValIsBytes reports a bytes-typed map value.
func (f *fieldCtx) ValIsBytes() bool { return f.ValType == schema.TypeBytes }

// ParseCall returns the expression parsing one element from reader r.
func (f *fieldCtx) ParseCall(r string) string {
	if f.IsEnum {
		return fmt.Sprintf("parse%s(%s)", f.EnumGo, r)
	}
	return fmt.Sprintf("codec.Parse%s(%s)", scalarHelper[f.Type], r)
}

// AppendStmt returns the statement serializing one element body to w.
func (f *fieldCtx) AppendStmt(w, v string) string {
	if f.IsEnum {
		return fmt.Sprintf("codec.AppendEnum(%s, int32(%s))", w, v)
	}
	return fmt.Sprintf("codec.Append%s(%s, %s)", scalarHelper[f.Type], w, v)
}

// KeyParseCall parses a map key from reader r.
func (f *fieldCtx) KeyParseCall(r string) string {
	return fmt.Sprintf("codec.Parse%s(%s)", scalarHelper[f.KeyType], r)
}

// KeyAppendStmt serializes a map key body to w.
func (f *fieldCtx) KeyAppendStmt(w, v string) string {
	return fmt.Sprintf("codec.Append%s(%s, %s)", scalarHelper[f.KeyType], w, v)
}

// ValParseCall parses a non-message map value from reader r.
func (f *fieldCtx) ValParseCall(r string) string {
	if f.ValIsEnum {
		return fmt.Sprintf("parse%s(%s)", f.ValEnumGo, r)
	}
	return fmt.Sprintf("codec.Parse%s(%s)", scalarHelper[f.ValType], r)
}

// ValAppendStmt serializes a non-message map value body to w.
func (f *fieldCtx) ValAppendStmt(w, v string) string {
	if f.ValIsEnum {
		return fmt.Sprintf("codec.AppendEnum(%s, int32(%s))", w, v)
	}
	return fmt.Sprintf("codec.Append%s(%s, %s)", scalarHelper[f.ValType], w, v)
}

// NonDefault returns the guard expression eliding a singular default.
func (f *fieldCtx) NonDefault(v string) string {
	switch {
	case f.IsEnum:
		return v + " != 0"
	case f.Type == schema.TypeBool:
		return v
	case f.Type == schema.TypeString:
		return v + ` != ""`
	case f.Type == schema.TypeBytes:
		return "len(" + v + ") != 0"
	default:
		return v + " != 0"
	}
}

// KeyZero returns the typed zero literal of the map key type.
func (f *fieldCtx) KeyZero() string {
	return typedZeroExpr(f.KeyType)
}

// ValZero returns the default-value expression of the map value type; a
// message value defaults to a fresh empty instance.
func (f *fieldCtx) ValZero() string {
	if f.ValIsMsg {
		return "New" + f.ValMsgGo + "()"
	}
	if f.ValIsEnum {
		return f.ValEnumGo + "(0)"
	}
	return typedZeroExpr(f.ValType)
}

// KeyLess returns the sort comparison for two map keys.
func (f *fieldCtx) KeyLess(a, b string) string {
	if f.KeyType == schema.TypeBool {
		return fmt.Sprintf("!%s && %s", a, b)
	}
	return fmt.Sprintf("%s < %s", a, b)
}

// typedZeroExpr returns the zero value of a scalar data type with its
// concrete Go type spelled out, so inferred declarations and any-typed
// slots both land on the right dynamic type.
func typedZeroExpr(dt schema.DataType) string {
	switch dt {
	case schema.TypeString:
		return `""`
	case schema.TypeBool:
		return "false"
	case schema.TypeBytes:
		return "[]byte(nil)"
	default:
		return goScalarType[dt] + "(0)"
	}
}

// CONTEXT BUILDING

func (u *unit) fileContext(f *schema.File, aliasOwners map[string]int) (*fileCtx, error) {
	ctx := &fileCtx{
		Source:  f.Name,
		Package: u.opts.PackageName,
	}

	for _, e := range f.Enums {
		ec := u.enumContext(e)
		ctx.Enums = append(ctx.Enums, ec)
		ctx.NeedFmt = true
		if alias := localIdent(e.Name); aliasOwners[alias] == 1 && alias != ec.GoName {
			ctx.Aliases = append(ctx.Aliases, &aliasCtx{
				Alias:   alias,
				Target:  ec.GoName,
				IsEnum:  true,
				Members: ec.Values,
			})
		}
	}

	for _, m := range f.Messages {
		mc, err := u.messageContext(f, m, ctx)
		if err != nil {
			return nil, err
		}
		ctx.Messages = append(ctx.Messages, mc)
		if alias := localIdent(m.Name); aliasOwners[alias] == 1 && alias != mc.GoName {
			ctx.Aliases = append(ctx.Aliases, &aliasCtx{
				Alias:  alias,
				Target: mc.GoName,
				IsMsg:  true,
			})
		}
	}
	return ctx, nil
}

func (u *unit) enumContext(e *schema.Enum) *enumCtx {
	goName := u.enumGo[e]
	ec := &enumCtx{
		GoName:    goName,
		ProtoName: e.Name,
	}
	seen := make(map[int32]bool)
	for _, v := range e.Values {
		ec.Values = append(ec.Values, &enumValCtx{
			GoName: goName + "_" + v.Name,
			Name:   v.Name,
			Number: v.Number,
			Dup:    seen[v.Number],
		})
		seen[v.Number] = true
	}
	return ec
}

func (u *unit) messageContext(f *schema.File, m *schema.Message, ctx *fileCtx) (*messageCtx, error) {
	mc := &messageCtx{
		GoName:    u.msgGo[qualifiedName(f.Package, m.Name)],
		ProtoName: qualifiedName(f.Package, m.Name),
	}
	for _, g := range m.Groups {
		gc, err := u.groupContext(g, ctx)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", m.Name, err)
		}
		mc.Groups = append(mc.Groups, gc)
	}
	return mc, nil
}

func (u *unit) groupContext(g *schema.FieldGroup, ctx *fileCtx) (*groupCtx, error) {
	gc := &groupCtx{
		ProtoName: g.Name,
		GoName:    goCamel(g.Name),
		Oneof:     g.Oneof,
		Optional:  g.Optional(),
	}
	for _, f := range g.Fields {
		fc, err := u.fieldContext(g, f)
		if err != nil {
			return nil, err
		}
		fc.GoName = gc.GoName
		gc.Fields = append(gc.Fields, fc)
		if fc.IsMap {
			ctx.NeedSort = true
		}
	}

	switch {
	case g.Oneof:
		gc.GoType = "any"
		ctx.NeedFmt = true
		// The group default is its first candidate's default. The literal
		// must carry its Go type: the slot is an any, and the serialize
		// probe dispatches on the stored dynamic type.
		first := gc.Fields[0]
		switch {
		case first.IsMessage:
			// Deferred; the slot stays nil.
		case first.IsEnum:
			gc.DefaultExpr = first.EnumGo + "(0)"
		default:
			gc.DefaultExpr = typedZeroExpr(first.Type)
		}
		gc.NilOneofOK = gc.Optional || first.IsMessage
		seen := make(map[string]bool)
		for _, fc := range gc.Fields {
			if seen[fc.ElemType] {
				continue
			}
			seen[fc.ElemType] = true
			gc.MarshalFields = append(gc.MarshalFields, fc)
		}
	default:
		f := gc.F()
		switch {
		case f.IsMap:
			gc.GoType = fmt.Sprintf("map[%s]%s", f.KeyGoType, f.ValGoType)
			ctx.NeedFmt = true
		case f.Repeated:
			gc.GoType = "[]" + f.ElemType
			ctx.NeedFmt = true
		case f.Optional:
			if f.Type == schema.TypeBytes || f.IsMessage {
				gc.GoType = f.ElemType // nil is the absence sentinel
			} else {
				gc.GoType = "*" + f.ElemType
			}
			ctx.NeedFmt = true
		default:
			gc.GoType = f.ElemType
			if f.Type != schema.TypeString && f.Type != schema.TypeBytes {
				ctx.NeedFmt = true
			}
		}
	}
	return gc, nil
}

func (u *unit) fieldContext(g *schema.FieldGroup, f *schema.Field) (*fieldCtx, error) {
	fc := &fieldCtx{
		ProtoName: f.Name,
		GroupName: g.Name,
		Number:    f.Number,
		Type:      f.Type,
		Repeated:  f.Cardinality == schema.CardRepeated,
		IsMap:     f.Cardinality == schema.CardMap,
		Optional:  f.Cardinality == schema.CardOptional,
		Singular:  f.Cardinality == schema.CardSingular,
		InOneof:   g.Oneof,
		Packable:  schema.IsPackedType(f.Type),
		WireExpr:  wireExpr(f.Type),
	}

	switch f.Type {
	case schema.TypeMessage:
		goName, ok := u.msgGo[f.MessageRef]
		if !ok {
			return nil, fmt.Errorf("field %s: reference %s is outside the generation unit", f.Name, f.MessageRef)
		}
		fc.IsMessage = true
		fc.MsgGoName = goName
		fc.ElemType = "*" + goName
	case schema.TypeEnum:
		goName, ok := u.enumGo[f.EnumRef]
		if !ok {
			return nil, fmt.Errorf("field %s: enum %s is outside the generation unit", f.Name, f.EnumRef.Name)
		}
		fc.IsEnum = true
		fc.EnumGo = goName
		fc.ElemType = goName
	case schema.TypeMap:
		fc.KeyType = f.KeyType
		fc.KeyGoType = goScalarType[f.KeyType]
		fc.KeyWireExpr = wireExpr(f.KeyType)
		fc.ValType = f.ValueType
		fc.ValWireExpr = wireExpr(f.ValueType)
		switch f.ValueType {
		case schema.TypeMessage:
			goName, ok := u.msgGo[f.ValueMessageRef]
			if !ok {
				return nil, fmt.Errorf("map field %s: reference %s is outside the generation unit", f.Name, f.ValueMessageRef)
			}
			fc.ValIsMsg = true
			fc.ValMsgGo = goName
			fc.ValGoType = "*" + goName
		case schema.TypeEnum:
			goName, ok := u.enumGo[f.ValueEnumRef]
			if !ok {
				return nil, fmt.Errorf("map field %s: enum value type is outside the generation unit", f.Name)
			}
			fc.ValIsEnum = true
			fc.ValEnumGo = goName
			fc.ValGoType = goName
		default:
			fc.ValGoType = goScalarType[f.ValueType]
		}
	default:
		fc.ElemType = goScalarType[f.Type]
	}
	return fc, nil
}
