package gen

// fileTemplate is the fixed template the generator expands once per schema
// file. Conditional sections are keyed on field shape (repeated, map, oneof
// membership, optionality); scalar substitutions are precomputed by the
// context builder in generator.go. The expanded source is run through
// go/format before it is returned.
const fileTemplate = `// Code generated by protoscribe. DO NOT EDIT.
// source: {{.Source}}

package {{.Package}}

{{if or .Messages .Enums}}import (
{{- if .NeedFmt}}
	"fmt"
{{- end}}
{{- if .NeedSort}}
	"sort"
{{- end}}
{{- if .Messages}}
	"strings"
{{- end}}

{{- if .Messages}}
	"github.com/anirudhraja/protoscribe/codec"
{{- end}}
	"github.com/anirudhraja/protoscribe/wire"
)
{{end}}
{{- range .Enums}}
{{template "enum" .}}
{{- end}}
{{- range .Messages}}
{{template "message" .}}
{{- end}}
{{- if .Aliases}}

// Unqualified aliases for names unique across the generation unit.
{{range .Aliases}}
{{- if .IsEnum}}
type {{.Alias}} = {{.Target}}

{{$a := .}}const (
{{- range .Members}}
	{{$a.Alias}}_{{.Name}} = {{.GoName}}
{{- end}}
)
{{- end}}
{{- if .IsMsg}}
type {{.Alias}} = {{.Target}}

var (
	New{{.Alias}}   = New{{.Target}}
	Parse{{.Alias}} = Parse{{.Target}}
)
{{- end}}
{{end}}
{{- end}}

{{- define "enum"}}
{{$e := .}}
// {{.ProtoName}} enumerates the declared (name, int32) pairs.
type {{.GoName}} int32

const (
{{- range .Values}}
	{{.GoName}} {{$e.GoName}} = {{.Number}}
{{- end}}
)

var {{.GoName}}_name = map[int32]string{
{{- range .Values}}
{{- if not .Dup}}
	{{.Number}}: "{{.Name}}",
{{- end}}
{{- end}}
}

var {{.GoName}}_value = map[string]int32{
{{- range .Values}}
	"{{.Name}}": {{.Number}},
{{- end}}
}

// String returns the declared name of x.
func (x {{.GoName}}) String() string {
	if s, ok := {{.GoName}}_name[int32(x)]; ok {
		return s
	}
	return fmt.Sprintf("{{.GoName}}(%d)", int32(x))
}

// Known reports whether x is a declared member.
func (x {{.GoName}}) Known() bool {
	_, ok := {{.GoName}}_name[int32(x)]
	return ok
}

func parse{{.GoName}}(r *wire.Reader) ({{.GoName}}, error) {
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	x := {{.GoName}}(int32(v))
	if !x.Known() {
		return 0, fmt.Errorf("unknown enum value %d for enum {{.ProtoName}}", int32(v))
	}
	return x, nil
}
{{- end}}

{{- define "message"}}
{{$m := .}}
// {{.ProtoName}} is the generated form of the schema message.
type {{.GoName}} struct {
{{- range .Groups}}
	{{.GoName}} {{.GoType}}
{{- end}}

	unknown []codec.UnknownField
}

// New{{.GoName}} constructs an instance with every slot at its default.
func New{{.GoName}}() *{{.GoName}} {
	m := &{{.GoName}}{}
{{- range .Groups}}
{{- if .DefaultExpr}}
	m.{{.GoName}} = {{.DefaultExpr}}
{{- end}}
{{- end}}
	return m
}

// Parse{{.GoName}} parses data into a fresh instance with default flags.
func Parse{{.GoName}}(data []byte) (*{{.GoName}}, error) {
	return Parse{{.GoName}}With(data, codec.DefaultUnmarshalOptions())
}

// Parse{{.GoName}}With parses data into a fresh instance.
func Parse{{.GoName}}With(data []byte, opts codec.UnmarshalOptions) (*{{.GoName}}, error) {
	m := New{{.GoName}}()
	if err := m.UnmarshalWith(data, opts); err != nil {
		return nil, err
	}
	return m, nil
}

// Unmarshal merges data into the current state with default flags.
func (m *{{.GoName}}) Unmarshal(data []byte) error {
	return m.UnmarshalWith(data, codec.DefaultUnmarshalOptions())
}

// UnmarshalWith merges data into the current state: singular fields
// overwrite, repeated and map fields accumulate, unknown fields append.
func (m *{{.GoName}}) UnmarshalWith(data []byte, opts codec.UnmarshalOptions) error {
	r := wire.NewReader(data)
	for !r.EOF() {
		start := r.Pos()
		rawTag, err := r.ReadVarint()
		if err != nil {
			return codec.WrapUnknownErr(err, start)
		}
		fn, wt := wire.ParseTag(wire.Tag(rawTag))
		if err := codec.ValidateWireType(wt, start); err != nil {
			return err
		}
		switch fn {
{{- range .Groups}}
{{- range .Fields}}
		case {{.Number}}: // {{.GroupName}}{{if .InOneof}}.{{.ProtoName}}{{end}}
{{- template "parsearm" .}}
{{- end}}
{{- end}}
		default:
			if err := codec.CaptureUnknown(r, wire.Tag(rawTag), wt, start, opts, &m.unknown); err != nil {
				return err
			}
		}
	}
	return nil
}

// Marshal serializes the message: field groups in declaration order,
// repeated elements in list order, map entries in sorted key order,
// retained unknown fields last.
func (m *{{.GoName}}) Marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	w := wire.NewWriter()
{{- range .Groups}}
{{- template "marshalgroup" .}}
{{- end}}
	codec.AppendUnknown(w, m.unknown)
	return w.Bytes(), nil
}

// ToDict projects the message onto plain Go values: sub-messages become
// nested maps, enum values become their declared names, scalars pass
// through.
func (m *{{.GoName}}) ToDict() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, {{len .Groups}})
{{- range .Groups}}
{{- template "dictgroup" .}}
{{- end}}
	return out
}

// Equal reports field-group-wise structural equality, recursive on
// sub-messages. A nil message equals an all-default one; retained unknown
// fields do not participate.
func (m *{{.GoName}}) Equal(o *{{.GoName}}) bool {
	if m == nil {
		m = New{{.GoName}}()
	}
	if o == nil {
		o = New{{.GoName}}()
	}
{{- range .Groups}}
{{- template "equalgroup" .}}
{{- end}}
	return true
}

// String renders a human-readable representation with long string and byte
// slots abbreviated.
func (m *{{.GoName}}) String() string {
	if m == nil {
		return "nil"
	}
	var b strings.Builder
	b.WriteString("{{.ProtoName}}(")
{{- range $i, $g := .Groups}}
{{- if $i}}
	b.WriteString(", ")
{{- end}}
	b.WriteString("{{$g.ProtoName}}=")
{{- template "reprgroup" $g}}
{{- end}}
	b.WriteByte(')')
	return b.String()
}

// Clone returns a deep copy, retained unknown fields included.
func (m *{{.GoName}}) Clone() *{{.GoName}} {
	if m == nil {
		return nil
	}
	out := New{{.GoName}}()
{{- range .Groups}}
{{- template "clonegroup" .}}
{{- end}}
	out.unknown = codec.CloneUnknown(m.unknown)
	return out
}

// HasUnknown reports whether any unknown-field entries are retained.
func (m *{{.GoName}}) HasUnknown() bool {
	return len(m.unknown) > 0
}

// ClearUnknown drops all retained unknown-field entries.
func (m *{{.GoName}}) ClearUnknown() {
	m.unknown = nil
}

// UnknownFields returns the retained entries in insertion order.
func (m *{{.GoName}}) UnknownFields() []codec.UnknownField {
	return m.unknown
}
{{- end}}

{{- define "parsearm"}}
{{- if .IsMap}}
			if wt == wire.WireBytes {
				sub, err := r.Sub()
				if err != nil {
					return codec.WrapFieldErr(err, "{{.GroupName}}", {{.Number}}, start)
				}
				key := {{.KeyZero}}
				val := {{.ValZero}}
				for !sub.EOF() {
					es := sub.Pos()
					rawEntryTag, err := sub.ReadVarint()
					if err != nil {
						return codec.WrapFieldErr(codec.WrapUnknownErr(err, es), "{{.GroupName}}", {{.Number}}, start)
					}
					efn, ewt := wire.ParseTag(wire.Tag(rawEntryTag))
					switch efn {
					case 1:
						key, err = {{.KeyParseCall "sub"}}
						if err != nil {
							return codec.WrapFieldErr(fmt.Errorf("failed to decode map key: %w", err), "{{.GroupName}}", {{.Number}}, start)
						}
					case 2:
{{- if .ValIsMsg}}
						body, err := sub.ReadBytes()
						if err != nil {
							return codec.WrapFieldErr(fmt.Errorf("failed to decode map value: %w", err), "{{.GroupName}}", {{.Number}}, start)
						}
						val = New{{.ValMsgGo}}()
						if err := val.UnmarshalWith(body, opts); err != nil {
							return codec.WrapFieldErr(fmt.Errorf("failed to decode map value: %w", err), "{{.GroupName}}", {{.Number}}, start)
						}
{{- else}}
						val, err = {{.ValParseCall "sub"}}
						if err != nil {
							return codec.WrapFieldErr(fmt.Errorf("failed to decode map value: %w", err), "{{.GroupName}}", {{.Number}}, start)
						}
{{- end}}
					default:
						if err := sub.SkipField(ewt); err != nil {
							return codec.WrapFieldErr(codec.WrapUnknownErr(err, es), "{{.GroupName}}", {{.Number}}, start)
						}
					}
				}
				if m.{{.GoName}} == nil {
					m.{{.GoName}} = make(map[{{.KeyGoType}}]{{.ValGoType}})
				}
				m.{{.GoName}}[key] = val
			} else if err := codec.HandleMismatch(r, wire.Tag(rawTag), wt, "{{.GroupName}}", {{.Number}}, start, opts, &m.unknown); err != nil {
				return err
			}
{{- else if .IsMessage}}
			if wt == wire.WireBytes {
				body, err := r.ReadBytes()
				if err != nil {
					return codec.WrapFieldErr(err, "{{.GroupName}}", {{.Number}}, start)
				}
				sm := New{{.MsgGoName}}()
				if err := sm.UnmarshalWith(body, opts); err != nil {
					return codec.WrapFieldErr(err, "{{.GroupName}}", {{.Number}}, start)
				}
{{- if .Repeated}}
				m.{{.GoName}} = append(m.{{.GoName}}, sm)
{{- else}}
				m.{{.GoName}} = sm
{{- end}}
			} else if err := codec.HandleMismatch(r, wire.Tag(rawTag), wt, "{{.GroupName}}", {{.Number}}, start, opts, &m.unknown); err != nil {
				return err
			}
{{- else if and .Repeated .Packable}}
			if wt == {{.WireExpr}} {
				v, err := {{.ParseCall "r"}}
				if err != nil {
					return codec.WrapFieldErr(err, "{{.GroupName}}", {{.Number}}, start)
				}
				m.{{.GoName}} = append(m.{{.GoName}}, v)
			} else if wt == wire.WireBytes {
				sub, err := r.Sub()
				if err != nil {
					return codec.WrapFieldErr(err, "{{.GroupName}}", {{.Number}}, start)
				}
				for i := 0; !sub.EOF(); i++ {
					v, err := {{.ParseCall "sub"}}
					if err != nil {
						return codec.WrapFieldErr(codec.WrapIndexErr(err, i), "{{.GroupName}}", {{.Number}}, start)
					}
					m.{{.GoName}} = append(m.{{.GoName}}, v)
				}
			} else if err := codec.HandleMismatch(r, wire.Tag(rawTag), wt, "{{.GroupName}}", {{.Number}}, start, opts, &m.unknown); err != nil {
				return err
			}
{{- else if .Repeated}}
			if wt == {{.WireExpr}} {
				v, err := {{.ParseCall "r"}}
				if err != nil {
					return codec.WrapFieldErr(err, "{{.GroupName}}", {{.Number}}, start)
				}
				m.{{.GoName}} = append(m.{{.GoName}}, v)
			} else if err := codec.HandleMismatch(r, wire.Tag(rawTag), wt, "{{.GroupName}}", {{.Number}}, start, opts, &m.unknown); err != nil {
				return err
			}
{{- else}}
			if wt == {{.WireExpr}} {
				v, err := {{.ParseCall "r"}}
				if err != nil {
					return codec.WrapFieldErr(err, "{{.GroupName}}", {{.Number}}, start)
				}
{{- if and .Optional (not .IsBytes)}}
				m.{{.GoName}} = &v
{{- else}}
				m.{{.GoName}} = v
{{- end}}
			} else if err := codec.HandleMismatch(r, wire.Tag(rawTag), wt, "{{.GroupName}}", {{.Number}}, start, opts, &m.unknown); err != nil {
				return err
			}
{{- end}}
{{- end}}

{{- define "marshalgroup"}}
{{- if .Oneof}}
	switch v := m.{{.GoName}}.(type) {
	case nil:
{{- if .NilOneofOK}}
		// nothing set; serializes to nothing
{{- else}}
		return nil, codec.WrapFieldErr(fmt.Errorf("oneof {{.ProtoName}} slot is nil"), "{{.ProtoName}}", {{(index .Fields 0).Number}}, w.Len())
{{- end}}
{{- range .MarshalFields}}
	case {{.ElemType}}:
{{- if .IsMessage}}
		sub, err := v.Marshal()
		if err != nil {
			return nil, codec.WrapFieldErr(err, "{{.GroupName}}", {{.Number}}, w.Len())
		}
		if len(sub) > 0 {
			w.PutTag({{.Number}}, wire.WireBytes)
			w.PutLenPrefixed(sub)
		}
{{- else}}
		if {{.NonDefault "v"}} {
			w.PutTag({{.Number}}, {{.WireExpr}})
			{{.AppendStmt "w" "v"}}
		}
{{- end}}
{{- end}}
	default:
		return nil, codec.WrapFieldErr(fmt.Errorf("no candidate of oneof {{.ProtoName}} matches value of type %T", v), "{{.ProtoName}}", {{(index .Fields 0).Number}}, w.Len())
	}
{{- else}}
{{- $f := .F}}
{{- if $f.IsMap}}
	if len(m.{{$f.GoName}}) > 0 {
		keys := make([]{{$f.KeyGoType}}, 0, len(m.{{$f.GoName}}))
		for k := range m.{{$f.GoName}} {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return {{$f.KeyLess "keys[i]" "keys[j]"}} })
		for _, k := range keys {
			entry := wire.NewWriter()
			entry.PutTag(1, {{$f.KeyWireExpr}})
			{{$f.KeyAppendStmt "entry" "k"}}
			entry.PutTag(2, {{$f.ValWireExpr}})
{{- if $f.ValIsMsg}}
			vb, err := m.{{$f.GoName}}[k].Marshal()
			if err != nil {
				return nil, codec.WrapFieldErr(err, "{{$f.GroupName}}", {{$f.Number}}, w.Len())
			}
			entry.PutLenPrefixed(vb)
{{- else}}
			{{$f.ValAppendStmt "entry" (printf "m.%s[k]" $f.GoName)}}
{{- end}}
			w.PutTag({{$f.Number}}, wire.WireBytes)
			w.PutLenPrefixed(entry.Bytes())
		}
	}
{{- else if $f.IsMessage}}
{{- if $f.Repeated}}
	for i, e := range m.{{$f.GoName}} {
		sub, err := e.Marshal()
		if err != nil {
			return nil, codec.WrapFieldErr(codec.WrapIndexErr(err, i), "{{$f.GroupName}}", {{$f.Number}}, w.Len())
		}
		w.PutTag({{$f.Number}}, wire.WireBytes)
		w.PutLenPrefixed(sub)
	}
{{- else if $f.Optional}}
	if m.{{$f.GoName}} != nil {
		sub, err := m.{{$f.GoName}}.Marshal()
		if err != nil {
			return nil, codec.WrapFieldErr(err, "{{$f.GroupName}}", {{$f.Number}}, w.Len())
		}
		w.PutTag({{$f.Number}}, wire.WireBytes)
		w.PutLenPrefixed(sub)
	}
{{- else}}
	if m.{{$f.GoName}} != nil {
		sub, err := m.{{$f.GoName}}.Marshal()
		if err != nil {
			return nil, codec.WrapFieldErr(err, "{{$f.GroupName}}", {{$f.Number}}, w.Len())
		}
		if len(sub) > 0 {
			w.PutTag({{$f.Number}}, wire.WireBytes)
			w.PutLenPrefixed(sub)
		}
	}
{{- end}}
{{- else if and $f.Repeated $f.Packable}}
	if len(m.{{$f.GoName}}) > 0 {
		sub := wire.NewWriter()
		for _, e := range m.{{$f.GoName}} {
			{{$f.AppendStmt "sub" "e"}}
		}
		w.PutTag({{$f.Number}}, wire.WireBytes)
		w.PutLenPrefixed(sub.Bytes())
	}
{{- else if $f.Repeated}}
	for _, e := range m.{{$f.GoName}} {
		w.PutTag({{$f.Number}}, {{$f.WireExpr}})
		{{$f.AppendStmt "w" "e"}}
	}
{{- else if $f.Optional}}
{{- if $f.IsBytes}}
	if m.{{$f.GoName}} != nil {
		w.PutTag({{$f.Number}}, wire.WireBytes)
		codec.AppendBytes(w, m.{{$f.GoName}})
	}
{{- else}}
	if m.{{$f.GoName}} != nil {
		w.PutTag({{$f.Number}}, {{$f.WireExpr}})
		{{$f.AppendStmt "w" (printf "(*m.%s)" $f.GoName)}}
	}
{{- end}}
{{- else}}
	if {{$f.NonDefault (printf "m.%s" $f.GoName)}} {
		w.PutTag({{$f.Number}}, {{$f.WireExpr}})
		{{$f.AppendStmt "w" (printf "m.%s" $f.GoName)}}
	}
{{- end}}
{{- end}}
{{- end}}

{{- define "dictgroup"}}
{{- if .Oneof}}
	switch v := m.{{.GoName}}.(type) {
	case nil:
		out["{{.ProtoName}}"] = nil
{{- range .MarshalFields}}
{{- if .IsMessage}}
	case {{.ElemType}}:
		out["{{.GroupName}}"] = v.ToDict()
{{- else if .IsEnum}}
	case {{.ElemType}}:
		out["{{.GroupName}}"] = v.String()
{{- end}}
{{- end}}
	default:
		out["{{.ProtoName}}"] = v
	}
{{- else}}
{{- $f := .F}}
{{- if $f.IsMap}}
{{- if $f.ValIsMsg}}
	out["{{$f.GroupName}}"] = codec.DictMap(m.{{$f.GoName}}, func(v {{$f.ValGoType}}) any { return v.ToDict() })
{{- else if $f.ValIsEnum}}
	out["{{$f.GroupName}}"] = codec.DictMap(m.{{$f.GoName}}, func(v {{$f.ValGoType}}) any { return v.String() })
{{- else}}
	out["{{$f.GroupName}}"] = codec.DictMap(m.{{$f.GoName}}, func(v {{$f.ValGoType}}) any { return v })
{{- end}}
{{- else if $f.Repeated}}
{{- if $f.IsMessage}}
	out["{{$f.GroupName}}"] = codec.DictSlice(m.{{$f.GoName}}, func(v {{$f.ElemType}}) any { return v.ToDict() })
{{- else if $f.IsEnum}}
	out["{{$f.GroupName}}"] = codec.DictSlice(m.{{$f.GoName}}, func(v {{$f.ElemType}}) any { return v.String() })
{{- else}}
	out["{{$f.GroupName}}"] = codec.DictSlice(m.{{$f.GoName}}, func(v {{$f.ElemType}}) any { return v })
{{- end}}
{{- else if $f.IsMessage}}
	out["{{$f.GroupName}}"] = m.{{$f.GoName}}.ToDict()
{{- else if and $f.Optional (not $f.IsBytes)}}
	if m.{{$f.GoName}} != nil {
		out["{{$f.GroupName}}"] = *m.{{$f.GoName}}
	} else {
		out["{{$f.GroupName}}"] = nil
	}
{{- else if $f.IsEnum}}
	out["{{$f.GroupName}}"] = m.{{$f.GoName}}.String()
{{- else}}
	out["{{$f.GroupName}}"] = m.{{$f.GoName}}
{{- end}}
{{- end}}
{{- end}}

{{- define "equalgroup"}}
{{- if .Oneof}}
	switch av := m.{{.GoName}}.(type) {
	case nil:
		if o.{{.GoName}} != nil {
			return false
		}
{{- range .MarshalFields}}
	case {{.ElemType}}:
		bv, ok := o.{{.GoName}}.({{.ElemType}})
		if !ok {
			return false
		}
{{- if .IsMessage}}
		if !av.Equal(bv) {
			return false
		}
{{- else if .IsBytes}}
		if !codec.EqualBytes(av, bv) {
			return false
		}
{{- else}}
		if av != bv {
			return false
		}
{{- end}}
{{- end}}
	default:
		return false
	}
{{- else}}
{{- $f := .F}}
{{- if $f.IsMap}}
{{- if $f.ValIsMsg}}
	if !codec.EqualMapsFunc(m.{{$f.GoName}}, o.{{$f.GoName}}, func(a, b {{$f.ValGoType}}) bool { return a.Equal(b) }) {
		return false
	}
{{- else if $f.ValIsBytes}}
	if !codec.EqualMapsFunc(m.{{$f.GoName}}, o.{{$f.GoName}}, codec.EqualBytes) {
		return false
	}
{{- else}}
	if !codec.EqualMaps(m.{{$f.GoName}}, o.{{$f.GoName}}) {
		return false
	}
{{- end}}
{{- else if $f.Repeated}}
{{- if $f.IsMessage}}
	if !codec.EqualSlicesFunc(m.{{$f.GoName}}, o.{{$f.GoName}}, func(a, b {{$f.ElemType}}) bool { return a.Equal(b) }) {
		return false
	}
{{- else if $f.IsBytes}}
	if !codec.EqualSlicesFunc(m.{{$f.GoName}}, o.{{$f.GoName}}, codec.EqualBytes) {
		return false
	}
{{- else}}
	if !codec.EqualSlices(m.{{$f.GoName}}, o.{{$f.GoName}}) {
		return false
	}
{{- end}}
{{- else if $f.IsMessage}}
	if !m.{{$f.GoName}}.Equal(o.{{$f.GoName}}) {
		return false
	}
{{- else if and $f.Optional (not $f.IsBytes)}}
	if !codec.EqualPtr(m.{{$f.GoName}}, o.{{$f.GoName}}) {
		return false
	}
{{- else if $f.Optional}}
	if (m.{{$f.GoName}} == nil) != (o.{{$f.GoName}} == nil) || !codec.EqualBytes(m.{{$f.GoName}}, o.{{$f.GoName}}) {
		return false
	}
{{- else if $f.IsBytes}}
	if !codec.EqualBytes(m.{{$f.GoName}}, o.{{$f.GoName}}) {
		return false
	}
{{- else}}
	if m.{{$f.GoName}} != o.{{$f.GoName}} {
		return false
	}
{{- end}}
{{- end}}
{{- end}}

{{- define "reprgroup"}}
{{- if .Oneof}}
	switch v := m.{{.GoName}}.(type) {
	case nil:
		b.WriteString("nil")
	case string:
		b.WriteString(codec.ReprString(v))
	case []byte:
		b.WriteString(codec.ReprBytes(v))
	default:
		b.WriteString(fmt.Sprintf("%v", v))
	}
{{- else}}
{{- $f := .F}}
{{- if and $f.IsString $f.Singular}}
	b.WriteString(codec.ReprString(m.{{$f.GoName}}))
{{- else if and $f.IsBytes (not $f.Repeated) (not $f.IsMap)}}
	b.WriteString(codec.ReprBytes(m.{{$f.GoName}}))
{{- else if and $f.Optional (not $f.IsBytes)}}
	if m.{{$f.GoName}} != nil {
		b.WriteString(fmt.Sprintf("%v", *m.{{$f.GoName}}))
	} else {
		b.WriteString("nil")
	}
{{- else}}
	b.WriteString(fmt.Sprintf("%v", m.{{$f.GoName}}))
{{- end}}
{{- end}}
{{- end}}

{{- define "clonegroup"}}
{{- if .Oneof}}
	switch v := m.{{.GoName}}.(type) {
	case nil:
		out.{{.GoName}} = nil
{{- range .MarshalFields}}
{{- if .IsMessage}}
	case {{.ElemType}}:
		out.{{.GoName}} = v.Clone()
{{- else if .IsBytes}}
	case {{.ElemType}}:
		out.{{.GoName}} = codec.CloneBytes(v)
{{- end}}
{{- end}}
	default:
		out.{{.GoName}} = v
	}
{{- else}}
{{- $f := .F}}
{{- if $f.IsMap}}
{{- if $f.ValIsMsg}}
	out.{{$f.GoName}} = codec.CloneMapFunc(m.{{$f.GoName}}, func(v {{$f.ValGoType}}) {{$f.ValGoType}} { return v.Clone() })
{{- else if $f.ValIsBytes}}
	out.{{$f.GoName}} = codec.CloneMapFunc(m.{{$f.GoName}}, codec.CloneBytes)
{{- else}}
	out.{{$f.GoName}} = codec.CloneMap(m.{{$f.GoName}})
{{- end}}
{{- else if $f.Repeated}}
{{- if $f.IsMessage}}
	out.{{$f.GoName}} = codec.CloneSliceFunc(m.{{$f.GoName}}, func(v {{$f.ElemType}}) {{$f.ElemType}} { return v.Clone() })
{{- else if $f.IsBytes}}
	out.{{$f.GoName}} = codec.CloneSliceFunc(m.{{$f.GoName}}, codec.CloneBytes)
{{- else}}
	out.{{$f.GoName}} = codec.CloneSlice(m.{{$f.GoName}})
{{- end}}
{{- else if $f.IsMessage}}
	out.{{$f.GoName}} = m.{{$f.GoName}}.Clone()
{{- else if and $f.Optional (not $f.IsBytes)}}
	if m.{{$f.GoName}} != nil {
		v := *m.{{$f.GoName}}
		out.{{$f.GoName}} = &v
	} else {
		out.{{$f.GoName}} = nil
	}
{{- else if $f.IsBytes}}
	out.{{$f.GoName}} = codec.CloneBytes(m.{{$f.GoName}})
{{- else}}
	out.{{$f.GoName}} = m.{{$f.GoName}}
{{- end}}
{{- end}}
{{- end}}
`
