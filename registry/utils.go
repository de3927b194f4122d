package registry

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/anirudhraja/protoscribe/schema"
)

// findIfProtoExists resolves an import path against the registered proto
// directories.
func (r *Registry) findIfProtoExists(protoPath string) (string, error) {
	var (
		fullPath      string
		fullProtoPath string
		err           error
	)
	protoPath = strings.Trim(protoPath, `"`)
	for _, dir := range r.ProtoDirectories {
		fullPath = path.Join(dir, protoPath)
		_, err = os.Stat(fullPath)
		if err == nil {
			fullProtoPath = fullPath
			break
		}
	}
	if fullProtoPath == "" {
		return "", fmt.Errorf("path does not exist: %s", protoPath)
	}
	if !strings.HasSuffix(fullProtoPath, ".proto") {
		return "", fmt.Errorf("is not a .proto file: %s", fullProtoPath)
	}
	return fullProtoPath, nil
}

// resolveFile resolves every pending type reference of one file against the
// full symbol table, deciding enum vs message per reference.
func (r *Registry) resolveFile(raw *rawFile) error {
	for _, rm := range raw.messages {
		for _, ref := range rm.refs {
			resolved, err := r.resolveType(ref.typeName, rm.scope)
			if err != nil {
				return fmt.Errorf("message %s field %s: %w", rm.msg.Name, ref.field.Name, err)
			}
			if enum, ok := r.enums[resolved]; ok {
				if ref.mapValue {
					ref.field.ValueType = schema.TypeEnum
					ref.field.ValueEnumRef = enum
				} else {
					ref.field.Type = schema.TypeEnum
					ref.field.EnumRef = enum
				}
				continue
			}
			if ref.mapValue {
				ref.field.ValueType = schema.TypeMessage
				ref.field.ValueMessageRef = resolved
			} else {
				ref.field.Type = schema.TypeMessage
				ref.field.MessageRef = resolved
			}
		}
	}
	return nil
}

/*
resolveType resolves a written type name to a fully qualified symbol.
It honors the three reference forms of the descriptor language: fully
qualified prefixed by a dot, already-qualified names, and relative names
resolved by walking the enclosing scope outward.
Ref - https://github.com/protocolbuffers/protobuf/blob/b7a5772caf08d62a20fd1bca258f501fa4db022c/src/google/protobuf/descriptor.proto#L186-L191
*/
func (r *Registry) resolveType(typeName, scope string) (string, error) {
	if strings.HasPrefix(typeName, ".") {
		name := strings.TrimPrefix(typeName, ".")
		if r.symbolExists(name) {
			return name, nil
		}
		return "", fmt.Errorf("unable to resolve fully qualified type name: %s", typeName)
	}
	if r.symbolExists(typeName) {
		return typeName, nil
	}
	// Walk the enclosing scope outward, trying the innermost level first.
	scopeSplit := strings.Split(scope, ".")
	for len(scopeSplit) > 0 && scopeSplit[0] != "" {
		candidate := strings.Join(scopeSplit, ".") + "." + typeName
		if r.symbolExists(candidate) {
			return candidate, nil
		}
		scopeSplit = scopeSplit[:len(scopeSplit)-1]
	}
	return "", fmt.Errorf("unable to resolve type name: %s", typeName)
}

func (r *Registry) symbolExists(name string) bool {
	if _, ok := r.messages[name]; ok {
		return true
	}
	_, ok := r.enums[name]
	return ok
}
