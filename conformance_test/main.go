// Command conformance_test cross-checks the dynamic engine against the
// canonical protobuf runtime: the same message content must serialize to
// identical bytes, and each side must parse the other's output.
package main

import (
	"bytes"
	"fmt"
	"log"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/anirudhraja/protoscribe"
	"github.com/anirudhraja/protoscribe/codec"
)

const confProto = `
syntax = "proto3";

package conf;

message Sample {
  string name = 1;
  uint64 id = 2;
  repeated uint64 nums = 3;
  sint32 delta = 4;
}
`

func canonicalDescriptor() (protoreflect.MessageDescriptor, error) {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("conf.proto"),
		Package: proto.String("conf"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Sample"),
			Field: []*descriptorpb.FieldDescriptorProto{
				{
					Name:     proto.String("name"),
					Number:   proto.Int32(1),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
					Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
					JsonName: proto.String("name"),
				},
				{
					Name:     proto.String("id"),
					Number:   proto.Int32(2),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_UINT64.Enum(),
					Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
					JsonName: proto.String("id"),
				},
				{
					Name:     proto.String("nums"),
					Number:   proto.Int32(3),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_UINT64.Enum(),
					Label:    descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
					JsonName: proto.String("nums"),
				},
				{
					Name:     proto.String("delta"),
					Number:   proto.Int32(4),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_SINT32.Enum(),
					Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
					JsonName: proto.String("delta"),
				},
			},
		}},
	}
	fd, err := protodesc.NewFile(fdp, nil)
	if err != nil {
		return nil, err
	}
	return fd.Messages().ByName("Sample"), nil
}

func main() {
	md, err := canonicalDescriptor()
	if err != nil {
		log.Fatalf("failed to build canonical descriptor: %v", err)
	}

	// Canonical side.
	ref := dynamicpb.NewMessage(md)
	fields := md.Fields()
	ref.Set(fields.ByNumber(1), protoreflect.ValueOfString("hello"))
	ref.Set(fields.ByNumber(2), protoreflect.ValueOfUint64(300))
	nums := ref.Mutable(fields.ByNumber(3)).List()
	for _, v := range []uint64{1, 2, 300} {
		nums.Append(protoreflect.ValueOfUint64(v))
	}
	ref.Set(fields.ByNumber(4), protoreflect.ValueOfInt32(-7))

	golden, err := proto.MarshalOptions{Deterministic: true}.Marshal(ref)
	if err != nil {
		log.Fatalf("canonical marshal failed: %v", err)
	}

	// Our side.
	p := protoscribe.New()
	if err := p.LoadSchemaData(map[string]string{"conf.proto": confProto}); err != nil {
		log.Fatalf("failed to load schema: %v", err)
	}
	m, err := p.NewMessage("conf.Sample")
	if err != nil {
		log.Fatal(err)
	}
	m.Fields["name"] = "hello"
	m.Fields["id"] = uint64(300)
	m.Fields["nums"] = []any{uint64(1), uint64(2), uint64(300)}
	m.Fields["delta"] = int32(-7)

	ours, err := p.Marshal(m)
	if err != nil {
		log.Fatalf("marshal failed: %v", err)
	}

	if !bytes.Equal(golden, ours) {
		log.Fatalf("encodings diverge:\ncanonical: %x\nprotoscribe: %x", golden, ours)
	}
	fmt.Printf("encodings match (%d bytes): %x\n", len(golden), golden)

	// Cross-parse: our engine reads the canonical bytes...
	back, err := p.ParseMessage(golden, "conf.Sample", codec.DefaultUnmarshalOptions())
	if err != nil {
		log.Fatalf("failed to parse canonical bytes: %v", err)
	}
	if !back.Equal(m) {
		log.Fatalf("parsed canonical bytes diverge: %s", back)
	}

	// ...and the canonical runtime reads ours.
	ref2 := dynamicpb.NewMessage(md)
	if err := proto.Unmarshal(ours, ref2); err != nil {
		log.Fatalf("canonical runtime rejected our bytes: %v", err)
	}
	if !proto.Equal(ref, ref2) {
		log.Fatalf("canonical runtime parsed different content")
	}

	fmt.Println("conformance checks passed")
}
