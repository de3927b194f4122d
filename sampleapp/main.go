// Command sampleapp demonstrates the two halves of protoscribe: dynamic
// schema-aware parse/marshal, and code generation from the same schema.
package main

import (
	"fmt"
	"log"

	"github.com/anirudhraja/protoscribe"
	"github.com/anirudhraja/protoscribe/codec"
	"github.com/anirudhraja/protoscribe/gen"
)

const sampleProto = `
syntax = "proto3";

package sample;

enum Color {
  COLOR_UNSET = 0;
  COLOR_RED = 1;
  COLOR_BLUE = 2;
}

message Point {
  sint32 x = 1;
  sint32 y = 2;
}

message Shape {
  string name = 1;
  Color color = 2;
  repeated Point points = 3;
  map<string, double> attrs = 4;

  oneof label {
    string text = 5;
    uint32 code = 6;
  }
}
`

func main() {
	p := protoscribe.New()
	if err := p.LoadSchemaData(map[string]string{"sample.proto": sampleProto}); err != nil {
		log.Fatalf("failed to load schema: %v", err)
	}

	fmt.Println("=== Dynamic marshal/parse ===")

	point, err := p.NewMessage("sample.Point")
	if err != nil {
		log.Fatal(err)
	}
	point.Fields["x"] = int32(-3)
	point.Fields["y"] = int32(4)

	reg := p.GetRegistry()
	color, err := reg.GetEnum("sample.Color")
	if err != nil {
		log.Fatal(err)
	}

	data, err := p.MarshalFields(map[string]any{
		"name":   "triangle",
		"color":  color.ValueByName("COLOR_BLUE"),
		"points": []any{point},
		"attrs":  map[any]any{"area": 6.0},
		"label":  "corner",
	}, "sample.Shape")
	if err != nil {
		log.Fatalf("marshal failed: %v", err)
	}
	fmt.Printf("encoded %d bytes: %x\n", len(data), data)

	shape, err := p.ParseMessage(data, "sample.Shape", codec.DefaultUnmarshalOptions())
	if err != nil {
		log.Fatalf("parse failed: %v", err)
	}
	fmt.Printf("decoded: %s\n", shape)
	fmt.Printf("as dict: %v\n", shape.ToDict())

	fmt.Println("\n=== Code generation ===")

	files, err := p.Generate(gen.Options{PackageName: "samplepb"})
	if err != nil {
		log.Fatalf("generate failed: %v", err)
	}
	for _, f := range files {
		fmt.Printf("--- %s (%d bytes) ---\n", f.Name, len(f.Content))
		fmt.Println(string(f.Content))
	}
}
