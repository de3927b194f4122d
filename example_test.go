package protoscribe

import (
	"fmt"
	"log"

	"github.com/anirudhraja/protoscribe/wire"
)

// Example demonstrates dynamic parsing against a loaded schema.
func Example() {
	p := New()
	err := p.LoadSchemaData(map[string]string{
		"greeting.proto": `
syntax = "proto3";
package demo;
message Greeting {
  string text = 1;
  uint32 count = 2;
}
`,
	})
	if err != nil {
		log.Fatal(err)
	}

	// Build wire bytes by hand: field 1 = "hello", field 2 = 3.
	w := wire.NewWriter()
	w.PutTag(1, wire.WireBytes)
	w.PutString("hello")
	w.PutTag(2, wire.WireVarint)
	w.PutVarint(3)

	result, err := p.Parse(w.Bytes(), "Greeting")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("text=%v count=%v\n", result["text"], result["count"])
	// Output: text=hello count=3
}
