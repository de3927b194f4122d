package protoscribe

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/anirudhraja/protoscribe/codec"
	"github.com/anirudhraja/protoscribe/gen"
)

const orderProto = `
syntax = "proto3";

package shop;

enum Currency {
  CURRENCY_UNKNOWN = 0;
  CURRENCY_EUR = 1;
  CURRENCY_USD = 2;
}

message LineItem {
  string sku = 1;
  uint32 quantity = 2;
}

message Order {
  string id = 1;
  repeated LineItem items = 2;
  Currency currency = 3;
  map<string, sint64> adjustments = 4;

  oneof payer {
    string customer_id = 5;
    uint64 account_number = 6;
  }
}
`

func newLoaded(t *testing.T) *Protoscribe {
	t.Helper()
	p := New()
	if err := p.LoadSchemaData(map[string]string{"order.proto": orderProto}); err != nil {
		t.Fatalf("failed to load schema: %v", err)
	}
	return p
}

func TestMarshalParseRoundTrip(t *testing.T) {
	p := newLoaded(t)

	item, err := p.NewMessage("shop.LineItem")
	if err != nil {
		t.Fatal(err)
	}
	item.Fields["sku"] = "A-1"
	item.Fields["quantity"] = uint32(2)

	data, err := p.MarshalFields(map[string]any{
		"id":          "order-7",
		"items":       []any{item},
		"currency":    mustEnum(t, p, "Currency", "CURRENCY_EUR"),
		"adjustments": map[any]any{"discount": int64(-250)},
		"payer":       "customer-1",
	}, "shop.Order")
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	back, err := p.ParseMessage(data, "shop.Order", codec.DefaultUnmarshalOptions())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	again, err := p.Marshal(back)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Fatalf("round trip must be byte stable:\n%x\n%x", data, again)
	}

	dict, err := p.Parse(data, "Order")
	if err != nil {
		t.Fatal(err)
	}
	if dict["id"] != "order-7" || dict["currency"] != "CURRENCY_EUR" || dict["payer"] != "customer-1" {
		t.Errorf("dict projection = %v", dict)
	}
	items, ok := dict["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("items projection = %v", dict["items"])
	}
	if !reflect.DeepEqual(items[0], map[string]any{"sku": "A-1", "quantity": uint32(2)}) {
		t.Errorf("nested projection = %v", items[0])
	}
}

func TestMarshalFieldsRejectsUnknownGroup(t *testing.T) {
	p := newLoaded(t)
	if _, err := p.MarshalFields(map[string]any{"nope": 1}, "shop.Order"); err == nil ||
		!strings.Contains(err.Error(), "no field group") {
		t.Fatalf("unknown group must fail, got %v", err)
	}
	if _, err := p.MarshalFields(nil, "shop.Missing"); err == nil {
		t.Fatalf("unknown type must fail")
	}
}

func TestGenerateFromLoadedSchema(t *testing.T) {
	p := newLoaded(t)
	files, err := p.Generate(gen.Options{PackageName: "shoppb"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(files) != 1 || files[0].Name != "order.pb.go" {
		t.Fatalf("generated files = %+v", files)
	}
	src := string(files[0].Content)
	for _, want := range []string{
		"package shoppb",
		"type Order_Order struct {",
		"type Order_Currency int32",
		"case 5: // payer.customer_id",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q", want)
		}
	}
}

func TestListSymbols(t *testing.T) {
	p := newLoaded(t)
	msgs := p.ListMessages()
	found := false
	for _, m := range msgs {
		if m == "shop.Order" {
			found = true
		}
	}
	if !found {
		t.Errorf("ListMessages = %v", msgs)
	}
	if len(p.ListEnums()) != 1 {
		t.Errorf("ListEnums = %v", p.ListEnums())
	}
	if len(p.Files()) != 1 {
		t.Errorf("Files = %d", len(p.Files()))
	}
}

func mustEnum(t *testing.T, p *Protoscribe, enumName, member string) any {
	t.Helper()
	e, err := p.GetRegistry().GetEnum(enumName)
	if err != nil {
		t.Fatal(err)
	}
	v := e.ValueByName(member)
	if v == nil {
		t.Fatalf("enum %s has no member %s", enumName, member)
	}
	return v
}
