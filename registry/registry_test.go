package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anirudhraja/protoscribe/schema"
)

const userProto = `
syntax = "proto3";

package app;

enum Status {
  STATUS_UNKNOWN = 0;
  STATUS_ACTIVE = 1;
  STATUS_BANNED = 2;
}

message Address {
  string street = 1;
  string city = 2;
}

message User {
  string name = 1;
  optional int32 age = 2;
  repeated uint64 scores = 3;
  Status status = 4;
  Address address = 5;
  map<string, Address> places = 6;

  oneof contact {
    string email = 7;
    fixed64 phone = 8;
  }

  message Meta {
    bytes blob = 1;
  }
  Meta meta = 9;
}
`

func loadUser(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	if err := r.LoadSchemaData(map[string]string{"user.proto": userProto}); err != nil {
		t.Fatalf("LoadSchemaData failed: %v", err)
	}
	return r
}

func TestLoadSchemaData(t *testing.T) {
	r := loadUser(t)

	user, err := r.GetMessage("app.User")
	if err != nil {
		t.Fatal(err)
	}
	if len(user.Groups) != 8 {
		t.Fatalf("User has %d field groups, want 8", len(user.Groups))
	}

	// Bare-name lookup resolves through the package prefix.
	if _, err := r.GetMessage("User"); err != nil {
		t.Errorf("bare name lookup failed: %v", err)
	}

	age := user.GroupByName("age")
	if age == nil || age.Field().Cardinality != schema.CardOptional {
		t.Errorf("age must be optional")
	}
	scores := user.GroupByName("scores")
	if scores == nil || scores.Field().Cardinality != schema.CardRepeated || scores.Field().Type != schema.TypeUint64 {
		t.Errorf("scores must be repeated uint64")
	}

	status := user.GroupByName("status")
	if status == nil || status.Field().Type != schema.TypeEnum {
		t.Fatalf("status must resolve to an enum")
	}
	if status.Field().EnumRef == nil || status.Field().EnumRef.Name != "Status" {
		t.Errorf("status enum ref = %+v", status.Field().EnumRef)
	}

	address := user.GroupByName("address")
	if address == nil || address.Field().Type != schema.TypeMessage || address.Field().MessageRef != "app.Address" {
		t.Errorf("address must reference app.Address, got %+v", address.Field())
	}

	places := user.GroupByName("places")
	if places == nil || places.Field().Cardinality != schema.CardMap {
		t.Fatalf("places must be a map field")
	}
	if places.Field().KeyType != schema.TypeString || places.Field().ValueMessageRef != "app.Address" {
		t.Errorf("places shape = %+v", places.Field())
	}

	contact := user.GroupByName("contact")
	if contact == nil || !contact.Oneof || len(contact.Fields) != 2 {
		t.Fatalf("contact must be a two-member oneof")
	}
	if contact.Fields[0].Name != "email" || contact.Fields[1].Number != 8 {
		t.Errorf("oneof members = %+v", contact.Fields)
	}

	// Nested messages register flattened under the enclosing scope.
	meta, err := r.GetMessage("app.User.Meta")
	if err != nil {
		t.Fatalf("nested message lookup failed: %v", err)
	}
	if meta.Name != "User.Meta" {
		t.Errorf("nested message local name = %q", meta.Name)
	}
	mg := user.GroupByName("meta")
	if mg == nil || mg.Field().MessageRef != "app.User.Meta" {
		t.Errorf("meta ref = %+v", mg.Field())
	}
}

func TestCrossFileReference(t *testing.T) {
	r := NewRegistry()
	err := r.LoadSchemaData(map[string]string{
		"base.proto": `
syntax = "proto3";
package base;
message Item { string id = 1; }
`,
		"cart.proto": `
syntax = "proto3";
package shop;
message Cart { repeated base.Item items = 1; }
`,
	})
	if err != nil {
		t.Fatal(err)
	}
	cart, err := r.GetMessage("shop.Cart")
	if err != nil {
		t.Fatal(err)
	}
	if got := cart.Groups[0].Field().MessageRef; got != "base.Item" {
		t.Errorf("cross-file ref = %q, want base.Item", got)
	}
}

func TestLoadSchemaFromDisk(t *testing.T) {
	dir := t.TempDir()
	common := filepath.Join(dir, "common.proto")
	if err := os.WriteFile(common, []byte(`
syntax = "proto3";
package common;
message Tag { string label = 1; }
`), 0o644); err != nil {
		t.Fatal(err)
	}
	main := filepath.Join(dir, "main.proto")
	if err := os.WriteFile(main, []byte(`
syntax = "proto3";
package main;
import "common.proto";
message Note { common.Tag tag = 1; }
`), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadSchema(main); err != nil {
		t.Fatalf("LoadSchema failed: %v", err)
	}
	note, err := r.GetMessage("main.Note")
	if err != nil {
		t.Fatal(err)
	}
	if note.Groups[0].Field().MessageRef != "common.Tag" {
		t.Errorf("imported ref = %q", note.Groups[0].Field().MessageRef)
	}
	if len(r.Files()) != 2 {
		t.Errorf("import DFS must load both files, got %d", len(r.Files()))
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{
			name: "enum without zero value",
			source: `
syntax = "proto3";
enum Bad { BAD_ONE = 1; }
`,
			wantErr: "no zero value",
		},
		{
			name: "duplicate field number",
			source: `
syntax = "proto3";
message Bad {
  string a = 1;
  string b = 1;
}
`,
			wantErr: "share number 1",
		},
		{
			name: "unresolved reference",
			source: `
syntax = "proto3";
message Bad { Missing m = 1; }
`,
			wantErr: "unable to resolve",
		},
		{
			name: "proto2 rejected",
			source: `
syntax = "proto2";
message Bad { optional string a = 1; }
`,
			wantErr: "only proto3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.LoadSchemaData(map[string]string{"bad.proto": tt.source})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("want error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetMessageNotFound(t *testing.T) {
	r := loadUser(t)
	if _, err := r.GetMessage("Nope"); err == nil {
		t.Errorf("unknown message must error")
	}
	if _, err := r.GetEnum("Nope"); err == nil {
		t.Errorf("unknown enum must error")
	}
	if _, err := r.GetEnum("Status"); err != nil {
		t.Errorf("bare enum lookup failed: %v", err)
	}
}
