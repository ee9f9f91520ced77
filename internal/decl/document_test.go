package decl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_ValidMinimal(t *testing.T) {
	yaml := `
classes:
  - name: pets/animal
    members:
      name: ""
      legs: 4
`
	doc, err := Parse([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(doc.Classes))
	}
	c := doc.Classes[0]
	if c.Name != "pets/animal" {
		t.Errorf("name = %q, want pets/animal", c.Name)
	}
	if c.Extends != "Object" {
		t.Errorf("extends = %q, want Object", c.Extends)
	}
	if diff := cmp.Diff([]string{"name", "legs"}, c.Members.Names); diff != "" {
		t.Errorf("member order mismatch (-want +got):\n%s", diff)
	}
	if c.Members.Values["legs"] != 4 {
		t.Errorf("legs = %v, want 4", c.Members.Values["legs"])
	}
}

func TestParse_MembersKeepDocumentOrder(t *testing.T) {
	yaml := `
classes:
  - name: Ordered
    members:
      zeta: 1
      alpha: 2
      mid: {nested: true}
      list: [1, 2]
    static:
      b: x
      a: y
`
	doc, err := Parse([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := doc.Classes[0]
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid", "list"}, c.Members.Names); diff != "" {
		t.Errorf("member order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "a"}, c.Static.Names); diff != "" {
		t.Errorf("static order mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{"nested": true}
	if diff := cmp.Diff(want, c.Members.Values["mid"]); diff != "" {
		t.Errorf("nested value mismatch (-want +got):\n%s", diff)
	}
	if got := c.Members.Spec().Names(); !cmp.Equal(got, []string{"zeta", "alpha", "mid", "list"}) {
		t.Errorf("spec names = %v", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no classes", "classes: []", "no classes defined"},
		{"missing name", "classes:\n  - extends: Object", "classes[0]: name is required"},
		{"duplicate", "classes:\n  - name: a/cat\n  - name: a.Cat", "already declared by classes[0]"},
		{"root shadow", "classes:\n  - name: Array", "shadows a builtin root"},
		{"unknown ancestor", "classes:\n  - name: Cat\n    extends: Feline", `unknown ancestor "Feline"`},
		{"unknown implements", "classes:\n  - name: Cat\n    implements: [Pet]", `implements unknown class "Pet"`},
		{"reserved member", "classes:\n  - name: Cat\n    members: {base: 1}", `members: "base" is a reserved name`},
		{"reserved order", "classes:\n  - name: Cat\n    order: [constructor]", `order: "constructor" is a reserved name`},
		{"members not mapping", "classes:\n  - name: Cat\n    members: [a, b]", "members must be a mapping"},
		{"cycle", "classes:\n  - name: A\n    extends: B\n  - name: B\n    extends: A", "inheritance cycle: A -> B -> A"},
		{"implements cycle", "classes:\n  - name: A\n    implements: [B]\n  - name: B\n    extends: A", "inheritance cycle"},
		{"mixin missing source", "classes:\n  - name: A\nmixins:\n  - target: A", "target and source are required"},
		{"mixin unknown target", "classes:\n  - name: A\nmixins:\n  - target: Z\n    source: A", `unknown target "Z"`},
		{"mixin root target", "classes:\n  - name: A\nmixins:\n  - target: Object\n    source: A", `unknown target "Object"`},
		{"mixin unknown source", "classes:\n  - name: A\nmixins:\n  - target: A\n    source: Z", `unknown source "Z"`},
		{"bad yaml", "classes: [", "parsing test.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), "test.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
			if !strings.HasPrefix(err.Error(), "test.yaml") && !strings.HasPrefix(err.Error(), "parsing test.yaml") {
				t.Errorf("error %q is not prefixed with the document path", err)
			}
		})
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classes.yml")
	if err := os.WriteFile(path, []byte("classes:\n  - name: Cat\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Path != path {
		t.Errorf("path = %q, want %q", doc.Path, path)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(filepath.Join(dir, "classes.json")); err == nil || !strings.Contains(err.Error(), "unsupported document extension") {
		t.Errorf("expected extension error, got %v", err)
	}
}

func TestFind_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" && strings.HasPrefix(got, root) {
		t.Errorf("found %q before any document exists", got)
	}

	path := filepath.Join(root, "classes.yaml")
	if err := os.WriteFile(path, []byte("classes: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = Find(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("Find = %q, want %q", got, path)
	}
}
