package ir

import "testing"

func TestAssumedName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"time", "time"},
		{"encoding/json", "json"},
		{"github.com/hashicorp/go-multierror", "multierror"},
		{"github.com/go-playground/validator/v10", "validator"},
		{"gopkg.in/yaml.v3", "yaml"},
		{"example.com/my-lib", "my"},
	}
	for _, tt := range tests {
		if got := AssumedName(tt.path); got != tt.want {
			t.Errorf("AssumedName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestImport_LocalName(t *testing.T) {
	if got := (Import{Path: "encoding/json"}).LocalName(); got != "json" {
		t.Errorf("LocalName() = %q, want json", got)
	}
	if got := (Import{Name: "stdjson", Path: "encoding/json"}).LocalName(); got != "stdjson" {
		t.Errorf("LocalName() = %q, want stdjson", got)
	}
}

func TestImport_PackageName(t *testing.T) {
	imp := Import{Path: "example.com/shapekit", PkgName: "kit"}
	if got := imp.LocalName(); got != "kit" {
		t.Errorf("LocalName() = %q, want kit", got)
	}
	imp.Name = "sk"
	if got := imp.LocalName(); got != "sk" {
		t.Errorf("LocalName() = %q, want sk", got)
	}
	if got := imp.PackageName(); got != "kit" {
		t.Errorf("PackageName() = %q, want kit", got)
	}
	if got := (Import{Path: "gopkg.in/yaml.v3"}).PackageName(); got != "yaml" {
		t.Errorf("PackageName() = %q, want yaml", got)
	}
}
