package provider

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/broady/variation/ir"
)

const testdataPkg = "github.com/broady/variation/provider/testdata"

func load(t *testing.T, opts SourceOptions) []*ir.Package {
	t.Helper()
	provider := &SourceProvider{}
	pkgs, err := provider.Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return pkgs
}

func findEnum(pkg *ir.Package, name string) *ir.Enum {
	for _, e := range pkg.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func variantNames(e *ir.Enum) []string {
	var names []string
	for _, v := range e.Variants {
		names = append(names, v.Name)
	}
	return names
}

func TestSourceProvider_Shapes(t *testing.T) {
	pkgs := load(t, SourceOptions{Patterns: []string{testdataPkg + "/shapes"}})
	if len(pkgs) != 1 {
		t.Fatalf("expected 1 package, got %d", len(pkgs))
	}
	pkg := pkgs[0]

	if pkg.Name != "shapes" {
		t.Errorf("package name = %q, want shapes", pkg.Name)
	}
	if filepath.Base(pkg.Dir) != "shapes" {
		t.Errorf("package dir = %q", pkg.Dir)
	}

	shape := findEnum(pkg, "Shape")
	if shape == nil {
		t.Fatal("Shape enum not found")
	}
	if shape.Marker != "isShape" {
		t.Errorf("marker = %q, want isShape", shape.Marker)
	}
	if filepath.Base(shape.Source.File) != "shapes.go" || shape.Source.Line == 0 {
		t.Errorf("unexpected source %v", shape.Source)
	}

	want := []*ir.Variant{
		{Name: "Empty", Storage: ir.StorageValue, Members: []string{"isShape"}},
		{Name: "Circle", Storage: ir.StoragePointer, Fields: []ir.Field{{Name: "R", Type: "float64"}}, Members: []string{"R", "isShape", "Area"}},
		{Name: "Rect", Storage: ir.StorageValue, Fields: []ir.Field{{Name: "W", Type: "float64"}, {Name: "H", Type: "float64"}}, Members: []string{"W", "H", "isShape"}},
		{Name: "Label", Storage: ir.StorageValue, Conversion: true, Fields: []ir.Field{{Type: "string"}}, Members: []string{"isShape"}},
	}
	opts := []cmp.Option{
		cmpopts.IgnoreFields(ir.Variant{}, "Source"),
		cmpopts.EquateEmpty(),
	}
	if diff := cmp.Diff(want, shape.Variants, opts...); diff != "" {
		t.Errorf("Shape variants mismatch (-want +got):\n%s", diff)
	}

	shapes := map[string]ir.Shape{"Empty": ir.ShapeUnit, "Circle": ir.ShapeSingle, "Rect": ir.ShapeMulti, "Label": ir.ShapeSingle}
	for _, v := range shape.Variants {
		if got := v.Shape(); got != shapes[v.Name] {
			t.Errorf("%s shape = %v, want %v", v.Name, got, shapes[v.Name])
		}
	}
}

func TestSourceProvider_OptionsAndImports(t *testing.T) {
	pkgs := load(t, SourceOptions{Patterns: []string{testdataPkg + "/shapes"}})
	event := findEnum(pkgs[0], "Event")
	if event == nil {
		t.Fatal("Event enum not found")
	}

	wantOpts := ir.Options{TrimPrefix: "Event", Output: "events_gen.go", NoMut: true}
	if diff := cmp.Diff(wantOpts, event.Options); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
	if event.OutputFile() != "events_gen.go" {
		t.Errorf("OutputFile() = %q", event.OutputFile())
	}

	if diff := cmp.Diff([]string{"EventTick", "EventPayload"}, variantNames(event)); diff != "" {
		t.Errorf("variants mismatch (-want +got):\n%s", diff)
	}

	tick := event.Variant("EventTick")
	if tick.Storage != ir.StoragePointer {
		t.Errorf("EventTick storage = %v, want pointer", tick.Storage)
	}
	wantFields := []ir.Field{{Name: "Duration", Type: "time.Duration"}, {Name: "At", Type: "time.Time"}}
	if diff := cmp.Diff(wantFields, tick.Fields); diff != "" {
		t.Errorf("EventTick fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]ir.Import{{Path: "time", PkgName: "time"}}, tick.Imports); diff != "" {
		t.Errorf("EventTick imports mismatch (-want +got):\n%s", diff)
	}
	if !tick.HasMember("Kind") {
		t.Error("EventTick should report its Kind method as a member")
	}

	payload := event.Variant("EventPayload")
	wantImports := []ir.Import{
		{Name: "stdjson", Path: "encoding/json", PkgName: "json"},
		{Path: "github.com/hashicorp/go-multierror", PkgName: "multierror"},
		{Path: "time", PkgName: "time"},
	}
	if diff := cmp.Diff(wantImports, payload.Imports); diff != "" {
		t.Errorf("EventPayload imports mismatch (-want +got):\n%s", diff)
	}
	if got := payload.Fields[2].Type; got != "func(at time.Time) (n int, err error)" {
		t.Errorf("Fn type = %q", got)
	}
}

func TestSourceProvider_GeneratedFilesSkipped(t *testing.T) {
	pkgs := load(t, SourceOptions{Patterns: []string{testdataPkg + "/shapes"}})
	pkg := pkgs[0]

	if diff := cmp.Diff([]string{"old_variation.go"}, pkg.Generated); diff != "" {
		t.Errorf("generated files mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"events.go", "shapes.go"}, pkg.Sources); diff != "" {
		t.Errorf("source files mismatch (-want +got):\n%s", diff)
	}
	for _, name := range []string{"Shape", "Circle", "EventTick", "notAShape"} {
		if !pkg.IsDeclared(name) {
			t.Errorf("%s should be declared", name)
		}
	}
}

func TestSourceProvider_DotImportAndMarker(t *testing.T) {
	pkgs := load(t, SourceOptions{Patterns: []string{testdataPkg + "/dotted"}})
	step := findEnum(pkgs[0], "Step")
	if step == nil {
		t.Fatal("Step enum not found")
	}
	if step.Marker != "sealed" {
		t.Errorf("marker = %q, want sealed", step.Marker)
	}
	if diff := cmp.Diff([]string{"Wait", "Stop"}, variantNames(step)); diff != "" {
		t.Errorf("variants mismatch (-want +got):\n%s", diff)
	}
	wait := step.Variant("Wait")
	if diff := cmp.Diff([]ir.Import{{Name: ".", Path: "time", PkgName: "time"}}, wait.Imports); diff != "" {
		t.Errorf("Wait imports mismatch (-want +got):\n%s", diff)
	}
}

func TestSourceProvider_SeveralDotImports(t *testing.T) {
	pkgs := load(t, SourceOptions{Patterns: []string{testdataPkg + "/dotmany"}})
	step := findEnum(pkgs[0], "Step")
	if step == nil {
		t.Fatal("Step enum not found")
	}

	tests := []struct {
		variant string
		want    []ir.Import
	}{
		{"Wait", []ir.Import{{Name: ".", Path: "time", PkgName: "time"}}},
		{"Split", []ir.Import{{Name: ".", Path: "strings", PkgName: "strings"}, {Name: ".", Path: "time", PkgName: "time"}}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, step.Variant(tt.variant).Imports); diff != "" {
			t.Errorf("%s imports mismatch (-want +got):\n%s", tt.variant, diff)
		}
	}
}

func TestSourceProvider_PackageNameDiffersFromPath(t *testing.T) {
	pkgs := load(t, SourceOptions{Patterns: []string{testdataPkg + "/renamed"}})
	tool := findEnum(pkgs[0], "Tool")
	if tool == nil {
		t.Fatal("Tool enum not found")
	}
	draw := tool.Variant("Draw")
	want := []ir.Import{{Path: testdataPkg + "/shapekit", PkgName: "kit"}}
	if diff := cmp.Diff(want, draw.Imports); diff != "" {
		t.Errorf("Draw imports mismatch (-want +got):\n%s", diff)
	}
	if draw.Fields[0].Type != "kit.Pen" {
		t.Errorf("Pen type = %q", draw.Fields[0].Type)
	}
}

func TestSourceProvider_BuildTags(t *testing.T) {
	pkgs := load(t, SourceOptions{Patterns: []string{testdataPkg + "/tagged"}})
	if len(pkgs) != 0 {
		t.Fatalf("expected no packages without tags, got %d", len(pkgs))
	}

	pkgs = load(t, SourceOptions{
		Patterns: []string{testdataPkg + "/tagged"},
		Tags:     []string{"variationdemo"},
	})
	if len(pkgs) != 1 {
		t.Fatalf("expected 1 package with tags, got %d", len(pkgs))
	}
	color := findEnum(pkgs[0], "Color")
	if color == nil {
		t.Fatal("Color enum not found")
	}
	if color.BuildConstraint != "//go:build variationdemo" {
		t.Errorf("BuildConstraint = %q", color.BuildConstraint)
	}
	rgb := color.Variant("RGB")
	if rgb == nil || !rgb.Conversion || rgb.Fields[0].Type != "[3]uint8" {
		t.Errorf("unexpected RGB variant: %+v", rgb)
	}
}

func TestSourceProvider_NoPackages(t *testing.T) {
	provider := &SourceProvider{}
	_, err := provider.Load(context.Background(), SourceOptions{})
	if err == nil {
		t.Fatal("expected error for empty patterns")
	}
}

func TestSourceProvider_NonexistentPackage(t *testing.T) {
	provider := &SourceProvider{}
	_, err := provider.Load(context.Background(), SourceOptions{
		Patterns: []string{testdataPkg + "/doesnotexist"},
	})
	if err == nil {
		t.Fatal("expected error for nonexistent package")
	}
}

// writeModule creates a throwaway module holding a single package.
func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv("GOWORK", "off")

	dir := t.TempDir()
	files["go.mod"] = "module example.com/enums\n\ngo 1.21\n"
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestSourceProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name: "not an interface",
			src: `package enums
//variation:enum
type Shape struct{}
`,
			wantErr: "want an interface type, got struct",
		},
		{
			name: "generic enum",
			src: `package enums
//variation:enum
type Shape[T any] interface{ isShape() }
`,
			wantErr: "generic enums are not supported",
		},
		{
			name: "alias enum",
			src: `package enums
type base interface{ isShape() }
//variation:enum
type Shape = base
`,
			wantErr: "type aliases are not supported",
		},
		{
			name: "no marker",
			src: `package enums
//variation:enum
type Shape interface{ Area() float64 }
`,
			wantErr: "has no marker method",
		},
		{
			name: "ambiguous marker",
			src: `package enums
//variation:enum
type Shape interface{ isShape(); sealed() }
`,
			wantErr: "several marker candidates (isShape, sealed)",
		},
		{
			name: "marker with arguments",
			src: `package enums
//variation:enum marker=Area
type Shape interface{ Area() float64 }
`,
			wantErr: "must take no arguments and return nothing",
		},
		{
			name: "unknown marker",
			src: `package enums
//variation:enum marker=isThing
type Shape interface{ isShape() }
`,
			wantErr: "has no method isThing",
		},
		{
			name: "no variants",
			src: `package enums
//variation:enum
type Shape interface{ isShape() }
`,
			wantErr: "has no variants",
		},
		{
			name: "generic variant",
			src: `package enums
//variation:enum
type Shape interface{ isShape() }
type Box[T any] struct{ V T }
func (Box[T]) isShape() {}
`,
			wantErr: "generic variants are not supported",
		},
		{
			name: "interface variant",
			src: `package enums
//variation:enum
type Shape interface{ isShape() }
type Other interface{ isShape() }
func (Other) isShape() {}
`,
			wantErr: "interface types cannot be variants",
		},
		{
			name: "unresolved qualifier",
			src: `package enums
//variation:enum
type Shape interface{ isShape() }
type Circle struct{ R big.Float }
func (Circle) isShape() {}
`,
			wantErr: `cannot resolve package qualifier "big"`,
		},
		{
			name: "dangling directive",
			src: `package enums
//variation:enum
func f() {}
`,
			wantErr: "must be followed by a type declaration",
		},
		{
			name: "bad option",
			src: `package enums
//variation:enum color=red
type Shape interface{ isShape() }
`,
			wantErr: `unknown option "color"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeModule(t, map[string]string{"enums.go": tt.src})
			provider := &SourceProvider{}
			_, err := provider.Load(context.Background(), SourceOptions{
				Patterns: []string{"."},
				Dir:      dir,
			})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}
