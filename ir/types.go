// Package ir defines the intermediate representation of sum-type enums
// extracted from Go source. Providers build it, emitters turn it into Go
// accessor methods.
package ir

import "fmt"

// Shape classifies a variant by the number of inner values it carries.
type Shape int

const (
	ShapeUnit   Shape = iota // no inner values
	ShapeSingle              // exactly one inner value
	ShapeMulti               // two or more inner values
)

// String returns the string representation of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeUnit:
		return "unit"
	case ShapeSingle:
		return "single"
	case ShapeMulti:
		return "multi"
	default:
		return "unknown"
	}
}

// Storage describes how a variant is held inside the enum interface.
type Storage int

const (
	// StorageValue variants implement the marker method with a value receiver.
	StorageValue Storage = iota
	// StoragePointer variants implement the marker method with a pointer
	// receiver, so the enum holds a *V and its fields are addressable.
	StoragePointer
)

// String returns the string representation of the storage.
func (s Storage) String() string {
	switch s {
	case StorageValue:
		return "value"
	case StoragePointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// String formats the location as file:line:col.
func (s Source) String() string {
	if s.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Import is an import required by generated code.
type Import struct {
	// Name is the explicit import name, or empty to use the package's own name.
	// "." marks a dot import.
	Name string

	// Path is the import path.
	Path string

	// PkgName is the name the imported package declares, when known. It can
	// differ from the last element of Path.
	PkgName string
}

// Options are the per-enum settings given on the //variation:enum directive.
type Options struct {
	// TrimPrefix is removed from variant names before building method names.
	TrimPrefix string `schema:"trimprefix" validate:"omitempty,goident"`

	// Marker selects the marker method when the interface declares several
	// candidates.
	Marker string `schema:"marker" validate:"omitempty,goident"`

	// Output overrides the generated file name.
	Output string `schema:"output" validate:"omitempty,gofile"`

	// NoCheck suppresses the compile-time interface assertions.
	NoCheck bool `schema:"nocheck"`

	// NoMut suppresses every AsXMut method.
	NoMut bool `schema:"nomut"`
}

// Field is one inner value of a variant.
type Field struct {
	// Name is the struct field name. Empty for non-struct variants.
	Name string

	// Type is the Go type expression, as written in source.
	Type string
}

// Variant is a named type implementing an enum's marker method.
type Variant struct {
	// Name is the Go type name.
	Name string

	// Storage tells whether the enum holds V or *V.
	Storage Storage

	// Fields are the inner values in declaration order.
	Fields []Field

	// Conversion is set for non-struct variants (type Integer int32). Their
	// single inner value is obtained by converting the variant to Fields[0].Type.
	Conversion bool

	// Imports are the packages referenced by the field types.
	Imports []Import

	// Members are the field and method names already declared on the type.
	Members []string

	// Source location in Go code.
	Source Source
}

// Shape classifies the variant by field count.
func (v *Variant) Shape() Shape {
	switch len(v.Fields) {
	case 0:
		return ShapeUnit
	case 1:
		return ShapeSingle
	default:
		return ShapeMulti
	}
}

// HasMember reports whether name is already declared on the variant type.
func (v *Variant) HasMember(name string) bool {
	for _, m := range v.Members {
		if m == name {
			return true
		}
	}
	return false
}

// Enum is a sealed interface annotated with //variation:enum.
type Enum struct {
	// Name is the interface type name.
	Name string

	// Marker is the unexported method sealing the interface.
	Marker string

	// Options from the directive.
	Options Options

	// Variants in declaration order.
	Variants []*Variant

	// BuildConstraint is the //go:build line of the declaring file, if any.
	BuildConstraint string

	// Source location in Go code.
	Source Source
}

// Variant returns the variant with the given type name, or nil.
func (e *Enum) Variant(name string) *Variant {
	for _, v := range e.Variants {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Package is a Go package holding one or more enums.
type Package struct {
	// Path is the import path.
	Path string

	// Name is the package name.
	Name string

	// Dir is the directory containing the package sources.
	Dir string

	// Enums found in the package, in declaration order.
	Enums []*Enum

	// Declared holds every package-level identifier declared by hand-written
	// files.
	Declared []string

	// Generated lists the base names of files previously written by variation.
	Generated []string

	// Sources lists the base names of hand-written Go files, including those
	// excluded by build constraints. No enum may write to one of them.
	Sources []string
}

// IsSource reports whether name is a hand-written file of the package.
func (p *Package) IsSource(name string) bool {
	for _, s := range p.Sources {
		if s == name {
			return true
		}
	}
	return false
}

// IsDeclared reports whether a hand-written file declares name at package level.
func (p *Package) IsDeclared(name string) bool {
	for _, d := range p.Declared {
		if d == name {
			return true
		}
	}
	return false
}
