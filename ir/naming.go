package ir

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// GeneratedComment is the first line of every generated file. Files starting
// with it are ignored when reading a package.
const GeneratedComment = "// Code generated by variation. DO NOT EDIT."

// OutputSuffix is appended to the snake-cased enum name to form the default
// output file name.
const OutputSuffix = "_variation.go"

// InterfaceName returns the name of the generated accessor interface.
func (e *Enum) InterfaceName() string {
	return e.Name + "Variation"
}

// OutputFile returns the base name of the file generated for the enum.
func (e *Enum) OutputFile() string {
	if e.Options.Output != "" {
		return e.Options.Output
	}
	return SnakeCase(e.Name) + OutputSuffix
}

// Suffix returns the method-name suffix for a variant: the variant name with
// the configured prefix trimmed and its first rune upper-cased.
func (e *Enum) Suffix(v *Variant) string {
	return exportName(strings.TrimPrefix(v.Name, e.Options.TrimPrefix))
}

// IsMethod returns the name of the existence predicate for v.
func (e *Enum) IsMethod(v *Variant) string { return "Is" + e.Suffix(v) }

// AsMethod returns the name of the value extractor for v.
func (e *Enum) AsMethod(v *Variant) string { return "As" + e.Suffix(v) }

// AsMutMethod returns the name of the pointer extractor for v.
func (e *Enum) AsMutMethod(v *Variant) string { return "As" + e.Suffix(v) + "Mut" }

// IntoMethod returns the name of the consuming converter for v.
func (e *Enum) IntoMethod(v *Variant) string { return "Into" + e.Suffix(v) }

// HasMut reports whether an AsXMut method is generated for v.
func (e *Enum) HasMut(v *Variant) bool {
	return !e.Options.NoMut && v.Storage == StoragePointer && v.Shape() != ShapeUnit
}

// Methods returns the accessor method names generated for v, in emission order.
func (e *Enum) Methods(v *Variant) []string {
	names := []string{e.IsMethod(v)}
	if v.Shape() == ShapeUnit {
		return names
	}
	names = append(names, e.AsMethod(v))
	if e.HasMut(v) {
		names = append(names, e.AsMutMethod(v))
	}
	return append(names, e.IntoMethod(v))
}

// MethodSet returns every method of the accessor interface. Each variant
// implements all of them.
func (e *Enum) MethodSet() []string {
	var names []string
	for _, v := range e.Variants {
		names = append(names, e.Methods(v)...)
	}
	return names
}

func exportName(s string) string {
	if s == "" {
		return ""
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

// SnakeCase converts a Go identifier to snake_case, keeping acronyms together:
// "HTTPServer" becomes "http_server" and "shapeKind" becomes "shape_kind".
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	underscore := func() {
		out := b.String()
		if len(out) > 0 && out[len(out)-1] != '_' {
			b.WriteByte('_')
		}
	}

	for i, r := range runes {
		switch {
		case r == '_':
			underscore()
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					underscore()
				}
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "_")
}
