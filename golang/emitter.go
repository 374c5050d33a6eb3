// Package golang renders accessor methods for enums as Go source.
package golang

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/token"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/imports"

	"github.com/broady/variation/ir"
)

//go:embed variation.go.tmpl
var fileTemplateText string

var fileTemplate = template.Must(template.New("variation").Parse(fileTemplateText))

// File is a generated Go source file.
type File struct {
	// Name is the base name of the file, written next to the enum.
	Name string

	// Enum is the enum the file was generated for.
	Enum string

	// Content is the formatted source.
	Content []byte
}

// Emitter renders Go accessor code for the enums of a package.
type Emitter struct {
	// NoFormat skips gofmt and import grouping of the output. The
	// unformatted output is still valid Go.
	NoFormat bool
}

// Emit renders one file per enum of pkg. The package should have passed
// [ir.Package.Validate].
func (e *Emitter) Emit(pkg *ir.Package) ([]File, error) {
	var files []File
	outputs := make(map[string]string)

	for _, enum := range pkg.Enums {
		name := enum.OutputFile()
		if prev, ok := outputs[name]; ok {
			return nil, fmt.Errorf("enums %s and %s both write %s", prev, enum.Name, name)
		}
		outputs[name] = enum.Name

		content, err := e.emitEnum(pkg, enum)
		if err != nil {
			return nil, fmt.Errorf("enum %s: %w", enum.Name, err)
		}
		files = append(files, File{Name: name, Enum: enum.Name, Content: content})
	}
	return files, nil
}

func (e *Emitter) emitEnum(pkg *ir.Package, enum *ir.Enum) ([]byte, error) {
	data, err := newFileData(pkg, enum)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	if e.NoFormat {
		return buf.Bytes(), nil
	}

	path := filepath.Join(pkg.Dir, enum.OutputFile())
	out, err := imports.Process(path, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("format %s: %w\n%s", enum.OutputFile(), err, buf.Bytes())
	}
	return out, nil
}

// fileData is the template input for one generated file.
type fileData struct {
	Header     string
	Source     string
	Constraint string
	Package    string
	Imports    []string
	Enum       string
	Interface  string
	Methods    []interfaceMethod
	Checks     []string
	Variants   []variantBlock
}

type interfaceMethod struct {
	Doc       []string
	Name      string
	Signature string
}

type variantBlock struct {
	Name  string
	Funcs []funcDecl
}

type funcDecl struct {
	Recv      string
	Name      string
	Signature string
	Body      []string
}

func newFileData(pkg *ir.Package, enum *ir.Enum) (*fileData, error) {
	enum, imps, err := qualifyEnum(pkg, enum)
	if err != nil {
		return nil, err
	}

	data := &fileData{
		Header:     ir.GeneratedComment,
		Constraint: enum.BuildConstraint,
		Package:    pkg.Name,
		Imports:    imps.specs(),
		Enum:       enum.Name,
		Interface:  enum.InterfaceName(),
	}
	if enum.Source.File != "" {
		data.Source = filepath.Base(enum.Source.File)
	}

	for _, v := range enum.Variants {
		data.Methods = append(data.Methods, interfaceMethods(enum, v)...)
	}

	if !enum.Options.NoCheck {
		for _, v := range enum.Variants {
			data.Checks = append(data.Checks, zeroValue(v))
		}
	}

	reserved := reservedNames(pkg, imps)
	for _, w := range enum.Variants {
		block := variantBlock{Name: w.Name}
		recv := receiverName(w.Name, reserved)
		recvDecl := recv + " " + w.Name
		if w.Storage == ir.StoragePointer {
			recvDecl = recv + " *" + w.Name
		}
		for _, v := range enum.Variants {
			block.Funcs = append(block.Funcs, accessorFuncs(enum, w, v, recv, recvDecl)...)
		}
		data.Variants = append(data.Variants, block)
	}

	return data, nil
}

// reservedNames are identifiers a receiver must not shadow.
func reservedNames(pkg *ir.Package, imps *fileImports) map[string]bool {
	reserved := make(map[string]bool)
	for _, name := range pkg.Declared {
		reserved[name] = true
	}
	for _, q := range imps.qualifiers() {
		reserved[q] = true
	}
	return reserved
}

// receiverName returns the lower-cased first letter of the type name, or
// "recv" when that would shadow a package-level name or an import.
func receiverName(typeName string, reserved map[string]bool) string {
	r, _ := utf8.DecodeRuneInString(typeName)
	name := string(unicode.ToLower(r))
	if name == "_" || !token.IsIdentifier(name) || reserved[name] {
		name = "recv"
	}
	for reserved[name] {
		name += "_"
	}
	return name
}

// zeroValue returns an expression of the variant's storage type usable in
// an interface assertion.
func zeroValue(v *ir.Variant) string {
	switch {
	case v.Storage == ir.StoragePointer:
		return "(*" + v.Name + ")(nil)"
	case v.Conversion:
		return "*new(" + v.Name + ")"
	default:
		return v.Name + "{}"
	}
}

func interfaceMethods(enum *ir.Enum, v *ir.Variant) []interfaceMethod {
	a := article(v.Name)
	methods := []interfaceMethod{{
		Doc:       []string{fmt.Sprintf("%s reports whether the %s is %s %s.", enum.IsMethod(v), enum.Name, a, v.Name)},
		Name:      enum.IsMethod(v),
		Signature: "() bool",
	}}
	if v.Shape() == ir.ShapeUnit {
		return methods
	}

	methods = append(methods, interfaceMethod{
		Doc: []string{
			fmt.Sprintf("%s returns the %s of %s %s and true, or zero values", enum.AsMethod(v), contents(v), a, v.Name),
			"and false if the " + enum.Name + " holds another variant.",
		},
		Name:      enum.AsMethod(v),
		Signature: asSignature(v, false),
	})
	if enum.HasMut(v) {
		methods = append(methods, interfaceMethod{
			Doc: []string{
				fmt.Sprintf("%s is like %s but returns pointers into the variant.", enum.AsMutMethod(v), enum.AsMethod(v)),
			},
			Name:      enum.AsMutMethod(v),
			Signature: asSignature(v, true),
		})
	}
	methods = append(methods, interfaceMethod{
		Doc: []string{
			fmt.Sprintf("%s returns the %s of %s %s.", enum.IntoMethod(v), contents(v), a, v.Name),
			fmt.Sprintf("It panics if the %s is not %s %s.", enum.Name, a, v.Name),
		},
		Name:      enum.IntoMethod(v),
		Signature: intoSignature(v),
	})
	return methods
}

func contents(v *ir.Variant) string {
	if v.Shape() == ir.ShapeMulti {
		return "fields"
	}
	return "value"
}

func article(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if strings.ContainsRune("AEIOUaeiou", r) {
		return "an"
	}
	return "a"
}

// asSignature renders "() (_ T0, _ T1, _ bool)". Blank result names allow
// a naked return of zero values.
func asSignature(v *ir.Variant, mut bool) string {
	var results []string
	for _, f := range v.Fields {
		typ := f.Type
		if mut {
			typ = "*" + typ
		}
		results = append(results, "_ "+typ)
	}
	results = append(results, "_ bool")
	return "() (" + strings.Join(results, ", ") + ")"
}

// intoSignature renders "() T" or "() (T0, T1)".
func intoSignature(v *ir.Variant) string {
	if len(v.Fields) == 1 {
		return "() " + v.Fields[0].Type
	}
	var results []string
	for _, f := range v.Fields {
		results = append(results, f.Type)
	}
	return "() (" + strings.Join(results, ", ") + ")"
}

// accessorFuncs renders the methods for variant v declared on variant w.
func accessorFuncs(enum *ir.Enum, w, v *ir.Variant, recv, recvDecl string) []funcDecl {
	same := w == v
	decl := func(name, sig string, body ...string) funcDecl {
		return funcDecl{Recv: recvDecl, Name: name, Signature: sig, Body: body}
	}

	funcs := []funcDecl{decl(enum.IsMethod(v), "() bool", fmt.Sprintf("return %t", same))}
	if v.Shape() == ir.ShapeUnit {
		return funcs
	}

	nilCheck := func(body ...string) []string {
		if w.Storage != ir.StoragePointer {
			return body
		}
		return append([]string{"if " + recv + " == nil {", "\treturn", "}"}, body...)
	}

	// As
	if same {
		values := append(fieldValues(v, recv), "true")
		funcs = append(funcs, decl(enum.AsMethod(v), asSignature(v, false), nilCheck("return "+strings.Join(values, ", "))...))
	} else {
		funcs = append(funcs, decl(enum.AsMethod(v), asSignature(v, false), "return"))
	}

	// AsMut
	if enum.HasMut(v) {
		if same {
			values := append(fieldPointers(v, recv), "true")
			funcs = append(funcs, decl(enum.AsMutMethod(v), asSignature(v, true), nilCheck("return "+strings.Join(values, ", "))...))
		} else {
			funcs = append(funcs, decl(enum.AsMutMethod(v), asSignature(v, true), "return"))
		}
	}

	// Into
	if same {
		funcs = append(funcs, decl(enum.IntoMethod(v), intoSignature(v), "return "+strings.Join(fieldValues(v, recv), ", ")))
	} else {
		msg := fmt.Sprintf("variation: %s.%s called on %s variant", enum.Name, enum.IntoMethod(v), w.Name)
		funcs = append(funcs, decl(enum.IntoMethod(v), intoSignature(v), fmt.Sprintf("panic(%q)", msg)))
	}

	return funcs
}

// fieldValues returns expressions reading each inner value of v from recv.
func fieldValues(v *ir.Variant, recv string) []string {
	if v.Conversion {
		src := recv
		if v.Storage == ir.StoragePointer {
			src = "*" + recv
		}
		return []string{conversionType(v.Fields[0].Type) + "(" + src + ")"}
	}
	values := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		values[i] = recv + "." + f.Name
	}
	return values
}

// fieldPointers returns expressions addressing each inner value of v.
func fieldPointers(v *ir.Variant, recv string) []string {
	if v.Conversion {
		return []string{"(*" + v.Fields[0].Type + ")(" + recv + ")"}
	}
	values := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		values[i] = "&" + recv + "." + f.Name
	}
	return values
}

// conversionType parenthesizes type expressions that cannot be used as a
// conversion function as written.
func conversionType(typ string) string {
	for _, prefix := range []string{"*", "<-", "func", "chan"} {
		if strings.HasPrefix(typ, prefix) {
			return "(" + typ + ")"
		}
	}
	return typ
}
