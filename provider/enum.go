package provider

import (
	"fmt"
	"go/ast"
	"go/types"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/broady/variation/internal/directive"
	"github.com/broady/variation/ir"
)

// buildEnum turns an enum directive into an ir.Enum with its variants.
func (b *packageBuilder) buildEnum(d directive.Directive, fi *fileInfo) (*ir.Enum, error) {
	spec := d.Spec
	src := b.source(spec.Name.Pos())
	name := spec.Name.Name

	if spec.Assign.IsValid() {
		return nil, fmt.Errorf("%s: enum %s: type aliases are not supported", src, name)
	}
	if spec.TypeParams.NumFields() > 0 {
		return nil, fmt.Errorf("%s: enum %s: generic enums are not supported", src, name)
	}
	iface, ok := spec.Type.(*ast.InterfaceType)
	if !ok {
		return nil, fmt.Errorf("%s: //variation:enum on %s: want an interface type, got %s", src, name, describeType(spec.Type))
	}

	marker, err := resolveMarker(name, iface, d.Options.Marker)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}

	e := &ir.Enum{
		Name:            name,
		Marker:          marker,
		Options:         d.Options,
		BuildConstraint: fi.constraint,
		Source:          src,
	}

	var result *multierror.Error
	for _, typeName := range b.order {
		if typeName == name {
			continue
		}
		m, ok := b.findMethod(typeName, marker)
		if !ok {
			continue
		}
		v, err := b.buildVariant(e, typeName, m)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		e.Variants = append(e.Variants, v)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	if len(e.Variants) == 0 {
		return nil, fmt.Errorf("%s: enum %s has no variants: no type in package %s implements %s()", src, name, b.pkg.Name, marker)
	}

	return e, nil
}

// resolveMarker finds the method sealing the interface: an unexported method
// without arguments or results, or the one named by the marker option.
func resolveMarker(enum string, iface *ast.InterfaceType, want string) (string, error) {
	var candidates []string
	signatures := make(map[string]bool) // method name -> has marker signature

	for _, field := range iface.Methods.List {
		ft, ok := field.Type.(*ast.FuncType)
		if !ok || len(field.Names) == 0 {
			// embedded interface or type union, e.g. the accessor interface
			continue
		}
		plain := ft.Params.NumFields() == 0 && ft.Results.NumFields() == 0
		for _, n := range field.Names {
			signatures[n.Name] = plain
			if plain && !ast.IsExported(n.Name) {
				candidates = append(candidates, n.Name)
			}
		}
	}

	if want != "" {
		plain, ok := signatures[want]
		switch {
		case !ok:
			return "", fmt.Errorf("enum %s has no method %s (given by marker=%s)", enum, want, want)
		case !plain:
			return "", fmt.Errorf("enum %s: marker method %s must take no arguments and return nothing", enum, want)
		}
		return want, nil
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("enum %s has no marker method: declare an unexported method without arguments or results, such as is%s()", enum, exportedName(enum))
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("enum %s has several marker candidates (%s): select one with marker=<name>", enum, strings.Join(candidates, ", "))
	}
}

// findMethod looks up the marker method declared on typeName.
func (b *packageBuilder) findMethod(typeName, marker string) (method, bool) {
	for _, m := range b.methods[typeName] {
		if m.name == marker && m.params == 0 && m.results == 0 {
			return m, true
		}
	}
	return method{}, false
}

// buildVariant classifies a type implementing the marker method.
func (b *packageBuilder) buildVariant(e *ir.Enum, name string, marker method) (*ir.Variant, error) {
	td, ok := b.types[name]
	if !ok {
		return nil, fmt.Errorf("variant %s of enum %s: type declaration not found", name, e.Name)
	}
	spec := td.spec
	src := b.source(spec.Name.Pos())

	if spec.Assign.IsValid() {
		return nil, fmt.Errorf("%s: variant %s of enum %s: type aliases are not supported", src, name, e.Name)
	}
	if spec.TypeParams.NumFields() > 0 {
		return nil, fmt.Errorf("%s: variant %s of enum %s: generic variants are not supported", src, name, e.Name)
	}

	v := &ir.Variant{
		Name:   name,
		Source: src,
	}
	if marker.pointer {
		v.Storage = ir.StoragePointer
	}

	var exprs []ast.Expr
	switch t := spec.Type.(type) {
	case *ast.StructType:
		for _, field := range t.Fields.List {
			typ := types.ExprString(field.Type)
			if len(field.Names) == 0 {
				fname := embeddedName(field.Type)
				v.Fields = append(v.Fields, ir.Field{Name: fname, Type: typ})
				v.Members = append(v.Members, fname)
				exprs = append(exprs, field.Type)
				continue
			}
			used := false
			for _, n := range field.Names {
				if n.Name == "_" {
					continue
				}
				used = true
				v.Fields = append(v.Fields, ir.Field{Name: n.Name, Type: typ})
				v.Members = append(v.Members, n.Name)
			}
			if used {
				exprs = append(exprs, field.Type)
			}
		}
	case *ast.InterfaceType:
		return nil, fmt.Errorf("%s: variant %s of enum %s: interface types cannot be variants", src, name, e.Name)
	default:
		v.Conversion = true
		v.Fields = []ir.Field{{Type: types.ExprString(spec.Type)}}
		exprs = append(exprs, spec.Type)
	}

	for _, m := range b.methods[name] {
		v.Members = append(v.Members, m.name)
	}

	imports, err := b.resolveImports(td.file, exprs)
	if err != nil {
		return nil, fmt.Errorf("%s: variant %s of enum %s: %w", src, name, e.Name, err)
	}
	v.Imports = imports

	return v, nil
}

// embeddedName returns the implicit field name of an embedded field.
func embeddedName(expr ast.Expr) string {
	switch x := expr.(type) {
	case *ast.StarExpr:
		return embeddedName(x.X)
	case *ast.SelectorExpr:
		return x.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(x.X)
	case *ast.IndexListExpr:
		return embeddedName(x.X)
	case *ast.Ident:
		return x.Name
	default:
		return types.ExprString(expr)
	}
}

func describeType(expr ast.Expr) string {
	switch expr.(type) {
	case *ast.StructType:
		return "struct"
	case *ast.FuncType:
		return "func"
	case *ast.MapType:
		return "map"
	case *ast.ArrayType:
		return "array or slice"
	case *ast.ChanType:
		return "chan"
	default:
		return types.ExprString(expr)
	}
}

func exportedName(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
