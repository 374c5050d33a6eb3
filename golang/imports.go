package golang

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/types"
	"sort"
	"strconv"
	"strings"

	"github.com/jhump/gopoet"

	"github.com/broady/variation/ir"
)

// fileImports tracks the packages referenced by the field types of one
// generated file. Packages whose names collide are given aliases.
type fileImports struct {
	imports *gopoet.Imports
	quals   map[string]string // import path -> qualifier in the generated file
	names   map[string]string // import path -> declared package name
	dots    map[string]bool
}

func newFileImports(pkgPath string) *fileImports {
	return &fileImports{
		imports: gopoet.NewImportsFor(pkgPath),
		quals:   make(map[string]string),
		names:   make(map[string]string),
		dots:    make(map[string]bool),
	}
}

// register imports imp and returns the qualifier generated code must use
// for it. The first package registered under a name keeps that name.
func (fi *fileImports) register(imp ir.Import) string {
	if q, ok := fi.quals[imp.Path]; ok {
		return q
	}
	q := strings.TrimSuffix(fi.imports.RegisterImport(imp.Path, imp.LocalName()), ".")
	fi.quals[imp.Path] = q
	fi.names[imp.Path] = imp.PackageName()
	return q
}

// specs renders the import specs of the file, sorted by path. An alias is
// written when the qualifier differs from the package's own name.
func (fi *fileImports) specs() []string {
	paths := make([]string, 0, len(fi.quals)+len(fi.dots))
	for p := range fi.quals {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var specs []string
	for _, p := range paths {
		spec := strconv.Quote(p)
		if q := fi.quals[p]; q != fi.names[p] {
			spec = q + " " + spec
		}
		specs = append(specs, spec)
	}

	dots := make([]string, 0, len(fi.dots))
	for p := range fi.dots {
		dots = append(dots, p)
	}
	sort.Strings(dots)
	for _, p := range dots {
		specs = append(specs, ". "+strconv.Quote(p))
	}
	return specs
}

// qualifiers returns the names the imports bind in the generated file.
func (fi *fileImports) qualifiers() []string {
	out := make([]string, 0, len(fi.quals))
	for _, q := range fi.quals {
		out = append(out, q)
	}
	return out
}

// qualifyEnum registers the imports of every variant of enum and returns a
// copy of enum whose field types use the qualifiers of the generated file.
func qualifyEnum(pkg *ir.Package, enum *ir.Enum) (*ir.Enum, *fileImports, error) {
	fi := newFileImports(pkg.Path)

	qualified := *enum
	qualified.Variants = make([]*ir.Variant, len(enum.Variants))
	for i, v := range enum.Variants {
		renames := make(map[string]string)
		for _, imp := range v.Imports {
			if imp.Name == "." {
				fi.dots[imp.Path] = true
				continue
			}
			if q, local := fi.register(imp), imp.LocalName(); q != local {
				renames[local] = q
			}
		}

		nv := *v
		if len(renames) > 0 {
			nv.Fields = make([]ir.Field, len(v.Fields))
			for j, f := range v.Fields {
				typ, err := qualify(f.Type, renames)
				if err != nil {
					return nil, nil, fmt.Errorf("variant %s: %w", v.Name, err)
				}
				nv.Fields[j] = ir.Field{Name: f.Name, Type: typ}
			}
		}
		qualified.Variants[i] = &nv
	}
	return &qualified, fi, nil
}

// qualify rewrites the package qualifiers of a type expression.
func qualify(typ string, renames map[string]string) (string, error) {
	expr, err := parser.ParseExpr(typ)
	if err != nil {
		return "", fmt.Errorf("parse type %q: %w", typ, err)
	}
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if id, ok := sel.X.(*ast.Ident); ok {
			if q, ok := renames[id.Name]; ok {
				id.Name = q
			}
			return false
		}
		return true
	})
	return types.ExprString(expr), nil
}
