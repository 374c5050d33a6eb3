package provider

import (
	"fmt"
	"go/ast"
	"go/types"
	"sort"
	"strconv"

	"golang.org/x/tools/go/packages"

	"github.com/broady/variation/ir"
)

// resolveImports returns the imports of fi needed to spell the given type
// expressions in another file of the same package.
func (b *packageBuilder) resolveImports(fi *fileInfo, exprs []ast.Expr) ([]ir.Import, error) {
	qualifiers := make(map[string]bool)
	bare := make(map[string]bool)

	for _, expr := range exprs {
		skip := make(map[*ast.Ident]bool)
		ast.Inspect(expr, func(n ast.Node) bool {
			switch x := n.(type) {
			case *ast.Field:
				// parameter, result and field names are not type references
				for _, name := range x.Names {
					skip[name] = true
				}
			case *ast.SelectorExpr:
				if id, ok := x.X.(*ast.Ident); ok {
					qualifiers[id.Name] = true
					return false
				}
			case *ast.Ident:
				if skip[x] || b.declared[x.Name] || types.Universe.Lookup(x.Name) != nil {
					return true
				}
				bare[x.Name] = true
			}
			return true
		})
	}

	seen := make(map[ir.Import]bool)
	var out []ir.Import
	add := func(imp ir.Import) {
		if !seen[imp] {
			seen[imp] = true
			out = append(out, imp)
		}
	}

	for q := range qualifiers {
		imp, ok := b.lookupImport(fi.syntax, q)
		if !ok {
			return nil, fmt.Errorf("cannot resolve package qualifier %q in %s", q, fi.name)
		}
		add(imp)
	}

	// An identifier declared neither here nor in the universe scope comes from
	// a dot import.
	if len(bare) > 0 {
		dots, err := b.dotImports(fi, bare)
		if err != nil {
			return nil, err
		}
		for _, imp := range dots {
			add(imp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// dotImports returns the dot imports of fi that declare one of names. A
// single dot import is taken as is. With several, the imported packages are
// type-checked to find which of them export the names.
func (b *packageBuilder) dotImports(fi *fileInfo, names map[string]bool) ([]ir.Import, error) {
	var dots []ir.Import
	for _, spec := range fi.syntax.Imports {
		if spec.Name == nil || spec.Name.Name != "." {
			continue
		}
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		dots = append(dots, ir.Import{Name: ".", Path: p, PkgName: b.imports[p]})
	}
	if len(dots) <= 1 {
		return dots, nil
	}

	var used []ir.Import
	for _, imp := range dots {
		scope, err := b.scopes.scope(imp.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fi.name, err)
		}
		for name := range names {
			if obj := scope.Lookup(name); obj != nil && obj.Exported() {
				used = append(used, imp)
				break
			}
		}
	}
	return used, nil
}

// lookupImport finds the import of f bound to the package name q.
func (b *packageBuilder) lookupImport(f *ast.File, q string) (ir.Import, bool) {
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imp := ir.Import{Path: p, PkgName: b.imports[p]}
		if spec.Name != nil {
			if spec.Name.Name == q {
				imp.Name = q
				return imp, true
			}
			continue
		}
		if imp.PackageName() == q {
			return imp, true
		}
	}
	return ir.Import{}, false
}

// scopeLoader type-checks dot-imported packages on demand.
type scopeLoader struct {
	cfg    packages.Config
	scopes map[string]*types.Scope
}

// scope returns the package scope of the package at path.
func (l *scopeLoader) scope(path string) (*types.Scope, error) {
	if s, ok := l.scopes[path]; ok {
		return s, nil
	}

	cfg := l.cfg
	cfg.Mode = packages.NeedName | packages.NeedTypes
	pkgs, err := packages.Load(&cfg, path)
	if err != nil {
		return nil, fmt.Errorf("load dot import %q: %w", path, err)
	}
	if len(pkgs) != 1 || pkgs[0].Types == nil {
		return nil, fmt.Errorf("load dot import %q: package not found", path)
	}
	if len(pkgs[0].Errors) > 0 {
		return nil, fmt.Errorf("load dot import %q: %v", path, pkgs[0].Errors[0])
	}

	if l.scopes == nil {
		l.scopes = make(map[string]*types.Scope)
	}
	l.scopes[path] = pkgs[0].Types.Scope()
	return l.scopes[path], nil
}
