// Package provider extracts enum definitions from Go source code and
// converts them to the intermediate representation.
package provider

import (
	"context"
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/token"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/tools/go/packages"

	"github.com/broady/variation/internal/directive"
	"github.com/broady/variation/ir"
)

// SourceProvider extracts enums by parsing Go source code.
//
// Enum packages are never type-checked: an enum interface may embed its
// accessor interface before that interface has been generated. Only the
// names of imported packages are loaded, and the types of dot-imported
// packages when a file has several of them.
type SourceProvider struct {
	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

// SourceOptions configures source-based extraction.
type SourceOptions struct {
	// Patterns are package patterns in go command syntax ("." or "./...").
	Patterns []string

	// Dir is the directory patterns are resolved in. Empty means the
	// current directory.
	Dir string

	// Tags are build tags used when selecting files.
	Tags []string

	// Env overrides the environment of the underlying go command.
	Env []string
}

// Load analyzes the matched packages and returns those declaring enums or
// holding previously generated files. Packages are sorted by import path.
func (p *SourceProvider) Load(ctx context.Context, opts SourceOptions) ([]*ir.Package, error) {
	if len(opts.Patterns) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedImports | packages.NeedDeps,
		Dir:     opts.Dir,
		Env:     opts.Env,
	}
	if len(opts.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.Tags, ",")}
	}

	pkgs, err := packages.Load(cfg, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching %v", opts.Patterns)
	}

	scopes := &scopeLoader{cfg: *cfg}

	var result *multierror.Error
	var out []*ir.Package
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			result = multierror.Append(result, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors[0]))
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ipkg, err := buildPackage(pkg, scopes)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if ipkg == nil {
			logger.Debug("no enums", slog.String("package", pkg.PkgPath))
			continue
		}

		for _, e := range ipkg.Enums {
			logger.Debug("found enum",
				slog.String("package", ipkg.Path),
				slog.String("enum", e.Name),
				slog.String("marker", e.Marker),
				slog.Int("variants", len(e.Variants)),
			)
		}
		out = append(out, ipkg)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, multierror.Flatten(err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// fileInfo is a parsed hand-written file.
type fileInfo struct {
	name       string
	syntax     *ast.File
	constraint string
}

// typeDecl is a package-level type declaration.
type typeDecl struct {
	spec *ast.TypeSpec
	file *fileInfo
}

// method is a method declaration, keyed by receiver base type name.
type method struct {
	name    string
	pointer bool
	params  int
	results int
}

// packageBuilder accumulates declarations of one package.
type packageBuilder struct {
	fset     *token.FileSet
	pkg      *ir.Package
	types    map[string]*typeDecl
	order    []string // type names in declaration order
	methods  map[string][]method
	declared map[string]bool
	imports  map[string]string // import path -> declared package name
	scopes   *scopeLoader
}

type pendingEnum struct {
	directive directive.Directive
	file      *fileInfo
}

// buildPackage parses the package files and extracts its enums. It returns
// nil when the package has neither enums nor generated files.
func buildPackage(pkg *packages.Package, scopes *scopeLoader) (*ir.Package, error) {
	b := &packageBuilder{
		fset: token.NewFileSet(),
		pkg: &ir.Package{
			Path: pkg.PkgPath,
			Name: pkg.Name,
		},
		types:    make(map[string]*typeDecl),
		methods:  make(map[string][]method),
		declared: make(map[string]bool),
		imports:  make(map[string]string),
		scopes:   scopes,
	}
	if len(pkg.GoFiles) > 0 {
		b.pkg.Dir = filepath.Dir(pkg.GoFiles[0])
	}
	for path, imp := range pkg.Imports {
		if imp.Name != "" {
			b.imports[path] = imp.Name
		}
	}

	var result *multierror.Error
	var pending []pendingEnum
	for _, filename := range pkg.GoFiles {
		f, err := parser.ParseFile(b.fset, filename, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}

		if isGenerated(f) {
			b.pkg.Generated = append(b.pkg.Generated, filepath.Base(filename))
			continue
		}
		b.pkg.Sources = append(b.pkg.Sources, filepath.Base(filename))

		fi := &fileInfo{name: filename, syntax: f, constraint: buildConstraint(f)}
		b.addFile(fi)

		directives, err := directive.ScanFile(b.fset, f)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		for _, d := range directives {
			pending = append(pending, pendingEnum{directive: d, file: fi})
		}
	}

	// Files excluded by build constraints are not scanned, but an enum must
	// not overwrite them either.
	for _, filename := range pkg.IgnoredFiles {
		if !strings.HasSuffix(filename, ".go") {
			continue
		}
		f, err := parser.ParseFile(b.fset, filename, nil, parser.PackageClauseOnly|parser.ParseComments)
		if err != nil || isGenerated(f) {
			continue
		}
		b.pkg.Sources = append(b.pkg.Sources, filepath.Base(filename))
	}
	sort.Strings(b.pkg.Sources)

	for _, pe := range pending {
		e, err := b.buildEnum(pe.directive, pe.file)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		b.pkg.Enums = append(b.pkg.Enums, e)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	if len(b.pkg.Enums) == 0 && len(b.pkg.Generated) == 0 {
		return nil, nil
	}

	for name := range b.declared {
		b.pkg.Declared = append(b.pkg.Declared, name)
	}
	sort.Strings(b.pkg.Declared)

	return b.pkg, nil
}

// addFile records the declarations of a hand-written file.
func (b *packageBuilder) addFile(fi *fileInfo) {
	for _, decl := range fi.syntax.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					b.types[s.Name.Name] = &typeDecl{spec: s, file: fi}
					b.order = append(b.order, s.Name.Name)
					b.declare(s.Name.Name)
				case *ast.ValueSpec:
					for _, n := range s.Names {
						b.declare(n.Name)
					}
				}
			}
		case *ast.FuncDecl:
			if d.Recv == nil || len(d.Recv.List) == 0 {
				if d.Name.Name != "init" {
					b.declare(d.Name.Name)
				}
				continue
			}
			recv, pointer := receiverBase(d.Recv.List[0].Type)
			if recv == "" {
				continue
			}
			b.methods[recv] = append(b.methods[recv], method{
				name:    d.Name.Name,
				pointer: pointer,
				params:  d.Type.Params.NumFields(),
				results: d.Type.Results.NumFields(),
			})
		}
	}
}

func (b *packageBuilder) declare(name string) {
	if name != "_" {
		b.declared[name] = true
	}
}

func (b *packageBuilder) source(pos token.Pos) ir.Source {
	p := b.fset.Position(pos)
	return ir.Source{File: p.Filename, Line: p.Line, Column: p.Column}
}

// receiverBase returns the base type name of a method receiver and whether
// the receiver is a pointer. Type parameters are dropped.
func receiverBase(expr ast.Expr) (string, bool) {
	pointer := false
	if star, ok := expr.(*ast.StarExpr); ok {
		pointer = true
		expr = star.X
	}
	if paren, ok := expr.(*ast.ParenExpr); ok {
		return receiverBase(paren.X)
	}
	switch x := expr.(type) {
	case *ast.Ident:
		return x.Name, pointer
	case *ast.IndexExpr:
		if id, ok := x.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	case *ast.IndexListExpr:
		if id, ok := x.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	}
	return "", false
}

// isGenerated reports whether f was written by variation.
func isGenerated(f *ast.File) bool {
	for _, cg := range f.Comments {
		if cg.Pos() >= f.Package {
			break
		}
		for _, c := range cg.List {
			if c.Text == ir.GeneratedComment {
				return true
			}
		}
	}
	return false
}

// buildConstraint returns the //go:build line of f, if any.
func buildConstraint(f *ast.File) string {
	for _, cg := range f.Comments {
		if cg.Pos() >= f.Package {
			break
		}
		for _, c := range cg.List {
			if constraint.IsGoBuild(c.Text) {
				return c.Text
			}
		}
	}
	return ""
}
