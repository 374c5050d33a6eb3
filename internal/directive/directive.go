// Package directive parses variation directives from Go source files.
//
// Directives are line comments placed in the doc comment of a type
// declaration:
//
//	//variation:enum [option ...]
//	type Shape interface {
//		isShape()
//	}
//
// The enum directive marks a sealed interface whose implementations are the
// enum's variants. Options are key or key=value pairs; see [ParseOptions].
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"github.com/broady/variation/ir"
)

// Prefix starts every variation directive.
const Prefix = "//variation:"

// Kind represents the type of directive.
type Kind string

const (
	KindEnum Kind = "enum"
)

// Directive represents a parsed variation directive.
type Directive struct {
	Kind     Kind           // enum
	TypeName string         // name of the annotated type
	Spec     *ast.TypeSpec  // annotated declaration
	Options  ir.Options     // options given after the directive name
	Pos      token.Position // source location of the directive comment
}

// ScanFile extracts directives from a single file.
//
// Returns an error if:
//   - A directive name is unknown
//   - A directive is not attached to a type declaration
//   - A type carries more than one enum directive
//   - Directive options are malformed
func ScanFile(fset *token.FileSet, f *ast.File) ([]Directive, error) {
	var directives []Directive
	consumed := make(map[*ast.Comment]bool)

	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}

		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)

			// A lone spec's doc comment attaches to the GenDecl
			doc := ts.Doc
			if doc == nil && !gd.Lparen.IsValid() {
				doc = gd.Doc
			}
			if doc == nil {
				continue
			}

			var found *Directive
			for _, c := range doc.List {
				if !strings.HasPrefix(c.Text, Prefix) {
					continue
				}
				consumed[c] = true

				pos := fset.Position(c.Pos())
				d, err := parseComment(c.Text, pos)
				if err != nil {
					return nil, err
				}
				if found != nil {
					return nil, fmt.Errorf("%s: type %s has more than one //variation:%s directive", pos, ts.Name.Name, d.Kind)
				}
				d.TypeName = ts.Name.Name
				d.Spec = ts
				found = &d
			}
			if found != nil {
				directives = append(directives, *found)
			}
		}
	}

	// Check for unmatched directives
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if strings.HasPrefix(c.Text, Prefix) && !consumed[c] {
				return nil, fmt.Errorf("%s: %s directive must be followed by a type declaration", fset.Position(c.Pos()), strings.Fields(c.Text)[0])
			}
		}
	}

	return directives, nil
}

// parseComment parses the text of a single directive comment.
func parseComment(text string, pos token.Position) (Directive, error) {
	name := strings.TrimPrefix(text, Prefix)
	args := ""
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		name, args = name[:i], name[i+1:]
	}

	switch Kind(name) {
	case KindEnum:
		opts, err := ParseOptions(args)
		if err != nil {
			return Directive{}, fmt.Errorf("%s: //variation:enum: %w", pos, err)
		}
		return Directive{Kind: KindEnum, Options: opts, Pos: pos}, nil
	default:
		return Directive{}, fmt.Errorf("%s: unknown directive //variation:%s", pos, name)
	}
}
