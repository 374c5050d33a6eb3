package ir

import (
	"path"
	"strconv"
	"strings"
	"unicode"
)

// LocalName returns the name the import binds in a file: the explicit name,
// the declared package name, or the name assumed from the import path.
func (i Import) LocalName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.PackageName()
}

// PackageName returns the name the imported package declares, falling back
// to the name assumed from the import path.
func (i Import) PackageName() string {
	if i.PkgName != "" {
		return i.PkgName
	}
	return AssumedName(i.Path)
}

// AssumedName returns the package name an import path is assumed to declare:
// the last path element, skipping a major version suffix, without a "go-"
// prefix, and cut at the first character that cannot appear in an
// identifier. goimports follows the same rule.
func AssumedName(importPath string) string {
	base := path.Base(importPath)
	if strings.HasPrefix(base, "v") {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			if dir := path.Dir(importPath); dir != "." {
				base = path.Base(dir)
			}
		}
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexFunc(base, notIdentifier); i >= 0 {
		base = base[:i]
	}
	return base
}

func notIdentifier(r rune) bool {
	return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9' || r == '_' ||
		r >= 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}
