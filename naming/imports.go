package naming

import (
	"path"
	"sort"
	"strconv"
)

// Import is one entry of a generated file's import block.
// Name is empty when the package is referenced by its default identifier.
type Import struct {
	Name string
	Path string
}

// ImportTable tracks the imports of a single generated file.
// Entries are only ever added during the file's lifetime.
type ImportTable struct {
	self    string
	byPath  map[string]string
	byAlias map[string]string
}

// NewImportTable creates an import table for a file that belongs to the
// package with import path self.
func NewImportTable(self string) *ImportTable {
	return &ImportTable{
		self:    self,
		byPath:  map[string]string{},
		byAlias: map[string]string{},
	}
}

// Shorten returns the local reference for a qualified name and records the
// import it needs. Names from the file's own package and builtin names are
// returned bare.
//
// The alias for an import defaults to its last path element. If another
// import already holds that alias, the alias is derived from the full
// import path instead, so two distinct packages never share an identifier.
func (t *ImportTable) Shorten(qualified string) string {
	pkg, name := SplitQualified(qualified)
	if pkg == "" || pkg == t.self {
		return name
	}
	return t.alias(pkg) + "." + name
}

func (t *ImportTable) alias(pkg string) string {
	if a, ok := t.byPath[pkg]; ok {
		return a
	}
	alias := packageIdent(pkg)
	if owner, taken := t.byAlias[alias]; taken && owner != pkg {
		alias = pathIdent(pkg)
		base := alias
		for i := 2; ; i++ {
			if _, taken := t.byAlias[alias]; !taken {
				break
			}
			alias = base + strconv.Itoa(i)
		}
	}
	t.byPath[pkg] = alias
	t.byAlias[alias] = pkg
	return alias
}

// Len reports how many imports were recorded.
func (t *ImportTable) Len() int { return len(t.byPath) }

// Imports returns the recorded imports sorted by path. Name is set only when
// the alias differs from the package's default identifier.
func (t *ImportTable) Imports() []Import {
	out := make([]Import, 0, len(t.byPath))
	for p, a := range t.byPath {
		gi := Import{Path: p}
		if a != defaultIdent(p) {
			gi.Name = a
		}
		out = append(out, gi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// defaultIdent is the identifier the Go toolchain assumes for an import
// path without an explicit name, assuming the package clause matches the
// last path element.
func defaultIdent(importPath string) string {
	return path.Base(importPath)
}
