// Package naming maps source type identifiers and qualified Go names to the
// short identifiers used inside generated files.
//
// Two tables live here:
//
//   - Namer: one per generation run. It owns the result-name transform that
//     turns a task definition identifier into the name of its generated
//     wrapper type, and guarantees that two identifiers never mint the same
//     wrapper name inside the output package.
//   - ImportTable: one per generated file. It turns qualified Go names
//     ("example.com/x/dsl.TaskContainer") into local references
//     ("dsl.TaskContainer") and records the imports the file needs.
package naming

import (
	"path"
	"strings"
	"unicode"
)

// Marker is inserted before the simple name of every generated type.
const Marker = "DSL"

// SplitQualified splits a qualified Go name into its import path and
// identifier. Builtin names ("bool", "string") have an empty import path.
func SplitQualified(qualified string) (pkg, name string) {
	slash := strings.LastIndex(qualified, "/")
	dot := strings.LastIndex(qualified, ".")
	if dot < 0 || dot < slash {
		return "", qualified
	}
	return qualified[:dot], qualified[dot+1:]
}

// Qualify joins an import path and an identifier.
func Qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// SimpleName returns the last element of a source type identifier with inner
// type separators removed ("a.b.Outer$Inner" -> "OuterInner").
func SimpleName(id string) string {
	_, name := splitSource(id)
	return strings.ReplaceAll(name, "$", "")
}

// PackageOf returns the package part of a source type identifier.
func PackageOf(id string) string {
	pkg, _ := splitSource(id)
	return pkg
}

func splitSource(id string) (pkg, name string) {
	slash := strings.LastIndex(id, "/")
	dot := strings.LastIndex(id, ".")
	if dot < 0 || dot < slash {
		return "", id
	}
	return id[:dot], id[dot+1:]
}

// ToCamel converts a tag such as "selector-x" or "path_ref" to lower camel
// case ("selectorX", "pathRef"). Characters that cannot appear in a Go
// identifier are dropped.
func ToCamel(s string) string {
	var sb strings.Builder
	upper := false
	for _, r := range s {
		switch {
		case r == '-' || r == '_' || r == '.' || r == ' ' || r == '$' || r == '/':
			upper = sb.Len() > 0
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if sb.Len() == 0 && unicode.IsDigit(r) {
				sb.WriteByte('_')
			}
			if upper {
				r = unicode.ToUpper(r)
				upper = false
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Export upper-cases the first rune of s.
func Export(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// LowerFirst lower-cases the first rune of s ("Mkdir" -> "mkdir").
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// ToSnake converts an identifier to snake case, keeping acronyms together
// ("DSLMkdir" -> "dsl_mkdir", "DSLFileSetContainer" -> "dsl_file_set_container").
func ToSnake(s string) string {
	r := []rune(s)
	var sb strings.Builder
	for i, c := range r {
		if unicode.IsUpper(c) && i > 0 {
			prevLower := unicode.IsLower(r[i-1]) || unicode.IsDigit(r[i-1])
			nextLower := i+1 < len(r) && unicode.IsLower(r[i+1])
			if prevLower || (unicode.IsUpper(r[i-1]) && nextLower) {
				sb.WriteByte('_')
			}
		}
		sb.WriteRune(unicode.ToLower(c))
	}
	return sb.String()
}

// packageIdent turns the last element of an import path into a valid
// package identifier.
func packageIdent(importPath string) string {
	base := path.Base(importPath)
	base = strings.TrimSuffix(base, "-go")
	id := strings.ToLower(ToCamel(base))
	if id == "" || id == "_" {
		return "pkg"
	}
	return id
}

// pathIdent derives an identifier from a whole import path; it is the
// collision fallback for packageIdent.
func pathIdent(importPath string) string {
	parts := strings.FieldsFunc(importPath, func(r rune) bool {
		return r == '/' || r == '.' || r == '-'
	})
	for i, p := range parts {
		parts[i] = strings.ToLower(ToCamel(p))
	}
	return strings.Join(parts, "_")
}

// stdRoots are the first path elements of every standard library package.
var stdRoots = map[string]bool{
	"archive": true, "bufio": true, "builtin": true, "bytes": true, "cmp": true,
	"compress": true, "container": true, "context": true, "crypto": true,
	"database": true, "debug": true, "embed": true, "encoding": true,
	"errors": true, "expvar": true, "flag": true, "fmt": true, "go": true,
	"hash": true, "html": true, "image": true, "index": true, "io": true,
	"iter": true, "log": true, "maps": true, "math": true, "mime": true,
	"net": true, "os": true, "path": true, "plugin": true, "reflect": true,
	"regexp": true, "runtime": true, "slices": true, "sort": true,
	"strconv": true, "strings": true, "structs": true, "sync": true,
	"syscall": true, "testing": true, "text": true, "time": true,
	"unicode": true, "unique": true, "unsafe": true, "weak": true,
}

// IsStdlib reports whether importPath is a standard library package.
// Module paths without a dot in their first element ("acme/tasks") are
// not, unless that element is one of the standard library roots.
func IsStdlib(importPath string) bool {
	if importPath == "" {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return stdRoots[first]
}
