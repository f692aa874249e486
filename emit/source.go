// Package emit renders generated Go files.
//
// A SourceFile collects declarations for one output file together with the
// import table that shortens every qualified name the declarations mention.
// Bytes assembles the header, package clause, imports and body, and formats
// the result.
package emit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/sghaida/taskdsl/naming"
)

// Generator is written into the header of every generated file.
const Generator = "taskdsl"

// SourceFile is one generated Go file.
type SourceFile struct {
	// Path is relative to the source root ("dslgen/dsl_mkdir.gen.go").
	Path    string
	Package string
	// ImportPath is the import path of the package the file belongs to.
	ImportPath string
	// Source names the inputs the file was generated from.
	Source string

	Imports *naming.ImportTable
	body    bytes.Buffer
}

// NewSourceFile creates an empty file in package pkg with import path
// importPath.
func NewSourceFile(path, pkg, importPath, source string) *SourceFile {
	return &SourceFile{
		Path:       path,
		Package:    pkg,
		ImportPath: importPath,
		Source:     source,
		Imports:    naming.NewImportTable(importPath),
	}
}

// Shorten is a shorthand for f.Imports.Shorten.
func (f *SourceFile) Shorten(qualified string) string { return f.Imports.Shorten(qualified) }

// Append adds raw source to the body.
func (f *SourceFile) Append(s string) { f.body.WriteString(s) }

// Empty reports whether nothing was appended.
func (f *SourceFile) Empty() bool { return f.body.Len() == 0 }

// Body returns the body appended so far.
func (f *SourceFile) Body() string { return f.body.String() }

var headerTpl = template.Must(template.New("header").Parse(`// Code generated by {{.Generator}}; DO NOT EDIT.
// Source: {{.Source}}
// Source-SHA256: {{.Hash}}

package {{.Package}}
{{- if .Imports }}

import (
{{- range .Imports }}
	{{- if .Name }}
	{{ .Name }} "{{ .Path }}"
	{{- else }}
	"{{ .Path }}"
	{{- end }}
{{- end }}
)
{{- end }}
`))

// Raw returns the unformatted file contents.
func (f *SourceFile) Raw() []byte {
	sum := sha256.Sum256(f.body.Bytes())
	var out bytes.Buffer
	// headerTpl only reads fields of a value built here, Execute cannot fail.
	_ = headerTpl.Execute(&out, map[string]any{
		"Generator": Generator,
		"Source":    f.Source,
		"Hash":      hex.EncodeToString(sum[:]),
		"Package":   f.Package,
		"Imports":   f.Imports.Imports(),
	})
	out.WriteString("\n")
	out.Write(f.body.Bytes())
	return out.Bytes()
}

// Bytes returns the formatted file contents. If formatting fails the raw
// contents are returned together with the error so callers can still write
// them for inspection.
func (f *SourceFile) Bytes() ([]byte, error) {
	raw := f.Raw()
	formatted, err := imports.Process(f.Path, raw, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return raw, fmt.Errorf("format %s: %w", f.Path, err)
	}
	return formatted, nil
}
