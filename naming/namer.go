package naming

import (
	"strconv"
	"strings"
)

// Namer mints the generated type names of one generation run.
//
// Every wrapper type and every capability container lives in the same output
// package, so names are claimed globally: the first identifier to ask for a
// name gets it, and a later identifier that would mint the same name falls
// back to a name derived from its full (remapped) package.
type Namer struct {
	pkg    string
	prefix string

	byID  map[string]string
	owner map[string]string
}

// NewNamer creates a Namer for the output package with import path pkg.
// sourcePrefix is stripped from identifiers before the package part is used
// to build a fallback name.
func NewNamer(pkg, sourcePrefix string) *Namer {
	return &Namer{
		pkg:    pkg,
		prefix: sourcePrefix,
		byID:   map[string]string{},
		owner:  map[string]string{},
	}
}

// Package returns the import path of the output package.
func (n *Namer) Package() string { return n.pkg }

// ResultName returns the qualified name of the wrapper type generated for
// the source identifier id.
func (n *Namer) ResultName(id string) string {
	return Qualify(n.pkg, n.mint(id, Marker+SimpleName(id), ""))
}

// ContainerName returns the qualified name of the marker type hosting
// builders for capability id.
func (n *Namer) ContainerName(id string) string {
	return Qualify(n.pkg, n.mint("container:"+id, Marker+SimpleName(id)+"Container", id))
}

// Claim pins the name previously minted for id, typically when a schema from
// an earlier run is loaded. Claims for names owned by another id are ignored.
func (n *Namer) Claim(id, qualified string) bool {
	_, ident := SplitQualified(qualified)
	if owner, ok := n.owner[ident]; ok && owner != id {
		return false
	}
	n.byID[id] = ident
	n.owner[ident] = id
	return true
}

// ClaimContainer pins the container name minted for capability id.
func (n *Namer) ClaimContainer(id, qualified string) bool {
	return n.Claim("container:"+id, qualified)
}

func (n *Namer) mint(key, preferred, source string) string {
	if ident, ok := n.byID[key]; ok {
		return ident
	}
	if source == "" {
		source = key
	}
	ident := preferred
	if owner, taken := n.owner[ident]; taken && owner != key {
		ident = n.qualifiedIdent(source, preferred)
		base := ident
		for i := 2; ; i++ {
			if owner, taken := n.owner[ident]; !taken || owner == key {
				break
			}
			ident = base + strconv.Itoa(i)
		}
	}
	n.byID[key] = ident
	n.owner[ident] = key
	return ident
}

// qualifiedIdent inserts the remapped package of source after the marker:
// "a.b.types.Path" with prefix "a.b." becomes "DSLTypesPath".
func (n *Namer) qualifiedIdent(source, preferred string) string {
	pkg := PackageOf(source)
	if n.prefix != "" && strings.HasPrefix(pkg+".", n.prefix) {
		pkg = strings.TrimPrefix(pkg+".", n.prefix)
	} else {
		pkg = "other." + pkg
	}
	return Marker + Export(ToCamel(pkg)) + strings.TrimPrefix(preferred, Marker)
}
