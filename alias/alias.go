// Package alias reads alias sources: files that map element tags to task
// definition identifiers.
//
// Two shapes exist. Flat sources (.properties) are plain tag=type pairs and
// every entry is top-level. Structured sources (.xml, .yaml, .toml) carry a
// list of entries with an explicit scope flag.
package alias

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/magiconair/properties"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for sources with an unknown extension.
var ErrUnsupportedFormat = errors.New("alias: unsupported format")

// Alias maps a tag to a task definition identifier. TopLevel aliases get a
// builder on the root container.
type Alias struct {
	Tag      string
	Type     string
	TopLevel bool
}

// Supported reports whether name has an extension Parse understands.
func Supported(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".properties", ".xml", ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

// Parse reads the alias source name from r, choosing the format by
// extension. Entries are returned in source order.
func Parse(name string, r io.Reader) ([]Alias, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	var out []Alias
	switch strings.ToLower(path.Ext(name)) {
	case ".properties":
		out, err = parseProperties(data)
	case ".xml":
		out, err = parseXML(data)
	case ".yaml", ".yml":
		out, err = parseYAML(data)
	case ".toml":
		out, err = parseTOML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return clean(out), nil
}

func parseProperties(data []byte) ([]Alias, error) {
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	out := make([]Alias, 0, p.Len())
	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		out = append(out, Alias{Tag: k, Type: v, TopLevel: true})
	}
	return out, nil
}

type xmlEntry struct {
	XMLName   xml.Name
	Name      string `xml:"name,attr"`
	Tag       string `xml:"tag,attr"`
	ClassName string `xml:"classname,attr"`
	Type      string `xml:"type,attr"`
	TopLevel  string `xml:"toplevel,attr"`
}

type xmlDoc struct {
	Entries []xmlEntry `xml:",any"`
}

// parseXML accepts <alias>, <taskdef> and <typedef> entries. Tags come from
// "tag" or "name", types from "type" or "classname". Typedefs default to
// nested scope, everything else to top-level.
func parseXML(data []byte) ([]Alias, error) {
	var doc xmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make([]Alias, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		a := Alias{Tag: first(e.Tag, e.Name), Type: first(e.Type, e.ClassName), TopLevel: e.XMLName.Local != "typedef"}
		if e.TopLevel != "" {
			a.TopLevel = strings.EqualFold(e.TopLevel, "true")
		}
		out = append(out, a)
	}
	return out, nil
}

type yamlEntry struct {
	Tag      string `yaml:"tag"`
	Type     string `yaml:"type"`
	TopLevel *bool  `yaml:"toplevel"`
}

func parseYAML(data []byte) ([]Alias, error) {
	var doc struct {
		Aliases []yamlEntry `yaml:"aliases"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make([]Alias, 0, len(doc.Aliases))
	for _, e := range doc.Aliases {
		out = append(out, Alias{Tag: e.Tag, Type: e.Type, TopLevel: e.TopLevel == nil || *e.TopLevel})
	}
	return out, nil
}

type tomlEntry struct {
	Tag      string `toml:"tag"`
	Type     string `toml:"type"`
	TopLevel *bool  `toml:"toplevel"`
}

func parseTOML(data []byte) ([]Alias, error) {
	var doc struct {
		Alias []tomlEntry `toml:"alias"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make([]Alias, 0, len(doc.Alias))
	for _, e := range doc.Alias {
		out = append(out, Alias{Tag: e.Tag, Type: e.Type, TopLevel: e.TopLevel == nil || *e.TopLevel})
	}
	return out, nil
}

func first(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// clean trims entries and drops the ones without tag or type.
func clean(in []Alias) []Alias {
	out := in[:0]
	for _, a := range in {
		a.Tag = strings.TrimSpace(a.Tag)
		a.Type = strings.TrimSpace(a.Type)
		if a.Tag == "" || a.Type == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Opener opens an alias source by name.
type Opener func(name string) (io.ReadCloser, error)

// Load reads every source in order through open. Sources that do not exist
// are logged as warnings and skipped; any other failure is returned.
func Load(names []string, open Opener, logger *log.Logger) ([]Alias, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	var out []Alias
	for _, name := range names {
		aliases, err := loadOne(name, open)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("alias source not found, skipping", "source", name)
			continue
		}
		if err != nil {
			return nil, err
		}
		logger.Debug("alias source loaded", "source", name, "aliases", len(aliases))
		out = append(out, aliases...)
	}
	return out, nil
}

func loadOne(name string, open Opener) ([]Alias, error) {
	rc, err := open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return Parse(name, rc)
}
