package dsl

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.go
var sources embed.FS

// Files returns the runtime sources keyed by file name, without tests and
// without this file. The generator writes them next to the generated
// library.
func Files() (map[string][]byte, error) {
	entries, err := fs.ReadDir(sources, ".")
	if err != nil {
		return nil, err
	}
	out := map[string][]byte{}
	for _, e := range entries {
		name := e.Name()
		if name == "embed.go" || strings.HasSuffix(name, "_test.go") {
			continue
		}
		b, err := sources.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out[name] = b
	}
	return out, nil
}

// FileNames returns the names Files returns, sorted.
func FileNames() []string {
	files, err := Files()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(files))
	for name := range files {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
