// Package bundle opens component bundles: directories or zip archives that
// carry task definition descriptors and alias sources.
//
// Entries are always visited in bundle-entry order, which is the lexical walk
// order for directories and the central-directory order for archives. That
// order decides which definitions get default aliases first.
package bundle

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/sghaida/taskdsl/alias"
	"github.com/sghaida/taskdsl/taskdef"
)

// Bundle is one opened component bundle.
type Bundle struct {
	path    string
	fsys    fs.FS
	closer  io.Closer
	entries []string

	ids  []string
	defs taskdef.Static
}

// Open opens a directory or zip archive and loads its descriptors.
func Open(path string) (*Bundle, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}

	b := &Bundle{path: path, defs: taskdef.Static{}}
	if st.IsDir() {
		b.fsys = os.DirFS(path)
		err = fs.WalkDir(b.fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				b.entries = append(b.entries, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk bundle %s: %w", path, err)
		}
	} else {
		zr, err := zip.OpenReader(path)
		if err != nil {
			return nil, fmt.Errorf("open bundle %s: %w", path, err)
		}
		b.fsys, b.closer = zr, zr
		for _, f := range zr.File {
			if !strings.HasSuffix(f.Name, "/") {
				b.entries = append(b.entries, f.Name)
			}
		}
	}

	if err := b.loadDescriptors(); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Bundle) loadDescriptors() error {
	for _, name := range b.entries {
		if !IsDescriptor(name) {
			continue
		}
		data, err := fs.ReadFile(b.fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		tasks, err := ParseDescriptor(name, data)
		if err != nil {
			return err
		}
		for i := range tasks {
			def := tasks[i]
			if _, dup := b.defs[def.ID]; !dup {
				b.ids = append(b.ids, def.ID)
			}
			b.defs[def.ID] = &def
		}
	}
	return nil
}

// Path returns the bundle location.
func (b *Bundle) Path() string { return b.path }

// Entries returns the file entries in bundle-entry order.
func (b *Bundle) Entries() []string { return append([]string(nil), b.entries...) }

// Definitions returns the declared task definition ids in entry order.
func (b *Bundle) Definitions() []string { return append([]string(nil), b.ids...) }

// Provider exposes the declared definitions.
func (b *Bundle) Provider() taskdef.Provider { return b.defs }

// AliasSources returns the entries that are alias sources, in entry order.
func (b *Bundle) AliasSources() []string {
	var out []string
	for _, name := range b.entries {
		if alias.Supported(name) && !IsDescriptor(name) {
			out = append(out, name)
		}
	}
	return out
}

// Open opens an entry.
func (b *Bundle) Open(name string) (io.ReadCloser, error) {
	return b.fsys.Open(filepath.ToSlash(name))
}

// Close releases the archive, if any.
func (b *Bundle) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// Classpath is an ordered list of bundles.
type Classpath []*Bundle

// Load opens every bundle path in order. Paths that do not exist are logged
// and skipped.
func Load(paths []string, logger *log.Logger) (Classpath, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	var cp Classpath
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		b, err := Open(p)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("bundle not found, skipping", "bundle", p)
			continue
		}
		if err != nil {
			_ = cp.Close()
			return nil, err
		}
		logger.Debug("bundle opened", "bundle", p, "definitions", len(b.ids))
		cp = append(cp, b)
	}
	return cp, nil
}

// SplitList splits a classpath argument on the OS path list separator.
func SplitList(s string) []string {
	return filepath.SplitList(s)
}

// Provider returns a provider that asks the bundles in order.
func (c Classpath) Provider() taskdef.Provider {
	providers := make([]taskdef.Provider, 0, len(c))
	for _, b := range c {
		providers = append(providers, b.Provider())
	}
	return taskdef.Chain(providers...)
}

// Definitions returns every declared id, bundle by bundle, without
// duplicates.
func (c Classpath) Definitions() []string {
	seen := map[string]bool{}
	var out []string
	for _, b := range c {
		for _, id := range b.ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// AliasSources returns the alias sources of every bundle.
func (c Classpath) AliasSources() []string {
	var out []string
	for _, b := range c {
		out = append(out, b.AliasSources()...)
	}
	return out
}

// Opener opens alias sources from the bundles first and from the file
// system second.
func (c Classpath) Opener() alias.Opener {
	return func(name string) (io.ReadCloser, error) {
		for _, b := range c {
			rc, err := b.Open(name)
			if err == nil {
				return rc, nil
			}
		}
		return os.Open(name)
	}
}

// Close closes every bundle.
func (c Classpath) Close() error {
	var errs []error
	for _, b := range c {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
