package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileName is the location of the persisted structure, relative to the build
// output root.
const FileName = "resources/structure.json"

// Encode writes the structure as indented JSON. Map keys are sorted by
// encoding/json, so identical structures encode identically.
func (s *Structure) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode structure: %w", err)
	}
	return nil
}

// Decode reads a structure written by Encode.
func Decode(r io.Reader) (*Structure, error) {
	s := New()
	if err := json.NewDecoder(r).Decode(s); err != nil {
		return nil, fmt.Errorf("decode structure: %w", err)
	}
	if s.Classes == nil {
		s.Classes = map[string]*DSLClass{}
	}
	for name, c := range s.Classes {
		if c == nil {
			delete(s.Classes, name)
			continue
		}
		if c.Name == "" {
			c.Name = name
		}
		if c.Name != name {
			return nil, fmt.Errorf("%w: class %q stored under %q", ErrInvalidStructure, c.Name, name)
		}
		for tag, f := range c.Functions {
			if f == nil {
				delete(c.Functions, tag)
			}
		}
		if c.Functions == nil {
			c.Functions = map[string]*DSLFunction{}
		}
		if c.Traits == nil {
			c.Traits = []string{}
		}
	}
	return s, nil
}

// Save writes the structure to path, creating parent directories.
func (s *Structure) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create structure dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create structure file: %w", err)
	}
	if err := s.Encode(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Load reads a structure saved by Save.
func Load(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open structure: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}
