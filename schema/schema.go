// Package schema holds the structure of a generated builder library: every
// generated type and the builder functions callable on it.
//
// The structure grows monotonically during a run and is persisted at the end
// so later, independent runs can load it and avoid emitting builders that an
// earlier library already provides.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownClass is returned when a function is added to a class that
	// was never registered.
	ErrUnknownClass = errors.New("schema: unknown class")

	// ErrDuplicateFunction is returned when a function is added twice under
	// the same class. Callers guard with ContainsFunction first.
	ErrDuplicateFunction = errors.New("schema: duplicate function")

	// ErrInvalidStructure is returned when a persisted structure is
	// inconsistent.
	ErrInvalidStructure = errors.New("schema: invalid structure")
)

// AttributeKind classifies how an attribute is rendered in a builder.
type AttributeKind string

const (
	// KindPrimitive passes the declared builtin type through.
	KindPrimitive AttributeKind = "primitive"
	// KindOwnerRef is a typed reference to the owning generated type.
	KindOwnerRef AttributeKind = "ref-owner"
	// KindPathRef is a typed reference to the designated path type.
	KindPathRef AttributeKind = "ref-path"
	// KindString is the fallback for every other attribute.
	KindString AttributeKind = "string"
)

// AttributeDescriptor is a builder parameter. Type is the primitive type
// name, the qualified referenced type, or "string".
type AttributeDescriptor struct {
	Name string        `json:"name"`
	Kind AttributeKind `json:"kind"`
	Type string        `json:"type"`
}

// DSLFunction is a builder function declared on a class. Name is the tag
// and Builder the Go name of the deferred form; the immediate form is
// Builder + "With".
type DSLFunction struct {
	Name         string                         `json:"name"`
	Builder      string                         `json:"builder,omitempty"`
	Package      string                         `json:"package"`
	Attributes   map[string]AttributeDescriptor `json:"attributes"`
	InitReceiver string                         `json:"initReceiver"`
}

// Attribute looks up an attribute case-insensitively.
func (f *DSLFunction) Attribute(name string) (AttributeDescriptor, bool) {
	a, ok := f.Attributes[strings.ToLower(name)]
	return a, ok
}

// DSLClass is a generated type together with the builders callable on it.
// Function keys are lower-cased tags and therefore unique case-insensitively.
type DSLClass struct {
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
	// Capability is set on container classes only.
	Capability string                  `json:"capability,omitempty"`
	Traits     []string                `json:"traits"`
	Functions  map[string]*DSLFunction `json:"functions"`
}

// NewContainerClass creates the class of the container for capability.
func NewContainerClass(name, capability string) *DSLClass {
	c := NewClass(name, "", nil)
	c.Capability = capability
	return c
}

// NewClass creates a class without functions. source is the task definition
// identifier the class was generated from; it is empty for containers and
// runtime types.
func NewClass(name, source string, traits []string) *DSLClass {
	if traits == nil {
		traits = []string{}
	}
	return &DSLClass{
		Name:      name,
		Source:    source,
		Traits:    traits,
		Functions: map[string]*DSLFunction{},
	}
}

// ContainsFunction reports whether a builder for tag exists on the class.
func (c *DSLClass) ContainsFunction(tag string) bool {
	_, ok := c.Functions[strings.ToLower(tag)]
	return ok
}

// Function returns the builder for tag.
func (c *DSLClass) Function(tag string) (*DSLFunction, bool) {
	f, ok := c.Functions[strings.ToLower(tag)]
	return f, ok
}

// FunctionTags returns the lower-cased tags sorted.
func (c *DSLClass) FunctionTags() []string {
	out := make([]string, 0, len(c.Functions))
	for k := range c.Functions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Structure maps generated type names to classes. Runtime is the import
// path of the runtime package the generated types were built against.
type Structure struct {
	Runtime string               `json:"runtime,omitempty"`
	Classes map[string]*DSLClass `json:"classes"`
}

// New returns an empty structure.
func New() *Structure {
	return &Structure{Classes: map[string]*DSLClass{}}
}

// Resolve reports whether a class is registered under name.
func (s *Structure) Resolve(name string) bool {
	_, ok := s.Classes[name]
	return ok
}

// Class returns the class registered under name.
func (s *Structure) Class(name string) (*DSLClass, bool) {
	c, ok := s.Classes[name]
	return c, ok
}

// Register adds a class unless one is already registered under its name.
// It reports whether the class was added.
func (s *Structure) Register(c *DSLClass) bool {
	if _, ok := s.Classes[c.Name]; ok {
		return false
	}
	s.Classes[c.Name] = c
	return true
}

// ContainsFunction reports whether class already declares a builder for tag.
// Unknown classes contain nothing.
func (s *Structure) ContainsFunction(class, tag string) bool {
	c, ok := s.Classes[class]
	return ok && c.ContainsFunction(tag)
}

// AddFunction declares a builder for tag on class. The builder is rendered
// as the Go function or method builder in package pkg, takes attrs and
// produces instances of produced.
func (s *Structure) AddFunction(class, tag, builder, pkg string, attrs []AttributeDescriptor, produced string) error {
	c, ok := s.Classes[class]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	key := strings.ToLower(tag)
	if _, dup := c.Functions[key]; dup {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateFunction, class, tag)
	}
	m := make(map[string]AttributeDescriptor, len(attrs))
	for _, a := range attrs {
		m[strings.ToLower(a.Name)] = a
	}
	c.Functions[key] = &DSLFunction{
		Name:         tag,
		Builder:      builder,
		Package:      pkg,
		Attributes:   m,
		InitReceiver: produced,
	}
	return nil
}

// Function returns the builder for tag declared on class.
func (s *Structure) Function(class, tag string) (*DSLFunction, bool) {
	c, ok := s.Classes[class]
	if !ok {
		return nil, false
	}
	return c.Function(tag)
}

// BySource returns the class generated from the task definition id.
func (s *Structure) BySource(id string) (*DSLClass, bool) {
	for _, c := range s.Classes {
		if c.Source == id {
			return c, true
		}
	}
	return nil, false
}

// SortedNames returns the class names sorted.
func (s *Structure) SortedNames() []string {
	out := make([]string, 0, len(s.Classes))
	for k := range s.Classes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Merge copies classes and functions from other that s does not have yet.
func (s *Structure) Merge(other *Structure) {
	if other == nil {
		return
	}
	if s.Runtime == "" {
		s.Runtime = other.Runtime
	}
	for name, oc := range other.Classes {
		c, ok := s.Classes[name]
		if !ok {
			c = NewClass(oc.Name, oc.Source, append([]string(nil), oc.Traits...))
			c.Capability = oc.Capability
			s.Classes[name] = c
		}
		for key, f := range oc.Functions {
			if _, dup := c.Functions[key]; !dup {
				c.Functions[key] = f
			}
		}
	}
}
