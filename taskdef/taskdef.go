// Package taskdef describes introspectable task definitions and the providers
// that produce them.
//
// A TaskDefinition is the immutable answer to "what does this component type
// look like": its attributes, its nested elements, the capabilities it
// implements and a handful of behavioural flags. Providers answer that
// question for a type identifier and report ErrNotFound when they cannot;
// callers treat ErrNotFound as "skip this type", never as a fatal error.
package taskdef

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a type identifier cannot be introspected.
var ErrNotFound = errors.New("taskdef: definition not found")

// ReferenceType is the identifier of the framework reference type. An
// attribute declared with this type points at another definition instance.
const ReferenceType = "taskdef.Reference"

// Attribute is a named, typed attribute of a task definition.
type Attribute struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// NestedElement is a child element a task definition accepts.
type NestedElement struct {
	Tag  string `json:"tag"`
	Type string `json:"type"`
}

// TaskDefinition is the introspected shape of one component type.
type TaskDefinition struct {
	ID           string          `json:"type"`
	Attributes   []Attribute     `json:"attributes"`
	Nested       []NestedElement `json:"nested"`
	Capabilities []string        `json:"capabilities"`

	// Executable reports that the type can run as a task on its own.
	Executable bool `json:"executable"`
	// Container reports that the type hosts arbitrary nested tasks.
	Container bool `json:"container"`
	// TextContainer reports that the type accepts nested character data.
	TextContainer bool `json:"textContainer"`
	// Condition reports that the type evaluates to a boolean.
	Condition bool `json:"condition"`
	// Reference reports that instances can be referenced by id.
	Reference bool `json:"reference"`
}

// TopLevel reports whether the definition may be built directly under the
// root container: it must be executable, evaluable or reference-producing.
func (d *TaskDefinition) TopLevel() bool {
	return d.Executable || d.Condition || d.Reference
}

// NestedTypes returns the distinct nested element types in declaration order.
func (d *TaskDefinition) NestedTypes() []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(d.Nested))
	for _, n := range d.Nested {
		if seen[n.Type] {
			continue
		}
		seen[n.Type] = true
		out = append(out, n.Type)
	}
	return out
}

// Provider introspects type identifiers.
type Provider interface {
	Introspect(id string) (*TaskDefinition, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(id string) (*TaskDefinition, error)

// Introspect implements Provider.
func (f ProviderFunc) Introspect(id string) (*TaskDefinition, error) { return f(id) }

// Static is a Provider backed by a fixed set of definitions.
type Static map[string]*TaskDefinition

// Add registers definitions and returns the provider for chaining.
func (s Static) Add(defs ...*TaskDefinition) Static {
	for _, d := range defs {
		s[d.ID] = d
	}
	return s
}

// Introspect implements Provider.
func (s Static) Introspect(id string) (*TaskDefinition, error) {
	if d, ok := s[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Safe wraps p so that every failure, including a panic while loading or
// linking a type, surfaces as an error wrapping ErrNotFound.
func Safe(p Provider) Provider {
	return ProviderFunc(func(id string) (def *TaskDefinition, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				def = nil
				err = fmt.Errorf("%w: %s: panic: %v", ErrNotFound, id, rec)
			}
		}()
		def, err = p.Introspect(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, id, err)
		}
		if def == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return def, nil
	})
}

// Chain returns a Provider that asks each provider in order and returns the
// first definition found.
func Chain(providers ...Provider) Provider {
	return ProviderFunc(func(id string) (*TaskDefinition, error) {
		var errs []error
		for _, p := range providers {
			def, err := p.Introspect(id)
			if err == nil && def != nil {
				return def, nil
			}
			if err != nil && !errors.Is(err, ErrNotFound) {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, id, errors.Join(errs...))
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
}

var primitives = map[string]bool{
	"bool": true, "byte": true, "rune": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"float32": true, "float64": true,
}

// IsPrimitive reports whether typ is a builtin scalar type that generated
// code can use as is. Strings are not primitives: every non-primitive
// attribute is already rendered as a string.
func IsPrimitive(typ string) bool { return primitives[typ] }
