package taskdef

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Reference is the field type Go task structs use for attributes that point
// at another instance. The registry reports it as ReferenceType.
type Reference struct {
	ID string
}

// Marker interfaces a registered task type may implement. The registry turns
// them into TaskDefinition flags.
type (
	// Executable tasks run on their own.
	Executable interface{ Execute() error }
	// Evaluable tasks are conditions.
	Evaluable interface{ Eval() (bool, error) }
	// Container tasks host arbitrary nested tasks.
	Container interface{ AddTask(task any) }
	// TextContainer tasks accept nested character data.
	TextContainer interface{ AddText(text string) }
	// Identifiable tasks can be referenced by id.
	Identifiable interface{ SetID(id string) }
)

// ErrRegistryPanic is wrapped when reflecting over a registered type panics.
var ErrRegistryPanic = errors.New("taskdef: panic during introspection")

var (
	referenceType     = reflect.TypeFor[Reference]()
	executableType    = reflect.TypeFor[Executable]()
	evaluableType     = reflect.TypeFor[Evaluable]()
	containerType     = reflect.TypeFor[Container]()
	textContainerType = reflect.TypeFor[TextContainer]()
	identifiableType  = reflect.TypeFor[Identifiable]()
)

// Registry is a Provider over Go types registered at build time. It is the
// Go rendition of runtime type introspection: struct fields tagged `dsl`
// become attributes or nested elements, registered capability interfaces the
// type implements become capability tags.
//
//	type Copy struct {
//		ToDir    string      `dsl:"todir"`
//		Verbose  bool        `dsl:"verbose"`
//		FileSets []*FileSet  `dsl:"fileset,nested"`
//	}
type Registry struct {
	types map[string]reflect.Type
	order []string
	caps  []reflect.Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: map[string]reflect.Type{}}
}

// Provide registers the type of v (a struct or pointer to struct) and
// returns the registry for chaining.
func (r *Registry) Provide(v any) *Registry {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return r
	}
	id := TypeID(t)
	if _, ok := r.types[id]; !ok {
		r.order = append(r.order, id)
	}
	r.types[id] = t
	return r
}

// Capability registers the interface type T as a capability.
func Capability[T any](r *Registry) *Registry {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Interface {
		panic(fmt.Errorf("taskdef: capability %s is not an interface", t))
	}
	r.caps = append(r.caps, t)
	return r
}

// IDs returns the registered identifiers in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Get returns the registered type for id.
func (r *Registry) Get(id string) (reflect.Type, bool) {
	t, ok := r.types[id]
	return t, ok
}

// Introspect implements Provider and converts panics into errors.
func (r *Registry) Introspect(id string) (def *TaskDefinition, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			def = nil
			err = fmt.Errorf("%w: %w: %v", ErrNotFound, ErrRegistryPanic, rec)
		}
	}()

	t, ok := r.types[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.describe(id, t), nil
}

func (r *Registry) describe(id string, t reflect.Type) *TaskDefinition {
	ptr := reflect.PointerTo(t)
	def := &TaskDefinition{
		ID:            id,
		Executable:    ptr.Implements(executableType),
		Condition:     ptr.Implements(evaluableType),
		Container:     ptr.Implements(containerType),
		TextContainer: ptr.Implements(textContainerType),
		Reference:     ptr.Implements(identifiableType),
	}
	for _, c := range r.caps {
		if ptr.Implements(c) {
			def.Capabilities = append(def.Capabilities, TypeID(c))
		}
	}
	r.fields(def, t)
	return def
}

func (r *Registry) fields(def *TaskDefinition, t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct && f.Tag.Get("dsl") == "" {
			r.fields(def, f.Type)
			continue
		}
		tag, ok := f.Tag.Lookup("dsl")
		if !ok || tag == "-" || !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		if opts == "nested" {
			def.Nested = append(def.Nested, NestedElement{Tag: name, Type: TypeID(elemType(f.Type))})
			continue
		}
		def.Attributes = append(def.Attributes, Attribute{Name: name, Type: attrType(f.Type)})
	}
}

// TypeID returns the identifier the registry uses for t.
func TypeID(t reflect.Type) string {
	if t == referenceType {
		return ReferenceType
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func attrType(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == referenceType {
		return ReferenceType
	}
	if t.PkgPath() == "" && IsPrimitive(t.Kind().String()) {
		return t.Kind().String()
	}
	return TypeID(t)
}

func elemType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
