// Package builder models generated builder functions independently of the
// syntax they are rendered in.
//
// A Decl says which builder exists (name, parent, parameters), what its body
// does (an ordered list of Steps) and what it returns. The emit package turns
// Decls into Go source.
package builder

import (
	"strings"

	"github.com/sghaida/taskdsl/naming"
	"github.com/sghaida/taskdsl/schema"
	"github.com/sghaida/taskdsl/taskdef"
)

// ParentKind says where a builder is callable.
type ParentKind int

const (
	// ParentRoot builders hang off the root task container. Nodes built
	// there are executed as soon as they are configured.
	ParentRoot ParentKind = iota
	// ParentContainer builders hang off a capability container.
	ParentContainer
	// ParentOwner builders are methods on the wrapper type that declares the
	// nested element.
	ParentOwner
)

// Parent is the receiver of a builder.
type Parent struct {
	Kind ParentKind
	// Type is the qualified name of the receiver type.
	Type string
}

// Outermost reports whether nodes built under this parent run immediately.
func (p Parent) Outermost() bool { return p.Kind == ParentRoot }

// Form is one of the two call shapes of a builder.
type Form int

const (
	// Immediate takes an initializer block.
	Immediate Form = iota
	// Deferred omits the block and forwards to Immediate with an empty one.
	Deferred
)

// ReturnPolicy is what a builder returns.
type ReturnPolicy int

const (
	ReturnNothing ReturnPolicy = iota
	ReturnBool
	ReturnReference
)

// ReturnFor applies the return precedence: conditions return their
// evaluation, reference-producing definitions return a typed reference,
// everything else returns nothing.
func ReturnFor(def *taskdef.TaskDefinition) ReturnPolicy {
	switch {
	case def.Condition:
		return ReturnBool
	case def.Reference:
		return ReturnReference
	default:
		return ReturnNothing
	}
}

// Step is one statement of an immediate builder body.
type Step int

const (
	// StepConstruct creates the node bound to the parent's project and target.
	StepConstruct Step = iota
	// StepAssignAttributes copies every provided attribute onto the node.
	StepAssignAttributes
	// StepRunInit runs the initializer block against the node.
	StepRunInit
	// StepObtainReference wraps the node in a typed reference.
	StepObtainReference
	// StepConfigure validates and attaches the node.
	StepConfigure
	// StepRunContainer runs the block against a container node so nested
	// builder calls attach to it.
	StepRunContainer
	// StepExecute runs the node.
	StepExecute
	// StepReturn returns the evaluation result or the reference.
	StepReturn
	// StepForward calls the immediate form with an empty block.
	StepForward
)

// Decl is one builder function.
type Decl struct {
	Tag    string
	Name   string
	Form   Form
	Parent Parent

	// Element is the qualified generated type the builder constructs.
	Element string
	// Source is the task definition identifier behind Element.
	Source string
	Params []schema.AttributeDescriptor
	// InitReceiver is the qualified type the initializer block receives.
	InitReceiver string
	Container    bool
	Steps        []Step
	Return       ReturnPolicy
}

// FuncName is the rendered function or method name.
func (d Decl) FuncName() string {
	if d.Form == Immediate {
		return d.Name + "With"
	}
	return d.Name
}

// Has reports whether the body contains step s.
func (d Decl) Has(s Step) bool {
	for _, st := range d.Steps {
		if st == s {
			return true
		}
	}
	return false
}

// Name returns the base builder name for tag under parent. Builders on the
// root container and owner methods use the tag itself; container builders
// are suffixed with the capability so that several of them can live in the
// same package.
func Name(parent Parent, tag string) string {
	base := naming.Export(naming.ToCamel(tag))
	if parent.Kind != ParentContainer {
		return base
	}
	_, ident := naming.SplitQualified(parent.Type)
	capName := strings.TrimSuffix(strings.TrimPrefix(ident, naming.Marker), "Container")
	return base + "In" + capName
}

// Plan returns the immediate and deferred declarations of the builder for
// def under parent. element is the generated type of def; rootContainer is
// the block receiver used when def is itself a container.
func Plan(def *taskdef.TaskDefinition, parent Parent, tag, element, rootContainer string, attrs []schema.AttributeDescriptor) []Decl {
	ret := ReturnFor(def)
	receiver := element
	if def.Container {
		receiver = rootContainer
	}

	imm := Decl{
		Tag:          tag,
		Name:         Name(parent, tag),
		Form:         Immediate,
		Parent:       parent,
		Element:      element,
		Source:       def.ID,
		Params:       attrs,
		InitReceiver: receiver,
		Container:    def.Container,
		Return:       ret,
	}
	imm.Steps = append(imm.Steps, StepConstruct)
	if len(attrs) > 0 {
		imm.Steps = append(imm.Steps, StepAssignAttributes)
	}
	if !def.Container {
		imm.Steps = append(imm.Steps, StepRunInit)
	}
	if ret == ReturnReference {
		imm.Steps = append(imm.Steps, StepObtainReference)
	}
	imm.Steps = append(imm.Steps, StepConfigure)
	if def.Container {
		imm.Steps = append(imm.Steps, StepRunContainer)
	}
	if parent.Outermost() && !def.Condition {
		imm.Steps = append(imm.Steps, StepExecute)
	}
	if ret != ReturnNothing {
		imm.Steps = append(imm.Steps, StepReturn)
	}

	def2 := imm
	def2.Form = Deferred
	def2.Steps = []Step{StepForward}

	return []Decl{imm, def2}
}
