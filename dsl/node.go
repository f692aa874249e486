// Package dsl is the runtime every generated builder library imports.
//
// Generated wrapper types hold a *Node. Builders construct the node under a
// parent, assign attributes, run the caller's initializer block, configure
// the node (attach it to its parent or target) and, for nodes built directly
// under a project or target, execute it right away through the project's
// Executor.
//
// The package has no dependencies outside the standard library: it is copied
// as is into every generated source tree.
package dsl

import (
	"fmt"
	"sort"
	"strings"
)

// Task is implemented by every generated wrapper type.
type Task interface {
	DSLNode() *Node
}

// TaskContainer is the root container: builders called on it construct
// outermost tasks.
type TaskContainer interface {
	Task
	IsDSLTaskContainer()
}

// Condition is implemented by wrappers of evaluable task definitions.
type Condition interface {
	Task
	IsDSLCondition()
}

// TextContainer is implemented by wrappers that accept character data.
type TextContainer interface {
	Task
	IsDSLTextContainer()
}

// Node is the runtime state behind a generated wrapper.
type Node struct {
	project *Project
	target  *Target
	parent  *Node

	typeID string
	tag    string

	attrs    map[string]any
	text     strings.Builder
	children []*Node

	outermost  bool
	collecting bool
	configured bool
	executed   bool
}

// NewNode creates the node for a task built under parent. Outermost nodes
// have no parent link; they belong to the parent's target and run as soon as
// they are configured. A node built under a container task is never
// outermost: it becomes a child of the container instead.
func NewNode(parent Task, typeID, tag string, outermost bool) *Node {
	pn := parent.DSLNode()
	n := &Node{
		project:   pn.project,
		target:    pn.target,
		typeID:    typeID,
		tag:       tag,
		attrs:     map[string]any{},
		outermost: outermost,
	}
	if !outermost || pn.collecting {
		n.parent = pn
		n.outermost = false
	}
	return n
}

// Project returns the project the node belongs to.
func (n *Node) Project() *Project { return n.project }

// Target returns the target the node was built in.
func (n *Node) Target() *Target { return n.target }

// Parent returns the enclosing node, or nil for outermost nodes.
func (n *Node) Parent() *Node { return n.parent }

// TypeID returns the task definition identifier.
func (n *Node) TypeID() string { return n.typeID }

// Tag returns the element tag the node was built with.
func (n *Node) Tag() string { return n.tag }

// Outermost reports whether the node runs on its own.
func (n *Node) Outermost() bool { return n.outermost }

// Set assigns an attribute.
func (n *Node) Set(name string, v any) { n.attrs[strings.ToLower(name)] = v }

// Get returns an attribute.
func (n *Node) Get(name string) (any, bool) {
	v, ok := n.attrs[strings.ToLower(name)]
	return v, ok
}

// AttrNames returns the names of the assigned attributes, sorted.
func (n *Node) AttrNames() []string {
	out := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Attr returns the attribute name of n converted to T.
func Attr[T any](n *Node, name string) (T, bool) {
	v, ok := n.Get(name)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// AddText appends character data.
func (n *Node) AddText(s string) { n.text.WriteString(s) }

// Text returns the accumulated character data.
func (n *Node) Text() string { return n.text.String() }

// Children returns the configured child nodes in build order.
func (n *Node) Children() []*Node { return n.children }

// Configure attaches the node to its parent, or to its target when it is
// outermost. Configuring twice is a no-op.
func (n *Node) Configure() {
	if n.configured {
		return
	}
	n.configured = true
	switch {
	case n.parent != nil:
		n.parent.children = append(n.parent.children, n)
	case n.target != nil:
		n.target.tasks = append(n.target.tasks, n)
	}
}

// Execute runs an outermost node through the project's executor. Nested
// nodes are run by whatever executes their outermost ancestor, so Execute
// is a no-op for them. Failures are recorded on the project.
func (n *Node) Execute() {
	if !n.outermost || n.executed || n.project == nil {
		return
	}
	n.executed = true
	if err := n.project.executor.Execute(n); err != nil {
		n.project.fail(fmt.Errorf("%s: %w", n.tag, err))
	}
}

// Eval evaluates a condition node. Failures are recorded on the project and
// evaluate to false.
func (n *Node) Eval() bool {
	if n.project == nil {
		return false
	}
	ok, err := n.project.executor.Eval(n)
	if err != nil {
		n.project.fail(fmt.Errorf("%s: %w", n.tag, err))
		return false
	}
	return ok
}

// String renders the node and its children as an element tree.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb, 0)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString("<" + n.tag)
	for _, k := range n.AttrNames() {
		fmt.Fprintf(sb, " %s=%q", k, fmt.Sprint(display(n.attrs[k])))
	}
	if len(n.children) == 0 && n.text.Len() == 0 {
		sb.WriteString("/>\n")
		return
	}
	sb.WriteString(">")
	if n.text.Len() > 0 {
		sb.WriteString(n.text.String())
	}
	if len(n.children) > 0 {
		sb.WriteString("\n")
		for _, c := range n.children {
			c.write(sb, depth+1)
		}
		sb.WriteString(strings.Repeat("  ", depth))
	}
	sb.WriteString("</" + n.tag + ">\n")
}

func display(v any) any {
	if r, ok := v.(interface{ ID() string }); ok {
		return r.ID()
	}
	return v
}

type containerView struct{ n *Node }

func (c containerView) DSLNode() *Node      { return c.n }
func (c containerView) IsDSLTaskContainer() {}

// RunContainer runs init against a container view of t. Tasks built inside
// init become children of t instead of running on their own.
func RunContainer(t Task, init func(TaskContainer)) {
	if init == nil {
		return
	}
	n := t.DSLNode()
	n.collecting = true
	init(containerView{n: n})
}
