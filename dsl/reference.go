package dsl

import "strconv"

// Reference points at a task built elsewhere in the script. Builders of
// reference-producing task definitions return one; attributes such as
// "refid" accept one.
type Reference[T Task] struct {
	target T
	id     string
}

// NewReference creates a reference to t. The reference id is taken from the
// node's "id" attribute when set, otherwise one is assigned.
func NewReference[T Task](t T) *Reference[T] {
	n := t.DSLNode()
	if id, ok := Attr[string](n, "id"); ok && id != "" {
		return &Reference[T]{target: t, id: id}
	}
	seq := 1
	if n.project != nil {
		n.project.refSeq++
		seq = n.project.refSeq
	}
	id := "ref" + strconv.Itoa(seq)
	n.Set("id", id)
	return &Reference[T]{target: t, id: id}
}

// Get returns the referenced task.
func (r *Reference[T]) Get() T { return r.target }

// ID returns the reference id.
func (r *Reference[T]) ID() string { return r.id }

// Path is the designated path type that "*pathref" attributes point at.
type Path struct{ n *Node }

// NewPath creates a path task under parent.
func NewPath(parent Task, tag string, outermost bool) *Path {
	return &Path{n: NewNode(parent, "path", tag, outermost)}
}

// DSLNode implements Task.
func (p *Path) DSLNode() *Node { return p.n }

// Ptr returns a pointer to v. It fills optional fields of attribute structs:
//
//	MkdirWith(t, DSLMkdirAttrs{Dir: dsl.Ptr("build")}, nil)
func Ptr[T any](v T) *T { return &v }
