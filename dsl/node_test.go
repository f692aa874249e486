package dsl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTask struct{ n *Node }

func (f *fakeTask) DSLNode() *Node { return f.n }

func newFake(parent Task, tag string, outermost bool) *fakeTask {
	return &fakeTask{n: NewNode(parent, "example.com/tasks."+tag, tag, outermost)}
}

type recorder struct {
	executed []string
	evalTo   bool
	failOn   string
}

func (r *recorder) Execute(n *Node) error {
	r.executed = append(r.executed, n.Tag())
	if n.Tag() == r.failOn {
		return errors.New("boom")
	}
	return nil
}

func (r *recorder) Eval(n *Node) (bool, error) { return r.evalTo, nil }

//
// -----------------------------------------------------------------------------
// Node lifecycle
// -----------------------------------------------------------------------------

// TestNode_OutermostExecutesOnce verifies outermost nodes attach to their target and run once.
func TestNode_OutermostExecutesOnce(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	p := NewProject("p", rec)

	task := newFake(p, "mkdir", true)
	task.n.Set("dir", "build")
	task.n.Configure()
	task.n.Configure()
	task.n.Execute()
	task.n.Execute()

	assert.Equal(t, []string{"mkdir"}, rec.executed)
	require.Len(t, p.Tasks(), 1)
	assert.Same(t, task.n, p.Tasks()[0])
	assert.Nil(t, task.n.Parent())
	assert.True(t, task.n.Outermost())
}

// TestNode_NestedNeverExecutes verifies nodes built with a parent link are children and never run on their own.
func TestNode_NestedNeverExecutes(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	p := NewProject("p", rec)
	owner := newFake(p, "copy", true)
	owner.n.Configure()

	child := newFake(owner, "fileset", false)
	child.n.Configure()
	child.n.Execute()

	assert.Empty(t, rec.executed)
	require.Len(t, owner.n.Children(), 1)
	assert.Same(t, owner.n, child.n.Parent())
}

// TestRunContainer_CollectsChildren verifies tasks built inside a container block become its children.
func TestRunContainer_CollectsChildren(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	p := NewProject("p", rec)

	seq := newFake(p, "sequential", true)
	seq.n.Configure()
	RunContainer(seq, func(c TaskContainer) {
		inner := newFake(c, "echo", true)
		inner.n.Configure()
		inner.n.Execute()
	})
	seq.n.Execute()

	assert.Equal(t, []string{"sequential"}, rec.executed)
	require.Len(t, seq.n.Children(), 1)
	assert.Equal(t, "echo", seq.n.Children()[0].Tag())
	assert.False(t, seq.n.Children()[0].Outermost())
}

// TestRunContainer_NilInit verifies a nil block is ignored.
func TestRunContainer_NilInit(t *testing.T) {
	t.Parallel()

	p := NewProject("p", nil)
	seq := newFake(p, "sequential", true)
	RunContainer(seq, nil)
	assert.Empty(t, seq.n.Children())
}

// TestNode_EvalAndErrors verifies Eval delegates to the executor and failures are collected on the project.
func TestNode_EvalAndErrors(t *testing.T) {
	t.Parallel()

	rec := &recorder{evalTo: true, failOn: "fail"}
	p := NewProject("p", rec)

	cond := newFake(p, "available", true)
	assert.True(t, cond.n.Eval())

	bad := newFake(p, "fail", true)
	bad.n.Configure()
	bad.n.Execute()

	err := p.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fail: boom")
}

// TestAttr_Typed verifies Attr converts stored values and reports mismatches.
func TestAttr_Typed(t *testing.T) {
	t.Parallel()

	p := NewProject("p", nil)
	n := newFake(p, "mkdir", true).n
	n.Set("Dir", "build")
	n.Set("count", 3)

	dir, ok := Attr[string](n, "dir")
	require.True(t, ok)
	assert.Equal(t, "build", dir)

	_, ok = Attr[string](n, "count")
	assert.False(t, ok)

	_, ok = Attr[int](n, "missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"count", "dir"}, n.AttrNames())
}

// TestNode_String verifies the element tree rendering.
func TestNode_String(t *testing.T) {
	t.Parallel()

	p := NewProject("p", nil)
	owner := newFake(p, "echo", true)
	owner.n.Set("level", "info")
	owner.n.AddText("hi")
	owner.n.Configure()

	assert.Equal(t, "<echo level=\"info\">hi</echo>\n", owner.n.String())
}

//
// -----------------------------------------------------------------------------
// Project / Target
// -----------------------------------------------------------------------------

// TestProject_RunDependencies verifies targets run after their dependencies and at most once.
func TestProject_RunDependencies(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	p := NewProject("p", rec)

	var order []string
	p.Target("init", func(c TaskContainer) {
		order = append(order, "init")
		x := newFake(c, "mkdir", true)
		x.n.Configure()
		x.n.Execute()
	})
	p.Target("build", func(TaskContainer) { order = append(order, "build") }, "init")
	p.Target("test", func(TaskContainer) { order = append(order, "test") }, "init", "build")
	p.Default("test")

	require.NoError(t, p.Run())
	assert.Equal(t, []string{"init", "build", "test"}, order)
	assert.Equal(t, []string{"mkdir"}, rec.executed)
	require.Len(t, p.Targets(), 3)
	assert.Len(t, p.Targets()[0].Tasks(), 1)
}

// TestProject_RunErrors verifies unknown targets and cycles are reported.
func TestProject_RunErrors(t *testing.T) {
	t.Parallel()

	p := NewProject("p", nil)
	err := p.Run("nope")
	require.ErrorIs(t, err, ErrUnknownTarget)

	p.Target("a", nil, "b")
	p.Target("b", nil, "a")
	err = p.Run("a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular")
}

//
// -----------------------------------------------------------------------------
// Reference / Path / Properties
// -----------------------------------------------------------------------------

// TestNewReference_IDs verifies references reuse an explicit id and otherwise assign one.
func TestNewReference_IDs(t *testing.T) {
	t.Parallel()

	p := NewProject("p", nil)
	a := newFake(p, "path", true)
	a.n.Set("id", "classpath")
	ra := NewReference(a)
	assert.Equal(t, "classpath", ra.ID())
	assert.Same(t, a, ra.Get())

	b := newFake(p, "path", true)
	rb := NewReference(b)
	assert.Equal(t, "ref1", rb.ID())
	id, _ := Attr[string](b.n, "id")
	assert.Equal(t, "ref1", id)

	path := NewPath(p, "path", true)
	rp := NewReference(path)
	assert.Equal(t, "ref2", rp.ID())
}

// TestProperty_Typed verifies typed properties parse, default and format.
func TestProperty_Typed(t *testing.T) {
	t.Parallel()

	p := NewProject("p", nil)
	dir := StringProperty("dir", "out")
	debug := BoolProperty("debug", false)
	n := IntProperty("n", 7)
	f := FloatProperty("f", 1.5)

	assert.Equal(t, "out", dir.Get(p))
	assert.False(t, dir.IsSet(p))
	dir.Set(p, "build")
	assert.Equal(t, "build", dir.Get(p))

	p.SetProperty("debug", "true")
	assert.True(t, debug.Get(p))

	p.SetProperty("n", "not-a-number")
	assert.Equal(t, 7, n.Get(p))
	n.Set(p, 42)
	assert.Equal(t, 42, n.Get(p))

	f.Set(p, 2.25)
	raw, _ := p.LookupProperty("f")
	assert.Equal(t, "2.25", raw)

	require.NoError(t, p.InitProperties())
	assert.True(t, StringProperty("basedir", "").IsSet(p))
}

// TestFiles_ExcludesTestsAndEmbed verifies the runtime sources copied into generated trees.
func TestFiles_ExcludesTestsAndEmbed(t *testing.T) {
	t.Parallel()

	names := FileNames()
	assert.Contains(t, names, "node.go")
	assert.Contains(t, names, "project.go")
	assert.NotContains(t, names, "embed.go")
	assert.NotContains(t, names, "node_test.go")
}

// TestPtr verifies Ptr returns a pointer to a copy.
func TestPtr(t *testing.T) {
	t.Parallel()

	v := 3
	p := Ptr(v)
	v = 4
	assert.Equal(t, 3, *p)
}
