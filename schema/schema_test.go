package schema

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	root  = "example.com/out/dsl.TaskContainer"
	mkdir = "example.com/out/dslgen.DSLMkdir"
)

func newStructure(t *testing.T) *Structure {
	t.Helper()
	s := New()
	require.True(t, s.Register(NewClass(root, "", nil)))
	require.True(t, s.Register(NewClass(mkdir, "example.com/tasks.Mkdir", nil)))
	require.NoError(t, s.AddFunction(root, "mkdir", "Mkdir", "example.com/out/dslgen",
		[]AttributeDescriptor{{Name: "Dir", Kind: KindString, Type: "string"}}, mkdir))
	return s
}

//
// -----------------------------------------------------------------------------
// Structure
// -----------------------------------------------------------------------------

// TestStructure_Functions verifies case-insensitive lookups and the add guards.
func TestStructure_Functions(t *testing.T) {
	t.Parallel()

	s := newStructure(t)
	assert.True(t, s.Resolve(mkdir))
	assert.False(t, s.Register(NewClass(mkdir, "", nil)))

	assert.True(t, s.ContainsFunction(root, "MKDIR"))
	assert.False(t, s.ContainsFunction(root, "copy"))
	assert.False(t, s.ContainsFunction("example.com/nope.X", "mkdir"))

	fn, ok := s.Function(root, "Mkdir")
	require.True(t, ok)
	assert.Equal(t, "mkdir", fn.Name)
	assert.Equal(t, "Mkdir", fn.Builder)
	assert.Equal(t, mkdir, fn.InitReceiver)
	a, ok := fn.Attribute("dir")
	require.True(t, ok)
	assert.Equal(t, "Dir", a.Name)

	err := s.AddFunction(root, "MkDir", "MkDir", "p", nil, mkdir)
	require.ErrorIs(t, err, ErrDuplicateFunction)

	err = s.AddFunction("example.com/nope.X", "mkdir", "Mkdir", "p", nil, mkdir)
	require.ErrorIs(t, err, ErrUnknownClass)

	_, ok = s.Function("example.com/nope.X", "mkdir")
	assert.False(t, ok)
}

// TestStructure_Lookups verifies source lookup, sorted names and container classes.
func TestStructure_Lookups(t *testing.T) {
	t.Parallel()

	s := newStructure(t)
	s.Register(NewContainerClass("example.com/out/dslgen.DSLSelectorContainer", "example.com/tasks.Selector"))

	c, ok := s.BySource("example.com/tasks.Mkdir")
	require.True(t, ok)
	assert.Equal(t, mkdir, c.Name)
	_, ok = s.BySource("example.com/tasks.Nope")
	assert.False(t, ok)

	assert.Equal(t, []string{root, mkdir, "example.com/out/dslgen.DSLSelectorContainer"}, s.SortedNames())

	sel, ok := s.Class("example.com/out/dslgen.DSLSelectorContainer")
	require.True(t, ok)
	assert.Equal(t, "example.com/tasks.Selector", sel.Capability)
	assert.Empty(t, sel.Source)
	assert.Equal(t, []string{}, sel.Traits)
}

// TestStructure_Merge verifies merging keeps existing entries and adds missing ones.
func TestStructure_Merge(t *testing.T) {
	t.Parallel()

	s := newStructure(t)
	other := New()
	other.Runtime = "example.com/lib/dsl"
	other.Register(NewClass(root, "", nil))
	other.Register(NewContainerClass("lib.DSLSelContainer", "x.Sel"))
	require.NoError(t, other.AddFunction(root, "mkdir", "Mkdir", "lib", nil, "lib.DSLMkdir"))
	require.NoError(t, other.AddFunction(root, "copy", "Copy", "lib", nil, "lib.DSLCopy"))

	s.Merge(other)
	s.Merge(nil)

	assert.Equal(t, "example.com/lib/dsl", s.Runtime)
	fn, _ := s.Function(root, "mkdir")
	assert.Equal(t, mkdir, fn.InitReceiver, "existing function is kept")
	assert.True(t, s.ContainsFunction(root, "copy"))
	sel, ok := s.Class("lib.DSLSelContainer")
	require.True(t, ok)
	assert.Equal(t, "x.Sel", sel.Capability)
	assert.Equal(t, []string{"copy", "mkdir"}, s.Classes[root].FunctionTags())
}

//
// -----------------------------------------------------------------------------
// Persistence
// -----------------------------------------------------------------------------

// TestStructure_RoundTrip verifies a saved structure loads back identically.
func TestStructure_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newStructure(t)
	s.Runtime = "example.com/out/dsl"
	path := filepath.Join(t.TempDir(), "resources", "structure.json")
	require.NoError(t, s.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	var a, b bytes.Buffer
	require.NoError(t, s.Encode(&a))
	require.NoError(t, got.Encode(&b))
	assert.Equal(t, a.String(), b.String())
}

// TestDecode_FillsMissingMaps verifies sparse documents decode into usable classes.
func TestDecode_FillsMissingMaps(t *testing.T) {
	t.Parallel()

	s, err := Decode(strings.NewReader(`{"classes": {"x.A": {"name": "x.A"}}}`))
	require.NoError(t, err)
	c, ok := s.Class("x.A")
	require.True(t, ok)
	assert.NotNil(t, c.Functions)
	assert.NotNil(t, c.Traits)
	assert.False(t, c.ContainsFunction("any"))

	s, err = Decode(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, s.Classes)

	s, err = Decode(strings.NewReader(`{"classes": {"x.A": null, "x.B": {"functions": {"f": null}}}}`))
	require.NoError(t, err)
	assert.False(t, s.Resolve("x.A"))
	b, ok := s.Class("x.B")
	require.True(t, ok)
	assert.Equal(t, "x.B", b.Name)
	assert.Empty(t, b.Functions)

	_, err = Decode(strings.NewReader(`{"classes": {"x.A": {"name": "x.Other"}}}`))
	require.ErrorIs(t, err, ErrInvalidStructure)

	_, err = Decode(strings.NewReader(`{`))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
