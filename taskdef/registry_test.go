package taskdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type selector interface{ Select(name string) bool }

type common struct {
	Description string `dsl:"description"`
}

type fileSet struct {
	Dir   string     `dsl:"dir"`
	RefID *Reference `dsl:"refid"`
}

func (*fileSet) SetID(string) {}

type copyTask struct {
	common
	ToDir    string     `dsl:"todir"`
	Verbose  bool       `dsl:"verbose"`
	Retries  int64      `dsl:""`
	Hidden   string
	Skipped  string     `dsl:"-"`
	FileSets []*fileSet `dsl:"fileset,nested"`
}

func (*copyTask) Execute() error { return nil }

type isSet struct {
	Property string `dsl:"property"`
}

func (*isSet) Eval() (bool, error) { return true, nil }

type sequential struct{}

func (*sequential) Execute() error { return nil }
func (*sequential) AddTask(any)    {}

type echo struct{}

func (*echo) Execute() error     { return nil }
func (*echo) AddText(string)     {}
func (*echo) Select(string) bool { return false }

const pkg = "github.com/sghaida/taskdsl/taskdef"

// TestRegistry_Introspect verifies fields, nested elements, flags and capabilities are derived from Go types.
func TestRegistry_Introspect(t *testing.T) {
	t.Parallel()

	r := NewRegistry().
		Provide(&copyTask{}).
		Provide(fileSet{}).
		Provide(&isSet{}).
		Provide(&sequential{}).
		Provide(&echo{})
	Capability[selector](r)

	assert.Equal(t, []string{pkg + ".copyTask", pkg + ".fileSet", pkg + ".isSet", pkg + ".sequential", pkg + ".echo"}, r.IDs())

	def, err := r.Introspect(pkg + ".copyTask")
	require.NoError(t, err)
	assert.True(t, def.Executable)
	assert.False(t, def.Condition)
	assert.Equal(t, []Attribute{
		{Name: "description", Type: "string"},
		{Name: "todir", Type: "string"},
		{Name: "verbose", Type: "bool"},
		{Name: "retries", Type: "int64"},
	}, def.Attributes)
	assert.Equal(t, []NestedElement{{Tag: "fileset", Type: pkg + ".fileSet"}}, def.Nested)
	assert.Empty(t, def.Capabilities)

	def, err = r.Introspect(pkg + ".fileSet")
	require.NoError(t, err)
	assert.True(t, def.Reference)
	assert.Equal(t, Attribute{Name: "refid", Type: ReferenceType}, def.Attributes[1])

	def, err = r.Introspect(pkg + ".isSet")
	require.NoError(t, err)
	assert.True(t, def.Condition)
	assert.True(t, def.TopLevel())

	def, err = r.Introspect(pkg + ".sequential")
	require.NoError(t, err)
	assert.True(t, def.Container)

	def, err = r.Introspect(pkg + ".echo")
	require.NoError(t, err)
	assert.True(t, def.TextContainer)
	assert.Equal(t, []string{pkg + ".selector"}, def.Capabilities)

	typ, ok := r.Get(pkg + ".echo")
	require.True(t, ok)
	assert.Equal(t, "echo", typ.Name())
}

// TestRegistry_Errors verifies unknown ids, non-struct types and invalid capabilities.
func TestRegistry_Errors(t *testing.T) {
	t.Parallel()

	r := NewRegistry().Provide(42).Provide(nil)
	assert.Equal(t, []string{"int"}, r.IDs())

	_, err := r.Introspect("x.Unknown")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = r.Introspect("int")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, ErrRegistryPanic)

	assert.Panics(t, func() { Capability[fileSet](r) })
}
