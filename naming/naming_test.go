package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

//
// -----------------------------------------------------------------------------
// Identifier helpers
// -----------------------------------------------------------------------------

// TestToCamel verifies tag conversion to lower camel case.
func TestToCamel(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"selector-x": "selectorX",
		"path_ref":   "pathRef",
		"mkdir":      "mkdir",
		"a.b c":      "aBC",
		"9lives":     "_9lives",
		"--x":        "x",
		"":           "",
		"Outer$In":   "OuterIn",
	}
	for in, want := range testCases {
		assert.Equal(t, want, ToCamel(in), in)
	}
}

// TestToSnake verifies acronyms stay together.
func TestToSnake(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"DSLMkdir":            "dsl_mkdir",
		"DSLFileSetContainer": "dsl_file_set_container",
		"DSLSelectorX":        "dsl_selector_x",
		"DSLIsSet":            "dsl_is_set",
		"plain":               "plain",
	}
	for in, want := range testCases {
		assert.Equal(t, want, ToSnake(in), in)
	}
}

// TestCaseHelpers verifies Export and LowerFirst.
func TestCaseHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Mkdir", Export("mkdir"))
	assert.Equal(t, "", Export(""))
	assert.Equal(t, "mkdir", LowerFirst("Mkdir"))
	assert.Equal(t, "isSet", LowerFirst("IsSet"))
	assert.Equal(t, "", LowerFirst(""))
}

// TestSplitQualified verifies import path and identifier separation.
func TestSplitQualified(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in, pkg, name string
	}{
		{in: "example.com/x/dsl.Node", pkg: "example.com/x/dsl", name: "Node"},
		{in: "io.Reader", pkg: "io", name: "Reader"},
		{in: "bool", pkg: "", name: "bool"},
		{in: "example.com/x", pkg: "", name: "example.com/x"},
	}
	for _, tc := range testCases {
		pkg, name := SplitQualified(tc.in)
		assert.Equal(t, tc.pkg, pkg, tc.in)
		assert.Equal(t, tc.name, name, tc.in)
	}
	assert.Equal(t, "example.com/x.Y", Qualify("example.com/x", "Y"))
	assert.Equal(t, "string", Qualify("", "string"))
}

// TestSourceNames verifies simple names and packages of type ids.
func TestSourceNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "OuterInner", SimpleName("a.b.Outer$Inner"))
	assert.Equal(t, "Mkdir", SimpleName("example.com/tasks.Mkdir"))
	assert.Equal(t, "Selector", SimpleName("Selector"))
	assert.Equal(t, "example.com/tasks", PackageOf("example.com/tasks.Mkdir"))
	assert.Equal(t, "", PackageOf("Selector"))
}

//
// -----------------------------------------------------------------------------
// ImportTable
// -----------------------------------------------------------------------------

// TestIsStdlib verifies standard library detection by first path element.
func TestIsStdlib(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		path string
		want bool
	}{
		{path: "io", want: true},
		{path: "encoding/json", want: true},
		{path: "net/http", want: true},
		{path: "", want: false},
		{path: "acme/tasks", want: false},
		{path: "tasks", want: false},
		{path: "example.com/tasks", want: false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, IsStdlib(tc.path), tc.path)
	}
}

// TestImportTable_Shorten verifies local references and recorded imports.
func TestImportTable_Shorten(t *testing.T) {
	t.Parallel()

	tbl := NewImportTable("example.com/out/dslgen")
	assert.Equal(t, "DSLMkdir", tbl.Shorten("example.com/out/dslgen.DSLMkdir"))
	assert.Equal(t, "bool", tbl.Shorten("bool"))
	assert.Equal(t, 0, tbl.Len())

	assert.Equal(t, "dsl.Node", tbl.Shorten("example.com/out/dsl.Node"))
	assert.Equal(t, "dsl.Task", tbl.Shorten("example.com/out/dsl.Task"))
	assert.Equal(t, "yamlv3.Node", tbl.Shorten("gopkg.in/yaml.v3.Node"))
	assert.Equal(t, 2, tbl.Len())

	assert.Equal(t, []Import{
		{Path: "example.com/out/dsl"},
		{Name: "yamlv3", Path: "gopkg.in/yaml.v3"},
	}, tbl.Imports())
}

// TestImportTable_AliasCollision verifies a second package with the same last element gets a path-derived alias.
func TestImportTable_AliasCollision(t *testing.T) {
	t.Parallel()

	tbl := NewImportTable("example.com/out/dslgen")
	assert.Equal(t, "dsl.Node", tbl.Shorten("example.com/a/dsl.Node"))
	assert.Equal(t, "example_com_b_dsl.Node", tbl.Shorten("example.com/b/dsl.Node"))
	assert.Equal(t, "dsl.Path", tbl.Shorten("example.com/a/dsl.Path"))

	assert.Equal(t, []Import{
		{Path: "example.com/a/dsl"},
		{Name: "example_com_b_dsl", Path: "example.com/b/dsl"},
	}, tbl.Imports())
}

//
// -----------------------------------------------------------------------------
// Namer
// -----------------------------------------------------------------------------

// TestNamer_ResultName verifies the marker transform and stability.
func TestNamer_ResultName(t *testing.T) {
	t.Parallel()

	n := NewNamer("example.com/out/dslgen", "")
	assert.Equal(t, "example.com/out/dslgen", n.Package())
	assert.Equal(t, "example.com/out/dslgen.DSLMkdir", n.ResultName("example.com/tasks.Mkdir"))
	assert.Equal(t, "example.com/out/dslgen.DSLMkdir", n.ResultName("example.com/tasks.Mkdir"))
	assert.Equal(t, "example.com/out/dslgen.DSLOuterInner", n.ResultName("example.com/tasks.Outer$Inner"))
	assert.Equal(t, "example.com/out/dslgen.DSLSelectorContainer", n.ContainerName("example.com/tasks.Selector"))
}

// TestNamer_Collision verifies the package-qualified fallback with and without a source prefix.
func TestNamer_Collision(t *testing.T) {
	t.Parallel()

	n := NewNamer("out", "example.com/")
	assert.Equal(t, "out.DSLPath", n.ResultName("example.com/a.Path"))
	assert.Equal(t, "out.DSLBPath", n.ResultName("example.com/b.Path"))
	assert.Equal(t, "out.DSLOtherOrgCPath", n.ResultName("org/c.Path"))

	// A wrapper name can collide with a container name.
	assert.Equal(t, "out.DSLSelectorContainer", n.ResultName("example.com/a.SelectorContainer"))
	assert.Equal(t, "out.DSLASelectorContainer", n.ContainerName("example.com/a.Selector"))
}

// TestNamer_Claim verifies preloaded names are honoured and conflicting claims refused.
func TestNamer_Claim(t *testing.T) {
	t.Parallel()

	n := NewNamer("out", "")
	assert.True(t, n.Claim("example.com/b.Path", "out.DSLPath"))
	assert.False(t, n.Claim("example.com/a.Path", "out.DSLPath"))
	assert.True(t, n.ClaimContainer("example.com/x.Sel", "out.DSLSelContainer"))

	assert.Equal(t, "out.DSLPath", n.ResultName("example.com/b.Path"))
	assert.NotEqual(t, "out.DSLPath", n.ResultName("example.com/a.Path"))
	assert.Equal(t, "out.DSLSelContainer", n.ContainerName("example.com/x.Sel"))
}
