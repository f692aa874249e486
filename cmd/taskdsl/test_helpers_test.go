package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

type outHarness struct {
	t   *testing.T
	dir string
}

// newHarness creates a scratch directory and makes it the working
// directory, so no taskdsl.yaml outside the test is picked up.
func newHarness(t *testing.T) *outHarness {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return &outHarness{t: t, dir: dir}
}

func (h *outHarness) write(rel, content string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, filepath.FromSlash(rel))
	mustWriteFile(h.t, path, content)
	return path
}

func (h *outHarness) path(rel string) string {
	return filepath.Join(h.dir, filepath.FromSlash(rel))
}

func (h *outHarness) read(rel string) string {
	h.t.Helper()
	return mustReadString(h.t, h.path(rel))
}

// execute runs the root command with args and returns its combined output.
func (h *outHarness) execute(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(h.t.Context())
	return out.String(), err
}

func mustWriteFile(t TB, path, content string) {
	t.Helper()
	mustMkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mustMkdirAll(t TB, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func mustReadString(t TB, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func assertContainsInOrder(t TB, s string, parts ...string) {
	t.Helper()
	pos := 0
	for _, p := range parts {
		i := strings.Index(s[pos:], p)
		if i < 0 {
			t.Fatalf("expected %q after offset %d in:\n%s", p, pos, s)
		}
		pos += i + len(p)
	}
}

const tasksDescriptor = `tasks: [{
	type:       "example.com/tasks.Mkdir"
	executable: true
	attributes: [{name: "dir", type: "string"}]
}, {
	type:         "example.com/tasks.Echo"
	executable:   true
	textContainer: true
	attributes:   [{name: "level", type: "string"}]
}, {
	type:         "example.com/tasks.SelectorX"
	capabilities: ["example.com/tasks.Selector"]
}]
`

// writeBundle writes a directory bundle with the test descriptor and an
// embedded alias source.
func writeBundle(h *outHarness) string {
	h.write("bundle/META/tasks.taskdef.cue", tasksDescriptor)
	h.write("bundle/META/antlib.xml", `<antlib><typedef name="selectorX" classname="example.com/tasks.SelectorX"/></antlib>`)
	return h.path("bundle")
}
