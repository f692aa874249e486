// Package generator turns task definitions into a typed builder library.
//
// A Generator is the whole context of one run: the definition provider, the
// schema structure that records every generated type and builder, the namer
// that mints type names, the capability containers emitted so far and the
// files being rendered. Nothing is global, so several generators can run in
// the same process.
//
// Generation is driven by aliases. Resolving an alias resolves the target
// type (emitting its wrapper and, recursively, the wrappers of its nested
// element types) and then emits builders for the alias tag under the root
// container and under the container of every capability the type declares.
// Every emission is guarded by the schema, so the same (parent, tag) pair is
// never emitted twice.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/sghaida/taskdsl/alias"
	"github.com/sghaida/taskdsl/builder"
	"github.com/sghaida/taskdsl/emit"
	"github.com/sghaida/taskdsl/naming"
	"github.com/sghaida/taskdsl/schema"
	"github.com/sghaida/taskdsl/taskdef"
)

// DefaultPackage is the output package name used when none is configured.
const DefaultPackage = "dslgen"

// ErrInvalidOptions is returned by New for unusable options.
var ErrInvalidOptions = errors.New("generator: invalid options")

// Options configures a Generator.
type Options struct {
	// Package is the name of the output package.
	Package string
	// ImportPath is the import path of the output package.
	ImportPath string
	// RuntimePath is the import path of the runtime package.
	RuntimePath string
	// Dir is the output package directory relative to the source root.
	// It defaults to Package.
	Dir string
	// SourcePrefix is stripped from type ids when a name collision forces a
	// package-qualified type name.
	SourcePrefix string
	// ReferenceType is the attribute type id of framework references.
	ReferenceType string
	// NoContainer lists id prefixes whose capabilities never get a
	// container. Standard library types never do.
	NoContainer []string

	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Package == "" {
		o.Package = DefaultPackage
	}
	if o.Dir == "" {
		o.Dir = o.Package
	}
	if o.ReferenceType == "" {
		o.ReferenceType = taskdef.ReferenceType
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// target is a resolved task definition.
type target struct {
	id    string
	def   *taskdef.TaskDefinition
	class string
	file  *emit.SourceFile
	// external targets were generated by an earlier run into another
	// package. Their wrappers are not emitted again.
	external bool
}

// Generator is the context of one generation run.
type Generator struct {
	opts      Options
	log       *log.Logger
	provider  taskdef.Provider
	structure *schema.Structure
	namer     *naming.Namer
	emit      *emit.Emitter

	resolved map[string]*target
	missing  map[string]bool
	files    map[string]*emit.SourceFile
	// funcs holds the rendered function names per receiver so that two tags
	// converting to the same Go name are never both emitted.
	funcs      map[string]bool
	containers *containerSet
	runtimeSet bool

	errs []error
}

// New creates a Generator over provider.
func New(provider taskdef.Provider, opts Options) (*Generator, error) {
	opts = opts.withDefaults()
	if opts.ImportPath == "" {
		return nil, fmt.Errorf("%w: output import path is required", ErrInvalidOptions)
	}
	if opts.RuntimePath == "" {
		return nil, fmt.Errorf("%w: runtime import path is required", ErrInvalidOptions)
	}
	if provider == nil {
		provider = taskdef.Static{}
	}

	g := &Generator{
		opts:      opts,
		log:       opts.Logger,
		provider:  taskdef.Safe(provider),
		structure: schema.New(),
		namer:     naming.NewNamer(opts.ImportPath, opts.SourcePrefix),
		emit:      emit.NewEmitter(opts.RuntimePath),
		resolved:  map[string]*target{},
		missing:   map[string]bool{},
		files:     map[string]*emit.SourceFile{},
		funcs:     map[string]bool{},
	}
	g.containers = newContainerSet(g)
	g.registerRoots()
	return g, nil
}

func (g *Generator) rt(name string) string { return naming.Qualify(g.emit.Runtime, name) }

// RootContainer is the qualified name of the root task container.
func (g *Generator) RootContainer() string { return g.emit.TaskContainerType() }

// Runtime returns the import path of the runtime package in use. It differs
// from Options.RuntimePath after a schema of another package was preloaded.
func (g *Generator) Runtime() string { return g.emit.Runtime }

// registerRoots registers the runtime types builders can hang off.
func (g *Generator) registerRoots() {
	g.structure.Runtime = g.emit.Runtime
	root := g.RootContainer()
	g.structure.Register(schema.NewClass(root, "", nil))
	g.structure.Register(schema.NewClass(g.rt("Project"), "", []string{root}))
	g.structure.Register(schema.NewClass(g.rt("Target"), "", []string{root}))
}

// Structure returns the schema built so far.
func (g *Generator) Structure() *schema.Structure { return g.structure }

// Err returns the rendering errors collected so far.
func (g *Generator) Err() error { return errors.Join(g.errs...) }

func (g *Generator) fail(err error) {
	if err != nil {
		g.errs = append(g.errs, err)
	}
}

func (g *Generator) framework() builder.Framework {
	return builder.Framework{ReferenceType: g.opts.ReferenceType, PathType: g.emit.PathType()}
}

func (g *Generator) newFile(name, source string) *emit.SourceFile {
	p := path.Join(g.opts.Dir, name)
	if f, ok := g.files[p]; ok {
		return f
	}
	f := emit.NewSourceFile(p, g.opts.Package, g.opts.ImportPath, source)
	g.files[p] = f
	return f
}

// fileFor returns the file builders targeting t are appended to.
func (g *Generator) fileFor(t *target) *emit.SourceFile {
	if t.file == nil {
		_, ident := naming.SplitQualified(t.class)
		t.file = g.newFile("ext_"+naming.ToSnake(ident)+".gen.go", t.id)
	}
	return t.file
}

// Input is what a full run generates from.
type Input struct {
	// Aliases are resolved in order.
	Aliases []alias.Alias
	// Defaults are type ids that get default aliases, in bundle-entry order.
	Defaults []string
}

// Generate resolves every alias, then the default aliases. Unresolvable
// types are skipped. The returned error only reports rendering failures and
// cancellation.
func (g *Generator) Generate(ctx context.Context, in Input) error {
	for _, a := range in.Aliases {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.ResolveAlias(a)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	g.DefaultAliases(in.Defaults)
	return g.Err()
}

// ResolveAlias resolves the alias target and emits its builders. It reports
// whether the target could be resolved.
func (g *Generator) ResolveAlias(a alias.Alias) bool {
	if !g.ResolveClass(a.Type) {
		g.log.Debug("alias target not resolvable, skipping", "tag", a.Tag, "type", a.Type)
		return false
	}
	g.GenerateConstructors(a.Type, a.Tag, a.TopLevel)
	return true
}

// DefaultAliases synthesizes a top-level alias for every id that is
// executable, a condition or reference-producing, using the lower-camel simple
// name as tag. Types whose class already declares a builder under that tag
// are left alone.
func (g *Generator) DefaultAliases(ids []string) {
	for _, id := range ids {
		def, ok := g.lookup(id)
		if !ok || !def.TopLevel() {
			continue
		}
		if !g.ResolveClass(id) {
			continue
		}
		t := g.resolved[id]
		tag := naming.LowerFirst(naming.SimpleName(id))
		if g.structure.ContainsFunction(t.class, tag) {
			continue
		}
		g.GenerateConstructors(id, tag, true)
	}
}

// lookup introspects id without resolving it.
func (g *Generator) lookup(id string) (*taskdef.TaskDefinition, bool) {
	if t, ok := g.resolved[id]; ok && t.def != nil {
		return t.def, true
	}
	if g.missing[id] {
		return nil, false
	}
	def, err := g.provider.Introspect(id)
	if err != nil {
		g.missing[id] = true
		g.log.Debug("type not introspectable, skipping", "type", id, "err", err)
		return nil, false
	}
	return def, true
}

// ResolveClass makes sure a class exists for id, emitting its wrapper on
// first use. It reports false when id cannot be introspected.
func (g *Generator) ResolveClass(id string) bool {
	if t, ok := g.resolved[id]; ok {
		if t.def == nil {
			def, ok := g.lookup(id)
			if !ok {
				return false
			}
			t.def = def
		}
		return true
	}
	def, ok := g.lookup(id)
	if !ok {
		return false
	}
	g.addTarget(def)
	return true
}

func (g *Generator) addTarget(def *taskdef.TaskDefinition) {
	name := g.namer.ResultName(def.ID)
	var containers []string
	for _, n := range def.NestedTypes() {
		if g.NeedsContainer(n) {
			containers = append(containers, g.containers.name(n))
		}
	}
	g.structure.Register(schema.NewClass(name, def.ID, containers))

	_, ident := naming.SplitQualified(name)
	t := &target{
		id:    def.ID,
		def:   def,
		class: name,
		file:  g.newFile(naming.ToSnake(ident)+".gen.go", def.ID),
	}
	g.resolved[def.ID] = t
	g.log.Debug("class resolved", "type", def.ID, "class", name)

	g.fail(g.emit.Wrapper(t.file, emit.Wrapper{
		Type:          name,
		Source:        def.ID,
		Attributes:    builder.MapAttributes(def, name, g.framework()),
		TextContainer: def.TextContainer,
		Condition:     def.Condition,
		Containers:    containers,
	}))

	for _, n := range def.Nested {
		g.renderNestedElement(t, n)
	}
	g.containers.Resolve(def.Capabilities)
	g.containers.Resolve(def.NestedTypes())
}

// renderNestedElement emits the builder methods for one nested element on
// the owner's wrapper type.
func (g *Generator) renderNestedElement(owner *target, n taskdef.NestedElement) {
	if g.structure.ContainsFunction(owner.class, n.Tag) {
		return
	}
	if !g.ResolveClass(n.Type) {
		g.log.Debug("nested element type not resolvable, skipping", "owner", owner.id, "tag", n.Tag, "type", n.Type)
		return
	}
	parent := builder.Parent{Kind: builder.ParentOwner, Type: owner.class}
	g.render(owner.file, parent, n.Tag, g.resolved[n.Type])
}

// GenerateConstructors emits the builders for tag producing the resolved
// type id: under the root container when topLevel is set and the type may
// appear there, and under the container of every capability that needs one.
func (g *Generator) GenerateConstructors(id, tag string, topLevel bool) {
	t, ok := g.resolved[id]
	if !ok || t.def == nil {
		return
	}
	f := g.fileFor(t)
	if topLevel && t.def.TopLevel() {
		g.render(f, builder.Parent{Kind: builder.ParentRoot, Type: g.RootContainer()}, tag, t)
	}
	for _, c := range t.def.Capabilities {
		if !g.NeedsContainer(c) {
			g.log.Debug("capability has no container, skipping", "tag", tag, "type", id, "capability", c)
			continue
		}
		g.containers.Resolve([]string{c})
		g.render(f, builder.Parent{Kind: builder.ParentContainer, Type: g.containers.name(c)}, tag, t)
	}
}

// render emits both builder forms for el under parent and records the
// builder in the schema. It is a no-op when the parent already has a
// builder for tag.
func (g *Generator) render(f *emit.SourceFile, parent builder.Parent, tag string, el *target) {
	if g.structure.ContainsFunction(parent.Type, tag) {
		return
	}
	attrs := builder.MapAttributes(el.def, el.class, g.framework())
	decls := builder.Plan(el.def, parent, tag, el.class, g.RootContainer(), attrs)

	scope := ""
	if parent.Kind == builder.ParentOwner {
		scope = parent.Type + "."
	}
	for _, d := range decls {
		if g.funcs[scope+d.FuncName()] {
			g.log.Warn("builder name already taken, skipping", "tag", tag, "func", d.FuncName(), "parent", parent.Type)
			return
		}
	}
	for _, d := range decls {
		g.funcs[scope+d.FuncName()] = true
		g.fail(g.emit.Builder(f, d))
	}
	g.fail(g.structure.AddFunction(parent.Type, tag, builder.Name(parent, tag), g.opts.ImportPath, attrs, el.class))
}

// NeedsContainer reports whether capability id gets a container. Standard
// library types and ids under a configured prefix do not.
func (g *Generator) NeedsContainer(id string) bool {
	for _, p := range g.opts.NoContainer {
		if p != "" && strings.HasPrefix(id, p) {
			return false
		}
	}
	return !naming.IsStdlib(naming.PackageOf(id))
}

// Preload loads the structure of an earlier run.
//
// A structure generated into the same output package only pins the type
// names, since its files are generated again. A structure from another
// package is merged: its types become external, its builders are never
// emitted again, and its runtime package replaces the configured one so
// that both libraries share the same node types.
func (g *Generator) Preload(s *schema.Structure) {
	if s == nil {
		return
	}
	names := s.SortedNames()

	if g.samePackage(s) {
		for _, name := range names {
			c := s.Classes[name]
			switch {
			case c.Source != "":
				g.namer.Claim(c.Source, name)
			case c.Capability != "":
				g.namer.ClaimContainer(c.Capability, name)
			}
		}
		return
	}

	if s.Runtime != "" && s.Runtime != g.emit.Runtime {
		if g.runtimeSet {
			g.log.Warn("preloaded structures use different runtimes, keeping the first", "runtime", g.emit.Runtime, "ignored", s.Runtime)
		} else {
			g.switchRuntime(s.Runtime)
		}
	}
	g.runtimeSet = true

	g.structure.Merge(s)
	for _, name := range names {
		c := s.Classes[name]
		switch {
		case c.Source != "":
			if _, ok := g.resolved[c.Source]; !ok {
				g.resolved[c.Source] = &target{id: c.Source, class: name, external: true}
			}
		case c.Capability != "":
			g.containers.adopt(c.Capability, name)
		}
	}
	g.log.Debug("structure preloaded", "classes", len(s.Classes), "runtime", g.emit.Runtime)
}

func (g *Generator) samePackage(s *schema.Structure) bool {
	for _, c := range s.Classes {
		if c.Source == "" && c.Capability == "" {
			continue
		}
		pkg, _ := naming.SplitQualified(c.Name)
		return pkg == g.opts.ImportPath
	}
	return false
}

// switchRuntime moves the root classes to runtime. Roots that already carry
// builders are kept.
func (g *Generator) switchRuntime(runtime string) {
	for _, name := range []string{"TaskContainer", "Project", "Target"} {
		if c, ok := g.structure.Class(g.rt(name)); ok && len(c.Functions) == 0 {
			delete(g.structure.Classes, c.Name)
		}
	}
	g.emit.Runtime = runtime
	g.registerRoots()
}

// Files returns the non-empty generated files sorted by path.
func (g *Generator) Files() []*emit.SourceFile {
	out := make([]*emit.SourceFile, 0, len(g.files))
	for _, f := range g.files {
		if !f.Empty() {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// WriteTo writes every generated file under root. Files that fail to format
// are still written; all errors are returned together.
func (g *Generator) WriteTo(root string) error {
	var errs []error
	for _, f := range g.Files() {
		if err := emit.Dump(f, root); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
