package dsl

import (
	"errors"
	"fmt"
)

// Executor runs and evaluates outermost nodes.
type Executor interface {
	Execute(n *Node) error
	Eval(n *Node) (bool, error)
}

// ExecutorFuncs adapts two functions to Executor. A nil function does
// nothing and evaluates to false.
type ExecutorFuncs struct {
	ExecuteFunc func(n *Node) error
	EvalFunc    func(n *Node) (bool, error)
}

// Execute implements Executor.
func (e ExecutorFuncs) Execute(n *Node) error {
	if e.ExecuteFunc == nil {
		return nil
	}
	return e.ExecuteFunc(n)
}

// Eval implements Executor.
func (e ExecutorFuncs) Eval(n *Node) (bool, error) {
	if e.EvalFunc == nil {
		return false, nil
	}
	return e.EvalFunc(n)
}

// ErrUnknownTarget is returned by Run for a target that was never declared.
var ErrUnknownTarget = errors.New("dsl: unknown target")

// Project is the root of a build script. Tasks built directly on a project
// belong to its implicit default target and run immediately.
type Project struct {
	n        *Node
	name     string
	executor Executor
	props    map[string]string

	implicit *Target
	targets  []*Target
	byName   map[string]*Target
	def      string
	errs     []error
	refSeq   int
}

// NewProject creates a project. A nil executor runs nothing.
func NewProject(name string, executor Executor) *Project {
	if executor == nil {
		executor = ExecutorFuncs{}
	}
	p := &Project{
		name:     name,
		executor: executor,
		props:    map[string]string{},
		byName:   map[string]*Target{},
	}
	p.n = &Node{project: p, tag: "project", typeID: "project", attrs: map[string]any{}}
	p.implicit = &Target{name: "", project: p}
	p.implicit.n = &Node{project: p, target: p.implicit, tag: "target", typeID: "target", attrs: map[string]any{}}
	p.n.target = p.implicit
	return p
}

// DSLNode implements Task.
func (p *Project) DSLNode() *Node { return p.n }

// IsDSLTaskContainer implements TaskContainer.
func (p *Project) IsDSLTaskContainer() {}

// Name returns the project name.
func (p *Project) Name() string { return p.name }

// Target declares a target. Its body runs when the target is run.
func (p *Project) Target(name string, body func(TaskContainer), depends ...string) *Target {
	t := &Target{name: name, project: p, body: body, depends: depends}
	t.n = &Node{project: p, target: t, tag: "target", typeID: "target", attrs: map[string]any{}}
	p.targets = append(p.targets, t)
	p.byName[name] = t
	return t
}

// Default marks the target run when Run is called without names.
func (p *Project) Default(name string) { p.def = name }

// Targets returns the declared targets in declaration order.
func (p *Project) Targets() []*Target { return p.targets }

// Run runs the named targets, or the default target, after their
// dependencies. Each target runs at most once per call.
func (p *Project) Run(names ...string) error {
	if len(names) == 0 && p.def != "" {
		names = []string{p.def}
	}
	done := map[string]bool{}
	for _, name := range names {
		if err := p.run(name, done, map[string]bool{}); err != nil {
			return err
		}
	}
	return p.Err()
}

func (p *Project) run(name string, done, visiting map[string]bool) error {
	if done[name] {
		return nil
	}
	t, ok := p.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, name)
	}
	if visiting[name] {
		return fmt.Errorf("dsl: circular dependency on target %s", name)
	}
	visiting[name] = true
	for _, dep := range t.depends {
		if err := p.run(dep, done, visiting); err != nil {
			return err
		}
	}
	done[name] = true
	if t.body != nil {
		t.body(t)
	}
	return nil
}

// Err returns every failure recorded while executing tasks.
func (p *Project) Err() error { return errors.Join(p.errs...) }

func (p *Project) fail(err error) { p.errs = append(p.errs, err) }

// Tasks returns the outermost tasks built directly on the project.
func (p *Project) Tasks() []*Node { return p.implicit.tasks }

// Target is a named group of tasks.
type Target struct {
	n       *Node
	name    string
	project *Project
	body    func(TaskContainer)
	depends []string
	tasks   []*Node
}

// DSLNode implements Task.
func (t *Target) DSLNode() *Node { return t.n }

// IsDSLTaskContainer implements TaskContainer.
func (t *Target) IsDSLTaskContainer() {}

// Name returns the target name.
func (t *Target) Name() string { return t.name }

// Tasks returns the outermost tasks built in the target, in build order.
func (t *Target) Tasks() []*Node { return t.tasks }
