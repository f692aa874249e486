package generator

import (
	"github.com/sghaida/taskdsl/emit"
	"github.com/sghaida/taskdsl/schema"
)

// ContainersFile is the name of the file holding every container interface.
const ContainersFile = "containers.gen.go"

// containerSet emits one container per capability.
type containerSet struct {
	g     *Generator
	file  *emit.SourceFile
	names map[string]string
	done  map[string]bool
}

func newContainerSet(g *Generator) *containerSet {
	return &containerSet{
		g:     g,
		names: map[string]string{},
		done:  map[string]bool{},
	}
}

// name returns the qualified container name for capability id.
func (cs *containerSet) name(id string) string {
	if n, ok := cs.names[id]; ok {
		return n
	}
	n := cs.g.namer.ContainerName(id)
	cs.names[id] = n
	return n
}

// adopt records a container generated by an earlier run.
func (cs *containerSet) adopt(id, name string) {
	cs.names[id] = name
	cs.done[id] = true
}

// Resolve emits the container of every id that needs one and has none yet.
func (cs *containerSet) Resolve(ids []string) {
	for _, id := range ids {
		if cs.done[id] || !cs.g.NeedsContainer(id) {
			continue
		}
		cs.done[id] = true

		name := cs.name(id)
		if cs.file == nil {
			cs.file = cs.g.newFile(ContainersFile, "capability containers")
		}
		cs.g.structure.Register(schema.NewContainerClass(name, id))
		cs.g.fail(cs.g.emit.Container(cs.file, name, id))
		cs.g.log.Debug("container resolved", "capability", id, "container", name)
	}
}

// ResolveContainers emits the containers for the capability ids. Ids that
// already have a container are skipped.
func (g *Generator) ResolveContainers(ids []string) { g.containers.Resolve(ids) }

// ContainerName returns the qualified container name for capability id.
func (g *Generator) ContainerName(id string) string { return g.containers.name(id) }
