package bundle

import (
	_ "embed"
	"errors"
	"fmt"
	"path"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/sghaida/taskdsl/taskdef"
)

//go:embed descriptor_schema.cue
var descriptorSchema []byte

// MaxDescriptorSize bounds the size of a single descriptor entry.
const MaxDescriptorSize = 5 * 1024 * 1024

// ErrInvalidDescriptor wraps every descriptor validation failure.
var ErrInvalidDescriptor = errors.New("bundle: invalid descriptor")

var descriptorSuffixes = []string{".taskdef.cue", ".taskdef.json", ".taskdef.yaml", ".taskdef.yml"}

// IsDescriptor reports whether an entry name is a task definition descriptor.
func IsDescriptor(name string) bool {
	base := strings.ToLower(path.Base(name))
	for _, s := range descriptorSuffixes {
		if strings.HasSuffix(base, s) {
			return true
		}
	}
	return false
}

type descriptor struct {
	Tasks []taskdef.TaskDefinition `json:"tasks"`
}

// ParseDescriptor validates a descriptor against the embedded schema and
// decodes its task definitions. The format follows the extension of name:
// CUE and JSON are compiled directly, YAML is extracted first.
func ParseDescriptor(name string, data []byte) ([]taskdef.TaskDefinition, error) {
	if len(data) > MaxDescriptorSize {
		return nil, fmt.Errorf("%w: %s: %d bytes exceeds limit of %d", ErrInvalidDescriptor, name, len(data), MaxDescriptorSize)
	}

	ctx := cuecontext.New()

	schema := ctx.CompileBytes(descriptorSchema)
	if schema.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile descriptor schema: %w", schema.Err())
	}
	root := schema.LookupPath(cue.ParsePath("#Descriptor"))
	if root.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition #Descriptor not found: %w", root.Err())
	}

	var user cue.Value
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		f, err := cueyaml.Extract(name, data)
		if err != nil {
			return nil, formatError(err, name)
		}
		user = ctx.BuildFile(f)
	} else {
		user = ctx.CompileBytes(data, cue.Filename(name))
	}
	if user.Err() != nil {
		return nil, formatError(user.Err(), name)
	}

	unified := root.Unify(user)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatError(err, name)
	}

	var d descriptor
	if err := unified.Decode(&d); err != nil {
		return nil, formatError(err, name)
	}
	return d.Tasks, nil
}

// formatError flattens CUE errors into "<file>: <path>: <message>" lines.
func formatError(err error, name string) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDescriptor, name, err)
	}
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		p := strings.Join(cueerrors.Path(e), ".")
		msg := e.Error()
		if p != "" && strings.HasPrefix(msg, p) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, p), ":"))
		}
		if p != "" {
			lines = append(lines, p+": "+msg)
		} else {
			lines = append(lines, msg)
		}
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidDescriptor, name, strings.Join(lines, "; "))
}
