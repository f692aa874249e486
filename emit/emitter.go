package emit

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/sghaida/taskdsl/builder"
	"github.com/sghaida/taskdsl/naming"
	"github.com/sghaida/taskdsl/schema"
)

// Emitter renders wrappers, builders and containers against the runtime
// package at import path Runtime.
type Emitter struct {
	Runtime string
}

// NewEmitter returns an emitter for the runtime at import path runtime.
func NewEmitter(runtime string) *Emitter { return &Emitter{Runtime: runtime} }

func (e *Emitter) rt(name string) string { return naming.Qualify(e.Runtime, name) }

// PathType is the qualified name of the runtime path type.
func (e *Emitter) PathType() string { return e.rt("Path") }

// TaskContainerType is the qualified name of the runtime root container.
func (e *Emitter) TaskContainerType() string { return e.rt("TaskContainer") }

// Wrapper describes a generated wrapper type.
type Wrapper struct {
	// Type is the qualified wrapper name.
	Type string
	// Source is the task definition identifier.
	Source        string
	Attributes    []schema.AttributeDescriptor
	TextContainer bool
	Condition     bool
	// Containers are the qualified container names the wrapper satisfies.
	Containers []string
}

type fieldView struct {
	Name   string
	Attr   string
	Type   string
	Setter string
	Deref  bool
}

var wrapperTpl = template.Must(template.New("wrapper").Parse(`
// {{.Ident}} wraps {{.Source}}.
type {{.Ident}} struct{ n *{{.Node}} }

// New{{.Ident}} creates the wrapper for a {{.Source}} element built under parent.
func New{{.Ident}}(parent {{.Task}}, tag string, outermost bool) *{{.Ident}} {
	return &{{.Ident}}{n: {{.NewNode}}(parent, {{printf "%q" .Source}}, tag, outermost)}
}

// DSLNode implements {{.Task}}.
func (o *{{.Ident}}) DSLNode() *{{.Node}} { return o.n }
{{- range .Fields }}

// {{.Setter}} sets the {{.Attr}} attribute.
func (o *{{$.Ident}}) {{.Setter}}(v {{.Type}}) { o.n.Set({{printf "%q" .Attr}}, v) }
{{- end }}
{{- if .Fields }}

// {{.Ident}}Attrs holds the optional attributes of {{.Ident}} builders.
// Nil fields are left unset.
type {{.Ident}}Attrs struct {
{{- range .Fields }}
	{{.Name}} {{if .Deref}}*{{end}}{{.Type}}
{{- end }}
}

// ApplyDSLAttrs assigns every attribute set in a.
func (o *{{.Ident}}) ApplyDSLAttrs(a {{.Ident}}Attrs) {
{{- range .Fields }}
	if a.{{.Name}} != nil {
		o.{{.Setter}}({{if .Deref}}*{{end}}a.{{.Name}})
	}
{{- end }}
}
{{- end }}
{{- if .TextContainer }}

// IsDSLTextContainer implements {{.TextContainerIface}}.
func (o *{{.Ident}}) IsDSLTextContainer() {}

// AddText appends character data to the element.
func (o *{{.Ident}}) AddText(s string) { o.n.AddText(s) }
{{- end }}
{{- if .Condition }}

// IsDSLCondition implements {{.ConditionIface}}.
func (o *{{.Ident}}) IsDSLCondition() {}
{{- end }}
{{- range .Markers }}

// Is{{.}} implements {{.}}.
func (o *{{$.Ident}}) Is{{.}}() {}
{{- end }}
`))

// Wrapper appends the wrapper type w to f.
func (e *Emitter) Wrapper(f *SourceFile, w Wrapper) error {
	_, ident := naming.SplitQualified(w.Type)
	data := map[string]any{
		"Ident":   ident,
		"Source":  w.Source,
		"Node":    f.Shorten(e.rt("Node")),
		"Task":    f.Shorten(e.rt("Task")),
		"NewNode": f.Shorten(e.rt("NewNode")),
		"Fields":  e.fields(f, w.Attributes),

		"TextContainer": w.TextContainer,
		"Condition":     w.Condition,
	}
	if w.TextContainer {
		data["TextContainerIface"] = f.Shorten(e.rt("TextContainer"))
	}
	if w.Condition {
		data["ConditionIface"] = f.Shorten(e.rt("Condition"))
	}
	markers := make([]string, 0, len(w.Containers))
	for _, c := range w.Containers {
		_, cident := naming.SplitQualified(c)
		markers = append(markers, cident)
	}
	data["Markers"] = markers
	return e.exec(f, wrapperTpl, data)
}

// fields names the attribute fields of a wrapper. Names that collide after
// case conversion get a numeric suffix.
func (e *Emitter) fields(f *SourceFile, attrs []schema.AttributeDescriptor) []fieldView {
	used := map[string]bool{}
	out := make([]fieldView, 0, len(attrs))
	for i, a := range attrs {
		name := naming.Export(naming.ToCamel(a.Name))
		if name == "" || name == "_" {
			name = "Attr" + strconv.Itoa(i)
		}
		base := name
		for n := 2; used[name]; n++ {
			name = base + strconv.Itoa(n)
		}
		used[name] = true
		out = append(out, fieldView{
			Name:   name,
			Attr:   a.Name,
			Type:   e.attrType(f, a),
			Setter: "Set" + name,
			Deref:  a.Kind == schema.KindPrimitive || a.Kind == schema.KindString,
		})
	}
	return out
}

// attrType renders the Go type of an attribute.
func (e *Emitter) attrType(f *SourceFile, a schema.AttributeDescriptor) string {
	switch a.Kind {
	case schema.KindPrimitive:
		return a.Type
	case schema.KindOwnerRef, schema.KindPathRef:
		return "*" + f.Shorten(e.rt("Reference")) + "[*" + f.Shorten(a.Type) + "]"
	default:
		return "string"
	}
}

var containerTpl = template.Must(template.New("container").Parse(`
// {{.Ident}} is implemented by wrappers that accept {{.Source}} elements.
type {{.Ident}} interface {
	{{.Task}}
	Is{{.Ident}}()
}
`))

// Container appends the marker interface name for capability source to f.
func (e *Emitter) Container(f *SourceFile, name, source string) error {
	_, ident := naming.SplitQualified(name)
	return e.exec(f, containerTpl, map[string]any{
		"Ident":  ident,
		"Source": source,
		"Task":   f.Shorten(e.rt("Task")),
	})
}

var builderTpl = template.Must(template.New("builder").Parse(`
// {{.Func}} {{.Doc}}
func {{if .Recv}}({{.Recv}}) {{end}}{{.Func}}({{.Params}}){{if .Result}} {{.Result}}{{end}} {
{{- range .Body }}
	{{.}}
{{- end }}
}
`))

// Builder appends the builder d to f.
func (e *Emitter) Builder(f *SourceFile, d builder.Decl) error {
	elemPkg, elemIdent := naming.SplitQualified(d.Element)
	elem := f.Shorten(d.Element)
	ctor := f.Shorten(naming.Qualify(elemPkg, "New"+elemIdent))

	var recv, parentExpr string
	var params []string
	switch d.Parent.Kind {
	case builder.ParentOwner:
		recv = "o *" + f.Shorten(d.Parent.Type)
		parentExpr = "o"
	default:
		params = append(params, "parent "+f.Shorten(d.Parent.Type))
		parentExpr = "parent"
	}
	if len(d.Params) > 0 {
		params = append(params, "attrs "+f.Shorten(naming.Qualify(elemPkg, elemIdent+"Attrs")))
	}

	initType := "func(*" + elem + ")"
	if d.Container {
		initType = "func(" + f.Shorten(d.InitReceiver) + ")"
	}
	if d.Form == builder.Immediate {
		params = append(params, "body "+initType)
	}

	var result string
	switch d.Return {
	case builder.ReturnBool:
		result = "bool"
	case builder.ReturnReference:
		result = "*" + f.Shorten(e.rt("Reference")) + "[*" + elem + "]"
	}

	var body []string
	for _, st := range d.Steps {
		switch st {
		case builder.StepConstruct:
			body = append(body, fmt.Sprintf("obj := %s(%s, %q, %t)", ctor, parentExpr, d.Tag, d.Parent.Outermost()))
		case builder.StepAssignAttributes:
			body = append(body, "obj.ApplyDSLAttrs(attrs)")
		case builder.StepRunInit:
			body = append(body, "if body != nil {", "\tbody(obj)", "}")
		case builder.StepObtainReference:
			body = append(body, "ref := "+f.Shorten(e.rt("NewReference"))+"(obj)")
		case builder.StepConfigure:
			body = append(body, "obj.DSLNode().Configure()")
		case builder.StepRunContainer:
			body = append(body, f.Shorten(e.rt("RunContainer"))+"(obj, body)")
		case builder.StepExecute:
			body = append(body, "obj.DSLNode().Execute()")
		case builder.StepReturn:
			if d.Return == builder.ReturnBool {
				body = append(body, "return obj.DSLNode().Eval()")
			} else {
				body = append(body, "return ref")
			}
		case builder.StepForward:
			body = append(body, e.forward(d, parentExpr, initType))
		}
	}

	return e.exec(f, builderTpl, map[string]any{
		"Func":   d.FuncName(),
		"Doc":    doc(d),
		"Recv":   recv,
		"Params": strings.Join(params, ", "),
		"Result": result,
		"Body":   body,
	})
}

func (e *Emitter) forward(d builder.Decl, parentExpr, initType string) string {
	imm := d
	imm.Form = builder.Immediate
	var args []string
	call := imm.FuncName()
	if d.Parent.Kind == builder.ParentOwner {
		call = parentExpr + "." + call
	} else {
		args = append(args, parentExpr)
	}
	if len(d.Params) > 0 {
		args = append(args, "attrs")
	}
	args = append(args, initType+" {}")
	stmt := call + "(" + strings.Join(args, ", ") + ")"
	if d.Return != builder.ReturnNothing {
		return "return " + stmt
	}
	return stmt
}

func doc(d builder.Decl) string {
	where := "under parent"
	if d.Parent.Kind == builder.ParentOwner {
		where = "nested in o"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "builds a %s element %s", d.Tag, where)
	if d.Form == builder.Immediate {
		sb.WriteString(" and runs body on it")
	}
	switch d.Return {
	case builder.ReturnBool:
		sb.WriteString(". It returns the evaluated condition")
	case builder.ReturnReference:
		sb.WriteString(". It returns a reference to the element")
	}
	sb.WriteString(".")
	return sb.String()
}

func (e *Emitter) exec(f *SourceFile, tpl *template.Template, data any) error {
	var sb strings.Builder
	if err := tpl.Execute(&sb, data); err != nil {
		return fmt.Errorf("render %s: %w", tpl.Name(), err)
	}
	f.Append(sb.String())
	return nil
}
