// Package taskdsl generates typed Go builder libraries for task definitions.
//
// A task definition describes a component type: its attributes, the nested
// elements it accepts, the capabilities it implements and whether it runs,
// evaluates to a boolean or can be referenced. taskdsl turns a set of them
// into a Go package of builder functions, so task trees are written as
// ordinary, type-checked Go:
//
//	p := dsl.NewProject("build", executor)
//	p.Target("dist", func(c dsl.TaskContainer) {
//		dslgen.MkdirWith(c, dslgen.DSLMkdirAttrs{Dir: dsl.Ptr("out")}, nil)
//		dslgen.CopyWith(c, dslgen.DSLCopyAttrs{Todir: dsl.Ptr("out")}, func(cp *dslgen.DSLCopy) {
//			cp.Fileset(dslgen.DSLFileSetAttrs{Dir: dsl.Ptr("src")})
//		})
//	})
//
// Packages:
//   - taskdef: task definitions and the providers that introspect them
//   - bundle: component bundles (directories or zip archives) and descriptors
//   - alias: alias sources in properties, XML, YAML and TOML form
//   - generator: the generation run; schema, builder, emit and naming support it
//   - dsl: the runtime package copied next to every generated library
//   - cmd/taskdsl: the command line tool
package taskdsl
