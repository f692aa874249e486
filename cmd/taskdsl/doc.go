// Command taskdsl generates a typed Go builder library from task definitions.
//
// Task definitions come from component bundles on the classpath: directories
// or zip archives carrying *.taskdef.cue, *.taskdef.json or *.taskdef.yaml
// descriptors. An alias maps a tag to a definition; for every alias taskdsl
// emits builder functions that construct the task, assign its attributes,
// run an initializer block, configure it and, at the top level, execute it.
//
// # Usage
//
//	taskdsl -c <bundles> -o <out> [--seek] [--default-aliases] [--compile] [--jar] [alias files...]
//
// Alias files are .properties (tag=type, top level), .xml (taskdef/typedef
// or alias entries), .yaml/.yml (aliases: [{tag, type, toplevel}]) or .toml
// ([[alias]] tables). Files that do not exist are reported and skipped.
//
// # Output
//
//	<out>/src/go.mod                     created unless <out>/src is inside a module
//	<out>/src/dsl/                       runtime package the builders run on
//	<out>/src/<package>/*.gen.go         wrappers, builders and containers
//	<out>/resources/structure.json       structure of the generated library
//	<out>/bin/resources/structure.json   with --compile
//	<out>/dist/taskdsl.zip               with --jar
//
// A later run can pass the structure file with --schema. Builders the
// earlier library already has are not generated again, and the new library
// shares the earlier runtime package.
//
// # Configuration
//
// Every flag can also be set in taskdsl.yaml (snake_case keys) or through a
// TASKDSL_ environment variable (TASKDSL_DEFAULT_ALIASES=true). Flags win
// over the environment, which wins over the file.
package main
