package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/sghaida/taskdsl/internal/config"
	"github.com/sghaida/taskdsl/internal/logging"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "taskdsl [flags] [alias files...]",
		Short: "Generate a typed Go builder library from task definitions",
		Long: `taskdsl reads task definitions from component bundles and generates a Go
package of typed builder functions for them, together with the runtime
package the builders run on and a structure file describing the library.

Builders are generated for the aliases listed in the alias files given as
arguments, for the alias files found inside bundles (--seek), and for every
top-level definition of the classpath (--default-aliases).`,
		Example: `  taskdsl -c ./tasks -o build aliases.properties
  taskdsl -c tasks.zip -o build --seek --default-aliases --jar`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			// Arguments are valid from here on; failures are not usage errors.
			cmd.SilenceUsage = true

			rep, err := generate(cmd.Context(), cfg, args, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if rep != nil {
				logger.Info("generated", "files", rep.Files, "aliases", rep.Aliases, "src", rep.SrcRoot)
				if rep.Archive != "" {
					logger.Info("packaged", "archive", rep.Archive)
				}
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringSliceP("classpath", "c", nil, "component bundles (directories or zip archives), repeated or path-list separated")
	f.StringP("out", "o", "", "output directory (required)")
	f.Bool("seek", false, "also read alias files found inside the bundles")
	f.Bool("default-aliases", false, "generate builders for every top-level definition under its simple name")
	f.Bool("compile", false, "build the generated sources with the go toolchain")
	f.Bool("jar", false, "package sources and structure into "+archiveName)
	f.StringSlice("schema", nil, "structure files of earlier runs to preload")
	f.String("package", "", "name of the generated package (default dslgen)")
	f.String("module", "", "module path used when the output is not inside a Go module")
	f.String("source-prefix", "", "type id prefix stripped when a type name must be package-qualified")
	f.String("reference-type", "", "attribute type id of framework references")
	f.StringSlice("no-container", nil, "capability id prefixes that never get a container")
	f.String("log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&cfgFile, "config", "", "config file (default is ./taskdsl.yaml)")

	return cmd
}

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
