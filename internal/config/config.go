// Package config loads taskdsl settings.
//
// Precedence, lowest to highest: built-in defaults, the config file
// (taskdsl.yaml in the working directory unless one is named explicitly),
// TASKDSL_* environment variables, and flags that were set on the command
// line.
package config

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TASKDSL_"

// DefaultFiles are looked up in the working directory when no config file
// is named.
var DefaultFiles = []string{"taskdsl.yaml", "taskdsl.yml"}

var (
	// ErrMissingOutDir is returned when no output directory is configured.
	ErrMissingOutDir = errors.New("config: output directory is required")
	// ErrInvalidPackage is returned for an output package name that is not
	// a Go identifier.
	ErrInvalidPackage = errors.New("config: invalid package name")
)

// Config holds all generator settings.
type Config struct {
	Classpath      []string `koanf:"classpath"`
	Out            string   `koanf:"out"`
	Seek           bool     `koanf:"seek"`
	DefaultAliases bool     `koanf:"default_aliases"`
	Compile        bool     `koanf:"compile"`
	Jar            bool     `koanf:"jar"`
	Schema         []string `koanf:"schema"`
	Package        string   `koanf:"package"`
	Module         string   `koanf:"module"`
	SourcePrefix   string   `koanf:"source_prefix"`
	ReferenceType  string   `koanf:"reference_type"`
	NoContainer    []string `koanf:"no_container"`
	LogLevel       string   `koanf:"log_level"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"package":         "dslgen",
		"module":          "taskdsl.local/generated",
		"reference_type":  "taskdef.Reference",
		"log_level":       "info",
		"seek":            false,
		"default_aliases": false,
		"compile":         false,
		"jar":             false,
	}
}

// findConfigFile returns explicit or the first default file that exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads the configuration. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// TASKDSL_DEFAULT_ALIASES -> default_aliases
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	cfg.Classpath = splitAll(cfg.Classpath, string(os.PathListSeparator))
	cfg.Schema = splitAll(cfg.Schema, string(os.PathListSeparator))
	cfg.NoContainer = splitAll(cfg.NoContainer, ",")
	return &cfg, nil
}

// splitAll splits every entry on sep and drops blanks. Environment
// variables arrive as one string per list.
func splitAll(in []string, sep string) []string {
	var out []string
	for _, s := range in {
		for _, p := range strings.Split(s, sep) {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate checks the settings a run cannot do without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Out) == "" {
		return ErrMissingOutDir
	}
	if !token.IsIdentifier(c.Package) || c.Package == "dsl" {
		return fmt.Errorf("%w: %q", ErrInvalidPackage, c.Package)
	}
	if strings.TrimSpace(c.Module) == "" {
		return errors.New("config: module path is required")
	}
	return nil
}
