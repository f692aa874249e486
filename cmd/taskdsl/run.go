package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/sghaida/taskdsl/alias"
	"github.com/sghaida/taskdsl/bundle"
	"github.com/sghaida/taskdsl/dsl"
	"github.com/sghaida/taskdsl/emit"
	"github.com/sghaida/taskdsl/generator"
	"github.com/sghaida/taskdsl/internal/config"
	"github.com/sghaida/taskdsl/schema"
)

// Output layout below the --out directory.
const (
	srcDir     = "src"
	binDir     = "bin"
	runtimeDir = "dsl"
)

// report summarizes a run.
type report struct {
	SrcRoot   string
	Files     int
	Aliases   int
	Structure string
	Archive   string
}

// generate performs a full run: it loads the classpath and alias sources,
// generates the builder library, copies the runtime, persists the structure
// and optionally compiles and packages the result.
func generate(ctx context.Context, cfg *config.Config, aliasFiles []string, logger *log.Logger, stdout, stderr io.Writer) (*report, error) {
	outRoot, err := filepath.Abs(cfg.Out)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	srcRoot := filepath.Join(outRoot, srcDir)

	cp, err := bundle.Load(cfg.Classpath, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cp.Close() }()

	sources := append([]string(nil), aliasFiles...)
	if cfg.Seek {
		found := cp.AliasSources()
		logger.Debug("alias sources found in bundles", "count", len(found))
		sources = append(sources, found...)
	}
	aliases, err := alias.Load(sources, cp.Opener(), logger)
	if err != nil {
		return nil, err
	}

	modPath, created, err := sourceModule(srcRoot, cfg.Module)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Debug("go.mod created", "module", modPath)
	}

	runtimePath := path.Join(modPath, runtimeDir)
	g, err := generator.New(cp.Provider(), generator.Options{
		Package:       cfg.Package,
		ImportPath:    path.Join(modPath, cfg.Package),
		RuntimePath:   runtimePath,
		SourcePrefix:  cfg.SourcePrefix,
		ReferenceType: cfg.ReferenceType,
		NoContainer:   cfg.NoContainer,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	for _, p := range cfg.Schema {
		s, err := schema.Load(p)
		if err != nil {
			return nil, fmt.Errorf("preload %s: %w", p, err)
		}
		g.Preload(s)
	}

	in := generator.Input{Aliases: aliases}
	if cfg.DefaultAliases {
		in.Defaults = cp.Definitions()
	}
	genErr := g.Generate(ctx, in)
	if errors.Is(genErr, context.Canceled) || errors.Is(genErr, context.DeadlineExceeded) {
		return nil, genErr
	}

	var errs []error
	errs = append(errs, genErr, g.WriteTo(srcRoot))

	if g.Runtime() == runtimePath {
		if err := copyRuntime(filepath.Join(srcRoot, runtimeDir)); err != nil {
			return nil, err
		}
	} else {
		logger.Info("using runtime of preloaded library", "runtime", g.Runtime())
	}

	rep := &report{
		SrcRoot:   srcRoot,
		Files:     len(g.Files()),
		Aliases:   len(aliases),
		Structure: filepath.Join(outRoot, filepath.FromSlash(schema.FileName)),
	}
	if err := g.Structure().Save(rep.Structure); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return rep, err
	}

	if cfg.Compile {
		if err := compile(ctx, srcRoot, stdout, stderr); err != nil {
			return rep, err
		}
		binStructure := filepath.Join(outRoot, binDir, filepath.FromSlash(schema.FileName))
		if err := g.Structure().Save(binStructure); err != nil {
			return rep, err
		}
	}
	if cfg.Jar {
		rep.Archive = filepath.Join(outRoot, filepath.FromSlash(archiveName))
		if err := archive(rep.Archive, srcRoot, rep.Structure); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

// copyRuntime writes the runtime package sources into dir.
func copyRuntime(dir string) error {
	files, err := dsl.Files()
	if err != nil {
		return fmt.Errorf("read runtime sources: %w", err)
	}
	for _, name := range dsl.FileNames() {
		if err := emit.WriteFileAtomic(filepath.Join(dir, name), files[name], 0o644); err != nil {
			return fmt.Errorf("copy runtime %s: %w", name, err)
		}
	}
	return nil
}
