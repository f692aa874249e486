package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sghaida/taskdsl/emit"
)

// goVersion is written into go.mod files created for standalone output trees.
const goVersion = "1.25"

type cmdError struct{ msg string }

func (e *cmdError) Error() string { return e.msg }

// findModule walks up from startDir to the nearest go.mod and returns its
// directory and module path.
func findModule(startDir string) (modRoot string, modPath string, err error) {
	dir := startDir
	for {
		gomod := filepath.Join(dir, "go.mod")
		if fileExists(gomod) {
			b, rerr := os.ReadFile(gomod)
			if rerr != nil {
				return "", "", rerr
			}
			for _, ln := range strings.Split(string(b), "\n") {
				ln = strings.TrimSpace(ln)
				if ln == "module" || strings.HasPrefix(ln, "module ") {
					mod := strings.Trim(strings.TrimSpace(strings.TrimPrefix(ln, "module")), `"`)
					if mod == "" {
						return "", "", &cmdError{msg: "go.mod has empty module path at " + filepath.ToSlash(gomod)}
					}
					return dir, mod, nil
				}
			}
			return "", "", &cmdError{msg: "go.mod missing module directive at " + filepath.ToSlash(gomod)}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", "", &cmdError{msg: "could not find go.mod starting from " + filepath.ToSlash(startDir)}
}

// moduleImportPathForDir returns the import path of dir inside the module
// rooted at modRoot.
func moduleImportPathForDir(modRoot, modPath, dir string) (string, error) {
	rel, err := filepath.Rel(modRoot, dir)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)

	if rel == "." {
		return modPath, nil
	}
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return "", &cmdError{msg: "directory is outside module root: dir=" + filepath.ToSlash(dir) + " modRoot=" + filepath.ToSlash(modRoot)}
	}
	return modPath + "/" + rel, nil
}

// sourceModule decides the import path of the source root. A source root
// inside an existing module uses that module; otherwise a go.mod declaring
// fallback is created in it.
func sourceModule(srcRoot, fallback string) (importPath string, created bool, err error) {
	if modRoot, modPath, ferr := findModule(srcRoot); ferr == nil {
		p, err := moduleImportPathForDir(modRoot, modPath, srcRoot)
		return p, false, err
	}
	content := "module " + fallback + "\n\ngo " + goVersion + "\n"
	if err := emit.WriteFileAtomic(filepath.Join(srcRoot, "go.mod"), []byte(content), 0o644); err != nil {
		return "", false, fmt.Errorf("write go.mod: %w", err)
	}
	return fallback, true, nil
}

func dirExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
