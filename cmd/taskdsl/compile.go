package main

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// execCommand is overridden in tests.
var execCommand = exec.CommandContext

// compile builds every package of the source tree with the go toolchain.
func compile(ctx context.Context, srcRoot string, stdout, stderr io.Writer) error {
	cmd := execCommand(ctx, "go", "build", "./...")
	cmd.Dir = srcRoot
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("compile generated sources: %w", err)
	}
	return nil
}
