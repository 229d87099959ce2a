// Package builder shells out to the external site build tool.
package builder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Builder runs the site tool in a docs directory. Tool is the executable
// name, quarto by default.
type Builder struct {
	Tool    string
	Dir     string
	Timeout time.Duration
}

func New(tool, dir string, timeout time.Duration) *Builder {
	if tool == "" {
		tool = "quarto"
	}
	return &Builder{Tool: tool, Dir: dir, Timeout: timeout}
}

// Check verifies the build tool is installed.
func (b *Builder) Check() error {
	if _, err := exec.LookPath(b.Tool); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", b.Tool, err)
	}
	return nil
}

// Render runs a full site render, blocking until it finishes or the
// timeout elapses. Tool output goes straight to the terminal.
func (b *Builder) Render(ctx context.Context) error {
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}
	return b.run(ctx, "render")
}

// Preview starts the tool's live preview server. It blocks until the
// context is canceled or the server exits.
func (b *Builder) Preview(ctx context.Context) error {
	return b.run(ctx, "preview")
}

func (b *Builder) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, b.Tool, args...)
	cmd.Dir = b.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s %s timed out after %s", b.Tool, args[0], b.Timeout)
		}
		return fmt.Errorf("%s %s: %w", b.Tool, args[0], err)
	}
	return nil
}
