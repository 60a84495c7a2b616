// Package vcs queries local git working copies through the git binary.
package vcs

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// DefaultBinary is the git executable looked up on PATH.
const DefaultBinary = "git"

// Git answers the two questions the graph builder asks a working copy.
type Git interface {
	// TopLevel resolves the top-level directory of the working copy that
	// contains dir. ok is false when dir is not inside a working copy.
	TopLevel(ctx context.Context, dir string) (topLevel string, ok bool)

	// OriginURL returns the configured remote.origin.url of the working copy
	// at dir. ok is false when no origin is configured.
	OriginURL(ctx context.Context, dir string) (url string, ok bool)
}

// ExecGit implements Git by running the git binary with dir as its working
// directory.
type ExecGit struct {
	Binary string
}

// NewExecGit creates an ExecGit for binary, defaulting to "git".
func NewExecGit(binary string) *ExecGit {
	if binary == "" {
		binary = DefaultBinary
	}
	return &ExecGit{Binary: binary}
}

// TopLevel runs `git rev-parse --show-toplevel`.
func (g *ExecGit) TopLevel(ctx context.Context, dir string) (string, bool) {
	return g.singleLine(ctx, dir, "rev-parse", "--show-toplevel")
}

// OriginURL runs `git config --get remote.origin.url`.
func (g *ExecGit) OriginURL(ctx context.Context, dir string) (string, bool) {
	return g.singleLine(ctx, dir, "config", "--get", "remote.origin.url")
}

// singleLine succeeds only when git exits zero and prints exactly one line.
func (g *ExecGit) singleLine(ctx context.Context, dir string, args ...string) (string, bool) {
	out, err := g.run(ctx, dir, args...)
	if err != nil {
		return "", false
	}
	lines := strings.Split(strings.TrimRight(out, "\r\n"), "\n")
	if len(lines) != 1 || lines[0] == "" {
		return "", false
	}
	return strings.TrimRight(lines[0], "\r"), true
}

// run executes git and returns its stdout. stderr is discarded.
func (g *ExecGit) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.Binary, args...)
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out

	err := cmd.Run()
	return out.String(), err
}
