package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// FakeGit answers working copy queries from the filesystem alone: a directory
// containing a ".git" entry is a repository root, and origins come from a map
// keyed by root. Lookups walk up from the queried directory like git does.
//
// Thread-safety: FakeGit is safe for concurrent use via internal mutex.
type FakeGit struct {
	mu      sync.Mutex
	origins map[string]string
	calls   int
}

// NewFakeGit creates a FakeGit with no configured origins.
func NewFakeGit() *FakeGit {
	return &FakeGit{origins: make(map[string]string)}
}

// SetOrigin configures the origin url of the repository rooted at dir.
func (g *FakeGit) SetOrigin(dir, url string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.origins[filepath.Clean(dir)] = url
}

// Calls returns how many queries were answered.
func (g *FakeGit) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// TopLevel returns the nearest ancestor of dir (dir included) holding ".git".
func (g *FakeGit) TopLevel(_ context.Context, dir string) (string, bool) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	dir = filepath.Clean(dir)
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// OriginURL returns the origin configured with SetOrigin.
func (g *FakeGit) OriginURL(_ context.Context, dir string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	url, ok := g.origins[filepath.Clean(dir)]
	return url, ok
}

// Submodule is one .gitmodules entry written by WriteGitmodules.
type Submodule struct {
	Name string
	Path string
	URL  string
}

// MakeRepo creates a repository root at dir (a ".git" directory) and
// registers origin on git when it is non-empty.
func MakeRepo(t *testing.T, git *FakeGit, dir, origin string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0755); err != nil {
		t.Fatalf("create repo %s: %v", dir, err)
	}
	if origin != "" {
		git.SetOrigin(dir, origin)
	}
	return dir
}

// WriteGitmodules writes a .gitmodules file declaring subs at the root dir.
func WriteGitmodules(t *testing.T, dir string, subs ...Submodule) {
	t.Helper()
	var b strings.Builder
	for _, s := range subs {
		b.WriteString("[submodule \"" + s.Name + "\"]\n")
		b.WriteString("\tpath = " + s.Path + "\n")
		b.WriteString("\turl = " + s.URL + "\n")
	}
	if err := os.WriteFile(filepath.Join(dir, ".gitmodules"), []byte(b.String()), 0644); err != nil {
		t.Fatalf("write .gitmodules in %s: %v", dir, err)
	}
}
