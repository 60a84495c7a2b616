package scan

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/repograph/internal/model"
	"github.com/roach88/repograph/internal/store"
	"github.com/roach88/repograph/internal/testutil"
)

type fixture struct {
	root  string
	git   *testutil.FakeGit
	store *store.Store
	logs  *bytes.Buffer
	log   *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dir := t.TempDir()
	st, err := store.Create(filepath.Join(dir, "graph.db"), store.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	root := filepath.Join(dir, "repos")
	return &fixture{root: root, git: testutil.NewFakeGit(), store: st, logs: logs, log: logger}
}

func (f *fixture) builder() *Builder {
	return NewBuilder(f.store, f.git, f.log, "")
}

func (f *fixture) projects(t *testing.T) map[string]model.Project {
	t.Helper()
	projects, err := f.store.Projects(t.Context())
	require.NoError(t, err)
	byName := make(map[string]model.Project, len(projects))
	for _, p := range projects {
		byName[p.Name] = p
	}
	require.Len(t, byName, len(projects), "duplicate project rows")
	return byName
}

// edgeNames renders stored edges as "from->to" by project name.
func (f *fixture) edgeNames(t *testing.T) []string {
	t.Helper()
	projects, err := f.store.Projects(t.Context())
	require.NoError(t, err)
	names := make(map[model.ID]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	edges, err := f.store.Edges(t.Context())
	require.NoError(t, err)
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = names[e.From] + "->" + names[e.To]
	}
	return out
}

func (f *fixture) warnings() int {
	return strings.Count(f.logs.String(), "level=WARN")
}
