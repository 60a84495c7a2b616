package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/roach88/repograph/internal/gitmodules"
	"github.com/roach88/repograph/internal/model"
	"github.com/roach88/repograph/internal/vcs"
)

// ProjectStore is the part of the store the builder writes to.
type ProjectStore interface {
	ResolveProject(ctx context.Context, name, url string) (model.Resolution, error)
	AddEdge(ctx context.Context, from, to model.ID) error
}

// Stats counts what a traversal observed.
type Stats struct {
	Repositories int `json:"repositories"`
	Submodules   int `json:"submodules"`
	Edges        int `json:"edges"`
	Inserted     int `json:"inserted"`
	Skipped      int `json:"skipped"`
	Warnings     int `json:"warnings"`
}

// Builder discovers the submodule dependency graph below a path.
type Builder struct {
	store         ProjectStore
	git           vcs.Git
	logger        *slog.Logger
	submoduleFile string

	stats Stats
}

// NewBuilder creates a builder. submoduleFile is the declaration file name
// looked up at each repository root; empty means ".gitmodules".
func NewBuilder(store ProjectStore, git vcs.Git, logger *slog.Logger, submoduleFile string) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if submoduleFile == "" {
		submoduleFile = gitmodules.DefaultFileName
	}
	return &Builder{
		store:         store,
		git:           git,
		logger:        logger,
		submoduleFile: submoduleFile,
	}
}

// Stats returns the counters accumulated since the builder was created.
func (b *Builder) Stats() Stats {
	return b.stats
}

// Visit registers the repository at path and, recursively, its submodules.
//
// A missing path is a NOT_FOUND error unless optional is set, in which case
// it is taken for an uninitialized submodule and skipped with a warning. A
// directory that is not inside a git working copy is ignored.
func (b *Builder) Visit(ctx context.Context, path string, optional bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path %s: %w", path, err)
	}
	_, err = b.visit(ctx, abs, optional, newTrail())
	return err
}

// VisitContainer treats every immediate subdirectory of root as an
// independent top-level repository. A failure in one repository is logged
// and the remaining ones are still visited; the first such error is
// returned once all have been tried.
func (b *Builder) VisitContainer(ctx context.Context, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve path %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NotFound(abs)
		}
		return fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return model.NotADirectory(abs)
	}

	b.logger.Info("scanning for git repositories", "dir", abs)

	entries, err := os.ReadDir(abs)
	if err != nil {
		return fmt.Errorf("list %s: %w", abs, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var firstErr error
	for _, entry := range entries {
		child := filepath.Join(abs, entry.Name())
		if !isDir(child) {
			continue
		}
		if _, err := b.visit(ctx, child, false, newTrail()); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.stats.Skipped++
			b.logger.Error("repository skipped", "path", child, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// visit returns the project id of the repository at path, or 0 when path
// was skipped or is not a repository.
func (b *Builder) visit(ctx context.Context, path string, optional bool, trail *trail) (model.ID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.logger.Debug("analyzing directory", "path", path)

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err) && optional:
		b.warn("submodule path does not exist, probably not initialized; skipping", "path", path)
		return 0, nil
	case os.IsNotExist(err):
		return 0, model.NotFound(path)
	case err != nil:
		return 0, fmt.Errorf("stat %s: %w", path, err)
	case !info.IsDir():
		if optional {
			b.warn("submodule path is not a directory; skipping", "path", path)
			return 0, nil
		}
		return 0, model.NotADirectory(path)
	}

	if isEmptyDir(path) {
		if optional {
			// An empty directory would resolve to the enclosing repository.
			b.warn("submodule directory is empty, initialize it to scan it; skipping", "path", path)
			return 0, nil
		}
		b.warn("directory is empty", "path", path)
	}

	topLevel, ok := b.git.TopLevel(ctx, path)
	if !ok {
		b.logger.Debug("not a git repository", "path", path)
		return 0, nil
	}
	topLevel = filepath.Clean(topLevel)

	if optional && !samePath(topLevel, path) {
		// git answered for an enclosing repository: the directory holds
		// files but no working copy of its own.
		b.warn("submodule path is not a working copy; skipping", "path", path, "top_level", topLevel)
		return 0, nil
	}

	if !trail.enter(topLevel) {
		b.warn("submodule cycle detected; not descending again", "path", path, "top_level", topLevel)
		return 0, nil
	}
	defer trail.leave(topLevel)

	name := model.NameFromTopLevel(topLevel)
	url, _ := b.git.OriginURL(ctx, topLevel)
	b.stats.Repositories++

	id, err := b.resolve(ctx, name, url)
	if err != nil {
		return 0, err
	}

	declPath := filepath.Join(topLevel, b.submoduleFile)
	if _, err := os.Stat(declPath); err != nil {
		if os.IsNotExist(err) {
			b.logger.Debug("no submodules", "project", name, "path", topLevel)
			return id, nil
		}
		b.warn("submodule declarations unreadable; no submodules recorded",
			"code", model.ErrCodeMalformedDeclaration, "project", name, "error", err)
		return id, nil
	}

	decl, err := gitmodules.ParseFile(declPath)
	if err != nil {
		// A partial read still yields the entries completed before the
		// failure.
		kept := 0
		if decl != nil {
			kept = len(decl.Submodules)
		}
		b.warn("submodule declarations unreadable; keeping entries read so far",
			"code", model.ErrCodeMalformedDeclaration, "project", name, "kept", kept, "error", err)
		if decl == nil {
			return id, nil
		}
	}
	for _, w := range decl.Warnings {
		werr := w.Err()
		b.warn("malformed submodule declaration", "code", werr.Code, "line", w.Line, "error", werr, "detail", w.String())
	}
	b.logger.Info("found submodules", "project", name, "count", len(decl.Submodules))

	for _, sub := range decl.Submodules {
		if err := b.visitSubmodule(ctx, id, name, topLevel, sub, trail); err != nil {
			return id, err
		}
	}

	return id, nil
}

// visitSubmodule resolves a declared submodule, records the edge from its
// parent and descends into its working copy. Identity corruption skips the
// submodule; other errors abort.
func (b *Builder) visitSubmodule(ctx context.Context, parentID model.ID, parentName, topLevel string, sub gitmodules.Submodule, trail *trail) error {
	b.stats.Submodules++
	subName := sub.ProjectName()

	subID, err := b.resolve(ctx, subName, sub.URL)
	if model.IsCorruption(err) {
		b.stats.Skipped++
		b.logger.Error("submodule skipped", "project", parentName, "submodule", subName, "error", err)
		return nil
	}
	if err != nil {
		return err
	}

	if err := b.store.AddEdge(ctx, parentID, subID); err != nil {
		return err
	}
	b.stats.Edges++
	b.logger.Info("stored dependency", "from", parentName, "to", subName)

	_, err = b.visit(ctx, filepath.Join(topLevel, filepath.FromSlash(sub.Path)), true, trail)
	if model.IsCorruption(err) {
		b.stats.Skipped++
		b.logger.Error("submodule skipped", "project", parentName, "submodule", subName, "error", err)
		return nil
	}
	return err
}

func (b *Builder) resolve(ctx context.Context, name, url string) (model.ID, error) {
	res, err := b.store.ResolveProject(ctx, name, url)
	if err != nil {
		return 0, err
	}
	if res.Ambiguous() {
		b.stats.Warnings++
	}
	if res.Inserted {
		b.stats.Inserted++
	}
	return res.ID, nil
}

func (b *Builder) warn(msg string, args ...any) {
	b.stats.Warnings++
	b.logger.Warn(msg, args...)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// samePath reports whether a and b name the same directory, looking through
// symlinks since git reports the resolved top-level.
func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	return errA == nil && errB == nil && ra == rb
}

func isEmptyDir(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	names, _ := f.Readdirnames(1)
	return len(names) == 0
}
