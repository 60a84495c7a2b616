package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/repograph/internal/jobxml"
	"github.com/roach88/repograph/internal/model"
)

// BuildJobStore is the part of the store the job scanner writes to.
type BuildJobStore interface {
	ResolveBuildJob(ctx context.Context, name, url string) (model.Resolution, error)
}

// JobStats counts what a job scan observed.
type JobStats struct {
	Files    int `json:"files"`
	Jobs     int `json:"jobs"`
	Inserted int `json:"inserted"`
	Invalid  int `json:"invalid"`
	Warnings int `json:"warnings"`
}

// JobScanner registers build jobs from job description files.
type JobScanner struct {
	store      BuildJobStore
	parser     *jobxml.Parser
	logger     *slog.Logger
	extensions []string

	stats JobStats
}

// NewJobScanner creates a job scanner. extensions lists the file name
// suffixes considered in directory scans, compared case-insensitively;
// empty means ".xml".
func NewJobScanner(store BuildJobStore, parser *jobxml.Parser, logger *slog.Logger, extensions []string) *JobScanner {
	if logger == nil {
		logger = slog.Default()
	}
	if len(extensions) == 0 {
		extensions = []string{".xml"}
	}
	lower := make([]string, len(extensions))
	for i, ext := range extensions {
		lower[i] = strings.ToLower(ext)
	}
	return &JobScanner{
		store:      store,
		parser:     parser,
		logger:     logger,
		extensions: lower,
	}
}

// Stats returns the counters accumulated since the scanner was created.
func (s *JobScanner) Stats() JobStats {
	return s.stats
}

// ScanFile registers the job described by the file at path.
// Documents that are not valid job descriptions are skipped with a message.
// Identity corruption is returned and ends the scan.
func (s *JobScanner) ScanFile(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path %s: %w", path, err)
	}
	return s.scanFile(ctx, abs)
}

// ScanDirectory registers the jobs of every matching regular file directly
// inside dir, in name order.
func (s *JobScanner) ScanDirectory(ctx context.Context, dir string) error {
	files, err := s.listJobFiles(dir)
	if err != nil {
		return err
	}
	s.logger.Info("scanning job descriptions", "dir", dir, "files", len(files))

	for _, file := range files {
		if err := s.scanFile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func (s *JobScanner) scanFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("examining job description", "file", path)
	s.stats.Files++

	desc, ok, err := s.parser.ParseFile(path)
	if model.IsArgumentError(err) {
		return err
	}
	if err != nil {
		s.stats.Invalid++
		s.logger.Warn("unreadable job description, skipping", "file", path, "error", err)
		return nil
	}
	if !ok {
		s.stats.Invalid++
		s.logger.Warn("not a valid job description, skipping",
			"code", model.ErrCodeInvalidDocument,
			"file", path,
		)
		return nil
	}

	res, err := s.store.ResolveBuildJob(ctx, desc.Name, desc.URL)
	if err != nil {
		return fmt.Errorf("register job %q from %s: %w", desc.Name, path, err)
	}
	s.stats.Jobs++
	if res.Inserted {
		s.stats.Inserted++
	} else {
		s.logger.Info("job already registered", "job", desc.Name)
	}
	if res.Ambiguous() {
		s.stats.Warnings++
	}
	return nil
}

func (s *JobScanner) listJobFiles(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.NotFound(abs)
		}
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, model.NotADirectory(abs)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", abs, err)
	}

	var files []string
	for _, entry := range entries {
		path := filepath.Join(abs, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if s.hasJobExtension(entry.Name()) {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *JobScanner) hasJobExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range s.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
