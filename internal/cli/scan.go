package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/repograph/internal/jobxml"
	"github.com/roach88/repograph/internal/scan"
	"github.com/roach88/repograph/internal/vcs"
)

// ScanSubmodulesOptions holds flags for the scan-submodules command.
type ScanSubmodulesOptions struct {
	*RootOptions
	Dir       string
	AllDirsIn bool

	// Git overrides the git client (for testing). Nil runs the configured
	// git binary.
	Git vcs.Git
}

// NewScanSubmodulesCommand creates the scan-submodules command.
func NewScanSubmodulesCommand(rootOpts *RootOptions) *cobra.Command {
	return newScanSubmodulesCommand(&ScanSubmodulesOptions{RootOptions: rootOpts})
}

func newScanSubmodulesCommand(opts *ScanSubmodulesOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan-submodules",
		Short: "Record the submodule dependency graph of local working copies",
		Long: `Register the repository containing --dir and, recursively, every
submodule it declares. Each submodule reference becomes a dependency edge.

With --all-dirs-in every immediate subdirectory of --dir is scanned as an
independent repository.

Example:
  repograph scan-submodules -d ~/src/app
  repograph scan-submodules -a -d ~/src`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScanSubmodules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Dir, "dir", "d", ".", "repository (or container) directory")
	cmd.Flags().BoolVarP(&opts.AllDirsIn, "all-dirs-in", "a", false, "scan every subdirectory of --dir as a repository")

	return cmd
}

func runScanSubmodules(cmd *cobra.Command, opts *ScanSubmodulesOptions) error {
	s, err := newSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	if err := requireDir(opts.Dir); err != nil {
		return wrapModelError("invalid --dir", err)
	}

	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer s.closeStore(st)

	git := opts.Git
	if git == nil {
		git = vcs.NewExecGit(s.cfg.GitBinary)
	}
	builder := scan.NewBuilder(st, git, s.logger, s.cfg.SubmoduleFile)

	ctx := cmd.Context()
	if opts.AllDirsIn {
		err = builder.VisitContainer(ctx, opts.Dir)
	} else {
		err = builder.Visit(ctx, opts.Dir, false)
	}

	stats := builder.Stats()
	s.logger.Info("submodule scan finished",
		"repositories", stats.Repositories,
		"edges", stats.Edges,
		"skipped", stats.Skipped,
		"warnings", stats.Warnings,
	)
	if err != nil {
		return wrapModelError("submodule scan failed", err)
	}

	return s.out.Success(s.run, stats, func(w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"Scanned %d repositories: %d submodules, %d edges, %d new projects, %d skipped, %d warnings\n",
			stats.Repositories, stats.Submodules, stats.Edges, stats.Inserted, stats.Skipped, stats.Warnings)
		return err
	})
}

// ScanBuildJobsOptions holds flags for the scan-build-jobs command.
type ScanBuildJobsOptions struct {
	*RootOptions
	File string
	Dir  string
}

// NewScanBuildJobsCommand creates the scan-build-jobs command.
func NewScanBuildJobsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanBuildJobsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scan-build-jobs",
		Short: "Register build jobs from job description files",
		Long: `Register the build job described by --file, or by every job file
directly inside --dir. Exactly one of the two is required.

A description must contain exactly one job name and one source URL element;
other documents are skipped.

Example:
  repograph scan-build-jobs -f jobs/app/config.xml
  repograph scan-build-jobs -d jobs/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScanBuildJobs(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "job description file")
	cmd.Flags().StringVarP(&opts.Dir, "dir", "d", "", "directory of job description files")

	return cmd
}

func runScanBuildJobs(cmd *cobra.Command, opts *ScanBuildJobsOptions) error {
	if (opts.File == "") == (opts.Dir == "") {
		return NewExitError(ExitCommandError, "exactly one of --file or --dir is required")
	}

	s, err := newSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}

	parser, err := jobxml.NewParser(s.cfg.JobPaths())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid job element paths", err)
	}

	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer s.closeStore(st)

	scanner := scan.NewJobScanner(st, parser, s.logger, s.cfg.JobExtensions)
	ctx := cmd.Context()
	if opts.File != "" {
		err = scanner.ScanFile(ctx, opts.File)
	} else {
		err = scanner.ScanDirectory(ctx, opts.Dir)
	}

	stats := scanner.Stats()
	s.logger.Info("build job scan finished",
		"files", stats.Files,
		"jobs", stats.Jobs,
		"invalid", stats.Invalid,
	)
	if err != nil {
		return wrapModelError("build job scan failed", err)
	}

	return s.out.Success(s.run, stats, func(w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"Scanned %d files: %d jobs, %d new, %d invalid, %d warnings\n",
			stats.Files, stats.Jobs, stats.Inserted, stats.Invalid, stats.Warnings)
		return err
	})
}
