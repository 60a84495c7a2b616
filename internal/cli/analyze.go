package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/repograph/internal/model"
	"github.com/roach88/repograph/internal/report"
	"github.com/roach88/repograph/internal/store"
)

// ImpactOptions holds flags for the impact command.
type ImpactOptions struct {
	*RootOptions
	Dependencies bool
}

// ImpactResult is the JSON payload of the impact command.
type ImpactResult struct {
	Project  string          `json:"project"`
	Relation string          `json:"relation"` // "dependents" | "dependencies"
	Projects []model.Project `json:"projects"`
}

// NewImpactCommand creates the impact command.
func NewImpactCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImpactOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "impact <project>",
		Short: "List projects affected by a change to a project",
		Long: `List every project that transitively embeds <project> as a submodule.
With --dependencies, list what <project> transitively embeds instead.

Example:
  repograph impact core
  repograph impact app --dependencies`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImpact(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Dependencies, "dependencies", false, "list dependencies instead of dependents")

	return cmd
}

func runImpact(cmd *cobra.Command, opts *ImpactOptions, name string) error {
	s, err := newSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer s.closeStore(st)

	ctx := cmd.Context()
	name = model.NormalizeName(name)

	known, err := st.ProjectsByName(ctx, name)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to look up project", err)
	}
	if len(known) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown project %q", name))
	}

	result := ImpactResult{Project: name, Relation: "dependents"}
	title := fmt.Sprintf("Projects depending on %s", name)
	if opts.Dependencies {
		result.Relation = "dependencies"
		title = fmt.Sprintf("Projects %s depends on", name)
		result.Projects, err = st.Dependencies(ctx, name)
	} else {
		result.Projects, err = st.Dependents(ctx, name)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "impact query failed", err)
	}

	return s.out.Success(s.run, result, func(w io.Writer) error {
		return report.WriteProjects(w, title, result.Projects)
	})
}

// NewCoverageCommand creates the coverage command.
func NewCoverageCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "coverage",
		Short: "List projects no build job builds",
		Long: `List projects without a row in the builds relation. Run materialize
first so the relation reflects the current projects and build jobs.

Example:
  repograph materialize && repograph coverage`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoverage(cmd, rootOpts)
		},
	}
}

func runCoverage(cmd *cobra.Command, opts *RootOptions) error {
	s, err := newSession(cmd, opts)
	if err != nil {
		return err
	}
	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer s.closeStore(st)

	uncovered, err := st.UncoveredProjects(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "coverage query failed", err)
	}

	return s.out.Success(s.run, uncovered, func(w io.Writer) error {
		return report.WriteProjects(w, "Projects without a build job", uncovered)
	})
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show row counts of the graph database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, rootOpts)
		},
	}
}

func runSummary(cmd *cobra.Command, opts *RootOptions) error {
	s, err := newSession(cmd, opts)
	if err != nil {
		return err
	}
	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer s.closeStore(st)

	counts, err := st.Counts(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "count query failed", err)
	}

	return s.out.Success(s.run, counts, func(w io.Writer) error {
		return writeCounts(w, counts)
	})
}

func writeCounts(w io.Writer, c store.Counts) error {
	_, err := fmt.Fprintf(w, "projects:   %d\nedges:      %d\nbuild jobs: %d\nbuilds:     %d\n",
		c.Projects, c.Edges, c.BuildJobs, c.Builds)
	return err
}
