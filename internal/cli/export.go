package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/repograph/internal/report"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	GraphFormat string // "dot" | "json"
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole graph as Graphviz DOT or JSON",
		Long: `Write every project, dependency edge, build job and build to stdout.

Example:
  repograph export | dot -Tsvg > graph.svg
  repograph export --graph-format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.GraphFormat, "graph-format", "dot", "graph format (dot|json)")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	if opts.GraphFormat != "dot" && opts.GraphFormat != "json" {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid graph format %q: must be dot or json", opts.GraphFormat))
	}

	s, err := newSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer s.closeStore(st)

	g, err := report.LoadGraph(cmd.Context(), st)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read graph", err)
	}
	s.logger.Debug("graph loaded", "projects", len(g.Projects), "edges", len(g.Edges))

	w := cmd.OutOrStdout()
	if opts.GraphFormat == "json" {
		err = report.WriteJSON(w, g)
	} else {
		err = report.WriteDOT(w, g)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to write graph", err)
	}
	return nil
}
