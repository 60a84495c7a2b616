package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewMaterializeCommand creates the materialize command.
func NewMaterializeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "materialize",
		Short: "Recompute which build job builds which project",
		Long: `Replace the builds relation with every (build job, project) pair whose
source URL and project URL are exactly equal. Running it twice gives the
same result.

Example:
  repograph materialize`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMaterialize(cmd, rootOpts)
		},
	}
}

func runMaterialize(cmd *cobra.Command, opts *RootOptions) error {
	s, err := newSession(cmd, opts)
	if err != nil {
		return err
	}
	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer s.closeStore(st)

	n, err := st.MaterializeBuilds(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "materialize failed", err)
	}
	s.logger.Info("builds materialized", "rows", n)

	data := map[string]int64{"builds": n}
	return s.out.Success(s.run, data, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Materialized %d builds\n", n)
		return err
	})
}
