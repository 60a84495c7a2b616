package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/repograph/internal/store"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty graph database",
		Long: `Create the SQLite database with an empty schema.

An existing database at the same path is deleted first.

Example:
  repograph init
  repograph init --db /tmp/graph.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, rootOpts)
		},
	}
}

func runInit(cmd *cobra.Command, opts *RootOptions) error {
	s, err := newSession(cmd, opts)
	if err != nil {
		return err
	}

	s.logger.Info("creating database", "path", s.cfg.Database)
	st, err := store.Create(s.cfg.Database, store.WithLogger(s.logger))
	if err != nil {
		return WrapExitError(ExitFailure, "failed to create database", err)
	}
	s.closeStore(st)

	data := map[string]string{"database": s.cfg.Database}
	return s.out.Success(s.run, data, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Created database %s\n", s.cfg.Database)
		return err
	})
}
