package cli

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/repograph/internal/config"
	"github.com/roach88/repograph/internal/model"
	"github.com/roach88/repograph/internal/store"
)

// session is the per-run state shared by a command: the loaded config, a
// logger tagged with the run id and the output formatter.
type session struct {
	cfg    config.Config
	run    string
	logger *slog.Logger
	out    *OutputFormatter
}

func newSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}

	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	run := uuid.Must(uuid.NewV7()).String()
	logger := slog.New(handler).With("run", run)

	logger.Debug("config loaded", "database", cfg.Database, "config", opts.ConfigPath)

	return &session{
		cfg:    cfg,
		run:    run,
		logger: logger,
		out:    &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()},
	}, nil
}

// openStore opens the configured database, which must already exist.
func (s *session) openStore() (*store.Store, error) {
	s.logger.Debug("opening database", "path", s.cfg.Database)
	st, err := store.Open(s.cfg.Database, store.WithLogger(s.logger))
	if err != nil {
		if model.IsNotFound(err) {
			return nil, WrapExitError(ExitCommandError, "database not found (run init first)", err)
		}
		return nil, WrapExitError(ExitFailure, "failed to open database", err)
	}
	return st, nil
}

func (s *session) closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// requireDir checks that path exists and is a directory.
func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NotFound(path)
		}
		return err
	}
	if !info.IsDir() {
		return model.NotADirectory(path)
	}
	return nil
}
