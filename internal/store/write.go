package store

import (
	"context"
	"fmt"

	"github.com/roach88/repograph/internal/model"
)

// AddEdge records that from depends on to.
// Every call inserts a new row: re-scanning an unchanged tree repeats edges,
// and edge multiplicity reflects how often the dependency was observed.
// Both ids must exist (foreign key constraint).
func (s *Store) AddEdge(ctx context.Context, from, to model.ID) error {
	if _, err := s.db.ExecContext(ctx, s.queries.InsertDependsOn, int64(from), int64(to)); err != nil {
		return fmt.Errorf("write depends_on edge %d -> %d: %w", from, to, err)
	}
	return nil
}

// MaterializeBuilds recomputes the builds relation from scratch: every
// (build job, project) pair whose source url and project url are equal as
// strings. No normalization is applied, so trailing slashes, ".git" suffixes
// or protocol differences keep a pair apart.
//
// Returns the number of builds rows after materialization.
func (s *Store) MaterializeBuilds(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("materialize builds: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, s.queries.ClearBuilds); err != nil {
		return 0, fmt.Errorf("materialize builds: clear: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.queries.MaterializeBuilds); err != nil {
		return 0, fmt.Errorf("materialize builds: fill: %w", err)
	}

	var count int64
	if err := tx.QueryRowContext(ctx, s.queries.CountBuilds).Scan(&count); err != nil {
		return 0, fmt.Errorf("materialize builds: count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("materialize builds: commit: %w", err)
	}

	return count, nil
}
