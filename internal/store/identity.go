package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/roach88/repograph/internal/model"
)

// identityTable names the statements of one name-keyed table.
type identityTable struct {
	table      string
	selectName string
	insert     string
}

// ResolveProject maps a (name, url) observation to a project id.
//
//   - no row for name: a row is inserted and committed
//   - one row: its id is returned; the stored url is left unchanged
//   - several rows: IDENTITY_CORRUPTION
//
// When the observed and stored urls disagree an IDENTITY_CONFLICT warning is
// logged and resolution proceeds. An empty url means the observation carries
// no url and is stored as NULL.
func (s *Store) ResolveProject(ctx context.Context, name, url string) (model.Resolution, error) {
	res, err := s.resolve(ctx, identityTable{
		table:      "project",
		selectName: s.queries.ProjectByName,
		insert:     s.queries.InsertProject,
	}, name, url)
	if err != nil {
		return model.Resolution{}, fmt.Errorf("resolve project: %w", err)
	}
	return res, nil
}

// ResolveBuildJob maps a (name, source url) observation to a build job id
// with the same rules as ResolveProject.
func (s *Store) ResolveBuildJob(ctx context.Context, name, url string) (model.Resolution, error) {
	res, err := s.resolve(ctx, identityTable{
		table:      "build_job",
		selectName: s.queries.BuildJobByName,
		insert:     s.queries.InsertBuildJob,
	}, name, url)
	if err != nil {
		return model.Resolution{}, fmt.Errorf("resolve build job: %w", err)
	}
	return res, nil
}

func (s *Store) resolve(ctx context.Context, t identityTable, name, url string) (model.Resolution, error) {
	ids, urls, err := s.lookupName(ctx, t, name)
	if err != nil {
		return model.Resolution{}, err
	}

	if len(ids) > 0 && url != "" {
		urls[url] = struct{}{}
	}
	res := model.Resolution{URLs: sortedKeys(urls)}

	if res.Ambiguous() {
		s.logger.Warn("multiple repository urls found for one name",
			"code", model.ErrCodeIdentityConflict,
			"table", t.table,
			"name", name,
			"urls", res.URLs,
		)
	}

	switch len(ids) {
	case 0:
		result, err := s.db.ExecContext(ctx, t.insert, name, nullString(url))
		if err != nil {
			return model.Resolution{}, fmt.Errorf("insert %s %q: %w", t.table, name, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return model.Resolution{}, fmt.Errorf("insert %s %q: last insert id: %w", t.table, name, err)
		}
		res.ID = model.ID(id)
		res.Inserted = true
		s.logger.Debug("registered", "table", t.table, "name", name, "url", url, "id", id)

	case 1:
		res.ID = ids[0]
		s.logger.Debug("already registered", "table", t.table, "name", name, "id", int64(ids[0]))

	default:
		return model.Resolution{}, model.IdentityCorruption(t.table, name, len(ids))
	}

	return res, nil
}

// lookupName returns the distinct ids and the distinct non-empty urls stored
// under name.
func (s *Store) lookupName(ctx context.Context, t identityTable, name string) ([]model.ID, map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, t.selectName, name)
	if err != nil {
		return nil, nil, fmt.Errorf("query %s by name: %w", t.table, err)
	}
	defer rows.Close()

	var ids []model.ID
	seen := make(map[model.ID]bool)
	urls := make(map[string]struct{})
	for rows.Next() {
		var (
			id      int64
			rowName string
			rowURL  sql.NullString
		)
		if err := rows.Scan(&id, &rowName, &rowURL); err != nil {
			return nil, nil, fmt.Errorf("scan %s: %w", t.table, err)
		}
		if !seen[model.ID(id)] {
			seen[model.ID(id)] = true
			ids = append(ids, model.ID(id))
		}
		if rowURL.Valid && rowURL.String != "" {
			urls[rowURL.String] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate %s: %w", t.table, err)
	}

	return ids, urls, nil
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
