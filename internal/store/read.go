package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/repograph/internal/model"
)

// Counts summarizes the size of each table.
type Counts struct {
	Projects  int64 `json:"projects"`
	Edges     int64 `json:"edges"`
	BuildJobs int64 `json:"build_jobs"`
	Builds    int64 `json:"builds"`
}

// Projects returns all projects ordered by id.
// Returns an empty slice (not nil) if there are none.
func (s *Store) Projects(ctx context.Context) ([]model.Project, error) {
	return s.queryProjects(ctx, s.queries.AllProjects)
}

// ProjectsByName returns every project row stored under name.
func (s *Store) ProjectsByName(ctx context.Context, name string) ([]model.Project, error) {
	return s.queryProjects(ctx, s.queries.ProjectByName, name)
}

// Dependents returns every project that transitively depends on the project
// named name, that is, everything affected when it changes. A project on a
// submodule cycle appears among its own dependents.
func (s *Store) Dependents(ctx context.Context, name string) ([]model.Project, error) {
	return s.queryProjects(ctx, s.queries.Dependents, name)
}

// Dependencies returns every project the project named name transitively
// depends on.
func (s *Store) Dependencies(ctx context.Context, name string) ([]model.Project, error) {
	return s.queryProjects(ctx, s.queries.Dependencies, name)
}

// UncoveredProjects returns projects without any builds row.
// Only meaningful after MaterializeBuilds.
func (s *Store) UncoveredProjects(ctx context.Context) ([]model.Project, error) {
	return s.queryProjects(ctx, s.queries.UncoveredProjects)
}

func (s *Store) queryProjects(ctx context.Context, query string, args ...any) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var (
			p   model.Project
			url sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &url); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.URL = url.String
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, nil
}

// Edges returns all depends_on rows in insertion order, duplicates included.
func (s *Store) Edges(ctx context.Context) ([]model.Edge, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.AllEdges)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	edges := []model.Edge{}
	for rows.Next() {
		var e model.Edge
		if err := rows.Scan(&e.From, &e.To); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}

	return edges, nil
}

// BuildJobs returns all build jobs ordered by id.
func (s *Store) BuildJobs(ctx context.Context) ([]model.BuildJob, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.AllBuildJobs)
	if err != nil {
		return nil, fmt.Errorf("query build jobs: %w", err)
	}
	defer rows.Close()

	jobs := []model.BuildJob{}
	for rows.Next() {
		var (
			j   model.BuildJob
			url sql.NullString
		)
		if err := rows.Scan(&j.ID, &j.Name, &url); err != nil {
			return nil, fmt.Errorf("scan build job: %w", err)
		}
		j.SourceURL = url.String
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate build jobs: %w", err)
	}

	return jobs, nil
}

// Builds returns the materialized builds relation ordered by
// (build_job_id, project_id).
func (s *Store) Builds(ctx context.Context) ([]model.Build, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.AllBuilds)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []model.Build{}
	for rows.Next() {
		var b model.Build
		if err := rows.Scan(&b.BuildJobID, &b.ProjectID); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}

	return builds, nil
}

// Counts returns the number of rows in each table.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, s.queries.CountRows).Scan(&c.Projects, &c.Edges, &c.BuildJobs, &c.Builds)
	if err != nil {
		return Counts{}, fmt.Errorf("count rows: %w", err)
	}
	return c, nil
}
