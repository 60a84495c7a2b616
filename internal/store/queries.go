package store

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed queries/*.sql
var queryFiles embed.FS

// Queries holds the statement text used by the store. It is loaded once when
// the store is opened and never modified afterwards.
type Queries struct {
	ProjectByName     string
	InsertProject     string
	BuildJobByName    string
	InsertBuildJob    string
	InsertDependsOn   string
	ClearBuilds       string
	MaterializeBuilds string
	Dependents        string
	Dependencies      string
	UncoveredProjects string
	AllProjects       string
	AllEdges          string
	AllBuildJobs      string
	AllBuilds         string
	CountBuilds       string
	CountRows         string
}

// LoadQueries reads the embedded statement files.
func LoadQueries() (Queries, error) {
	var q Queries
	files := []struct {
		name string
		dst  *string
	}{
		{"project_by_name", &q.ProjectByName},
		{"insert_project", &q.InsertProject},
		{"build_job_by_name", &q.BuildJobByName},
		{"insert_build_job", &q.InsertBuildJob},
		{"insert_depends_on", &q.InsertDependsOn},
		{"clear_builds", &q.ClearBuilds},
		{"materialize_builds", &q.MaterializeBuilds},
		{"dependents", &q.Dependents},
		{"dependencies", &q.Dependencies},
		{"uncovered_projects", &q.UncoveredProjects},
		{"all_projects", &q.AllProjects},
		{"all_edges", &q.AllEdges},
		{"all_build_jobs", &q.AllBuildJobs},
		{"all_builds", &q.AllBuilds},
		{"count_builds", &q.CountBuilds},
		{"count_rows", &q.CountRows},
	}

	for _, f := range files {
		data, err := queryFiles.ReadFile("queries/" + f.name + ".sql")
		if err != nil {
			return Queries{}, fmt.Errorf("load query %s: %w", f.name, err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return Queries{}, fmt.Errorf("load query %s: empty statement", f.name)
		}
		*f.dst = text
	}

	return q, nil
}
