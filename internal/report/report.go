// Package report renders the stored graph for impact and coverage analysis.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/roach88/repograph/internal/model"
)

// Source reads the stored relations.
type Source interface {
	Projects(ctx context.Context) ([]model.Project, error)
	Edges(ctx context.Context) ([]model.Edge, error)
	BuildJobs(ctx context.Context) ([]model.BuildJob, error)
	Builds(ctx context.Context) ([]model.Build, error)
}

// Graph is a snapshot of all four relations.
type Graph struct {
	Projects  []model.Project  `json:"projects"`
	Edges     []model.Edge     `json:"edges"`
	BuildJobs []model.BuildJob `json:"build_jobs"`
	Builds    []model.Build    `json:"builds"`
}

// LoadGraph reads a snapshot from src.
func LoadGraph(ctx context.Context, src Source) (*Graph, error) {
	var (
		g   Graph
		err error
	)
	if g.Projects, err = src.Projects(ctx); err != nil {
		return nil, err
	}
	if g.Edges, err = src.Edges(ctx); err != nil {
		return nil, err
	}
	if g.BuildJobs, err = src.BuildJobs(ctx); err != nil {
		return nil, err
	}
	if g.Builds, err = src.Builds(ctx); err != nil {
		return nil, err
	}
	return &g, nil
}

// WriteJSON writes g as indented JSON.
func WriteJSON(w io.Writer, g *Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// WriteDOT writes g as a Graphviz digraph. Repeated edges are drawn once and
// labelled with their multiplicity; projects without a build job are dashed.
func WriteDOT(w io.Writer, g *Graph) error {
	covered := make(map[model.ID]bool, len(g.Builds))
	for _, b := range g.Builds {
		covered[b.ProjectID] = true
	}

	type pair struct{ from, to model.ID }
	var order []pair
	counts := make(map[pair]int)
	for _, e := range g.Edges {
		p := pair{e.From, e.To}
		if counts[p] == 0 {
			order = append(order, p)
		}
		counts[p]++
	}

	bw := &errWriter{w: w}
	bw.printf("digraph repograph {\n")
	bw.printf("\trankdir=LR;\n")
	bw.printf("\tnode [shape=box];\n")
	for _, p := range g.Projects {
		attrs := fmt.Sprintf("label=%q", p.Name)
		if p.URL != "" {
			attrs += fmt.Sprintf(", tooltip=%q", p.URL)
		}
		if !covered[p.ID] {
			attrs += ", style=dashed"
		}
		bw.printf("\tp%d [%s];\n", p.ID, attrs)
	}
	for _, p := range order {
		if n := counts[p]; n > 1 {
			bw.printf("\tp%d -> p%d [label=\"%d\"];\n", p.from, p.to, n)
		} else {
			bw.printf("\tp%d -> p%d;\n", p.from, p.to)
		}
	}
	bw.printf("}\n")
	return bw.err
}

// WriteProjects writes a titled project list, one "name<TAB>url" line each.
func WriteProjects(w io.Writer, title string, projects []model.Project) error {
	bw := &errWriter{w: w}
	bw.printf("%s (%d)\n", title, len(projects))
	for _, p := range projects {
		url := p.URL
		if url == "" {
			url = "-"
		}
		bw.printf("  %s\t%s\n", p.Name, url)
	}
	return bw.err
}

// errWriter keeps the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
