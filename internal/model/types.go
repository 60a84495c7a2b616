package model

// ID is the surrogate identifier assigned by the store.
type ID int64

// Project is a discovered source repository.
// URL is empty when the working copy has no configured origin.
type Project struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Edge is a directed depends-on relation from a dependent project to one of
// its submodule projects.
type Edge struct {
	From ID `json:"from"`
	To   ID `json:"to"`
}

// BuildJob is a CI job definition.
type BuildJob struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	SourceURL string `json:"source_url,omitempty"`
}

// Build links a build job to a project whose URL equals the job's source URL.
type Build struct {
	BuildJobID ID `json:"build_job_id"`
	ProjectID  ID `json:"project_id"`
}

// Resolution is the outcome of resolving a (name, url) observation to a
// stored identity.
type Resolution struct {
	ID ID

	// Inserted is true when no row existed and a new one was created.
	Inserted bool

	// URLs holds the distinct URLs stored under the name before resolution.
	// More than one entry means the identity is ambiguous.
	URLs []string
}

// Ambiguous reports whether more than one URL is stored under the name.
func (r Resolution) Ambiguous() bool {
	return len(r.URLs) > 1
}
