package scan

// trail holds the repositories currently being visited on one traversal
// path, keyed by top-level directory. A repository re-entered while it is
// still on the trail closes a submodule cycle.
type trail struct {
	active map[string]bool
}

func newTrail() *trail {
	return &trail{active: make(map[string]bool)}
}

// enter marks key as in progress. It returns false if key is already on
// the trail.
func (t *trail) enter(key string) bool {
	if t.active[key] {
		return false
	}
	t.active[key] = true
	return true
}

// leave removes key, so siblings may visit the same repository again.
func (t *trail) leave(key string) {
	delete(t.active, key)
}
