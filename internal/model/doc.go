// Package model defines the records persisted by repograph and the error
// taxonomy shared by the scanners, the store and the CLI.
//
// # Records
//
//   - Project: a discovered git repository, identified by name
//   - Edge: a depends-on relation between two projects (not deduplicated)
//   - BuildJob: a CI job description, identified by name
//   - Build: a derived (build job, project) pair, recomputed on materialization
//
// Names are the identity key. URLs are observations attached to a name and
// are compared as exact strings wherever they are joined.
package model
