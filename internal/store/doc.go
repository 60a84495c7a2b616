// Package store provides SQLite-backed storage for the repository graph.
//
// Tables:
//   - project: discovered repositories (id, name, url)
//   - depends_on: submodule edges between projects, one row per observation
//   - build_job: CI job descriptions (id, name, source_url)
//   - builds: derived (build_job_id, project_id) pairs, owned by MaterializeBuilds
//
// # Identity
//
// Projects and build jobs are resolved by name. A name maps to at most one
// row; finding more is reported as IDENTITY_CORRUPTION and never repaired.
// Resolving a known name does not touch its stored url.
//
// # Writes
//
// Every write is parameterized and commits on its own, so a failed traversal
// keeps whatever was written before the failure. Query text is embedded from
// queries/*.sql and loaded once when the store is opened.
//
// # Database Configuration
//
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
