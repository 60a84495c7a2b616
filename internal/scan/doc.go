// Package scan populates the store from local working copies and build job
// descriptions.
//
// Builder walks git repositories: it registers each repository it finds,
// reads its submodule declarations, records one depends-on edge per declared
// submodule and descends into the submodule working copies. Submodules that
// were never initialized are expected and only produce warnings.
//
// JobScanner registers build jobs from XML descriptions.
//
// Both run sequentially on the calling goroutine; every store write commits
// on its own.
package scan
