package model

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName returns the NFC form of a project name.
// Directory names read from some filesystems arrive decomposed (NFD); the
// same repository must resolve to the same identity wherever it is scanned.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// NameFromTopLevel derives a project name from the top-level directory of a
// working copy: its final path segment.
func NameFromTopLevel(topLevel string) string {
	base := filepath.Base(filepath.Clean(topLevel))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return NormalizeName(base)
}

// NameFromURL derives a project name from a repository URL: the text after
// the last "/", with a ".git" suffix and surrounding whitespace removed.
func NameFromURL(url string) string {
	name := strings.TrimSpace(url)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".git")
	return NormalizeName(strings.TrimSpace(name))
}
