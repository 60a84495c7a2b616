// Package gitmodules reads submodule declaration files (.gitmodules).
//
// The reader is a line-oriented state machine rather than a full ini parser:
// a "[submodule" line opens an entry, "path" and "url" lines fill it, and an
// entry is kept only once name, path and url are all present. Incomplete
// entries are reported as warnings and never abort the read.
package gitmodules

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/roach88/repograph/internal/model"
)

// DefaultFileName is the conventional declaration file at a repository root.
const DefaultFileName = ".gitmodules"

// maxLineLength bounds a single declaration line.
const maxLineLength = 1 << 20

const (
	prefixSection = "[submodule"
	prefixPath    = "path"
	prefixURL     = "url"
)

// Submodule is one declared submodule.
type Submodule struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Complete reports whether name, path and url are all set.
func (s Submodule) Complete() bool {
	return s.Name != "" && s.Path != "" && s.URL != ""
}

// started reports whether any field has been seen for this entry.
func (s Submodule) started() bool {
	return s.Name != "" || s.Path != "" || s.URL != ""
}

// ProjectName derives the project name of the submodule from its URL.
func (s Submodule) ProjectName() string {
	return model.NameFromURL(s.URL)
}

// Warning describes an incomplete entry that was dropped or overwritten.
type Warning struct {
	Source string
	Line   int
	Entry  Submodule
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s (name=%q path=%q url=%q)",
		w.Source, w.Line, w.Reason, w.Entry.Name, w.Entry.Path, w.Entry.URL)
}

// Err returns the warning as a MALFORMED_DECLARATION error.
func (w Warning) Err() *model.Error {
	return &model.Error{
		Code:    model.ErrCodeMalformedDeclaration,
		Message: w.Reason,
		Path:    w.Source,
	}
}

// Result holds the complete entries of a declaration file, in file order,
// and the warnings raised while reading it.
type Result struct {
	Submodules []Submodule
	Warnings   []Warning
}

// ParseFile reads the declaration file at path. On a read error the
// partial result is returned along with the error.
func ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.NotFound(path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse reads a declaration document. source names the document in warnings.
//
// An incomplete entry is not reset when the next section starts: its fields
// carry over and may be completed by the following section. A warning is
// raised for it only once at least one complete entry has been kept.
//
// If reading fails part way, the entries completed so far (including a
// complete entry still open at the failure) are returned with the error.
func Parse(r io.Reader, source string) (*Result, error) {
	result := &Result{Submodules: []Submodule{}}

	var current Submodule
	lineNo := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, prefixSection):
			if current.Complete() {
				result.Submodules = append(result.Submodules, current)
				current = Submodule{}
			} else if len(result.Submodules) > 0 {
				result.Warnings = append(result.Warnings, Warning{
					Source: source,
					Line:   lineNo,
					Entry:  current,
					Reason: "incomplete submodule description",
				})
			}
			current.Name = sectionName(line)

		case strings.HasPrefix(line, prefixPath):
			current.Path = assignmentValue(line)

		case strings.HasPrefix(line, prefixURL):
			current.URL = assignmentValue(line)
		}
	}
	if err := scanner.Err(); err != nil {
		if current.Complete() {
			result.Submodules = append(result.Submodules, current)
		}
		return result, fmt.Errorf("read %s: line %d: %w", source, lineNo+1, err)
	}

	if current.Complete() {
		result.Submodules = append(result.Submodules, current)
	} else if current.started() {
		result.Warnings = append(result.Warnings, Warning{
			Source: source,
			Line:   lineNo,
			Entry:  current,
			Reason: "last submodule description is incomplete",
		})
	}

	return result, nil
}

// sectionName extracts the name from a `[submodule "name"]` line.
func sectionName(line string) string {
	name := strings.TrimPrefix(line, prefixSection)
	if i := strings.Index(name, "]"); i >= 0 {
		name = name[:i]
	}
	name = strings.ReplaceAll(name, `"`, "")
	return strings.TrimSpace(name)
}

// assignmentValue returns the trimmed text after the first "=".
func assignmentValue(line string) string {
	_, rhs, found := strings.Cut(line, "=")
	if !found {
		return ""
	}
	return strings.TrimSpace(rhs)
}
