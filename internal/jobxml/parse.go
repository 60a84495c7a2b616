// Package jobxml extracts the job name and source repository URL from CI
// build job descriptions (Jenkins config.xml style documents).
package jobxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/roach88/repograph/internal/model"
)

// Default element paths, matched anywhere below the document root.
const (
	DefaultNamePath = "displayName"
	DefaultURLPath  = "source/remote"
)

// Paths selects the two elements of a job description.
// Each path is a "/"-separated list of element names; a leading ".//" is
// accepted and ignored.
type Paths struct {
	Name string
	URL  string
}

// DefaultPaths returns the element paths used by Jenkins job descriptions.
func DefaultPaths() Paths {
	return Paths{Name: DefaultNamePath, URL: DefaultURLPath}
}

// Description is a valid build job description.
type Description struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Parser extracts descriptions using a fixed pair of element paths.
type Parser struct {
	name []string
	url  []string
}

// NewParser creates a parser for the given paths.
func NewParser(paths Paths) (*Parser, error) {
	name, err := splitPath(paths.Name)
	if err != nil {
		return nil, fmt.Errorf("name path: %w", err)
	}
	url, err := splitPath(paths.URL)
	if err != nil {
		return nil, fmt.Errorf("url path: %w", err)
	}
	return &Parser{name: name, url: url}, nil
}

func splitPath(p string) ([]string, error) {
	p = strings.TrimPrefix(strings.TrimSpace(p), ".//")
	if p == "" {
		return nil, errors.New("empty element path")
	}
	parts := strings.Split(p, "/")
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("invalid element path %q", p)
		}
	}
	return parts, nil
}

// ParseFile reads the job description at path.
// The path must exist and must not be a directory.
func (p *Parser) ParseFile(path string) (Description, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Description{}, false, model.NotFound(path)
		}
		return Description{}, false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Description{}, false, model.IsADirectory(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return Description{}, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads one document. ok is false unless the name path and the url
// path each match exactly one element with non-empty text; such a document
// is not a valid job description. err is reserved for unreadable XML.
func (p *Parser) Parse(r io.Reader) (Description, bool, error) {
	doc, err := io.ReadAll(r)
	if err != nil {
		return Description{}, false, fmt.Errorf("read job description: %w", err)
	}
	dec := xml.NewDecoder(bytes.NewReader(stripDeclaration(doc)))

	var (
		stack    []string
		names    []string
		urls     []string
		capture  *[]string
		capDepth int
		text     strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Description{}, false, fmt.Errorf("parse job description: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if capture != nil {
				continue
			}
			switch {
			case matches(stack, p.name):
				capture = &names
			case matches(stack, p.url):
				capture = &urls
			}
			if capture != nil {
				capDepth = len(stack)
				text.Reset()
			}

		case xml.CharData:
			if capture != nil && len(stack) == capDepth {
				text.Write(t)
			}

		case xml.EndElement:
			if capture != nil && len(stack) == capDepth {
				*capture = append(*capture, strings.TrimSpace(text.String()))
				capture = nil
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(names) != 1 || len(urls) != 1 || names[0] == "" || urls[0] == "" {
		return Description{}, false, nil
	}
	return Description{Name: names[0], URL: urls[0]}, true, nil
}

// stripDeclaration removes a leading <?xml ...?> declaration. Jenkins writes
// version='1.1', which encoding/xml refuses; the documents use nothing that
// differs between 1.0 and 1.1.
func stripDeclaration(doc []byte) []byte {
	trimmed := bytes.TrimLeft(doc, "\ufeff \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return doc
	}
	end := bytes.Index(trimmed, []byte("?>"))
	if end < 0 {
		return doc
	}
	return trimmed[end+2:]
}

// matches reports whether the innermost elements of stack equal path.
// The root element itself never matches: paths select descendants.
func matches(stack, path []string) bool {
	if len(stack) <= len(path) {
		return false
	}
	offset := len(stack) - len(path)
	for i, name := range path {
		if stack[offset+i] != name {
			return false
		}
	}
	return true
}
