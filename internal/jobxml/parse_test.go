package jobxml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repograph/internal/model"
)

const validJob = `<?xml version='1.1' encoding='UTF-8'?>
<org.jenkinsci.plugins.workflow.multibranch.WorkflowMultiBranchProject plugin="workflow-multibranch@2.21">
  <displayName>app-ci</displayName>
  <sources class="jenkins.branch.MultiBranchProject$BranchSourceList">
    <data>
      <jenkins.branch.BranchSource>
        <source class="jenkins.plugins.git.GitSCMSource">
          <id>b2f0c7a4</id>
          <remote>https://x/app.git</remote>
        </source>
      </jenkins.branch.BranchSource>
    </data>
  </sources>
</org.jenkinsci.plugins.workflow.multibranch.WorkflowMultiBranchProject>
`

func newParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(DefaultPaths())
	require.NoError(t, err)
	return p
}

func TestParse_Valid(t *testing.T) {
	desc, ok, err := newParser(t).Parse(strings.NewReader(validJob))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Description{Name: "app-ci", URL: "https://x/app.git"}, desc)
}

func TestParse_DuplicateRemoteIsInvalid(t *testing.T) {
	doc := `<project>
  <displayName>app-ci</displayName>
  <source><remote>https://x/app.git</remote></source>
  <source><remote>https://x/other.git</remote></source>
</project>`

	_, ok, err := newParser(t).Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParse_MissingFieldsAreInvalid(t *testing.T) {
	tests := map[string]string{
		"no name":      `<project><source><remote>u</remote></source></project>`,
		"no remote":    `<project><displayName>n</displayName></project>`,
		"two names":    `<project><displayName>a</displayName><x><displayName>b</displayName></x><source><remote>u</remote></source></project>`,
		"empty name":   `<project><displayName></displayName><source><remote>u</remote></source></project>`,
		"remote alone": `<project><displayName>n</displayName><remote>u</remote></project>`,
		"root only":    `<displayName>n</displayName>`,
	}

	p := newParser(t)
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok, err := p.Parse(strings.NewReader(doc))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestParse_TrimsText(t *testing.T) {
	doc := `<project><displayName>
    app-ci
  </displayName><source><remote> https://x/app.git </remote></source></project>`

	desc, ok, err := newParser(t).Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "app-ci", desc.Name)
	assert.Equal(t, "https://x/app.git", desc.URL)
}

func TestParse_MalformedXML(t *testing.T) {
	_, _, err := newParser(t).Parse(strings.NewReader(`<project><displayName>a</project>`))
	assert.Error(t, err)
}

func TestNewParser_CustomPaths(t *testing.T) {
	p, err := NewParser(Paths{Name: ".//name", URL: ".//scm/userRemoteConfigs/url"})
	require.NoError(t, err)

	doc := `<job><name>legacy</name><scm><userRemoteConfigs><url>ssh://git/legacy</url></userRemoteConfigs></scm></job>`
	desc, ok, err := p.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Description{Name: "legacy", URL: "ssh://git/legacy"}, desc)
}

func TestNewParser_InvalidPaths(t *testing.T) {
	_, err := NewParser(Paths{Name: "", URL: "a"})
	assert.Error(t, err)

	_, err = NewParser(Paths{Name: "a", URL: "source//remote"})
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.xml")
	require.NoError(t, os.WriteFile(path, []byte(validJob), 0644))

	p := newParser(t)
	desc, ok, err := p.ParseFile(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "app-ci", desc.Name)

	_, _, err = p.ParseFile(filepath.Join(dir, "missing.xml"))
	assert.True(t, model.IsNotFound(err))

	_, _, err = p.ParseFile(dir)
	assert.Equal(t, model.ErrCodeIsADirectory, model.CodeOf(err))
}
