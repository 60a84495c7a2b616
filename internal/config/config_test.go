package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repograph/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repograph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gitproject_dependency_database.db", cfg.Database)
	assert.Equal(t, ".gitmodules", cfg.SubmoduleFile)
	assert.Equal(t, []string{".xml"}, cfg.JobExtensions)
	assert.Equal(t, "displayName", cfg.JobNamePath)
	assert.Equal(t, "source/remote", cfg.JobURLPath)
	assert.Equal(t, "git", cfg.GitBinary)
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := writeConfig(t, `
database: /var/lib/repograph/graph.db
job_extensions: [".xml", ".config"]
job_url_path: scm/userRemoteConfigs/hudson.plugins.git.UserRemoteConfig/url
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/repograph/graph.db", cfg.Database)
	assert.Equal(t, []string{".xml", ".config"}, cfg.JobExtensions)
	assert.Equal(t, "scm/userRemoteConfigs/hudson.plugins.git.UserRemoteConfig/url", cfg.JobPaths().URL)
	// Unset keys keep their defaults.
	assert.Equal(t, ".gitmodules", cfg.SubmoduleFile)
	assert.Equal(t, "displayName", cfg.JobPaths().Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "database: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := map[string]string{
		"empty database":        `database: ""`,
		"path in module file":   `submodule_file: sub/.gitmodules`,
		"extension without dot": `job_extensions: ["xml"]`,
		"no extensions":         `job_extensions: []`,
		"empty git binary":      `git_binary: ""`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestValidate_Default(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
