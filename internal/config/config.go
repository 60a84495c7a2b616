// Package config loads repograph settings.
//
// Settings start from defaults, are overlaid by an optional YAML file and are
// validated against an embedded CUE schema. A Config is loaded once per run
// and passed by value; nothing mutates it afterwards.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/repograph/internal/gitmodules"
	"github.com/roach88/repograph/internal/jobxml"
	"github.com/roach88/repograph/internal/model"
	"github.com/roach88/repograph/internal/store"
	"github.com/roach88/repograph/internal/vcs"
)

//go:embed schema.cue
var schemaCUE string

// Config holds the settings shared by all commands.
type Config struct {
	// Database is the SQLite database path.
	Database string `yaml:"database" json:"database"`

	// SubmoduleFile is the declaration file name at repository roots.
	SubmoduleFile string `yaml:"submodule_file" json:"submodule_file"`

	// JobExtensions lists the file suffixes taken from job directories.
	JobExtensions []string `yaml:"job_extensions" json:"job_extensions"`

	// JobNamePath and JobURLPath select the job name and source url elements.
	JobNamePath string `yaml:"job_name_path" json:"job_name_path"`
	JobURLPath  string `yaml:"job_url_path" json:"job_url_path"`

	// GitBinary is the git executable.
	GitBinary string `yaml:"git_binary" json:"git_binary"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database:      store.DefaultPath,
		SubmoduleFile: gitmodules.DefaultFileName,
		JobExtensions: []string{".xml"},
		JobNamePath:   jobxml.DefaultNamePath,
		JobURLPath:    jobxml.DefaultURLPath,
		GitBinary:     vcs.DefaultBinary,
	}
}

// JobPaths returns the element paths for the job description parser.
func (c Config) JobPaths() jobxml.Paths {
	return jobxml.Paths{Name: c.JobNamePath, URL: c.JobURLPath}
}

// Load returns the defaults overlaid by the YAML file at path.
// An empty path skips the file. A named file that does not exist is a
// NOT_FOUND error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Config{}, model.NotFound(path)
			}
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		if path != "" {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks c against the CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
