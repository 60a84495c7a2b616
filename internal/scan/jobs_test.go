package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repograph/internal/jobxml"
	"github.com/roach88/repograph/internal/model"
)

func jobDoc(name, url string) string {
	return `<?xml version='1.1' encoding='UTF-8'?>
<project>
  <displayName>` + name + `</displayName>
  <scm><source><remote>` + url + `</remote></source></scm>
</project>
`
}

func (f *fixture) jobScanner(t *testing.T) *JobScanner {
	t.Helper()
	parser, err := jobxml.NewParser(jobxml.DefaultPaths())
	require.NoError(t, err)
	return NewJobScanner(f.store, parser, f.log, nil)
}

func writeJob(t *testing.T, dir, file, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestScanFile_RegistersJob(t *testing.T) {
	f := newFixture(t)
	path := writeJob(t, f.root, "app.xml", jobDoc("app-ci", "https://x/app.git"))

	s := f.jobScanner(t)
	require.NoError(t, s.ScanFile(t.Context(), path))
	require.NoError(t, s.ScanFile(t.Context(), path))

	jobs, err := f.store.BuildJobs(t.Context())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "app-ci", jobs[0].Name)
	assert.Equal(t, "https://x/app.git", jobs[0].SourceURL)
	assert.Equal(t, JobStats{Files: 2, Jobs: 2, Inserted: 1}, s.Stats())
}

func TestScanFile_DuplicateRemoteIsSkipped(t *testing.T) {
	f := newFixture(t)
	doc := `<project>
  <displayName>app-ci</displayName>
  <source><remote>https://x/app.git</remote></source>
  <source><remote>https://x/mirror.git</remote></source>
</project>`
	path := writeJob(t, f.root, "dup.xml", doc)

	s := f.jobScanner(t)
	require.NoError(t, s.ScanFile(t.Context(), path))

	jobs, err := f.store.BuildJobs(t.Context())
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Equal(t, 1, s.Stats().Invalid)
	assert.Contains(t, f.logs.String(), "not a valid job description")
	assert.Contains(t, f.logs.String(), string(model.ErrCodeInvalidDocument))
}

func TestScanFile_MalformedXMLIsSkipped(t *testing.T) {
	f := newFixture(t)
	path := writeJob(t, f.root, "broken.xml", "<project><displayName>x</project>")

	s := f.jobScanner(t)
	require.NoError(t, s.ScanFile(t.Context(), path))
	assert.Equal(t, 1, s.Stats().Invalid)
}

func TestScanFile_ArgumentErrors(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.root, 0755))

	s := f.jobScanner(t)
	err := s.ScanFile(t.Context(), filepath.Join(f.root, "missing.xml"))
	assert.True(t, model.IsNotFound(err))

	err = s.ScanFile(t.Context(), f.root)
	assert.Equal(t, model.ErrCodeIsADirectory, model.CodeOf(err))
}

func TestScanFile_CorruptionAborts(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 2; i++ {
		_, err := f.store.DB().Exec("INSERT INTO build_job (name, source_url) VALUES ('app-ci', 'https://x/app.git')")
		require.NoError(t, err)
	}
	path := writeJob(t, f.root, "app.xml", jobDoc("app-ci", "https://x/app.git"))

	err := f.jobScanner(t).ScanFile(t.Context(), path)
	require.Error(t, err)
	assert.True(t, model.IsCorruption(err))
}

func TestScanDirectory(t *testing.T) {
	f := newFixture(t)
	dir := filepath.Join(f.root, "jobs")
	writeJob(t, dir, "b.xml", jobDoc("b-ci", "https://x/b.git"))
	writeJob(t, dir, "a.XML", jobDoc("a-ci", "https://x/a.git"))
	writeJob(t, dir, "notes.txt", jobDoc("ignored", "https://x/ignored.git"))
	writeJob(t, dir, "invalid.xml", "<project/>")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.xml"), 0755))

	s := f.jobScanner(t)
	require.NoError(t, s.ScanDirectory(t.Context(), dir))

	jobs, err := f.store.BuildJobs(t.Context())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a-ci", jobs[0].Name, "files are processed in name order")
	assert.Equal(t, "b-ci", jobs[1].Name)
	assert.Equal(t, JobStats{Files: 3, Jobs: 2, Inserted: 2, Invalid: 1}, s.Stats())
}

func TestScanDirectory_ArgumentErrors(t *testing.T) {
	f := newFixture(t)
	s := f.jobScanner(t)

	err := s.ScanDirectory(t.Context(), filepath.Join(f.root, "missing"))
	assert.True(t, model.IsNotFound(err))

	path := writeJob(t, f.root, "app.xml", jobDoc("app-ci", "u"))
	err = s.ScanDirectory(t.Context(), path)
	assert.Equal(t, model.ErrCodeNotADirectory, model.CodeOf(err))
}

func TestScanDirectory_CustomExtensions(t *testing.T) {
	f := newFixture(t)
	dir := filepath.Join(f.root, "jobs")
	writeJob(t, dir, "app.config", jobDoc("app-ci", "https://x/app.git"))
	writeJob(t, dir, "lib.xml", jobDoc("lib-ci", "https://x/lib.git"))

	parser, err := jobxml.NewParser(jobxml.DefaultPaths())
	require.NoError(t, err)
	s := NewJobScanner(f.store, parser, f.log, []string{".CONFIG"})
	require.NoError(t, s.ScanDirectory(t.Context(), dir))

	jobs, err := f.store.BuildJobs(t.Context())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "app-ci", jobs[0].Name)
}
