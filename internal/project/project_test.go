package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "app.yaml", `
name: app
flags: ["-race"]
files:
  - main.go
  - util.go
output: bin/app
runtime: linux
`)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "app", p.Name())
	assert.False(t, p.IsScript())
	assert.Equal(t, path, p.ProjectFile())
	assert.Equal(t, []string{"-race"}, p.CompilerFlags())
	assert.Equal(t, []string{
		filepath.Join(dir, "main.go"),
		filepath.Join(dir, "util.go"),
	}, p.SourceFiles())
	assert.Equal(t, filepath.Join(dir, "bin/app"), p.OutputPath())
	assert.Equal(t, "linux", p.TargetRuntime())
	assert.Empty(t, p.References())
}

func TestLoad_NameDefaultsToFileStem(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "tool.yaml", "files: [main.go]\n")

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tool", p.Name())
}

func TestLoad_References(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "core.yaml", "name: core\nfiles: [core.go]\n")
	writeManifest(t, dir, "lib.yaml", "name: lib\nfiles: [lib.go]\nreferences: [core.yaml]\n")
	appPath := writeManifest(t, dir, "app.yaml", "name: app\nfiles: [app.go]\nreferences: [lib.yaml]\n")

	p, err := Load(appPath)
	require.NoError(t, err)

	refs := p.References()
	require.Len(t, refs, 1)
	assert.Equal(t, filepath.Join(dir, "lib.yaml"), refs[0].ProjectFile())

	assert.Equal(t, []string{
		filepath.Join(dir, "lib.yaml"),
		filepath.Join(dir, "core.yaml"),
	}, p.TransitiveReferenceIDs())
}

func TestLoad_ReferenceCycle(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a.yaml", "name: a\nreferences: [b.yaml]\n")
	bPath := writeManifest(t, dir, "b.yaml", "name: b\nreferences: [a.yaml]\n")

	p, err := Load(bPath)
	require.NoError(t, err)

	// The cycle terminates; each project appears once.
	ids := p.TransitiveReferenceIDs()
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml")}, ids)
}

func TestLoad_MissingManifest(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read manifest")
}

func TestLoad_MalformedManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "bad.yaml", "files: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse manifest")
}

func TestDeriveConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "app.yaml", "name: app\nflags: [\"-v\"]\nfiles: [main.go]\nruntime: linux\n")

	p, err := Load(path)
	require.NoError(t, err)

	cfg, err := p.DeriveConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ProjectFile)
	assert.False(t, cfg.IsScript)
	assert.Equal(t, []string{"-v"}, cfg.CompilerFlags)
	assert.Equal(t, []string{filepath.Join(dir, "main.go")}, cfg.SourceFiles)
	assert.Equal(t, "linux", cfg.TargetRuntime)
	assert.False(t, cfg.LoadTime.IsZero())

	// The base load time is the manifest's mtime, stable across derives.
	cfg2, err := p.DeriveConfig(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.Equal(cfg2))
}

func TestDeriveConfig_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "app.yaml", "name: app\n")
	p, err := Load(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.DeriveConfig(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScript(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "scratch.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n"), 0o644))

	s := Script(file)
	assert.True(t, s.IsScript())
	assert.Equal(t, file, s.ProjectFile())
	assert.Equal(t, []string{file}, s.SourceFiles())
	assert.Empty(t, s.References())
	assert.Empty(t, s.TransitiveReferenceIDs())

	cfg, err := s.DeriveConfig(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.IsScript)
	assert.Equal(t, []string{file}, cfg.SourceFiles)
	assert.False(t, cfg.LoadTime.IsZero())
}
