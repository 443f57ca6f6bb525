package engine

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const libSource = `package lib

func Shared() {}

func helper() {
	Shared()
}
`

const appSource = `package app

func run() {
	Shared()
}
`

func newTestChecker(t *testing.T, opts ...CheckerOption) *Checker {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := NewChecker(append([]CheckerOption{WithLogger(quiet)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(project string, files ...string) Config {
	return Config{
		ProjectFile: project,
		SourceFiles: files,
		LoadTime:    time.Unix(1700000000, 0),
	}
}

func TestParseAndCheck_Uses(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	c := newTestChecker(t)
	cfg := testConfig("lib.yaml", lib)

	results, err := c.ParseAndCheck(context.Background(), cfg, lib, []byte(libSource), RequireFresh)
	require.NoError(t, err)

	// Definitions: package lib, Shared, helper. One call reference.
	uses := results.AllUses()
	require.Len(t, uses, 4)
	assert.Equal(t, "lib", uses[0].Symbol.Name)
	assert.True(t, uses[0].IsDefinition)
	assert.Equal(t, "Shared", uses[1].Symbol.Name)
	assert.Equal(t, "helper", uses[2].Symbol.Name)
	assert.Equal(t, "Shared", uses[3].Symbol.Name)
	assert.False(t, uses[3].IsDefinition)

	// The call site resolves to the definition in the same file.
	assert.Equal(t, lib, uses[3].Symbol.DeclPath)
	assert.Equal(t, 2, uses[3].Symbol.DeclSpan.Start.Line)

	require.Len(t, results.Declarations(), 3)

	require.NotNil(t, results.Source())
	assert.Equal(t, libSource, results.Source().Content)
}

func TestParseAndCheck_SymbolUseAt(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	c := newTestChecker(t)
	cfg := testConfig("lib.yaml", lib)

	results, err := c.ParseAndCheck(context.Background(), cfg, lib, []byte(libSource), RequireFresh)
	require.NoError(t, err)

	// Inside the call on line 5 ("\tShared()").
	use, ok := results.SymbolUseAt(5, 3, "Shared")
	require.True(t, ok)
	assert.False(t, use.IsDefinition)
	assert.Equal(t, "Shared", use.Symbol.Name)

	// A cursor exactly at the end of the identifier also hits.
	use, ok = results.SymbolUseAt(5, 7, "Shared")
	require.True(t, ok)
	assert.Equal(t, "Shared", use.Symbol.Name)

	// A hint that names a different symbol suppresses the match.
	_, ok = results.SymbolUseAt(5, 3, "Other")
	assert.False(t, ok)

	// Whitespace.
	_, ok = results.SymbolUseAt(3, 0, "")
	assert.False(t, ok)
}

func TestParseAndCheck_Caching(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	c := newTestChecker(t)
	cfg := testConfig("lib.yaml", lib)

	first, err := c.ParseAndCheck(context.Background(), cfg, lib, []byte(libSource), RequireFresh)
	require.NoError(t, err)

	// Unchanged content reuses the pass even under RequireFresh.
	again, err := c.ParseAndCheck(context.Background(), cfg, lib, []byte(libSource), RequireFresh)
	require.NoError(t, err)
	assert.Same(t, first, again)

	edited := libSource + "\nfunc extra() {\n\tShared()\n}\n"

	// AllowStale hands back the stale pass without recomputing.
	stale, err := c.ParseAndCheck(context.Background(), cfg, lib, []byte(edited), AllowStale)
	require.NoError(t, err)
	assert.Same(t, first, stale)

	// RequireFresh recomputes and sees the new call site.
	fresh, err := c.ParseAndCheck(context.Background(), cfg, lib, []byte(edited), RequireFresh)
	require.NoError(t, err)
	require.NotSame(t, first, fresh)
	assert.Len(t, fresh.AllUses(), len(first.AllUses())+2)
}

func TestUsesAcrossConfigs(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	app := writeSource(t, dir, "app.go", appSource)
	c := newTestChecker(t)

	current := testConfig("lib.yaml", lib)
	dep := testConfig("app.yaml", lib, app)

	target, all, err := c.UsesAcrossConfigs(
		context.Background(), current, []Config{dep}, lib, []byte(libSource), 5, 3, "Shared")
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "Shared", target.Symbol.Name)

	// Current config: definition + call. Dependent config indexes lib.go
	// again plus the call in app.go.
	require.Len(t, all, 5)
	var inApp int
	for _, u := range all {
		assert.Equal(t, "Shared", u.Symbol.Name)
		if u.Occurrence.Path == app {
			inApp++
		}
	}
	assert.Equal(t, 1, inApp)

	assert.Equal(t, 2, c.IndexedConfigs())
}

func TestUsesAcrossConfigs_NoSymbolAtPosition(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	c := newTestChecker(t)
	cfg := testConfig("lib.yaml", lib)

	target, all, err := c.UsesAcrossConfigs(
		context.Background(), cfg, nil, lib, []byte(libSource), 3, 0, "")
	require.NoError(t, err)
	assert.Nil(t, target)
	assert.Nil(t, all)
}

func TestUsesAcrossConfigs_Cancelled(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	c := newTestChecker(t)
	cfg := testConfig("lib.yaml", lib)

	// Warm the caches so cancellation is what stops the search.
	_, err := c.ParseAndCheck(context.Background(), cfg, lib, []byte(libSource), RequireFresh)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = c.UsesAcrossConfigs(ctx, cfg, nil, lib, []byte(libSource), 5, 3, "Shared")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeclarationsInFile(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	c := newTestChecker(t)
	cfg := testConfig("lib.yaml", lib)

	decls, err := c.DeclarationsInFile(context.Background(), cfg, lib)
	require.NoError(t, err)
	require.Len(t, decls, 3)
	assert.Equal(t, "lib", decls[0].Symbol.Name)
	assert.Equal(t, "Shared", decls[1].Symbol.Name)
	assert.Equal(t, "helper", decls[2].Symbol.Name)
	for _, d := range decls {
		assert.True(t, d.IsDefinition)
	}
}

func TestInvalidateConfig(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	c := newTestChecker(t)
	cfg := testConfig("lib.yaml", lib)

	first, err := c.ParseAndCheck(context.Background(), cfg, lib, []byte(libSource), RequireFresh)
	require.NoError(t, err)
	require.Equal(t, 1, c.IndexedConfigs())

	require.NoError(t, c.InvalidateConfig(cfg))
	assert.Equal(t, 0, c.IndexedConfigs())

	// The next query rebuilds from scratch; even AllowStale cannot see
	// the dropped pass.
	rebuilt, err := c.ParseAndCheck(context.Background(), cfg, lib, []byte(libSource), AllowStale)
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt)
	assert.Equal(t, 1, c.IndexedConfigs())
}

func TestInvalidateConfig_LeavesOtherConfigs(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	c := newTestChecker(t)
	cfgA := testConfig("a.yaml", lib)
	cfgB := testConfig("b.yaml", lib)

	_, err := c.ParseAndCheck(context.Background(), cfgA, lib, []byte(libSource), RequireFresh)
	require.NoError(t, err)
	_, err = c.ParseAndCheck(context.Background(), cfgB, lib, []byte(libSource), RequireFresh)
	require.NoError(t, err)
	require.Equal(t, 2, c.IndexedConfigs())

	require.NoError(t, c.InvalidateConfig(cfgA))
	assert.Equal(t, 1, c.IndexedConfigs())
}

func TestClearCaches(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	c := newTestChecker(t)

	_, err := c.ParseAndCheck(context.Background(), testConfig("a.yaml", lib), lib, []byte(libSource), RequireFresh)
	require.NoError(t, err)
	_, err = c.ParseAndCheck(context.Background(), testConfig("b.yaml", lib), lib, []byte(libSource), RequireFresh)
	require.NoError(t, err)

	require.NoError(t, c.ClearCaches())
	assert.Equal(t, 0, c.IndexedConfigs())
}

func TestWithReadFile_SeesBufferContent(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	virtual := filepath.Join(dir, "unsaved.go")

	c := newTestChecker(t, WithReadFile(func(path string) ([]byte, error) {
		if path == virtual {
			return []byte(appSource), nil
		}
		return os.ReadFile(path)
	}))
	cfg := testConfig("app.yaml", lib, virtual)

	// The virtual file never touched disk, yet its declarations index.
	decls, err := c.DeclarationsInFile(context.Background(), cfg, virtual)
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, "app", decls[0].Symbol.Name)
	assert.Equal(t, "run", decls[1].Symbol.Name)
}

func TestBuildIndex_SkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	missing := filepath.Join(dir, "gone.go")
	c := newTestChecker(t)
	cfg := testConfig("lib.yaml", missing, lib)

	decls, err := c.DeclarationsInFile(context.Background(), cfg, lib)
	require.NoError(t, err)
	assert.Len(t, decls, 3)
}

func TestBuildIndex_CancelledBuildIsNotCached(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	app := writeSource(t, dir, "app.go", appSource)
	c := newTestChecker(t)
	cfg := testConfig("app.yaml", lib, app)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.DeclarationsInFile(ctx, cfg, lib)
	require.ErrorIs(t, err, context.Canceled)

	// The aborted build must leave no trace: not in the index cache and
	// not in the store.
	require.Equal(t, 0, c.IndexedConfigs())

	// A healthy retry under the same configuration sees the full index,
	// not the remnants of the cancelled build.
	decls, err := c.DeclarationsInFile(context.Background(), cfg, lib)
	require.NoError(t, err)
	assert.Len(t, decls, 3)

	uses, err := c.store.usesOfName(c.indexes[cfg.Key()], "Shared")
	require.NoError(t, err)
	assert.Len(t, uses, 3)
}

func TestParseAndCheck_ReExtractsChangedFile(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.go", libSource)
	app := writeSource(t, dir, "app.go", appSource)
	c := newTestChecker(t)
	cfg := testConfig("app.yaml", lib, app)

	// The index was built from disk; check the file with edited content.
	edited := "package app\n\nfunc run() {\n\tShared()\n\tShared()\n}\n"
	results, err := c.ParseAndCheck(context.Background(), cfg, app, []byte(edited), RequireFresh)
	require.NoError(t, err)

	var calls []SymbolUse
	for _, u := range results.AllUses() {
		if u.Symbol.Name == "Shared" && !u.IsDefinition {
			calls = append(calls, u)
		}
	}
	require.Len(t, calls, 2)
	// Cross-file resolution survives the single-file re-extraction.
	for _, call := range calls {
		assert.Equal(t, lib, call.Symbol.DeclPath)
	}
}
