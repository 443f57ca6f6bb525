package sightline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const libFixture = `package lib

func Shared() {}

func helper() {
	Shared()
}
`

const appFixture = `package app

func run() {
	Shared()
}
`

// sharedCallSym is the lexical symbol for the Shared() call inside
// helper, line 5 of libFixture.
var sharedCallSym = Symbol{Text: "Shared", Line: 5, StartCol: 1, EndCol: 7}

func newTestWorkspace(t *testing.T, opts ...Option) *Workspace {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := New(append([]Option{WithLogger(quiet)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// testProject is an in-memory descriptor with a controllable base load
// time, standing in for the project system.
type testProject struct {
	file      string
	isScript  bool
	flags     []string
	files     []string
	loadTime  time.Time
	refs      []ProjectDescriptor
	deriveErr error
}

func (p *testProject) IsScript() bool { return p.isScript }
func (p *testProject) ProjectFile() string { return p.file }
func (p *testProject) TargetRuntime() string { return "" }
func (p *testProject) CompilerFlags() []string { return p.flags }
func (p *testProject) SourceFiles() []string { return p.files }
func (p *testProject) OutputPath() string { return "" }
func (p *testProject) References() []ProjectDescriptor { return p.refs }
func (p *testProject) TransitiveReferenceIDs() []string { return nil }

func (p *testProject) DeriveConfig(ctx context.Context) (Config, error) {
	if p.deriveErr != nil {
		return Config{}, p.deriveErr
	}
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}
	return Config{
		ProjectFile:   p.file,
		IsScript:      p.isScript,
		CompilerFlags: append([]string(nil), p.flags...),
		SourceFiles:   append([]string(nil), p.files...),
		LoadTime:      p.loadTime,
	}, nil
}

var errDerive = errors.New("descriptor unavailable")
