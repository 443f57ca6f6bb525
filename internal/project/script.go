package project

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/jward/sightline"
	"github.com/jward/sightline/internal/engine"
)

// ScriptProject is the standalone-script variant of the descriptor: a
// single file opened with no enclosing project. Its source set is the
// file itself and it references nothing.
type ScriptProject struct {
	path     string
	loadTime time.Time
}

// Script builds a descriptor for a single source file.
func Script(path string) *ScriptProject {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	loadTime := time.Now()
	if info, err := os.Stat(abs); err == nil {
		loadTime = info.ModTime()
	}
	return &ScriptProject{path: abs, loadTime: loadTime}
}

func (s *ScriptProject) IsScript() bool          { return true }
func (s *ScriptProject) ProjectFile() string     { return s.path }
func (s *ScriptProject) TargetRuntime() string   { return "" }
func (s *ScriptProject) CompilerFlags() []string { return nil }
func (s *ScriptProject) SourceFiles() []string   { return []string{s.path} }
func (s *ScriptProject) OutputPath() string      { return "" }

func (s *ScriptProject) References() []sightline.ProjectDescriptor { return nil }
func (s *ScriptProject) TransitiveReferenceIDs() []string          { return nil }

func (s *ScriptProject) DeriveConfig(ctx context.Context) (engine.Config, error) {
	if err := ctx.Err(); err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		ProjectFile: s.path,
		IsScript:    true,
		SourceFiles: []string{s.path},
		LoadTime:    s.loadTime,
	}, nil
}
