// Package project supplies sightline's project descriptors: YAML
// manifests for managed projects and a standalone-script variant for
// single files opened outside any project. Both expose the same
// capability set; the coordination layer treats them uniformly.
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jward/sightline"
	"github.com/jward/sightline/internal/engine"
)

// manifest is the on-disk YAML shape of a project file.
type manifest struct {
	Name       string   `yaml:"name"`
	Flags      []string `yaml:"flags"`
	Files      []string `yaml:"files"`
	Output     string   `yaml:"output"`
	Runtime    string   `yaml:"runtime"`
	References []string `yaml:"references"`
}

// Project is a managed project loaded from a manifest.
type Project struct {
	path    string // absolute manifest path
	name    string
	flags   []string
	files   []string // absolute source paths
	output  string
	runtime string
	refs    []*Project

	// loadTime is when the manifest was last written, the base value
	// the option resolver bumps forward for dirty buffers.
	loadTime time.Time
}

// Load reads a project manifest and, recursively, its references.
// Paths in the manifest are relative to the manifest's directory.
func Load(path string) (*Project, error) {
	return load(path, make(map[string]*Project))
}

func load(path string, seen map[string]*Project) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("project: resolve %q: %w", path, err)
	}
	if p, ok := seen[abs]; ok {
		return p, nil
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("project: read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("project: parse manifest %s: %w", abs, err)
	}

	loadTime := time.Now()
	if info, err := os.Stat(abs); err == nil {
		loadTime = info.ModTime()
	}

	dir := filepath.Dir(abs)
	p := &Project{
		path:     abs,
		name:     m.Name,
		flags:    m.Flags,
		output:   resolveRel(dir, m.Output),
		runtime:  m.Runtime,
		loadTime: loadTime,
	}
	for _, f := range m.Files {
		p.files = append(p.files, resolveRel(dir, f))
	}
	// Register before descending so reference cycles terminate.
	seen[abs] = p

	for _, ref := range m.References {
		rp, err := load(resolveRel(dir, ref), seen)
		if err != nil {
			return nil, fmt.Errorf("project: reference %q: %w", ref, err)
		}
		p.refs = append(p.refs, rp)
	}
	return p, nil
}

func resolveRel(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Name returns the manifest's declared name, or the file stem.
func (p *Project) Name() string {
	if p.name != "" {
		return p.name
	}
	base := filepath.Base(p.path)
	return base[:len(base)-len(filepath.Ext(base))]
}

func (p *Project) IsScript() bool          { return false }
func (p *Project) ProjectFile() string     { return p.path }
func (p *Project) TargetRuntime() string   { return p.runtime }
func (p *Project) CompilerFlags() []string { return p.flags }
func (p *Project) SourceFiles() []string   { return p.files }
func (p *Project) OutputPath() string      { return p.output }

// References returns the directly referenced projects.
func (p *Project) References() []sightline.ProjectDescriptor {
	out := make([]sightline.ProjectDescriptor, 0, len(p.refs))
	for _, r := range p.refs {
		out = append(out, r)
	}
	return out
}

// TransitiveReferenceIDs returns the manifest paths of every project
// reachable through the reference graph, excluding p itself.
func (p *Project) TransitiveReferenceIDs() []string {
	seen := map[string]bool{p.path: true}
	var out []string
	var walk func(*Project)
	walk = func(q *Project) {
		for _, r := range q.refs {
			if seen[r.path] {
				continue
			}
			seen[r.path] = true
			out = append(out, r.path)
			walk(r)
		}
	}
	walk(p)
	return out
}

// DeriveConfig produces the base analysis configuration snapshot for
// the project. The option resolver adjusts LoadTime afterwards; this
// method never consults editor state.
func (p *Project) DeriveConfig(ctx context.Context) (engine.Config, error) {
	if err := ctx.Err(); err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		ProjectFile:   p.path,
		CompilerFlags: append([]string(nil), p.flags...),
		SourceFiles:   append([]string(nil), p.files...),
		OutputPath:    p.output,
		TargetRuntime: p.runtime,
		LoadTime:      p.loadTime,
	}, nil
}
