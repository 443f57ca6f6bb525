package sightline

import (
	"context"
	"path/filepath"
)

// ResolveOptions turns a project descriptor into an analysis-ready
// configuration snapshot. When any open, unsaved buffer in the
// project's file set changed more recently than the base load time, the
// returned configuration's load time is bumped to the newest such
// change. The engine keys its caches on the full configuration, so the
// bump makes unsaved edits cache-invalidating without disk access.
//
// The result is never cached here: dirty state can change between
// calls, so staleness is recomputed on every derivation.
func (w *Workspace) ResolveOptions(ctx context.Context, project ProjectDescriptor) (Config, error) {
	base, err := project.DeriveConfig(ctx)
	if err != nil {
		return Config{}, err
	}
	if w.dirty == nil {
		return base, nil
	}

	fileSet := make(map[string]bool, len(base.SourceFiles))
	for _, f := range base.SourceFiles {
		fileSet[filepath.Clean(f)] = true
	}

	// Load time only moves forward: max(base, newest relevant change).
	loadTime := base.LoadTime
	bumped := false
	for _, doc := range w.dirty.DirtyDocuments() {
		if !fileSet[filepath.Clean(doc.Path)] {
			continue
		}
		if doc.ModifiedAt.After(loadTime) {
			loadTime = doc.ModifiedAt
			bumped = true
		}
	}
	if !bumped {
		return base, nil
	}
	out := base
	out.LoadTime = loadTime
	return out, nil
}
