package sightline

import (
	"context"
)

// InvalidateProject resolves the project's current configuration and
// drops every engine cache keyed to exactly that configuration. Used
// when a project's reference graph or flags change.
func (w *Workspace) InvalidateProject(ctx context.Context, project ProjectDescriptor) error {
	cfg, err := w.ResolveOptions(ctx, project)
	if err != nil {
		return err
	}
	return w.checker.InvalidateConfig(cfg)
}

// ClearAllCaches unconditionally drops every cached analysis result the
// engine holds process-wide. Used for global recovery actions.
func (w *Workspace) ClearAllCaches() error {
	return w.checker.ClearCaches()
}
