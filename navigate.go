package sightline

import (
	"context"
)

// NavigableItem is one declaration delivered by the bulk project scan.
type NavigableItem struct {
	Name string
	Kind string
	Path string
	Span Span
}

// EachNavigableItemInProject walks every declaration in the project's
// source files, invoking fn for each in file-set order. The scan stops
// when fn returns false or when ctx is cancelled; after cancellation is
// observed no further callback fires, and the error is ctx's. Files
// that fail to analyze are logged and skipped.
func (w *Workspace) EachNavigableItemInProject(ctx context.Context, project ProjectDescriptor, fn func(NavigableItem) bool) error {
	cfg, err := w.ResolveOptions(ctx, project)
	if err != nil {
		return err
	}
	for _, path := range cfg.SourceFiles {
		if err := ctx.Err(); err != nil {
			return err
		}
		decls, err := w.checker.DeclarationsInFile(ctx, cfg, path)
		if err != nil {
			w.logger.Warn("sightline: navigable item scan skipping file", "path", path, "error", err)
			continue
		}
		for _, d := range decls {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := NavigableItem{
				Name: d.Symbol.Name,
				Kind: d.Symbol.Kind,
				Path: d.Occurrence.Path,
				Span: d.Occurrence.Span,
			}
			if !fn(item) {
				return nil
			}
		}
	}
	return nil
}
