package sightline

import (
	"context"
)

// ResolveSemanticSymbol resolves the lexical symbol sym in path to its
// precise semantic identity: it derives the project's current
// configuration, requests a parse-and-check pass (which may reuse a
// cached pass if staleness allows), then asks the check results for the
// symbol at the lexical symbol's end position with its display text as
// a hint.
//
// A (nil, nil, nil) return means no semantic symbol resolves there
// (a syntax error at the location, or a text mismatch). That is a
// normal absent result, not a failure.
func (w *Workspace) ResolveSemanticSymbol(ctx context.Context, sym Symbol, path string, project ProjectDescriptor, staleness Staleness) (*SymbolUse, *CheckResults, error) {
	cfg, err := w.ResolveOptions(ctx, project)
	if err != nil {
		return nil, nil, err
	}
	source, err := w.readSource(path)
	if err != nil {
		return nil, nil, err
	}
	results, err := w.checker.ParseAndCheck(ctx, cfg, path, source, staleness)
	if err != nil {
		return nil, nil, err
	}
	use, ok := results.SymbolUseAt(sym.Line, sym.EndCol, sym.Text)
	if !ok {
		return nil, nil, nil
	}
	return use, results, nil
}
