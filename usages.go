package sightline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.lsp.dev/uri"

	"github.com/jward/sightline/internal/lexer"
)

// SearchPhase is a coarse milestone reported during long cross-project
// searches.
type SearchPhase int

const (
	PhaseCurrentProject SearchPhase = iota
	PhaseDependentProjects
	PhaseConsolidating
)

func (p SearchPhase) String() string {
	switch p {
	case PhaseCurrentProject:
		return "searching current project"
	case PhaseDependentProjects:
		return "searching dependent projects"
	case PhaseConsolidating:
		return "consolidating results"
	default:
		return "unknown"
	}
}

// Progress receives milestone notifications. A nil Progress is silent.
type Progress func(SearchPhase)

func (p Progress) report(phase SearchPhase) {
	if p != nil {
		p(phase)
	}
}

// UsageResult is the outcome of a cross-project usage search.
type UsageResult struct {
	Symbol      Symbol
	LastIdent   string
	Occurrences []Occurrence
}

// FindUsagesAcrossProjects finds every usage of the symbol at sym in
// path, searching the current project and each project in deps.
// Configurations for deps are resolved in parallel before the single
// consolidating engine call. Occurrences are deduplicated by
// (normalized path, range). Any failure is logged and collapsed to an
// absent result.
func (w *Workspace) FindUsagesAcrossProjects(ctx context.Context, sym Symbol, path string, project ProjectDescriptor, deps []ProjectDescriptor, progress Progress) (*UsageResult, bool) {
	progress.report(PhaseCurrentProject)
	cfg, err := w.ResolveOptions(ctx, project)
	if err != nil {
		w.logger.Warn("sightline: resolve current project failed", "project", project.ProjectFile(), "error", err)
		return nil, false
	}

	progress.report(PhaseDependentProjects)
	depCfgs, err := w.resolveAll(ctx, deps)
	if err != nil {
		w.logger.Warn("sightline: resolve dependent projects failed", "error", err)
		return nil, false
	}

	source, err := w.readSource(path)
	if err != nil {
		w.logger.Warn("sightline: read source failed", "path", path, "error", err)
		return nil, false
	}

	target, uses, err := w.checker.UsesAcrossConfigs(ctx, cfg, depCfgs, path, source, sym.Line, sym.EndCol, sym.Text)
	if err != nil {
		w.logger.Warn("sightline: cross-project usage search failed", "path", path, "symbol", sym.Text, "error", err)
		return nil, false
	}
	if target == nil || len(uses) == 0 {
		return nil, false
	}

	progress.report(PhaseConsolidating)
	return &UsageResult{
		Symbol:      sym,
		LastIdent:   sym.LastIdent(),
		Occurrences: dedupeOccurrences(occurrencesOf(uses)),
	}, true
}

// FindUsagesInFile finds every usage of the symbol at sym scoped to one
// file, from a fresh semantic resolution under the project's current
// configuration. staleness is passed through to the engine opaquely.
func (w *Workspace) FindUsagesInFile(ctx context.Context, sym Symbol, path string, project ProjectDescriptor, staleness Staleness) ([]Occurrence, bool) {
	target, results, err := w.ResolveSemanticSymbol(ctx, sym, path, project, staleness)
	if err != nil {
		w.logger.Warn("sightline: in-file usage search failed", "path", path, "symbol", sym.Text, "error", err)
		return nil, false
	}
	if target == nil {
		return nil, false
	}
	return usagesFromResults(results, target), true
}

// UsagesInFileFromResults computes in-file usages directly from a
// check-result snapshot the caller already holds, skipping the fresh
// resolution. Both paths converge on the same per-file query and
// deduplication.
func (w *Workspace) UsagesInFileFromResults(results *CheckResults, sym Symbol) ([]Occurrence, bool) {
	target, ok := results.SymbolUseAt(sym.Line, sym.EndCol, sym.Text)
	if !ok {
		return nil, false
	}
	return usagesFromResults(results, target), true
}

func usagesFromResults(results *CheckResults, target *SymbolUse) []Occurrence {
	return dedupeOccurrences(occurrencesOf(results.UsesOfSymbol(target.Symbol)))
}

// AllSymbolUsesInFile returns every symbol occurrence in the file, not
// just one symbol, alongside a lexer adapter bound to the file's text
// and compiler flags for callers that need further on-demand
// tokenization without re-deriving configuration.
func (w *Workspace) AllSymbolUsesInFile(ctx context.Context, snap *Snapshot, path string, project ProjectDescriptor, staleness Staleness) ([]Occurrence, *FileScanner, bool) {
	cfg, err := w.ResolveOptions(ctx, project)
	if err != nil {
		w.logger.Warn("sightline: resolve project failed", "project", project.ProjectFile(), "error", err)
		return nil, nil, false
	}
	results, err := w.checker.ParseAndCheck(ctx, cfg, path, []byte(snap.Content()), staleness)
	if err != nil {
		w.logger.Warn("sightline: parse and check failed", "path", path, "error", err)
		return nil, nil, false
	}
	scanner := lexer.NewFileScanner(snap.Content(), cfg.CompilerFlags)
	return dedupeOccurrences(occurrencesOf(results.AllUses())), scanner, true
}

// resolveAll resolves configurations for every project in parallel.
// Each resolution only reads the dirty index and its descriptor, so
// joining the results is the only synchronization needed.
func (w *Workspace) resolveAll(ctx context.Context, projects []ProjectDescriptor) ([]Config, error) {
	cfgs := make([]Config, len(projects))
	errs := make([]error, len(projects))
	var wg sync.WaitGroup
	for i, p := range projects {
		wg.Add(1)
		go func(i int, p ProjectDescriptor) {
			defer wg.Done()
			cfgs[i], errs[i] = w.ResolveOptions(ctx, p)
		}(i, p)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", projects[i].ProjectFile(), err)
		}
	}
	return cfgs, nil
}

func occurrencesOf(uses []SymbolUse) []Occurrence {
	out := make([]Occurrence, 0, len(uses))
	for _, u := range uses {
		out = append(out, u.Occurrence)
	}
	return out
}

// dedupeOccurrences collapses occurrences the engine reported more than
// once for the same logical reference. Distinctness is (normalized
// absolute path, exact range): identical ranges in the same file
// collapse to one, first occurrence wins. Output groups by path in
// first-seen order; within a group the engine's order is preserved,
// filtered.
func dedupeOccurrences(occs []Occurrence) []Occurrence {
	type rangeKey struct {
		path string
		span Span
	}
	seen := make(map[rangeKey]bool, len(occs))
	grouped := make(map[string][]Occurrence)
	var pathOrder []string

	for _, occ := range occs {
		norm := normalizePath(occ.Path)
		key := rangeKey{path: norm, span: occ.Span}
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := grouped[norm]; !ok {
			pathOrder = append(pathOrder, norm)
		}
		grouped[norm] = append(grouped[norm], occ)
	}

	out := make([]Occurrence, 0, len(occs))
	for _, p := range pathOrder {
		out = append(out, grouped[p]...)
	}
	return out
}

// normalizePath produces the canonical identity of a file path for
// deduplication, via its file URI.
func normalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return string(uri.File(abs))
}
