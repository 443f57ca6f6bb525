package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
)

// Checker is the engine handle. It owns the symbol index store and two
// caches: indexed configurations (keyed by full config key) and
// per-(config, file) check results. A single mutex serializes engine
// calls; callers fan out above this layer, and index builds are the
// only long operations.
type Checker struct {
	mu      sync.Mutex
	store   *store
	logger  *slog.Logger
	indexes map[string]int64 // config key -> configs row id
	checks  map[string]*CheckResults

	// readFile sources file contents during index builds. The
	// coordination layer points it at open editor buffers first so
	// unsaved edits are visible without touching disk.
	readFile func(string) ([]byte, error)

	// indexPath is "" for an in-memory index.
	indexPath string
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithReadFile overrides how the checker reads source files.
func WithReadFile(fn func(string) ([]byte, error)) CheckerOption {
	return func(c *Checker) {
		c.readFile = fn
	}
}

// WithIndexPath stores the symbol index at path instead of in memory.
func WithIndexPath(path string) CheckerOption {
	return func(c *Checker) {
		c.indexPath = path
	}
}

// NewChecker creates an engine with an in-memory symbol index unless
// WithIndexPath points it at a file.
func NewChecker(opts ...CheckerOption) (*Checker, error) {
	c := &Checker{
		logger:   slog.Default(),
		indexes:  make(map[string]int64),
		checks:   make(map[string]*CheckResults),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(c)
	}
	s, err := newStore(c.indexPath)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	c.store = s
	return c, nil
}

// Close releases the index store.
func (c *Checker) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Close()
}

// ParseAndCheck runs (or reuses) a check pass for path under cfg.
// AllowStale returns any cached pass for the pair; RequireFresh
// recomputes when the content hash changed.
func (c *Checker) ParseAndCheck(ctx context.Context, cfg Config, path string, source []byte, mode Staleness) (*CheckResults, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parseAndCheckLocked(ctx, cfg, path, source, mode)
}

func (c *Checker) parseAndCheckLocked(ctx context.Context, cfg Config, path string, source []byte, mode Staleness) (*CheckResults, error) {
	key := cfg.Key()
	checkKey := key + "\x00" + path
	hash := contentHash(source)

	if cached, ok := c.checks[checkKey]; ok {
		if mode == AllowStale || cached.hash == hash {
			return cached, nil
		}
	}

	configID, err := c.ensureIndexLocked(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// The index may have been built from an older copy of this file
	// (or the file may be outside the declared source set, e.g. a
	// just-created buffer). Re-extract it from the supplied source.
	stored, err := c.store.fileHash(configID, path)
	if err != nil {
		return nil, err
	}
	if stored != hash {
		ext, err := extractFile(ctx, path, source)
		if err != nil {
			return nil, err
		}
		if err := c.store.deleteFile(configID, path); err != nil {
			return nil, err
		}
		if err := c.commitExtractions(configID, []fileExtraction{ext}, true); err != nil {
			return nil, err
		}
	}

	rows, err := c.store.usesInFile(configID, path)
	if err != nil {
		return nil, err
	}
	results := newCheckResults(path, key, hash, rows, &FileSource{
		Content: string(source),
		Flags:   cfg.CompilerFlags,
	})
	c.checks[checkKey] = results
	return results, nil
}

// UsesAcrossConfigs finds the semantic symbol at (line, col) in path
// under the current configuration, then collects every matching use in
// the current configuration and each dependent configuration, in that
// order. hint is the lexical display text at the position.
func (c *Checker) UsesAcrossConfigs(ctx context.Context, current Config, deps []Config, path string, source []byte, line, col int, hint string) (*SymbolUse, []SymbolUse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	results, err := c.parseAndCheckLocked(ctx, current, path, source, AllowStale)
	if err != nil {
		return nil, nil, err
	}
	target, ok := results.SymbolUseAt(line, col, hint)
	if !ok {
		return nil, nil, nil
	}

	var all []SymbolUse
	for _, cfg := range append([]Config{current}, deps...) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		configID, err := c.ensureIndexLocked(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		rows, err := c.store.usesOfName(configID, target.Symbol.Name)
		if err != nil {
			return nil, nil, err
		}
		for _, row := range rows {
			use := rowToUse(row)
			if sameSymbol(use.Symbol, target.Symbol) {
				all = append(all, use)
			}
		}
	}
	return target, all, nil
}

// DeclarationsInFile returns the defining occurrences in one file of a
// configuration, building the index if needed.
func (c *Checker) DeclarationsInFile(ctx context.Context, cfg Config, path string) ([]SymbolUse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	configID, err := c.ensureIndexLocked(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rows, err := c.store.declarationsInFile(configID, path)
	if err != nil {
		return nil, err
	}
	out := make([]SymbolUse, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToUse(row))
	}
	return out, nil
}

// InvalidateConfig drops every cached artifact keyed to exactly cfg:
// its index rows and any check results computed under it.
func (c *Checker) InvalidateConfig(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cfg.Key()
	delete(c.indexes, key)
	for checkKey := range c.checks {
		if len(checkKey) > len(key) && checkKey[:len(key)] == key && checkKey[len(key)] == 0 {
			delete(c.checks, checkKey)
		}
	}
	return c.store.deleteConfig(key)
}

// ClearCaches unconditionally drops every cached analysis result the
// engine holds.
func (c *Checker) ClearCaches() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexes = make(map[string]int64)
	c.checks = make(map[string]*CheckResults)
	return c.store.deleteAll()
}

// IndexedConfigs reports how many configurations currently have a live
// index. Used by tests and diagnostics.
func (c *Checker) IndexedConfigs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.indexes)
}

// ensureIndexLocked returns the store row id for cfg's index, building
// it on first sight of the key.
func (c *Checker) ensureIndexLocked(ctx context.Context, cfg Config) (int64, error) {
	key := cfg.Key()
	if id, ok := c.indexes[key]; ok {
		return id, nil
	}
	configID, existed, err := c.store.ensureConfig(key)
	if err != nil {
		return 0, err
	}
	if !existed {
		if err := c.buildIndex(ctx, cfg, configID); err != nil {
			// Leave no half-built index behind.
			_ = c.store.deleteConfig(key)
			return 0, err
		}
	}
	c.indexes[key] = configID
	return configID, nil
}

// buildIndex extracts every source file of cfg on a worker pool, then
// commits serially: symbols first (so the declaration map is complete),
// refs second. Unreadable files are logged and skipped; analysis stays
// best-effort. Context errors are fatal instead: a cancelled build must
// never commit, or the half-built index would be cached as complete and
// answer every later query under this configuration.
func (c *Checker) buildIndex(ctx context.Context, cfg Config, configID int64) error {
	paths := cfg.SourceFiles
	if len(paths) == 0 {
		return nil
	}

	workCh := make(chan string, len(paths))
	for _, p := range paths {
		workCh <- p
	}
	close(workCh)

	type result struct {
		ext fileExtraction
		err error
	}
	resultCh := make(chan result, len(paths))

	numWorkers := min(runtime.NumCPU(), len(paths))
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range workCh {
				content, err := c.readFile(p)
				if err != nil {
					resultCh <- result{err: fmt.Errorf("read %s: %w", p, err)}
					continue
				}
				ext, err := extractFile(ctx, p, content)
				resultCh <- result{ext: ext, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Preserve cfg's file order for deterministic resolution.
	byPath := make(map[string]fileExtraction, len(paths))
	for res := range resultCh {
		if res.err != nil {
			if errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded) {
				return res.err
			}
			c.logger.Warn("engine: skipping file during index build", "error", res.err)
			continue
		}
		byPath[res.ext.Path] = res.ext
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var exts []fileExtraction
	for _, p := range paths {
		if ext, ok := byPath[p]; ok {
			exts = append(exts, ext)
		}
	}

	return c.commitExtractions(configID, exts, false)
}

// declSite is one declaration candidate during reference resolution.
type declSite struct {
	id   int64
	path string
}

// commitExtractions inserts extraction results for one or more files.
// When mergeExisting is true (single-file re-extraction), declarations
// already in the index for other files stay valid resolution targets.
func (c *Checker) commitExtractions(configID int64, exts []fileExtraction, mergeExisting bool) error {
	declMap := make(map[string][]declSite)
	if mergeExisting {
		existing, err := c.store.declsByConfig(configID)
		if err != nil {
			return err
		}
		declMap = existing
	}

	type pendingRefs struct {
		fileID int64
		path   string
		ext    fileExtraction
	}
	var pending []pendingRefs

	// Pass 1: file records and symbols, accumulating the decl map.
	for _, ext := range exts {
		fileID, err := c.store.insertFile(configID, ext.Path, ext.Hash)
		if err != nil {
			return err
		}
		for _, d := range ext.Decls {
			symID, err := c.store.insertSymbol(fileID, d)
			if err != nil {
				return err
			}
			declMap[d.Name] = append(declMap[d.Name], declSite{id: symID, path: ext.Path})
			// The declared name itself is a use of the symbol.
			defRef := reference{
				Name:      d.Name,
				StartLine: d.StartLine,
				StartCol:  d.StartCol,
				EndLine:   d.EndLine,
				EndCol:    d.EndCol,
			}
			if err := c.store.insertRef(fileID, defRef, sql.NullInt64{Int64: symID, Valid: true}, true); err != nil {
				return err
			}
		}
		pending = append(pending, pendingRefs{fileID: fileID, path: ext.Path, ext: ext})
	}

	// Pass 2: references, resolved against the complete decl map.
	for _, p := range pending {
		for _, r := range p.ext.Refs {
			target := resolveTarget(declMap, r.Name, p.path)
			if err := c.store.insertRef(p.fileID, r, target, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveTarget picks the declaration a reference binds to: a same-file
// declaration first, then the first declaration in configuration file
// order. No candidate means the reference stays unresolved and links by
// name across configurations.
func resolveTarget(declMap map[string][]declSite, name, path string) sql.NullInt64 {
	sites := declMap[name]
	if len(sites) == 0 {
		return sql.NullInt64{}
	}
	for _, site := range sites {
		if site.path == path {
			return sql.NullInt64{Int64: site.id, Valid: true}
		}
	}
	return sql.NullInt64{Int64: sites[0].id, Valid: true}
}
