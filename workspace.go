package sightline

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jward/sightline/internal/engine"
)

// Workspace is the coordination layer's handle. It owns the analysis
// engine it creates and borrows everything else: the dirty-document
// index and buffer provider belong to the editing surface, project
// descriptors to the project system.
type Workspace struct {
	checker *engine.Checker
	dirty   DirtyIndex
	buffers BufferProvider
	colors  LineStateCache
	logger  *slog.Logger

	indexPath string
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithDirtyIndex wires the editor's dirty-document index. Without it,
// resolved configurations are never load-time bumped.
func WithDirtyIndex(index DirtyIndex) Option {
	return func(w *Workspace) {
		w.dirty = index
	}
}

// WithBuffers wires the editor's open-buffer provider so analysis reads
// unsaved buffer contents in preference to disk.
func WithBuffers(buffers BufferProvider) Option {
	return func(w *Workspace) {
		w.buffers = buffers
	}
}

// WithTracker wires a DocumentTracker as both the dirty index and the
// buffer provider, the usual pairing for a live editing session.
func WithTracker(tracker *DocumentTracker) Option {
	return func(w *Workspace) {
		w.dirty = tracker
		w.buffers = tracker
	}
}

// WithLineStateCache wires the host syntax-coloring subsystem's line
// state lookup. Optional; the scanner bridge falls back to re-lexing.
func WithLineStateCache(cache LineStateCache) Option {
	return func(w *Workspace) {
		w.colors = cache
	}
}

// WithLogger sets the diagnostic logger for the workspace and engine.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = logger
	}
}

// WithIndexPath stores the engine's symbol index at path instead of in
// memory. Nothing the workspace itself holds persists either way.
func WithIndexPath(path string) Option {
	return func(w *Workspace) {
		w.indexPath = path
	}
}

// New creates a Workspace and its analysis engine.
func New(opts ...Option) (*Workspace, error) {
	w := &Workspace{logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	checker, err := engine.NewChecker(
		engine.WithLogger(w.logger),
		engine.WithReadFile(w.readSource),
		engine.WithIndexPath(w.indexPath),
	)
	if err != nil {
		return nil, fmt.Errorf("sightline: %w", err)
	}
	w.checker = checker
	return w, nil
}

// Close releases the engine's resources.
func (w *Workspace) Close() error {
	return w.checker.Close()
}

// Checker exposes the underlying engine handle for collaborators that
// need low-level operations outside the workspace's scoped contracts.
func (w *Workspace) Checker() *Checker {
	return w.checker
}

// readSource reads a file preferring the open buffer over disk. This is
// the engine's view of the world during index builds, so a dirty buffer
// is analyzed as typed, not as last saved.
func (w *Workspace) readSource(path string) ([]byte, error) {
	if w.buffers != nil {
		if snap := w.buffers.Snapshot(path); snap != nil {
			return []byte(snap.Content()), nil
		}
	}
	return os.ReadFile(path)
}
