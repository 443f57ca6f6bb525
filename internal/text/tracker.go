package text

import (
	"sync"
	"time"
)

// DirtyDocument describes one open buffer that has unsaved changes.
type DirtyDocument struct {
	Path       string
	ModifiedAt time.Time
}

// trackedDoc is the tracker's per-document record.
type trackedDoc struct {
	snapshot   *Snapshot
	dirty      bool
	modifiedAt time.Time
}

// DocumentTracker owns the set of open buffers and their dirty state.
// The coordination layer only ever reads it (DirtyDocuments, Snapshot);
// the editing surface calls Open/Update/MarkSaved as the user types and
// saves.
type DocumentTracker struct {
	mu   sync.RWMutex
	docs map[string]*trackedDoc

	// now is swapped out by tests that need deterministic change times.
	now func() time.Time
}

// NewDocumentTracker returns an empty tracker.
func NewDocumentTracker() *DocumentTracker {
	return &DocumentTracker{
		docs: make(map[string]*trackedDoc),
		now:  time.Now,
	}
}

// Open registers a buffer for path with its initial content. An opened
// document starts clean.
func (t *DocumentTracker) Open(path, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.docs[path] = &trackedDoc{
		snapshot:   NewSnapshot(content),
		modifiedAt: t.now(),
	}
}

// Update replaces the buffer content for path and marks it dirty.
// Updating an unopened path opens it implicitly.
func (t *DocumentTracker) Update(path, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	doc, ok := t.docs[path]
	if !ok {
		doc = &trackedDoc{}
		t.docs[path] = doc
	}
	doc.snapshot = NewSnapshot(content)
	doc.dirty = true
	doc.modifiedAt = t.now()
}

// MarkSaved clears the dirty flag for path after the surface persists it.
func (t *DocumentTracker) MarkSaved(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if doc, ok := t.docs[path]; ok {
		doc.dirty = false
	}
}

// Close forgets the buffer for path.
func (t *DocumentTracker) Close(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.docs, path)
}

// Snapshot returns the current snapshot for path, or nil if the path is
// not open.
func (t *DocumentTracker) Snapshot(path string) *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if doc, ok := t.docs[path]; ok {
		return doc.snapshot
	}
	return nil
}

// DirtyDocuments returns every open document whose buffer has unsaved
// changes, with its last-change time.
func (t *DocumentTracker) DirtyDocuments() []DirtyDocument {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []DirtyDocument
	for path, doc := range t.docs {
		if doc.dirty {
			out = append(out, DirtyDocument{Path: path, ModifiedAt: doc.modifiedAt})
		}
	}
	return out
}

// SetClock overrides the tracker's time source. Test hook.
func (t *DocumentTracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}
