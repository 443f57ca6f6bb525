package sightline

import (
	"context"

	"github.com/jward/sightline/internal/engine"
	"github.com/jward/sightline/internal/lexer"
	"github.com/jward/sightline/internal/text"
)

// Public type aliases for internal types that appear in the coordination
// layer's API. These are Go type aliases (=), identical to the internal
// types at compile time, so no conversion is needed anywhere.

type (
	Config       = engine.Config
	Staleness    = engine.Staleness
	Occurrence   = engine.Occurrence
	SymbolInfo   = engine.SymbolInfo
	SymbolUse    = engine.SymbolUse
	CheckResults = engine.CheckResults
	Checker      = engine.Checker

	Position = text.Position
	Span     = text.Span
	Snapshot = text.Snapshot

	DocumentTracker = text.DocumentTracker
	DirtyDocument   = text.DirtyDocument

	LexState    = lexer.State
	Symbol      = lexer.Symbol
	FileScanner = lexer.FileScanner
)

// Staleness policies, re-exported for callers.
const (
	AllowStale   = engine.AllowStale
	RequireFresh = engine.RequireFresh
)

// NewSnapshot captures buffer content as an immutable snapshot.
func NewSnapshot(content string) *Snapshot {
	return text.NewSnapshot(content)
}

// NewDocumentTracker returns an empty dirty-document tracker.
func NewDocumentTracker() *DocumentTracker {
	return text.NewDocumentTracker()
}

// ProjectDescriptor is the uniform capability set every project kind
// exposes, whether a managed project or a standalone script. The
// coordination layer only borrows descriptors for the duration of one
// call; it never stores them.
type ProjectDescriptor interface {
	IsScript() bool
	ProjectFile() string
	TargetRuntime() string
	CompilerFlags() []string
	SourceFiles() []string
	OutputPath() string
	References() []ProjectDescriptor
	TransitiveReferenceIDs() []string

	// DeriveConfig produces the base analysis configuration. The option
	// resolver adjusts its load time for dirty buffers afterwards.
	DeriveConfig(ctx context.Context) (Config, error)
}

// DirtyIndex is the read-only view of the editor's dirty-document state.
// The coordination layer reads it once per configuration derivation and
// never mutates it.
type DirtyIndex interface {
	DirtyDocuments() []DirtyDocument
}

// BufferProvider supplies live buffer snapshots by path, so analysis can
// see unsaved edits. A nil snapshot means the path is not open.
type BufferProvider interface {
	Snapshot(path string) *Snapshot
}

// LineStateCache is the host syntax-coloring subsystem's fast lookup of
// lexical line start states. Implementations may fail or panic; the
// scanner bridge recovers and falls back to a from-scratch scan.
type LineStateCache interface {
	LineStartState(snap *Snapshot, line int) (LexState, error)
}
