// Package engine is sightline's incremental analysis engine. It parses
// source with tree-sitter, keeps a per-configuration symbol index in
// SQLite (in-memory by default, so nothing survives the process), and
// answers symbol-resolution and usage queries. All caches are keyed by
// the full analysis configuration, load time included, which is what
// lets the coordination layer invalidate by bumping load time alone.
package engine

import (
	"fmt"
	"strings"
	"time"
)

// Config is an immutable analysis configuration snapshot. Two configs
// are cache-equivalent iff every field, including LoadTime, matches.
type Config struct {
	// ProjectFile identifies the owning project (manifest path, or the
	// script path itself for standalone scripts).
	ProjectFile string
	IsScript    bool

	CompilerFlags []string
	SourceFiles   []string
	OutputPath    string
	TargetRuntime string

	// LoadTime is the logical load timestamp the engine uses as part of
	// its cache key. The coordination layer bumps it forward when open
	// buffers in the file set have unsaved edits.
	LoadTime time.Time
}

// Key returns the engine cache key for the configuration. It covers
// every field, so any drift in flags, file set, or load time produces a
// distinct key.
func (c Config) Key() string {
	var b strings.Builder
	b.WriteString(c.ProjectFile)
	b.WriteByte(0)
	if c.IsScript {
		b.WriteString("script")
	}
	b.WriteByte(0)
	b.WriteString(strings.Join(c.CompilerFlags, "\x01"))
	b.WriteByte(0)
	b.WriteString(strings.Join(c.SourceFiles, "\x01"))
	b.WriteByte(0)
	b.WriteString(c.OutputPath)
	b.WriteByte(0)
	b.WriteString(c.TargetRuntime)
	b.WriteByte(0)
	b.WriteString(fmt.Sprintf("%d", c.LoadTime.UnixNano()))
	return b.String()
}

// Equal reports cache equivalence.
func (c Config) Equal(other Config) bool {
	return c.Key() == other.Key()
}

// ContainsFile reports whether path is in the configuration's source set.
func (c Config) ContainsFile(path string) bool {
	for _, f := range c.SourceFiles {
		if f == path {
			return true
		}
	}
	return false
}

// Staleness is the caller-supplied policy on whether a previous check
// pass may be reused. The engine interprets it; the coordination layer
// passes it through opaquely.
type Staleness int

const (
	// AllowStale permits answering from a cached check pass even if the
	// file content has changed since.
	AllowStale Staleness = iota
	// RequireFresh forces a recompute whenever the content hash differs
	// from the cached pass.
	RequireFresh
)
