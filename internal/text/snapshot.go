// Package text is the editing-surface side of sightline: immutable buffer
// snapshots with line/column arithmetic, and the dirty-document tracker the
// coordination layer reads when deriving analysis configurations.
package text

import (
	"sort"
	"strings"
)

// Position is a zero-based (line, column) pair within a snapshot.
type Position struct {
	Line int
	Col  int
}

// Before reports whether p is strictly before q in document order.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// Span is a half-open [Start, End) range within a single file.
type Span struct {
	Start Position
	End   Position
}

// Contains reports whether pos falls inside the span.
func (s Span) Contains(pos Position) bool {
	if pos.Before(s.Start) {
		return false
	}
	return pos.Before(s.End)
}

// Snapshot is an immutable view of a buffer's contents at one instant.
// Line offsets are precomputed so position conversions are O(1) or
// O(log n), never a rescan of the text.
type Snapshot struct {
	content string
	// lineStarts[i] is the byte offset of the first character of line i.
	lineStarts []int
}

// NewSnapshot captures content as an immutable snapshot.
func NewSnapshot(content string) *Snapshot {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Snapshot{content: content, lineStarts: starts}
}

// Content returns the full text of the snapshot.
func (s *Snapshot) Content() string {
	return s.content
}

// LineCount returns the number of lines, counting a trailing line after
// a final newline.
func (s *Snapshot) LineCount() int {
	return len(s.lineStarts)
}

// Line returns the text of line i without its trailing line ending,
// "\n" or "\r\n". Out-of-range lines return "".
func (s *Snapshot) Line(i int) string {
	if i < 0 || i >= len(s.lineStarts) {
		return ""
	}
	start := s.lineStarts[i]
	end := len(s.content)
	if i+1 < len(s.lineStarts) {
		end = s.lineStarts[i+1] - 1 // strip '\n'
	}
	if end > start && s.content[end-1] == '\r' {
		end--
	}
	return s.content[start:end]
}

// PositionAt converts a byte offset into a (line, column) position.
// Offsets are clamped to the snapshot bounds.
func (s *Snapshot) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.content) {
		offset = len(s.content)
	}
	// First line whose start is after offset, minus one.
	line := sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > offset
	}) - 1
	return Position{Line: line, Col: offset - s.lineStarts[line]}
}

// OffsetAt converts a (line, column) position into a byte offset,
// clamping the column to the line's length.
func (s *Snapshot) OffsetAt(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(s.lineStarts) {
		return len(s.content)
	}
	lineLen := len(s.Line(pos.Line))
	col := pos.Col
	if col < 0 {
		col = 0
	}
	if col > lineLen {
		col = lineLen
	}
	return s.lineStarts[pos.Line] + col
}

// Prefix returns the text of all lines strictly before line, including
// their newlines. Used by the scanner bridge's from-scratch fallback.
func (s *Snapshot) Prefix(line int) string {
	if line <= 0 {
		return ""
	}
	if line >= len(s.lineStarts) {
		return s.content
	}
	return s.content[:s.lineStarts[line]]
}

// Slice returns the text covered by span.
func (s *Snapshot) Slice(span Span) string {
	start := s.OffsetAt(span.Start)
	end := s.OffsetAt(span.End)
	if end < start {
		return ""
	}
	return s.content[start:end]
}

// TrimmedLineIsEmpty reports whether line i is blank or whitespace-only.
func (s *Snapshot) TrimmedLineIsEmpty(i int) bool {
	return strings.TrimSpace(s.Line(i)) == ""
}
