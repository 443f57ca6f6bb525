package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Lines(t *testing.T) {
	snap := NewSnapshot("alpha\nbeta\n\ngamma")

	require.Equal(t, 4, snap.LineCount())
	assert.Equal(t, "alpha", snap.Line(0))
	assert.Equal(t, "beta", snap.Line(1))
	assert.Equal(t, "", snap.Line(2))
	assert.Equal(t, "gamma", snap.Line(3))
	assert.Equal(t, "", snap.Line(99))
	assert.Equal(t, "", snap.Line(-1))
}

func TestSnapshot_TrailingNewline(t *testing.T) {
	snap := NewSnapshot("one\n")
	require.Equal(t, 2, snap.LineCount())
	assert.Equal(t, "one", snap.Line(0))
	assert.Equal(t, "", snap.Line(1))
}

func TestSnapshot_CRLFLines(t *testing.T) {
	snap := NewSnapshot("one\r\ntwo\r\nthree")

	require.Equal(t, 3, snap.LineCount())
	assert.Equal(t, "one", snap.Line(0))
	assert.Equal(t, "two", snap.Line(1))
	assert.Equal(t, "three", snap.Line(2))
}

func TestSnapshot_PositionAt(t *testing.T) {
	snap := NewSnapshot("ab\ncd\nef")

	assert.Equal(t, Position{Line: 0, Col: 0}, snap.PositionAt(0))
	assert.Equal(t, Position{Line: 0, Col: 2}, snap.PositionAt(2)) // the '\n'
	assert.Equal(t, Position{Line: 1, Col: 0}, snap.PositionAt(3))
	assert.Equal(t, Position{Line: 2, Col: 1}, snap.PositionAt(7))
	// Clamped.
	assert.Equal(t, Position{Line: 0, Col: 0}, snap.PositionAt(-5))
	assert.Equal(t, Position{Line: 2, Col: 2}, snap.PositionAt(100))
}

func TestSnapshot_OffsetAt(t *testing.T) {
	snap := NewSnapshot("ab\ncd\nef")

	assert.Equal(t, 0, snap.OffsetAt(Position{Line: 0, Col: 0}))
	assert.Equal(t, 4, snap.OffsetAt(Position{Line: 1, Col: 1}))
	// Column clamps to line length.
	assert.Equal(t, 2, snap.OffsetAt(Position{Line: 0, Col: 50}))
	// Line past the end clamps to EOF.
	assert.Equal(t, 8, snap.OffsetAt(Position{Line: 9, Col: 0}))
}

func TestSnapshot_RoundTrip(t *testing.T) {
	content := "func main() {\n\tprintln(1)\n}\n"
	snap := NewSnapshot(content)
	for offset := 0; offset <= len(content); offset++ {
		pos := snap.PositionAt(offset)
		assert.Equal(t, offset, snap.OffsetAt(pos), "offset %d", offset)
	}
}

func TestSnapshot_Prefix(t *testing.T) {
	snap := NewSnapshot("ab\ncd\nef")
	assert.Equal(t, "", snap.Prefix(0))
	assert.Equal(t, "ab\n", snap.Prefix(1))
	assert.Equal(t, "ab\ncd\n", snap.Prefix(2))
	assert.Equal(t, "ab\ncd\nef", snap.Prefix(10))
}

func TestSnapshot_Slice(t *testing.T) {
	snap := NewSnapshot("hello world")
	span := Span{Start: Position{Line: 0, Col: 6}, End: Position{Line: 0, Col: 11}}
	assert.Equal(t, "world", snap.Slice(span))
}

func TestSpan_Contains(t *testing.T) {
	span := Span{Start: Position{Line: 1, Col: 2}, End: Position{Line: 1, Col: 5}}

	assert.True(t, span.Contains(Position{Line: 1, Col: 2}))
	assert.True(t, span.Contains(Position{Line: 1, Col: 4}))
	// End is exclusive.
	assert.False(t, span.Contains(Position{Line: 1, Col: 5}))
	assert.False(t, span.Contains(Position{Line: 0, Col: 3}))
}
