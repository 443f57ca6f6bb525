package lexer

import (
	"strings"
	"sync"
)

// FileScanner binds the scanner to one file's text and compiler flags so
// callers can tokenize arbitrary lines on demand without re-deriving
// analysis configuration. Line start states are memoized: asking for
// line N computes states 0..N once and reuses them afterwards.
type FileScanner struct {
	lines []string
	flags []string

	mu sync.Mutex
	// states[i] is the lexical state at the start of line i. states is
	// extended lazily; len(states) is the first line not yet derived.
	states []State
}

// NewFileScanner builds a scanner over source. flags are the compiler
// flags of the owning configuration; lexing of this language does not
// depend on them, but the adapter carries them so downstream consumers
// see the same pairing the engine was queried with.
func NewFileScanner(source string, flags []string) *FileScanner {
	lines := strings.Split(source, "\n")
	// CRLF sources must not leak a '\r' into the last token of a line.
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return &FileScanner{
		lines:  lines,
		flags:  flags,
		states: []State{{}},
	}
}

// Flags returns the compiler flags the scanner was bound with.
func (f *FileScanner) Flags() []string {
	return f.flags
}

// LineCount returns the number of lines in the bound source.
func (f *FileScanner) LineCount() int {
	return len(f.lines)
}

// Line returns the text of line i, or "" when out of range.
func (f *FileScanner) Line(i int) string {
	if i < 0 || i >= len(f.lines) {
		return ""
	}
	return f.lines[i]
}

// StateForLine returns the lexical state at the start of line i.
func (f *FileScanner) StateForLine(i int) State {
	if i < 0 || i >= len(f.lines) {
		return State{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.states) <= i {
		prev := f.states[len(f.states)-1]
		_, next := ScanLine(prev, f.lines[len(f.states)-1])
		f.states = append(f.states, next)
	}
	return f.states[i]
}

// TokensForLine tokenizes line i with its correct start state.
func (f *FileScanner) TokensForLine(i int) []Token {
	if i < 0 || i >= len(f.lines) {
		return nil
	}
	tokens, _ := ScanLine(f.StateForLine(i), f.lines[i])
	return tokens
}

// SymbolAt returns the lexical symbol covering (line, col), if any.
func (f *FileScanner) SymbolAt(line, col int) (Symbol, bool) {
	if line < 0 || line >= len(f.lines) {
		return Symbol{}, false
	}
	return SymbolAt(f.StateForLine(line), line, f.lines[line], col)
}
