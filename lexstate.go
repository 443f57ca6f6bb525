package sightline

import (
	"fmt"

	"github.com/jward/sightline/internal/lexer"
)

// LineStartState recovers the lexical state at the start of line in the
// snapshot. It prefers the host's syntax-coloring cache; on a missing
// cache, an error, or a panic from the host subsystem it falls back to
// re-lexing the snapshot from the top with the given compiler flags.
//
// Safe to call at keystroke frequency: the fallback is linear in the
// prefix length but never fails the caller.
func (w *Workspace) LineStartState(snap *Snapshot, flags []string, line int) LexState {
	if w.colors != nil {
		state, err := w.cachedLineState(snap, line)
		if err == nil {
			return state
		}
		w.logger.Debug("sightline: line state cache unavailable, re-lexing",
			"line", line, "error", err)
	}
	return lexer.NewFileScanner(snap.Content(), flags).StateForLine(line)
}

// cachedLineState consults the host coloring cache, converting a panic
// into an error so host instability stays a diagnostic, not a crash.
func (w *Workspace) cachedLineState(snap *Snapshot, line int) (state LexState, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("line state cache panicked: %v", r)
		}
	}()
	return w.colors.LineStartState(snap, line)
}
