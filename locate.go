package sightline

import (
	"context"

	"github.com/jward/sightline/internal/lexer"
)

// LocatedSymbol is a lexical symbol together with its concrete span in
// the snapshot it was located in.
type LocatedSymbol struct {
	Symbol Symbol
	Span   Span
}

// SymbolAt maps a position in a snapshot to the lexical symbol there,
// tokenizing the line with the correct start state from the scanner
// bridge. Whitespace, comments, and literals yield (nil, false), an
// absent result, not an error.
func (w *Workspace) SymbolAt(ctx context.Context, snap *Snapshot, pos Position, project ProjectDescriptor) (*LocatedSymbol, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	flags := project.CompilerFlags()
	state := w.LineStartState(snap, flags, pos.Line)
	sym, ok := lexer.SymbolAt(state, pos.Line, snap.Line(pos.Line), pos.Col)
	if !ok {
		return nil, false
	}
	return &LocatedSymbol{
		Symbol: sym,
		Span: Span{
			Start: Position{Line: sym.Line, Col: sym.StartCol},
			End:   Position{Line: sym.Line, Col: sym.EndCol},
		},
	}, true
}
