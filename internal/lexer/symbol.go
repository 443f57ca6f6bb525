package lexer

// Symbol is a token-level name occurrence: the display text and its
// column extent within one line. It exists before any semantic
// resolution; the engine later decides what identity it refers to.
type Symbol struct {
	Text     string
	Line     int
	StartCol int
	EndCol   int
}

// LastIdent returns the trailing identifier segment of a (possibly
// qualified) display text, e.g. "fmt.Println" -> "Println". The engine's
// symbol-at-position hint wants the last segment only.
func (s Symbol) LastIdent() string {
	for i := len(s.Text) - 1; i >= 0; i-- {
		if s.Text[i] == '.' {
			return s.Text[i+1:]
		}
	}
	return s.Text
}

// SymbolAt returns the identifier or keyword-adjacent identifier token
// covering col on the given line, scanned with the supplied start state.
// Returns (Symbol{}, false) when col sits on whitespace, punctuation,
// comments, or literals.
func SymbolAt(state State, line int, lineText string, col int) (Symbol, bool) {
	tokens, _ := ScanLine(state, lineText)
	for _, tok := range tokens {
		if tok.Kind != TokenIdent {
			continue
		}
		// A cursor at the end of an identifier still refers to it, so the
		// end column is inclusive here.
		if col >= tok.StartCol && col <= tok.EndCol {
			return Symbol{
				Text:     tok.Text,
				Line:     line,
				StartCol: tok.StartCol,
				EndCol:   tok.EndCol,
			}, true
		}
	}
	return Symbol{}, false
}
